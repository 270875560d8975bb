package normalize_test

import (
	"testing"

	"github.com/dataqna/backend/internal/geminidata"
	"github.com/dataqna/backend/internal/normalize"
	"github.com/dataqna/backend/pkg/models"
)

func strptr(s string) *string { return &s }

func TestUserMessage(t *testing.T) {
	env := normalize.Message(&geminidata.Message{
		UserMessage: &geminidata.UserMessage{Text: "top 5 products by revenue"},
		Timestamp:   "2026-01-02T03:04:05Z",
	})

	if env.Type != "user" {
		t.Errorf("Type = %q, want user", env.Type)
	}
	if env.Content["text"] != "top 5 products by revenue" {
		t.Errorf("Content.text = %v", env.Content["text"])
	}
	if env.Timestamp == nil || *env.Timestamp != "2026-01-02T03:04:05Z" {
		t.Errorf("Timestamp = %v", env.Timestamp)
	}
}

func TestPrecedence_UserWinsOverWrapper(t *testing.T) {
	// Satisfies both the user-message and wrapped-message shapes; rule 1
	// must win.
	msg := &geminidata.Message{
		UserMessage: &geminidata.UserMessage{Text: "hello"},
		Message: &geminidata.Message{
			SystemMessage: &geminidata.SystemMessage{
				Text: &geminidata.TextMessage{Parts: []string{"inner"}},
			},
		},
	}
	env := normalize.Message(msg)
	if env.Type != "user" {
		t.Errorf("Type = %q, want user", env.Type)
	}
}

func TestWrapperRecursion(t *testing.T) {
	msg := &geminidata.Message{
		Message: &geminidata.Message{
			UserMessage: &geminidata.UserMessage{Text: "wrapped"},
		},
	}
	env := normalize.Message(msg)
	if env.Type != "user" || env.Content["text"] != "wrapped" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestTextPartsJoinedWithoutSeparator(t *testing.T) {
	env := normalize.Message(&geminidata.Message{
		SystemMessage: &geminidata.SystemMessage{
			Text: &geminidata.TextMessage{Parts: []string{"The answer", " is ", "42."}},
		},
	})

	if env.Type != "assistant" || env.MessageType != "text" {
		t.Fatalf("type/message_type = %q/%q", env.Type, env.MessageType)
	}
	if env.Content["text"] != "The answer is 42." {
		t.Errorf("text = %v", env.Content["text"])
	}
	if env.Timestamp != nil {
		t.Errorf("Timestamp = %v, want nil", env.Timestamp)
	}
}

func TestSchemaQuestionPending(t *testing.T) {
	env := normalize.Message(&geminidata.Message{
		SystemMessage: &geminidata.SystemMessage{
			Schema: &geminidata.SchemaMessage{
				Query: &geminidata.SchemaQuery{Question: "which tables?"},
			},
		},
	})

	if env.MessageType != "query" {
		t.Errorf("message_type = %q, want query", env.MessageType)
	}
	if env.Content["question"] != "which tables?" {
		t.Errorf("question = %v", env.Content["question"])
	}
}

func TestSchemaResolved(t *testing.T) {
	env := normalize.Message(&geminidata.Message{
		SystemMessage: &geminidata.SystemMessage{
			Schema: &geminidata.SchemaMessage{
				Result: &geminidata.SchemaResult{
					Datasources: []geminidata.Datasource{
						{
							BigQueryTableReference: &geminidata.BigQueryTableReference{
								ProjectID: "p", DatasetID: "d", TableID: "t",
							},
							Schema: &geminidata.Schema{
								Fields: []geminidata.Field{
									{Name: "revenue", Type: "FLOAT", Mode: "NULLABLE"},
								},
							},
						},
					},
				},
			},
		},
	})

	if env.MessageType != "schema" {
		t.Fatalf("message_type = %q", env.MessageType)
	}
	if env.Content["status"] != "Schema resolved" {
		t.Errorf("status = %v", env.Content["status"])
	}
	datasources := env.Content["datasources"].([]map[string]any)
	if len(datasources) != 1 || datasources[0]["source_name"] != "p.d.t" {
		t.Fatalf("datasources = %v", datasources)
	}
	fields := datasources[0]["schema"].(map[string]any)["fields"].([]map[string]any)
	if fields[0]["description"] != "-" {
		t.Errorf("missing description should default to %q, got %v", "-", fields[0]["description"])
	}
}

func TestDatasourceFormatting(t *testing.T) {
	tests := []struct {
		name string
		ds   geminidata.Datasource
		want string
	}{
		{"studio", geminidata.Datasource{StudioDatasourceID: "studio-1"}, "studio-1"},
		{
			"looker",
			geminidata.Datasource{LookerExploreReference: &geminidata.LookerExploreReference{
				LookerInstanceURI: "https://l.example.com", LookmlModel: "sales", Explore: "orders",
			}},
			"lookmlModel: sales, explore: orders, lookerInstanceUri: https://l.example.com",
		},
		{"empty", geminidata.Datasource{}, "Unknown"},
	}

	for _, tt := range tests {
		env := normalize.Message(&geminidata.Message{
			SystemMessage: &geminidata.SystemMessage{
				Schema: &geminidata.SchemaMessage{
					Result: &geminidata.SchemaResult{Datasources: []geminidata.Datasource{tt.ds}},
				},
			},
		})
		got := env.Content["datasources"].([]map[string]any)[0]["source_name"]
		if got != tt.want {
			t.Errorf("%s: source_name = %v, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDataPivot_MissingCellsExplicitNulls(t *testing.T) {
	env := normalize.Message(&geminidata.Message{
		SystemMessage: &geminidata.SystemMessage{
			Data: &geminidata.DataMessage{
				GeneratedSQL: "SELECT product, revenue FROM t",
				Result: &geminidata.DataResult{
					Schema: &geminidata.Schema{Fields: []geminidata.Field{
						{Name: "product"}, {Name: "revenue"},
					}},
					Data: []map[string]any{
						{"product": "widget", "revenue": 10.5},
						{"product": "gadget"}, // revenue missing
						{"revenue": 3.25},     // product missing
					},
				},
			},
		},
	})

	if env.MessageType != "data" {
		t.Fatalf("message_type = %q", env.MessageType)
	}
	if env.Content["generated_sql"] != "SELECT product, revenue FROM t" {
		t.Errorf("generated_sql = %v", env.Content["generated_sql"])
	}
	if env.Content["data_retrieved"] != true {
		t.Errorf("data_retrieved = %v", env.Content["data_retrieved"])
	}

	data := env.Content["data"].(map[string]any)
	columns := data["columns"].(map[string][]any)
	for _, field := range []string{"product", "revenue"} {
		if len(columns[field]) != 3 {
			t.Errorf("len(columns[%s]) = %d, want 3", field, len(columns[field]))
		}
	}
	if columns["revenue"][1] != nil {
		t.Errorf("missing cell = %v, want explicit nil", columns["revenue"][1])
	}
	if columns["product"][2] != nil {
		t.Errorf("missing cell = %v, want explicit nil", columns["product"][2])
	}
}

func TestChart_TranslationFailureDegrades(t *testing.T) {
	env := normalize.Message(&geminidata.Message{
		SystemMessage: &geminidata.SystemMessage{
			Chart: &geminidata.ChartMessage{
				Query:  &geminidata.ChartQuery{Instructions: "bar chart of revenue"},
				Result: &geminidata.ChartResult{VegaConfig: map[string]any{"nonsense": true}},
			},
		},
	})

	if env.MessageType != "chart" {
		t.Fatalf("message_type = %q", env.MessageType)
	}
	if env.Content["instructions"] != "bar chart of revenue" {
		t.Errorf("instructions = %v", env.Content["instructions"])
	}
	if _, ok := env.Content["vega_config"]; ok {
		t.Error("vega_config present for malformed chart")
	}
	if _, ok := env.Content["error"].(string); !ok {
		t.Error("expected content.error for malformed chart")
	}
}

func TestChart_ValidConfig(t *testing.T) {
	env := normalize.Message(&geminidata.Message{
		SystemMessage: &geminidata.SystemMessage{
			Chart: &geminidata.ChartMessage{
				Result: &geminidata.ChartResult{VegaConfig: map[string]any{
					"mark":     "bar",
					"encoding": map[string]any{"x": map[string]any{"field": "product"}},
				}},
			},
		},
	})

	spec, ok := env.Content["vega_config"].(map[string]any)
	if !ok {
		t.Fatalf("vega_config missing: %v", env.Content)
	}
	if spec["$schema"] != "https://vega.github.io/schema/vega-lite/v5.json" {
		t.Errorf("$schema = %v", spec["$schema"])
	}
	if spec["mark"] != "bar" {
		t.Errorf("mark = %v", spec["mark"])
	}
}

func TestUnknownMessage(t *testing.T) {
	env := normalize.Message(&geminidata.Message{})
	if env.Type != "unknown" {
		t.Errorf("Type = %q, want unknown", env.Type)
	}
	if _, ok := env.Content["raw"].(string); !ok {
		t.Errorf("Content.raw missing: %v", env.Content)
	}

	env = normalize.Message(&geminidata.Message{SystemMessage: &geminidata.SystemMessage{}})
	if env.Type != "assistant" || env.MessageType != "unknown" {
		t.Errorf("empty system message = %q/%q", env.Type, env.MessageType)
	}
}

func TestSortEnvelopes_MissingTimestampsFirst(t *testing.T) {
	envelopes := []models.Envelope{
		{Type: "assistant", Timestamp: strptr("2026-01-02T00:00:00Z")},
		{Type: "user", Timestamp: nil},
		{Type: "assistant", Timestamp: strptr("2026-01-01T00:00:00Z")},
		{Type: "user", Timestamp: nil, Content: map[string]any{"text": "second nil"}},
	}

	normalize.SortEnvelopes(envelopes)

	if envelopes[0].Timestamp != nil || envelopes[1].Timestamp != nil {
		t.Fatalf("missing timestamps not sorted first: %+v", envelopes)
	}
	// Stable: the two nil-timestamp messages keep their relative order.
	if envelopes[1].Content["text"] != "second nil" {
		t.Error("sort is not stable for equal keys")
	}
	if *envelopes[2].Timestamp != "2026-01-01T00:00:00Z" {
		t.Errorf("envelopes[2] = %v", *envelopes[2].Timestamp)
	}
	if *envelopes[3].Timestamp != "2026-01-02T00:00:00Z" {
		t.Errorf("envelopes[3] = %v", *envelopes[3].Timestamp)
	}
}
