// Package normalize turns raw Gemini Data Analytics messages into the
// stable envelope shape the web client renders. Classification walks a
// fixed precedence list; a message that structurally satisfies several
// branches is honored only by the first.
package normalize

import (
	"encoding/json"
	"sort"

	"github.com/dataqna/backend/internal/geminidata"
	"github.com/dataqna/backend/pkg/models"
)

// Message classifies one raw message into an envelope. Precedence: user
// message, then system message, then one level of wrapper indirection, then
// unknown. Deterministic, no side effects beyond logging in callers.
func Message(msg *geminidata.Message) models.Envelope {
	switch {
	case msg == nil:
		return models.Envelope{Type: "unknown", Content: map[string]any{"raw": "null"}}
	case msg.UserMessage != nil && msg.UserMessage.Text != "":
		return models.Envelope{
			Type:      "user",
			Content:   map[string]any{"text": msg.UserMessage.Text},
			Timestamp: timestamp(msg.Timestamp),
		}
	case msg.SystemMessage != nil:
		return systemEnvelope(msg.SystemMessage, msg.Timestamp)
	case msg.Message != nil:
		return Message(msg.Message)
	default:
		return models.Envelope{Type: "unknown", Content: map[string]any{"raw": rawJSON(msg)}}
	}
}

func systemEnvelope(sm *geminidata.SystemMessage, ts string) models.Envelope {
	var content map[string]any
	switch {
	case sm.Text != nil && len(sm.Text.Parts) > 0:
		content = textContent(sm.Text)
	case sm.Schema != nil:
		content = schemaContent(sm.Schema)
	case sm.Data != nil:
		content = dataContent(sm.Data)
	case sm.Chart != nil:
		content = chartContent(sm.Chart)
	default:
		content = map[string]any{"type": "unknown", "raw": rawJSON(sm)}
	}

	messageType, _ := content["type"].(string)
	if messageType == "" {
		messageType = "unknown"
	}
	return models.Envelope{
		Type:        "assistant",
		MessageType: messageType,
		Content:     content,
		Timestamp:   timestamp(ts),
	}
}

func textContent(text *geminidata.TextMessage) map[string]any {
	joined := ""
	for _, part := range text.Parts {
		joined += part
	}
	return map[string]any{"type": "text", "text": joined}
}

func schemaContent(schema *geminidata.SchemaMessage) map[string]any {
	switch {
	case schema.Query != nil:
		return map[string]any{"type": "query", "question": schema.Query.Question}
	case schema.Result != nil:
		datasources := make([]map[string]any, 0, len(schema.Result.Datasources))
		for _, ds := range schema.Result.Datasources {
			datasources = append(datasources, formatDatasource(ds))
		}
		return map[string]any{
			"type":        "schema",
			"status":      "Schema resolved",
			"datasources": datasources,
		}
	default:
		return map[string]any{"type": "schema"}
	}
}

func dataContent(data *geminidata.DataMessage) map[string]any {
	content := map[string]any{"type": "data"}

	if data.Query != nil {
		datasources := make([]map[string]any, 0, len(data.Query.Datasources))
		for _, ds := range data.Query.Datasources {
			datasources = append(datasources, formatDatasource(ds))
		}
		content["query"] = map[string]any{
			"name":        data.Query.Name,
			"question":    data.Query.Question,
			"datasources": datasources,
		}
	}

	if data.GeneratedSQL != "" {
		content["generated_sql"] = data.GeneratedSQL
	}

	if data.Result != nil {
		content["data_retrieved"] = true
		content["data"] = pivotColumns(data.Result)
	}
	return content
}

// pivotColumns reshapes row-oriented results into one value array per field.
// A row missing a field contributes an explicit null, so every column array
// has exactly one entry per row.
func pivotColumns(result *geminidata.DataResult) map[string]any {
	var fields []string
	if result.Schema != nil {
		fields = make([]string, 0, len(result.Schema.Fields))
		for _, f := range result.Schema.Fields {
			fields = append(fields, f.Name)
		}
	}

	columns := make(map[string][]any, len(fields))
	for _, f := range fields {
		columns[f] = make([]any, 0, len(result.Data))
	}
	for _, row := range result.Data {
		for _, f := range fields {
			v, ok := row[f]
			if !ok {
				v = nil
			}
			columns[f] = append(columns[f], v)
		}
	}
	return map[string]any{"fields": fields, "columns": columns}
}

func chartContent(chart *geminidata.ChartMessage) map[string]any {
	content := map[string]any{"type": "chart"}
	if chart.Query != nil && chart.Query.Instructions != "" {
		content["instructions"] = chart.Query.Instructions
	}
	if chart.Result != nil {
		spec, err := TranslateChart(chart.Result.VegaConfig)
		if err != nil {
			content["error"] = "failed to process chart specification: " + err.Error()
		} else {
			content["vega_config"] = spec
		}
	}
	return content
}

// formatDatasource renders the polymorphic datasource reference the way the
// client displays it, with the resolved schema fields when present.
func formatDatasource(ds geminidata.Datasource) map[string]any {
	info := map[string]any{}
	switch {
	case ds.StudioDatasourceID != "":
		info["source_name"] = ds.StudioDatasourceID
	case ds.LookerExploreReference != nil:
		ref := ds.LookerExploreReference
		info["source_name"] = "lookmlModel: " + ref.LookmlModel +
			", explore: " + ref.Explore +
			", lookerInstanceUri: " + ref.LookerInstanceURI
	case ds.BigQueryTableReference != nil:
		ref := ds.BigQueryTableReference
		info["source_name"] = ref.ProjectID + "." + ref.DatasetID + "." + ref.TableID
	default:
		info["source_name"] = "Unknown"
	}

	if ds.Schema != nil && len(ds.Schema.Fields) > 0 {
		fields := make([]map[string]any, 0, len(ds.Schema.Fields))
		for _, f := range ds.Schema.Fields {
			description := f.Description
			if description == "" {
				description = "-"
			}
			fields = append(fields, map[string]any{
				"name":        f.Name,
				"type":        f.Type,
				"description": description,
				"mode":        f.Mode,
			})
		}
		info["schema"] = map[string]any{"fields": fields}
	}
	return info
}

// SortEnvelopes orders messages by timestamp ascending. Messages without a
// timestamp carry the empty-string sentinel, which sorts before any
// ISO-8601 value; the sort is stable so same-timestamp order is preserved.
func SortEnvelopes(envelopes []models.Envelope) {
	sort.SliceStable(envelopes, func(i, j int) bool {
		return sortKey(envelopes[i]) < sortKey(envelopes[j])
	})
}

func sortKey(e models.Envelope) string {
	if e.Timestamp == nil {
		return ""
	}
	return *e.Timestamp
}

func timestamp(ts string) *string {
	if ts == "" {
		return nil
	}
	return &ts
}

func rawJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "unserializable message"
	}
	return string(raw)
}
