package normalize_test

import (
	"testing"

	"github.com/dataqna/backend/internal/normalize"
)

func TestTranslateChart_Defaults(t *testing.T) {
	spec, err := normalize.TranslateChart(map[string]any{
		"mark": map[string]any{"type": "line"},
		"data": map[string]any{"values": []any{}},
	})
	if err != nil {
		t.Fatalf("TranslateChart() error = %v", err)
	}
	if spec["$schema"] == nil {
		t.Error("$schema not defaulted")
	}
}

func TestTranslateChart_KeepsExplicitSchema(t *testing.T) {
	spec, err := normalize.TranslateChart(map[string]any{
		"$schema": "https://vega.github.io/schema/vega-lite/v4.json",
		"mark":    "point",
	})
	if err != nil {
		t.Fatalf("TranslateChart() error = %v", err)
	}
	if spec["$schema"] != "https://vega.github.io/schema/vega-lite/v4.json" {
		t.Errorf("$schema overwritten: %v", spec["$schema"])
	}
}

func TestTranslateChart_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{"mark": "bar"}
	if _, err := normalize.TranslateChart(in); err != nil {
		t.Fatalf("TranslateChart() error = %v", err)
	}
	if _, ok := in["$schema"]; ok {
		t.Error("input map mutated")
	}
}

func TestTranslateChart_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
	}{
		{"nil", nil},
		{"empty", map[string]any{}},
		{"no view", map[string]any{"title": "revenue"}},
		{"unserializable", map[string]any{"mark": "bar", "bad": func() {}}},
	}
	for _, tt := range tests {
		if _, err := normalize.TranslateChart(tt.config); err == nil {
			t.Errorf("%s: TranslateChart() error = nil, want error", tt.name)
		}
	}
}
