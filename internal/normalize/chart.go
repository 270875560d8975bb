package normalize

import (
	"encoding/json"
	"errors"
)

const vegaLiteSchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// TranslateChart turns the declarative chart configuration emitted by the
// analytics service into a renderer-ready Vega-Lite spec. Best effort: a
// malformed configuration returns an error for the caller to embed, never a
// panic. The input is deep-copied so the wire message is not mutated.
func TranslateChart(config map[string]any) (map[string]any, error) {
	if len(config) == 0 {
		return nil, errors.New("empty chart configuration")
	}

	raw, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	var spec map[string]any
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, err
	}

	if !hasView(spec) {
		return nil, errors.New("chart configuration has no mark or view composition")
	}
	if _, ok := spec["$schema"]; !ok {
		spec["$schema"] = vegaLiteSchemaURL
	}
	return spec, nil
}

// hasView checks the minimal Vega-Lite structural requirement: a single
// view needs a mark, a composite view needs one of the composition keys.
func hasView(spec map[string]any) bool {
	for _, key := range []string{"mark", "layer", "hconcat", "vconcat", "concat", "facet", "repeat", "spec"} {
		if _, ok := spec[key]; ok {
			return true
		}
	}
	return false
}
