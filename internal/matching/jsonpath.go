package matching

import (
	"encoding/json"
	"reflect"

	"github.com/ohler55/ojg/jp"
)

// matchJSONPath evaluates JSONPath conditions against a JSON body. Every
// condition must hold. A body that is not valid JSON simply does not match.
func matchJSONPath(conditions map[string]any, body []byte) bool {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return false
	}

	for path, expected := range conditions {
		if !matchSinglePath(path, expected, data) {
			return false
		}
	}
	return true
}

func matchSinglePath(path string, expected any, data any) bool {
	x, err := jp.ParseString(path)
	if err != nil {
		// Invalid JSONPath expression counts as no match.
		return false
	}

	results := x.Get(data)
	if len(results) == 0 {
		return false
	}

	// nil expected means existence check only.
	if expected == nil {
		return true
	}

	for _, got := range results {
		if jsonEqual(got, expected) {
			return true
		}
	}
	return false
}

// jsonEqual compares values with JSON number semantics, so a YAML int 1 in a
// condition equals the float64 1 that encoding/json produces.
func jsonEqual(a, b any) bool {
	if na, ok := asFloat(a); ok {
		nb, okb := asFloat(b)
		return okb && na == nb
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
