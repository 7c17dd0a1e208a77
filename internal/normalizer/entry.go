package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
)

// Entry is one raw source record as decoded from JSON.
type Entry map[string]any

// AsEntry returns item as an Entry when it is a decoded JSON object.
func AsEntry(item any) (Entry, bool) {
	switch v := item.(type) {
	case Entry:
		return v, v != nil
	case map[string]any:
		return Entry(v), v != nil
	default:
		return nil, false
	}
}

// present reports whether key exists with a non-null value. Zero counts as
// present.
func (e Entry) present(key string) bool {
	v, ok := e[key]
	return ok && v != nil
}

// truthy reports whether key holds a value that is neither absent, null,
// false, zero nor empty.
func (e Entry) truthy(key string) bool {
	v, ok := e[key]
	if !ok || v == nil {
		return false
	}

	switch val := v.(type) {
	case string:
		return val != ""
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// number coerces a decoded JSON value to json.Number without changing its
// textual representation.
func number(v any) (json.Number, bool) {
	switch val := v.(type) {
	case json.Number:
		if _, err := val.Float64(); err != nil {
			return "", false
		}

		return val, true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return "", false
		}

		return json.Number(strconv.FormatFloat(val, 'f', -1, 64)), true
	case int:
		return json.Number(strconv.Itoa(val)), true
	case int64:
		return json.Number(strconv.FormatInt(val, 10)), true
	default:
		return "", false
	}
}

// integer coerces a decoded JSON value to int64. Floats are accepted only
// when they hold a whole number.
func integer(v any) (int64, bool) {
	n, ok := number(v)
	if !ok {
		return 0, false
	}

	if i, err := n.Int64(); err == nil {
		return i, true
	}

	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}

	return int64(f), true
}
