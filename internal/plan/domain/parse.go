package domain

import (
	"encoding/json"
	"strconv"
)

// Candidate key names probed when normalizing a feature object coming back
// from the backend. The contract has shipped with several casings; the
// first key holding a usable value wins.
var (
	featureIDKeys   = []string{"id", "featureId", "feature_id", "ID"}
	featureTextKeys = []string{"text", "description", "Description", "FeatureDescription"}
)

// ParseFeature normalizes a heterogeneous backend feature representation
// into the canonical Feature shape. A bare string becomes a feature with
// no id; an object has its id and text probed across the known key
// variants. The result always has Deleted=false and New=false.
func ParseFeature(raw any) Feature {
	if s, ok := raw.(string); ok {
		return Feature{ID: nil, Text: s}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Feature{}
	}
	return Feature{
		ID:   firstFeatureID(obj),
		Text: firstFeatureText(obj),
	}
}

// firstFeatureID returns the first non-zero numeric id among the candidate
// keys. Zero and null values fall through to the next candidate, so an id
// of 0 is treated as absent.
func firstFeatureID(obj map[string]any) *int64 {
	for _, key := range featureIDKeys {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		if id, ok := numericID(v); ok && id != 0 {
			return &id
		}
	}
	return nil
}

func firstFeatureText(obj map[string]any) string {
	for _, key := range featureTextKeys {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func numericID(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		id, err := n.Int64()
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	}
	return 0, false
}

// FeatureList decodes a plan's feature array, accepting both bare strings
// and objects per element.
type FeatureList []Feature

func (l *FeatureList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]Feature, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, ParseFeature(s))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		out = append(out, ParseFeature(obj))
	}
	*l = out
	return nil
}
