package utils

import (
	"encoding/json"
	"strings"
)

// SerializeToCamelCaseJSON marshals v and rewrites every object key from
// snake_case to camelCase, recursively. Block messages decode from the
// lake with snake_case keys; the real-time cache stores them camelCased
// for the JavaScript runners that consume them.
func SerializeToCamelCaseJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", Wrap(err, "serialize to camel case")
	}
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return "", Wrap(err, "serialize to camel case")
	}
	out, err := json.Marshal(camelCaseKeys(node))
	if err != nil {
		return "", Wrap(err, "serialize to camel case")
	}
	return string(out), nil
}

func camelCaseKeys(node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for key, value := range n {
			out[SnakeToCamel(key)] = camelCaseKeys(value)
		}
		return out
	case []any:
		for i, value := range n {
			n[i] = camelCaseKeys(value)
		}
		return n
	default:
		return node
	}
}

// SnakeToCamel converts one snake_case identifier to camelCase. Keys
// without underscores pass through unchanged, so enum variant keys like
// "SuccessValue" keep their casing.
func SnakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	first := true
	for _, part := range parts {
		if part == "" {
			continue
		}
		if first {
			b.WriteString(part)
			first = false
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
