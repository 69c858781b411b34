package payment

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Path addresses a value inside a decoded JSON document, e.g. {"pix", "code"}.
type Path []string

func P(dotted string) Path { return strings.Split(dotted, ".") }

func (p Path) String() string { return strings.Join(p, ".") }

// Candidates is a priority-ordered list of paths for one canonical field.
// New provider aliases are added by appending a row.
type Candidates []Path

// First returns the first candidate that resolves to a non-empty value.
func (cs Candidates) First(doc map[string]any) *string {
	for _, p := range cs {
		if s, ok := Lookup(doc, p); ok {
			return &s
		}
	}
	return nil
}

// Lookup walks doc along p and renders the leaf as a string. Empty strings,
// zero numbers, false and non-scalar leaves count as absent.
func Lookup(doc map[string]any, p Path) (string, bool) {
	if len(p) == 0 {
		return "", false
	}
	var cur any = doc
	for _, key := range p {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = m[key]; !ok {
			return "", false
		}
	}
	return scalar(cur)
}

func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case json.Number:
		return x.String(), x.String() != "0"
	case float64:
		if x == 0 {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), x != 0
	case int64:
		return strconv.FormatInt(x, 10), x != 0
	case bool:
		if x {
			return "true", true
		}
	}
	return "", false
}

// Object returns doc[key] when it is a JSON object.
func Object(doc map[string]any, key string) map[string]any {
	if m, ok := doc[key].(map[string]any); ok {
		return m
	}
	return nil
}
