// Package form maps loosely-typed request payloads onto the three fixed
// regulatory document templates (520B, 501A, 519A) and renders them with
// a single PDF backend.  Each form is one declarative builder; missing
// optional fields degrade to empty strings rather than erroring.
package form

import (
	"fmt"
	"strings"
)

// Type identifies one of the supported document templates.
type Type string

const (
	Type520B Type = "520B" // material receipt and delivery acceptance
	Type501A Type = "501A" // accountability record
	Type519A Type = "519A" // drug movement / exposure record
)

// ParseType validates a template name from the URL.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(s))) {
	case Type520B:
		return Type520B, nil
	case Type501A:
		return Type501A, nil
	case Type519A:
		return Type519A, nil
	}
	return "", fmt.Errorf("unknown form type %q", s)
}

// TriState is the rendered state of a Yes/No/N-A checkbox group.
type TriState int

const (
	TriUnset TriState = iota
	TriYes
	TriNo
	TriNA
)

// Payload wraps the arbitrarily-shaped request JSON.  Lookup paths are
// dot-separated; every accessor tolerates missing keys and wrong types.
type Payload map[string]any

// get walks a dot-separated path through nested objects.
func (p Payload) get(path string) (any, bool) {
	var cur any = map[string]any(p)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at path rendered as text, or "" when absent.
func (p Payload) String(path string) string {
	v, ok := p.get(path)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	}
	return fmt.Sprintf("%v", v)
}

// Bool interprets the value at path the way the legacy clients sent
// checkbox state: true, "true", "yes" and "1" all count as checked.
func (p Payload) Bool(path string) bool {
	v, ok := p.get(path)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(t) {
		case "true", "yes", "1":
			return true
		}
	case float64:
		return t != 0
	}
	return false
}

// Tri reads a yes/no/na selection.
func (p Payload) Tri(path string) TriState {
	switch strings.ToLower(p.String(path)) {
	case "yes":
		return TriYes
	case "no":
		return TriNo
	case "na", "n/a":
		return TriNA
	}
	return TriUnset
}

// List returns the array of objects at path, or nil when absent.
func (p Payload) List(path string) []Payload {
	v, ok := p.get(path)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Payload, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			out = append(out, Payload(m))
		}
	}
	return out
}
