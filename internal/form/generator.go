package form

import (
	"fmt"
	"time"
)

// Generator turns a form type plus request payload into a finished PDF.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// Generate builds the document for the requested form type and renders
// it.  The returned filename carries the identifying record number and a
// timestamp, matching the naming the document archive expects.
func (g *Generator) Generate(t Type, p Payload) (pdf []byte, filename string, err error) {
	var doc Document
	switch t {
	case Type520B:
		doc = build520B(p)
	case Type501A:
		doc = build501A(p)
	case Type519A:
		doc = build519A(p)
	default:
		return nil, "", fmt.Errorf("unknown form type %q", t)
	}
	out, err := render(doc)
	if err != nil {
		return nil, "", err
	}
	number := doc.Number
	if number == "" {
		number = "unknown"
	}
	filename = fmt.Sprintf("%s_%s_%s.pdf", t, number, time.Now().Format("20060102_150405"))
	return out, filename, nil
}

// BuildDocument exposes the field mapping without rendering; admin
// tooling and tests inspect mapped values through it.
func (g *Generator) BuildDocument(t Type, p Payload) (Document, error) {
	switch t {
	case Type520B:
		return build520B(p), nil
	case Type501A:
		return build501A(p), nil
	case Type519A:
		return build519A(p), nil
	}
	return Document{}, fmt.Errorf("unknown form type %q", t)
}
