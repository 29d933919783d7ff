// Package report: JSON output.
package report

import (
	"encoding/json"
	"io"

	"github.com/corpuskit/lshindex/internal/memory"
)

// JSONGenerator renders a Report as JSON.
type JSONGenerator struct {
	Indent bool
}

// Generate writes report to w as JSON.
func (g *JSONGenerator) Generate(report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if g.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(report)
}

// Extension returns the file extension.
func (g *JSONGenerator) Extension() string {
	return "json"
}

// GenerateBytes renders report as a JSON byte slice, reusing a pooled
// buffer for the intermediate encode.
func (g *JSONGenerator) GenerateBytes(report *Report) ([]byte, error) {
	buf := memory.GetBuffer()
	defer memory.PutBuffer(buf)

	if err := g.Generate(report, buf); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
