package output

import (
	"encoding/json"
	"io"

	"building-cost/core/engine"
)

// JSONFormatter writes results as JSON
type JSONFormatter struct {
	Indent string
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render writes one result
func (f *JSONFormatter) Render(w io.Writer, result *engine.Result) error {
	return f.encode(w, result)
}

// RenderBatch writes a batch result
func (f *JSONFormatter) RenderBatch(w io.Writer, batch *engine.BatchResult) error {
	return f.encode(w, batch)
}

// RenderComparison writes a batch with its baseline diffs
func (f *JSONFormatter) RenderComparison(w io.Writer, c *Comparison) error {
	return f.encode(w, c)
}

func (f *JSONFormatter) encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)
	return enc.Encode(v)
}
