package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"building-cost/core/engine"
)

// YAMLFormatter writes results as YAML. Field names follow the JSON
// field names so both machine formats share one schema.
type YAMLFormatter struct{}

// Format returns FormatYAML
func (f *YAMLFormatter) Format() Format { return FormatYAML }

// Render writes one result
func (f *YAMLFormatter) Render(w io.Writer, result *engine.Result) error {
	return writeYAML(w, result)
}

// RenderBatch writes a batch result
func (f *YAMLFormatter) RenderBatch(w io.Writer, batch *engine.BatchResult) error {
	return writeYAML(w, batch)
}

// RenderComparison writes a batch with its baseline diffs
func (f *YAMLFormatter) RenderComparison(w io.Writer, c *Comparison) error {
	return writeYAML(w, c)
}

func writeYAML(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
