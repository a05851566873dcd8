// Package output provides output formatting.
// This package produces human and machine-readable reports of calculations.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"building-cost/core/diff"
	"building-cost/core/engine"
	"building-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable terminal report
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatYAML is machine-readable YAML
	FormatYAML Format = "yaml"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// ParseFormat normalizes a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCLI:
		return FormatCLI, nil
	case FormatJSON, FormatYAML, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.Newf(errors.TypeInput, "unknown output format %q", s)
	}
}

// Options tune what the human-readable formats include
type Options struct {
	ShowScopeItems bool
	ShowTrace      bool
	NoColor        bool
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for one calculation
	Render(w io.Writer, result *engine.Result) error

	// RenderBatch produces output for a scenario comparison
	RenderBatch(w io.Writer, batch *engine.BatchResult) error

	// RenderComparison produces a scenario comparison with diffs against a baseline
	RenderComparison(w io.Writer, c *Comparison) error
}

// Comparison is a batch plus the diff of every scenario against the baseline
type Comparison struct {
	Baseline string              `json:"baseline"`
	Batch    *engine.BatchResult `json:"batch"`
	Diffs    []*diff.Result      `json:"diffs"`
}

// Compare diffs every successful scenario of a batch against the named
// baseline scenario. The baseline must have succeeded.
func Compare(batch *engine.BatchResult, baseline string, threshold float64) (*Comparison, error) {
	var base *engine.Result
	for _, s := range batch.Scenarios {
		if s.Name == baseline {
			base = s.Result
			if base == nil {
				return nil, errors.Newf(errors.TypeInput, "baseline scenario %q failed: %s", baseline, s.Error)
			}
		}
	}
	if base == nil {
		return nil, errors.Newf(errors.TypeInput, "no scenario named %q", baseline)
	}

	d := diff.NewDiffer(threshold)
	c := &Comparison{Baseline: baseline, Batch: batch}
	for _, s := range batch.Scenarios {
		if s.Name == baseline || s.Result == nil {
			continue
		}
		c.Diffs = append(c.Diffs, d.Diff(baseline, base, s.Name, s.Result))
	}
	return c, nil
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry returns a registry holding every built-in formatter
func NewRegistry(opts Options) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	for _, f := range []Formatter{
		NewCLIFormatter(opts),
		&JSONFormatter{Indent: "  "},
		&YAMLFormatter{},
		NewMarkdownFormatter(opts),
	} {
		_ = r.Register(f)
	}
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.formatters[f.Format()]; exists {
		return fmt.Errorf("formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns the formatter for a format
func (r *Registry) Get(f Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fm, ok := r.formatters[f]
	return fm, ok
}

// Formats returns the registered formats, sorted
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
