package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"building-cost/core/engine"
	"building-cost/core/types"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234567.891, "$1,234,567.89"},
		{12.345, "$12.35"},
		{-2500, "-$2,500.00"},
	}
	for _, tt := range tests {
		if got := Money(tt.in); got != tt.want {
			t.Errorf("Money(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := Percent(0.255); got != "25.5%" {
		t.Errorf("Percent = %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatCLI, "JSON": FormatJSON, "yml": FormatYAML, "md": FormatMarkdown}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("html"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func sampleResult(t *testing.T) (*engine.Result, *engine.BatchResult) {
	t.Helper()
	e, err := engine.NewDefault(engine.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	req := engine.Request{
		BuildingType:  types.BuildingOffice,
		Subtype:       "class_a",
		SquareFootage: 50000,
		Location:      "Atlantis",
	}
	res, err := e.CalculateProject(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	batch := e.CalculateBatch(context.Background(), []engine.Scenario{
		{Name: "office", Request: req},
		{Name: "bad", Request: engine.Request{BuildingType: types.BuildingOffice}},
	})
	return res, batch
}

func TestFormattersRender(t *testing.T) {
	res, batch := sampleResult(t)
	reg := NewRegistry(Options{ShowScopeItems: true, ShowTrace: true, NoColor: true})

	for _, format := range reg.Formats() {
		t.Run(string(format), func(t *testing.T) {
			f, ok := reg.Get(format)
			if !ok {
				t.Fatalf("formatter %s missing", format)
			}
			var buf bytes.Buffer
			if err := f.Render(&buf, res); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if buf.Len() == 0 {
				t.Fatal("empty output")
			}
			buf.Reset()
			if err := f.RenderBatch(&buf, batch); err != nil {
				t.Fatalf("RenderBatch: %v", err)
			}
			if !strings.Contains(buf.String(), "bad") {
				t.Error("failed scenario missing from batch output")
			}
		})
	}
}

func TestRenderComparison(t *testing.T) {
	_, batch := sampleResult(t)
	if _, err := Compare(batch, "bad", 0); err == nil {
		t.Error("expected error for a failed baseline")
	}
	if _, err := Compare(batch, "nope", 0); err == nil {
		t.Error("expected error for an unknown baseline")
	}

	c, err := Compare(batch, "office", 0)
	if err != nil {
		t.Fatal(err)
	}
	// the failed scenario has nothing to diff
	if len(c.Diffs) != 0 {
		t.Errorf("diffs = %d, want 0", len(c.Diffs))
	}

	reg := NewRegistry(Options{NoColor: true})
	for _, format := range reg.Formats() {
		f, _ := reg.Get(format)
		var buf bytes.Buffer
		if err := f.RenderComparison(&buf, c); err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if !strings.Contains(buf.String(), "office") {
			t.Errorf("%s: baseline missing from output", format)
		}
	}
}

func TestMachineFormatsShareFieldNames(t *testing.T) {
	res, _ := sampleResult(t)

	var jbuf, ybuf bytes.Buffer
	if err := (&JSONFormatter{}).Render(&jbuf, res); err != nil {
		t.Fatal(err)
	}
	if err := (&YAMLFormatter{}).Render(&ybuf, res); err != nil {
		t.Fatal(err)
	}

	var fromJSON, fromYAML map[string]interface{}
	if err := json.Unmarshal(jbuf.Bytes(), &fromJSON); err != nil {
		t.Fatal(err)
	}
	if err := yaml.Unmarshal(ybuf.Bytes(), &fromYAML); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"calculation_id", "totals", "trade_breakdown", "ownership_analysis", "calculation_trace"} {
		if _, ok := fromJSON[key]; !ok {
			t.Errorf("json missing %s", key)
		}
		if _, ok := fromYAML[key]; !ok {
			t.Errorf("yaml missing %s", key)
		}
	}
}

func TestCLIReportShowsWarnings(t *testing.T) {
	res, _ := sampleResult(t)
	var buf bytes.Buffer
	if err := NewCLIFormatter(Options{NoColor: true}).Render(&buf, res); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "unresolved_location") {
		t.Error("report does not show the unresolved location warning")
	}
	if strings.Contains(out, "Scope Items") {
		t.Error("scope items shown without the option")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry(Options{})
	if err := reg.Register(&JSONFormatter{}); err == nil {
		t.Error("expected duplicate registration error")
	}
}
