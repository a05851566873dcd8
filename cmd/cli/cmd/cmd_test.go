package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.json")}, args...))
	if err := rootCmd.Execute(); err != nil {
		return stdout.String() + stderr.String(), err
	}
	return stdout.String(), nil
}

func TestEstimateJSON(t *testing.T) {
	out, err := run(t, "estimate", "--type", "office", "--subtype", "class_a", "--sf", "50000",
		"--location", "Nashville, TN", "--format", "json")
	if err != nil {
		t.Fatalf("estimate: %v\n%s", err, out)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	totals, ok := doc["totals"].(map[string]interface{})
	if !ok || totals["total_project_cost"].(float64) <= 0 {
		t.Errorf("totals = %v", doc["totals"])
	}
}

func TestCompareFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	doc := `scenarios:
  - name: class a
    request:
      building_type: office
      subtype: class_a
      square_footage: 50000
  - name: warehouse
    request:
      building_type: industrial
      subtype: warehouse
      square_footage: 80000
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "compare", path, "--format", "markdown")
	if err != nil {
		t.Fatalf("compare: %v\n%s", err, out)
	}
	if !strings.Contains(out, "class a") || !strings.Contains(out, "warehouse") {
		t.Errorf("comparison missing scenarios:\n%s", out)
	}
}

func TestCompareBaseline(t *testing.T) {
	defer func() { baselineName = "" }()
	path := filepath.Join(t.TempDir(), "scenarios.json")
	doc := `{"scenarios": [
  {"name": "standard", "request": {"building_type": "office", "subtype": "class_a", "square_footage": 50000}},
  {"name": "premium", "request": {"building_type": "office", "subtype": "class_a", "square_footage": 50000, "finish_level": "premium"}}
]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "compare", path, "--format", "json", "--baseline", "standard")
	if err != nil {
		t.Fatalf("compare: %v\n%s", err, out)
	}
	var cmp struct {
		Baseline string `json:"baseline"`
		Diffs    []struct {
			Candidate  string `json:"candidate"`
			TotalDelta string `json:"total_delta"`
		} `json:"diffs"`
	}
	if err := json.Unmarshal([]byte(out), &cmp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if cmp.Baseline != "standard" || len(cmp.Diffs) != 1 || cmp.Diffs[0].Candidate != "premium" {
		t.Errorf("comparison = %+v", cmp)
	}
	if strings.HasPrefix(cmp.Diffs[0].TotalDelta, "-") {
		t.Errorf("premium finish cheaper than standard: %s", cmp.Diffs[0].TotalDelta)
	}

	if _, err := run(t, "compare", path, "--baseline", "missing"); err == nil {
		t.Error("expected error for unknown baseline")
	}
}

func TestCatalogValidate(t *testing.T) {
	out, err := run(t, "catalog", "validate", "--no-color")
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "building configurations") {
		t.Errorf("output = %q", out)
	}
}

func TestCatalogListShowsMixedUseComponents(t *testing.T) {
	out, err := run(t, "catalog", "list", "mixed_use", "--no-color")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, out)
	}
	for _, want := range []string{"Mixed-use component", "hotel", "1.12x"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
