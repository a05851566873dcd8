package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableAlignment(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	tbl := w.NewTable("Trade", "Amount").AlignRight(1)
	tbl.AddRow("structural", "$1,000")
	tbl.AddRow("mep", "$25")
	tbl.SetFooter("Total", "$1,025")
	tbl.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[3], "│    $25") {
		t.Errorf("amount not right aligned: %q", lines[3])
	}
	if strings.Contains(buf.String(), "\033[") {
		t.Error("color codes written with color disabled")
	}
}

func TestQuietWriterSkipsInfo(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	w.SetVerbosity(0)
	w.Info("hidden")
	w.Debug("hidden")
	w.Warning("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	p := w.NewProgressBar(2, "scenarios")
	p.Increment()
	p.Increment()
	p.Done()
	if !strings.Contains(buf.String(), "(2/2)") {
		t.Errorf("output = %q", buf.String())
	}
}
