package ui

import "fmt"

// ProjectSummary renders the headline box of a calculation
type ProjectSummary struct {
	w              *Writer
	Title          string
	Total          string
	CostPerSF      string
	Recommendation string
	Warnings       int
}

// NewProjectSummary creates a project summary
func (w *Writer) NewProjectSummary(title string) *ProjectSummary {
	return &ProjectSummary{w: w, Title: title}
}

// Render prints the summary box
func (s *ProjectSummary) Render() {
	s.w.Header(s.Title)

	s.w.Println("%s", s.w.Color(Bold, "╭──────────────────────────────────────────╮"))
	s.w.Println("%s%s%s", s.w.Color(Bold, "│"), s.w.Color(Green, fmt.Sprintf("  Total Project Cost: %-20s", s.Total)), s.w.Color(Bold, "│"))
	s.w.Println("%s%s%s", s.w.Color(Bold, "│"), s.w.Color(Dim, fmt.Sprintf("  Cost per SF:        %-20s", s.CostPerSF)), s.w.Color(Bold, "│"))
	s.w.Println("%s", s.w.Color(Bold, "╰──────────────────────────────────────────╯"))
	s.w.Println("")

	if s.Recommendation != "" {
		s.w.Println("%s", s.w.Color(decisionColor(s.Recommendation), "● Investment decision: "+s.Recommendation))
	}
	if s.Warnings > 0 {
		s.w.Warning("%d warnings, see calculation trace", s.Warnings)
	}
}

func decisionColor(rec string) string {
	switch rec {
	case "GO":
		return Green
	case "CONDITIONAL":
		return Yellow
	default:
		return Red
	}
}
