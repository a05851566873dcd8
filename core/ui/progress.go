package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressBar renders a progress bar. Safe for concurrent Update calls.
type ProgressBar struct {
	mu        sync.Mutex
	w         *Writer
	total     int
	current   int
	width     int
	label     string
	startTime time.Time
}

// NewProgressBar creates a progress bar
func (w *Writer) NewProgressBar(total int, label string) *ProgressBar {
	return &ProgressBar{
		w:         w,
		total:     total,
		width:     30,
		label:     label,
		startTime: time.Now(),
	}
}

// Update sets the completed count
func (p *ProgressBar) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = current
	p.render()
}

// Increment adds one completed item
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	p.render()
}

func (p *ProgressBar) render() {
	if p.total == 0 || p.w.verbosity < 1 {
		return
	}
	current := p.current
	if current > p.total {
		current = p.total
	}
	percent := float64(current) / float64(p.total)
	filled := int(percent * float64(p.width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	elapsed := ""
	if current > 0 {
		elapsed = " " + formatDuration(time.Since(p.startTime))
	}
	fmt.Fprintf(p.w.out, "\r%s [%s] %3.0f%% (%d/%d)%s",
		p.label, bar, percent*100, current, p.total, elapsed)
}

// Done completes the progress bar
func (p *ProgressBar) Done() {
	if p.total == 0 || p.w.verbosity < 1 {
		return
	}
	fmt.Fprintln(p.w.out)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "< 1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}
