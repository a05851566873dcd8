// Package trace records the ordered calculation log attached to every result.
// A Log belongs to exactly one calculation; it is created by the caller and
// threaded through every step, never stored on a shared engine.
package trace

import (
	"go.uber.org/zap"

	"building-cost/core/determinism"
	"building-cost/internal/logging"
)

// Kind classifies a trace entry
type Kind string

const (
	KindStep       Kind = "step"
	KindWarning    Kind = "warning"
	KindAdjustment Kind = "adjustment"
	KindInfo       Kind = "info"
)

// Codes for recoverable degradations. The calculation completes; the
// degradation is observable only through these entries.
const (
	CodeInvalidOwnershipType  = "invalid_ownership_type"
	CodeUnresolvedLocation    = "unresolved_location"
	CodeInvalidProjectClass   = "invalid_project_class"
	CodeInvalidMixedUseSplit  = "invalid_mixed_use_split"
	CodeUnknownFinishLevel    = "unknown_finish_level"
	CodeUnknownSpecialFeature = "unknown_special_feature"
	CodeCostClamped           = "cost_clamped"
	CodeDSCRReconciled        = "dscr_reconciled"
	CodeFlexReconciled        = "flex_reconciled"
	CodeEquipmentReclassified = "equipment_reclassified"
)

// Entry is one line of the calculation trace
type Entry struct {
	Seq     int                    `json:"seq"`
	Step    string                 `json:"step"`
	Kind    Kind                   `json:"type"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Log is an append-only, per-calculation trace.
// A nil *Log accepts and discards entries.
type Log struct {
	entries []Entry
	logger  *zap.Logger
}

// New creates an empty trace log
func New() *Log {
	return &Log{
		entries: make([]Entry, 0, 32),
		logger:  logging.Named("trace"),
	}
}

// Step records a derivation step with its inputs and outputs
func (l *Log) Step(step, message string, data map[string]interface{}) {
	l.add(Entry{Step: step, Kind: KindStep, Message: message, Data: data})
}

// Warn records a recoverable degradation
func (l *Log) Warn(code, step, message string, data map[string]interface{}) {
	l.add(Entry{Step: step, Kind: KindWarning, Code: code, Message: message, Data: data})
}

// Adjust records a post-hoc change to an already computed value
func (l *Log) Adjust(code, step, message string, data map[string]interface{}) {
	l.add(Entry{Step: step, Kind: KindAdjustment, Code: code, Message: message, Data: data})
}

// Info records a note that changes nothing numerically
func (l *Log) Info(code, step, message string, data map[string]interface{}) {
	l.add(Entry{Step: step, Kind: KindInfo, Code: code, Message: message, Data: data})
}

func (l *Log) add(e Entry) {
	if l == nil {
		return
	}
	e.Seq = len(l.entries) + 1
	l.entries = append(l.entries, e)

	fields := make([]zap.Field, 0, len(e.Data)+2)
	fields = append(fields, zap.String("step", e.Step))
	if e.Code != "" {
		fields = append(fields, zap.String("code", e.Code))
	}
	for _, k := range determinism.SortedKeys(e.Data) {
		fields = append(fields, zap.Any(k, e.Data[k]))
	}

	switch e.Kind {
	case KindWarning:
		l.logger.Warn(e.Message, fields...)
	default:
		l.logger.Debug(e.Message, fields...)
	}
}

// Entries returns a copy of all entries in order
func (l *Log) Entries() []Entry {
	if l == nil {
		return nil
	}
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Warnings returns only warning entries
func (l *Log) Warnings() []Entry {
	return l.Filter(KindWarning)
}

// Filter returns entries of the given kind
func (l *Log) Filter(kind Kind) []Entry {
	if l == nil {
		return nil
	}
	var out []Entry
	for _, e := range l.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// HasCode reports whether any entry carries the code
func (l *Log) HasCode(code string) bool {
	if l == nil {
		return false
	}
	for _, e := range l.entries {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Len returns the number of entries
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}
