// Package confidence scores how much a generated number can be trusted.
// Every derivation away from caller-supplied data decays confidence.
package confidence

import (
	"fmt"
	"strings"
)

// DecayRule defines how confidence decays
type DecayRule struct {
	Name          string
	BaseFactor    float64 // Multiplier applied on each use
	Compounds     bool    // Repeated application keeps decaying
	MinConfidence float64 // Floor (never go below this)
}

// StandardDecayRules are the default decay rules
var StandardDecayRules = map[string]*DecayRule{
	"derived_quantity": {
		Name:          "derived_quantity",
		BaseFactor:    0.8, // quantity computed from SF ratios
		Compounds:     false,
		MinConfidence: 0.6,
	},
	"default_ratio": {
		Name:          "default_ratio",
		BaseFactor:    0.95, // ratio taken from profile defaults
		Compounds:     false,
		MinConfidence: 0.6,
	},
	"legacy_template": {
		Name:          "legacy_template",
		BaseFactor:    0.85,
		Compounds:     true,
		MinConfidence: 0.5,
	},
	"generic_template": {
		Name:          "generic_template",
		BaseFactor:    0.75,
		Compounds:     true,
		MinConfidence: 0.4,
	},
	"synthetic_detail": {
		Name:          "synthetic_detail",
		BaseFactor:    0.5, // carved out of another item
		Compounds:     true,
		MinConfidence: 0.2,
	},
	"rescaled_share": {
		Name:          "rescaled_share",
		BaseFactor:    0.9,
		Compounds:     true,
		MinConfidence: 0.3,
	},
}

// Tracker tracks confidence with full reasoning
type Tracker struct {
	current       float64
	factors       []Decay
	compoundCount int
}

// Decay records a single confidence reduction
type Decay struct {
	Rule       string
	Reason     string
	Factor     float64
	AppliedAt  float64 // Confidence before this decay
	ResultedIn float64 // Confidence after this decay
}

// NewTracker creates a tracker starting at full confidence
func NewTracker() *Tracker {
	return &Tracker{current: 1.0}
}

// Apply applies a decay rule
func (t *Tracker) Apply(ruleName, reason string) {
	rule, ok := StandardDecayRules[ruleName]
	if !ok {
		// Unknown rule - use moderate decay
		rule = &DecayRule{Name: ruleName, BaseFactor: 0.8, Compounds: true, MinConfidence: 0.1}
	}

	before := t.current
	factor := rule.BaseFactor
	if rule.Compounds && t.compoundCount > 0 {
		factor *= 0.95
	}

	t.current *= factor
	if t.current < rule.MinConfidence {
		t.current = rule.MinConfidence
	}
	// A floor never raises confidence above where it started
	if t.current > before {
		t.current = before
	}

	t.factors = append(t.factors, Decay{
		Rule:       ruleName,
		Reason:     reason,
		Factor:     factor,
		AppliedAt:  before,
		ResultedIn: t.current,
	})
	if rule.Compounds {
		t.compoundCount++
	}
}

// Current returns the current confidence
func (t *Tracker) Current() float64 {
	return t.current
}

// Factors returns all decay factors
func (t *Tracker) Factors() []Decay {
	return t.factors
}

// Level returns the label for the current confidence
func (t *Tracker) Level() string {
	return Label(t.current)
}

// Label maps a score to high, medium or low
func Label(score float64) string {
	switch {
	case score >= 0.85:
		return "high"
	case score >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

// Explain returns human-readable explanation
func (t *Tracker) Explain() string {
	if len(t.factors) == 0 {
		return "Full confidence - caller supplied"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Confidence: %.0f%% (%s)\n", t.current*100, t.Level()))
	for i, f := range t.factors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %.0f%% -> %.0f%% (%s)\n",
			i+1, f.Rule, f.AppliedAt*100, f.ResultedIn*100, f.Reason))
	}
	return sb.String()
}
