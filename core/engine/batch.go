package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"building-cost/internal/logging"
)

// Scenario is one named request of a batch
type Scenario struct {
	Name    string  `json:"name" yaml:"name"`
	Request Request `json:"request" yaml:"request"`
}

// ScenarioResult carries either a result or the error of one scenario
type ScenarioResult struct {
	Name   string  `json:"name"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// ScenarioRef points at one scenario of a batch
type ScenarioRef struct {
	Name             string  `json:"name"`
	Index            int     `json:"index"`
	TotalProjectCost float64 `json:"total_project_cost"`
	CostPerSF        float64 `json:"cost_per_sf"`
}

// BatchSummary compares the successful scenarios
type BatchSummary struct {
	Count     int          `json:"count"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Cheapest  *ScenarioRef `json:"cheapest,omitempty"`
	Costliest *ScenarioRef `json:"costliest,omitempty"`
}

// BatchResult keeps scenario order regardless of completion order
type BatchResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Summary   BatchSummary     `json:"summary"`
}

// BatchOption configures CalculateBatch
type BatchOption func(*batchOptions)

type batchOptions struct {
	progress func(done, total int)
}

// WithProgress reports completed scenarios. Calls are serialized.
func WithProgress(fn func(done, total int)) BatchOption {
	return func(o *batchOptions) { o.progress = fn }
}

// CalculateBatch runs scenarios on a bounded worker pool. A failing
// scenario records its error and never aborts the others.
func (e *Engine) CalculateBatch(ctx context.Context, scenarios []Scenario, opts ...BatchOption) *BatchResult {
	var o batchOptions
	for _, opt := range opts {
		opt(&o)
	}
	out := &BatchResult{Scenarios: make([]ScenarioResult, len(scenarios))}

	var mu sync.Mutex
	done := 0
	var g errgroup.Group
	g.SetLimit(e.config.BatchWorkers)
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			res := ScenarioResult{Name: sc.Name}
			r, err := e.CalculateProject(ctx, sc.Request)
			if err != nil {
				res.Error = err.Error()
				e.logger.Warn("scenario failed", logging.Scenario(sc.Name), zap.Error(err))
			} else {
				res.Result = r
			}
			out.Scenarios[i] = res
			if o.progress != nil {
				mu.Lock()
				done++
				o.progress(done, len(scenarios))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	out.Summary = summarize(out.Scenarios)
	return out
}

func summarize(results []ScenarioResult) BatchSummary {
	s := BatchSummary{Count: len(results)}
	for i, r := range results {
		if r.Result == nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		ref := &ScenarioRef{
			Name:             r.Name,
			Index:            i,
			TotalProjectCost: r.Result.Totals.TotalProjectCost,
			CostPerSF:        r.Result.Totals.CostPerSF,
		}
		if s.Cheapest == nil || ref.TotalProjectCost < s.Cheapest.TotalProjectCost {
			s.Cheapest = ref
		}
		if s.Costliest == nil || ref.TotalProjectCost > s.Costliest.TotalProjectCost {
			s.Costliest = ref
		}
	}
	return s
}
