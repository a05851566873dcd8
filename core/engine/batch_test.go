package engine

import (
	"context"
	"testing"

	"building-cost/core/types"
)

func TestCalculateBatchIsolatesFailures(t *testing.T) {
	e := newTestEngine(t)
	scenarios := []Scenario{
		{Name: "small office", Request: Request{BuildingType: types.BuildingOffice, Subtype: "class_b", SquareFootage: 10000}},
		{Name: "broken", Request: Request{BuildingType: types.BuildingOffice, SquareFootage: 0}},
		{Name: "large office", Request: Request{BuildingType: types.BuildingOffice, Subtype: "class_a", SquareFootage: 90000}},
		{Name: "warehouse", Request: Request{BuildingType: types.BuildingIndustrial, Subtype: "warehouse", SquareFootage: 40000}},
	}

	out := e.CalculateBatch(context.Background(), scenarios)

	if len(out.Scenarios) != len(scenarios) {
		t.Fatalf("got %d results, want %d", len(out.Scenarios), len(scenarios))
	}
	for i, r := range out.Scenarios {
		if r.Name != scenarios[i].Name {
			t.Errorf("result %d is %q, want %q", i, r.Name, scenarios[i].Name)
		}
	}
	if out.Scenarios[1].Error == "" || out.Scenarios[1].Result != nil {
		t.Errorf("broken scenario = %+v, want error only", out.Scenarios[1])
	}

	s := out.Summary
	if s.Count != 4 || s.Succeeded != 3 || s.Failed != 1 {
		t.Errorf("summary counts = %+v", s)
	}
	if s.Costliest == nil || s.Costliest.Name != "large office" {
		t.Errorf("costliest = %+v, want large office", s.Costliest)
	}
	if s.Cheapest == nil || s.Cheapest.Name == "large office" {
		t.Errorf("cheapest = %+v", s.Cheapest)
	}
}

func TestCalculateBatchEmpty(t *testing.T) {
	e := newTestEngine(t)
	out := e.CalculateBatch(context.Background(), nil)
	if out.Summary.Count != 0 || out.Summary.Cheapest != nil {
		t.Errorf("summary = %+v, want empty", out.Summary)
	}
}

func TestCalculateBatchProgress(t *testing.T) {
	e := newTestEngine(t)
	scenarios := []Scenario{
		{Name: "a", Request: Request{BuildingType: types.BuildingOffice, SquareFootage: 10000}},
		{Name: "b", Request: Request{BuildingType: types.BuildingRetail, SquareFootage: 8000}},
		{Name: "c", Request: Request{BuildingType: types.BuildingOffice, SquareFootage: -1}},
	}
	var calls []int
	e.CalculateBatch(context.Background(), scenarios, WithProgress(func(done, total int) {
		if total != len(scenarios) {
			t.Errorf("total = %d, want %d", total, len(scenarios))
		}
		calls = append(calls, done)
	}))
	if len(calls) != 3 || calls[2] != 3 {
		t.Errorf("progress calls = %v, want 1..3", calls)
	}
}
