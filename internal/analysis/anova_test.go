package analysis

import (
	"errors"
	"testing"

	"ecothread/domain/core"
)

func TestOneWayANOVA_KnownAnswer(t *testing.T) {
	// Shifted copies of the same spread: ssBetween = 6, ssWithin = 6,
	// F = (6/2)/(6/6) = 3, eta^2 = 0.5, p = (1+1)^-3 = 0.125 exactly.
	groups := map[string][]float64{
		"g1": {1, 2, 3},
		"g2": {2, 3, 4},
		"g3": {3, 4, 5},
	}

	res, err := OneWayANOVA(groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(res.FStatistic, 3.0, 1e-9) {
		t.Errorf("F = %g, want 3", res.FStatistic)
	}
	if res.DFBetween != 2 || res.DFWithin != 6 {
		t.Errorf("df = %d, %d, want 2, 6", res.DFBetween, res.DFWithin)
	}
	if !almostEqual(res.EtaSquared, 0.5, 1e-9) {
		t.Errorf("eta^2 = %g, want 0.5", res.EtaSquared)
	}
	if !almostEqual(res.PValue, 0.125, 1e-6) {
		t.Errorf("p = %g, want 0.125", res.PValue)
	}
}

func TestOneWayANOVA_GroupOrderAndMeans(t *testing.T) {
	groups := map[string][]float64{
		"b": {4, 6},
		"a": {1, 3},
	}

	res, err := OneWayANOVA(groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Groups) != 2 || res.Groups[0].Label != "a" || res.Groups[1].Label != "b" {
		t.Fatalf("groups must be reported in sorted label order, got %+v", res.Groups)
	}
	if res.Groups[0].Mean != 2 || res.Groups[1].Mean != 5 {
		t.Errorf("group means = %g, %g, want 2, 5", res.Groups[0].Mean, res.Groups[1].Mean)
	}
}

func TestOneWayANOVA_TooFewGroups(t *testing.T) {
	_, err := OneWayANOVA(map[string][]float64{"only": {1, 2, 3}})
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestOneWayANOVA_TinyGroup(t *testing.T) {
	_, err := OneWayANOVA(map[string][]float64{
		"a": {1, 2, 3},
		"b": {9},
	})
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestOneWayANOVA_AllIdentical(t *testing.T) {
	res, err := OneWayANOVA(map[string][]float64{
		"a": {7, 7, 7},
		"b": {7, 7},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PValue != 1.0 {
		t.Errorf("p = %g, want 1 for identical observations", res.PValue)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning about the undefined F statistic")
	}
}

func TestOneWayANOVA_ZeroWithinVariance(t *testing.T) {
	_, err := OneWayANOVA(map[string][]float64{
		"a": {1, 1, 1},
		"b": {5, 5},
	})
	if !errors.Is(err, core.ErrDegenerateSample) {
		t.Fatalf("expected ErrDegenerateSample, got %v", err)
	}
}

func TestOneWayANOVA_PairwiseBonferroni(t *testing.T) {
	groups := map[string][]float64{
		"a": {1, 2, 3, 2},
		"b": {5, 6, 7, 6},
		"c": {9, 10, 11, 10},
	}

	res, err := OneWayANOVA(groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Pairwise) != 3 {
		t.Fatalf("expected 3 pairwise comparisons, got %d", len(res.Pairwise))
	}
	for _, p := range res.Pairwise {
		if p.AdjustedP < p.PValue {
			t.Errorf("%s vs %s: adjusted p %g below raw p %g", p.GroupA, p.GroupB, p.AdjustedP, p.PValue)
		}
		if p.AdjustedP > 1 {
			t.Errorf("%s vs %s: adjusted p %g exceeds 1", p.GroupA, p.GroupB, p.AdjustedP)
		}
	}
}
