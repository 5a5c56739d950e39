package analysis

import (
	"errors"
	"math"
	"testing"

	"ecothread/domain/core"
)

func TestFitOLS_RecoversExactCoefficients(t *testing.T) {
	// y = 1 + 2x with no noise
	x := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 1 + 2*v
	}

	model, err := FitOLS("y", y, []Term{{Name: "x", Values: x}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(model.Coefficients) != 2 {
		t.Fatalf("expected intercept + slope, got %d coefficients", len(model.Coefficients))
	}
	if model.Coefficients[0].Name != "(Intercept)" {
		t.Errorf("first coefficient is %q, want (Intercept)", model.Coefficients[0].Name)
	}
	if !almostEqual(model.Coefficients[0].Estimate, 1, 1e-8) {
		t.Errorf("intercept = %g, want 1", model.Coefficients[0].Estimate)
	}
	if !almostEqual(model.Coefficients[1].Estimate, 2, 1e-8) {
		t.Errorf("slope = %g, want 2", model.Coefficients[1].Estimate)
	}
	if !almostEqual(model.R2, 1, 1e-9) {
		t.Errorf("R^2 = %g, want 1", model.R2)
	}
	// Machine precision decides whether the residuals are exactly zero;
	// either way the AIC must be far below any noisy fit's.
	if !math.IsInf(model.AIC, -1) && model.AIC > -100 {
		t.Errorf("AIC = %g, want strongly negative for a near-perfect fit", model.AIC)
	}
}

func TestFitOLS_NoisyFit(t *testing.T) {
	// y = 3x with a small fixed perturbation; slope should stay near 3
	// and the fit should be strong but not perfect.
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	e := []float64{0.1, -0.2, 0.15, -0.1, 0.05, -0.15, 0.2, -0.05}
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 3*x[i] + e[i]
	}

	model, err := FitOLS("y", y, []Term{{Name: "x", Values: x}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(model.Coefficients[1].Estimate, 3, 0.05) {
		t.Errorf("slope = %g, want ~3", model.Coefficients[1].Estimate)
	}
	if model.R2 <= 0.99 || model.R2 >= 1 {
		t.Errorf("R^2 = %g, want strong but imperfect", model.R2)
	}
	if model.Coefficients[1].PValue >= 0.001 {
		t.Errorf("slope p = %g, want highly significant", model.Coefficients[1].PValue)
	}
	if model.FPValue >= 0.001 {
		t.Errorf("overall F p = %g, want highly significant", model.FPValue)
	}
	if len(model.Residuals) != len(y) {
		t.Errorf("got %d residuals for %d observations", len(model.Residuals), len(y))
	}
}

func TestFitOLS_LengthMismatch(t *testing.T) {
	_, err := FitOLS("y", []float64{1, 2, 3}, []Term{{Name: "x", Values: []float64{1, 2}}})
	if !errors.Is(err, core.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestFitOLS_TooFewObservations(t *testing.T) {
	_, err := FitOLS("y", []float64{1, 2}, []Term{{Name: "x", Values: []float64{1, 2}}})
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestFitOLS_ConstantResponse(t *testing.T) {
	_, err := FitOLS("y", []float64{4, 4, 4, 4}, []Term{{Name: "x", Values: []float64{1, 2, 3, 4}}})
	if !errors.Is(err, core.ErrDegenerateSample) {
		t.Fatalf("expected ErrDegenerateSample, got %v", err)
	}
}

func TestFitOLS_SingularDesign(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{2, 4, 5, 8, 10, 13}

	// The same predictor twice makes X'X exactly singular
	_, err := FitOLS("y", y, []Term{
		{Name: "x", Values: x},
		{Name: "x_copy", Values: x},
	})
	if !errors.Is(err, core.ErrSingularModel) {
		t.Fatalf("expected ErrSingularModel, got %v", err)
	}
}

func TestDummyCode(t *testing.T) {
	labels := []string{"b", "a", "c", "a", "b"}
	terms := DummyCode("material", labels)

	// Reference level is "a"; indicators for "b" and "c" in sorted order
	if len(terms) != 2 {
		t.Fatalf("expected 2 indicator terms, got %d", len(terms))
	}
	if terms[0].Name != "material=b" || terms[1].Name != "material=c" {
		t.Fatalf("term names = %q, %q", terms[0].Name, terms[1].Name)
	}

	wantB := []float64{1, 0, 0, 0, 1}
	wantC := []float64{0, 0, 1, 0, 0}
	for i := range labels {
		if terms[0].Values[i] != wantB[i] {
			t.Errorf("material=b[%d] = %g, want %g", i, terms[0].Values[i], wantB[i])
		}
		if terms[1].Values[i] != wantC[i] {
			t.Errorf("material=c[%d] = %g, want %g", i, terms[1].Values[i], wantC[i])
		}
	}
}

func TestDummyCode_SingleLevel(t *testing.T) {
	if terms := DummyCode("material", []string{"a", "a", "a"}); terms != nil {
		t.Fatalf("a single level has no contrasts, got %d terms", len(terms))
	}
}

func TestStepwiseAIC_SelectsTruePredictor(t *testing.T) {
	x1 := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	x2 := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	y := make([]float64, len(x1))
	for i := range x1 {
		y[i] = 2 * x1[i]
	}

	model, err := StepwiseAIC("y", y, []Term{
		{Name: "x2", Values: x2},
		{Name: "x1", Values: x1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := model.TermNames()
	if len(names) == 0 || names[0] != "x1" {
		t.Fatalf("selected terms = %v, want x1 first", names)
	}
	if !almostEqual(model.R2, 1, 1e-9) {
		t.Errorf("R^2 = %g, want 1", model.R2)
	}
}

func TestStepwiseAIC_NoUsefulPredictor(t *testing.T) {
	// Response unrelated to the lone candidate: selection may keep the
	// intercept-only model; it must not fail.
	y := []float64{1, 5, 2, 6, 3, 7, 2, 5}
	x := []float64{1, 1, 2, 2, 3, 3, 4, 4}

	model, err := StepwiseAIC("y", y, []Term{{Name: "x", Values: x}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model == nil {
		t.Fatal("expected a fitted model")
	}
}

func TestEvaluateDiagnostics(t *testing.T) {
	x1 := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	x2 := []float64{1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, -1}
	e := []float64{0.2, -0.1, 0.05, -0.2, 0.15, -0.05, 0.1, -0.15, 0.2, -0.1, 0.05, -0.1}
	y := make([]float64, len(x1))
	for i := range x1 {
		y[i] = 1 + x1[i] + 0.5*x2[i] + e[i]
	}

	terms := []Term{
		{Name: "x1", Values: x1},
		{Name: "x2", Values: x2},
	}
	model, err := FitOLS("y", y, terms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if model.Diagnostics != nil {
		t.Fatal("diagnostics should not be computed during the fit")
	}
	model.EvaluateDiagnostics()
	d := model.Diagnostics
	if d == nil {
		t.Fatal("expected diagnostics after EvaluateDiagnostics")
	}

	if d.DurbinWatson <= 0 || d.DurbinWatson >= 4 {
		t.Errorf("Durbin-Watson = %g, want within (0, 4)", d.DurbinWatson)
	}
	if d.JarqueBeraP < 0 || d.JarqueBeraP > 1 {
		t.Errorf("Jarque-Bera p = %g out of [0,1]", d.JarqueBeraP)
	}
	if d.BreuschPaganP < 0 || d.BreuschPaganP > 1 {
		t.Errorf("Breusch-Pagan p = %g out of [0,1]", d.BreuschPaganP)
	}

	// Near-independent predictors carry no meaningful inflation
	for _, name := range []string{"x1", "x2"} {
		vif, ok := d.VIF[name]
		if !ok {
			t.Errorf("missing VIF for %s", name)
			continue
		}
		if vif < 1 || vif > 10 {
			t.Errorf("VIF[%s] = %g, want within [1, 10]", name, vif)
		}
	}
}
