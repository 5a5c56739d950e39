package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"ecothread/domain/core"
)

// Term is one predictor column of a regression design
type Term struct {
	Name   string
	Values []float64
}

// Coefficient holds one fitted regression coefficient and its significance
type Coefficient struct {
	Name       string  `json:"name"`
	Estimate   float64 `json:"estimate"`
	StdErr     float64 `json:"std_err"`
	TStatistic float64 `json:"t_statistic"`
	PValue     float64 `json:"p_value"`
}

// Diagnostics holds residual and collinearity diagnostics for a fitted model
type Diagnostics struct {
	// Jarque-Bera residual normality test (chi-squared, 2 df)
	JarqueBera  float64 `json:"jarque_bera"`
	JarqueBeraP float64 `json:"jarque_bera_p"`
	// Breusch-Pagan homoscedasticity test (chi-squared, k df)
	BreuschPagan  float64 `json:"breusch_pagan"`
	BreuschPaganP float64 `json:"breusch_pagan_p"`
	// Durbin-Watson autocorrelation statistic (2 = no autocorrelation)
	DurbinWatson float64 `json:"durbin_watson"`
	// VIF per predictor; values above 10 indicate strong multicollinearity
	VIF map[string]float64 `json:"vif,omitempty"`
}

// ModelResult holds a fitted OLS model
type ModelResult struct {
	Response     string        `json:"response"`
	Coefficients []Coefficient `json:"coefficients"`
	N            int           `json:"n"`
	R2           float64       `json:"r2"`
	AdjR2        float64       `json:"adj_r2"`
	FStatistic   float64       `json:"f_statistic"`
	FPValue      float64       `json:"f_p_value"`
	// AIC is the Gaussian log-likelihood form with constants dropped:
	// n*ln(RSS/n) + 2p. Only differences between models are meaningful.
	AIC         float64      `json:"aic"`
	Residuals   []float64    `json:"-"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`

	terms []Term
}

// TermNames returns the names of the fitted predictors (intercept excluded)
func (m *ModelResult) TermNames() []string {
	names := make([]string, len(m.terms))
	for i, t := range m.terms {
		names[i] = t.Name
	}
	return names
}

// DummyCode expands a categorical column into k-1 indicator terms against a
// reference level (the first level in sorted order).
func DummyCode(field string, labels []string) []Term {
	levelSet := map[string]bool{}
	for _, l := range labels {
		levelSet[l] = true
	}
	levels := make([]string, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Strings(levels)

	if len(levels) < 2 {
		return nil
	}

	terms := make([]Term, 0, len(levels)-1)
	for _, level := range levels[1:] {
		values := make([]float64, len(labels))
		for i, l := range labels {
			if l == level {
				values[i] = 1
			}
		}
		terms = append(terms, Term{Name: field + "=" + level, Values: values})
	}
	return terms
}

// FitOLS fits an ordinary-least-squares model with an intercept via the
// normal equations. A singular design (collinear or zero-variance
// predictors) fails that model with ErrSingularModel; callers report it as
// an undefined result rather than aborting the run.
func FitOLS(response string, y []float64, terms []Term) (*ModelResult, error) {
	n := len(y)
	p := len(terms) + 1 // predictors + intercept
	if n == 0 {
		return nil, core.ErrEmptyDataset
	}
	for _, t := range terms {
		if len(t.Values) != n {
			return nil, fmt.Errorf("%w: term %s has %d values for %d responses",
				core.ErrLengthMismatch, t.Name, len(t.Values), n)
		}
	}
	if n <= p {
		return nil, fmt.Errorf("%w: %d observations for %d parameters",
			core.ErrInsufficientData, n, p)
	}

	yMean := mean(y)
	tss := 0.0
	for _, v := range y {
		d := v - yMean
		tss += d * d
	}
	if tss == 0 {
		return nil, fmt.Errorf("%w: response %s has zero variance", core.ErrDegenerateSample, response)
	}

	// Design matrix with leading intercept column
	X := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		for j, t := range terms {
			X.Set(i, j+1, t.Values[i])
		}
	}
	yVec := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSingularModel, err)
	}

	var xty mat.VecDense
	xty.MulVec(X.T(), yVec)
	var beta mat.VecDense
	beta.MulVec(&inv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(X, &beta)

	result := &ModelResult{
		Response:  response,
		N:         n,
		Residuals: make([]float64, n),
		terms:     terms,
	}

	rss := 0.0
	for i := 0; i < n; i++ {
		e := y[i] - fitted.AtVec(i)
		result.Residuals[i] = e
		rss += e * e
	}

	dist := NewDistributions()
	dfResid := float64(n - p)
	sigma2 := rss / dfResid

	names := make([]string, 0, p)
	names = append(names, "(Intercept)")
	for _, t := range terms {
		names = append(names, t.Name)
	}
	for j := 0; j < p; j++ {
		c := Coefficient{Name: names[j], Estimate: beta.AtVec(j)}
		c.StdErr = math.Sqrt(sigma2 * inv.At(j, j))
		if c.StdErr > 0 {
			c.TStatistic = c.Estimate / c.StdErr
			c.PValue = dist.TTestPValue(c.TStatistic, dfResid)
		} else if c.Estimate != 0 {
			c.TStatistic = math.Inf(sign(c.Estimate))
		}
		result.Coefficients = append(result.Coefficients, c)
	}

	result.R2 = 1 - rss/tss
	result.AdjR2 = 1 - (1-result.R2)*float64(n-1)/dfResid
	if len(terms) > 0 && rss > 0 {
		k := float64(len(terms))
		result.FStatistic = ((tss - rss) / k) / (rss / dfResid)
		result.FPValue = dist.FTestPValue(result.FStatistic, k, dfResid)
	}
	if rss > 0 {
		result.AIC = float64(n)*math.Log(rss/float64(n)) + 2*float64(p)
	} else {
		result.AIC = math.Inf(-1)
		result.Warnings = append(result.Warnings, "perfect fit: zero residual variance")
	}

	return result, nil
}

// EvaluateDiagnostics fills residual and collinearity diagnostics on a
// fitted model. It runs auxiliary regressions, so it is separate from
// FitOLS and meant for the final model only.
func (m *ModelResult) EvaluateDiagnostics() {
	if m.Diagnostics == nil {
		m.Diagnostics = computeDiagnostics(m, m.terms, NewDistributions())
	}
}

// StepwiseAIC performs forward stepwise selection: starting from the
// intercept-only model, it repeatedly adds the candidate that lowers AIC
// the most and stops when no candidate improves it. Candidates whose fit
// fails (e.g. collinear with already-selected terms) are skipped.
func StepwiseAIC(response string, y []float64, candidates []Term) (*ModelResult, error) {
	best, err := FitOLS(response, y, nil)
	if err != nil {
		return nil, err
	}

	remaining := append([]Term(nil), candidates...)
	selected := []Term{}

	for len(remaining) > 0 {
		bestIdx := -1
		var bestFit *ModelResult

		for i, cand := range remaining {
			fit, err := FitOLS(response, y, append(append([]Term(nil), selected...), cand))
			if err != nil {
				continue
			}
			if fit.AIC < best.AIC && (bestFit == nil || fit.AIC < bestFit.AIC) {
				bestIdx = i
				bestFit = fit
			}
		}

		if bestIdx < 0 {
			break
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		best = bestFit
	}

	return best, nil
}

// computeDiagnostics fills residual and collinearity diagnostics. Failures
// here degrade to warnings on the model; they never fail the fit.
func computeDiagnostics(m *ModelResult, terms []Term, dist *Distributions) *Diagnostics {
	d := &Diagnostics{}
	res := m.Residuals
	n := float64(len(res))

	// Jarque-Bera: residual normality from skewness and kurtosis
	rMean := mean(res)
	rStd := math.Sqrt(sampleVariance(res, rMean))
	if rStd > 0 && len(res) >= 4 {
		s := skewness(res, rMean, rStd)
		k := kurtosis(res, rMean, rStd)
		d.JarqueBera = n / 6 * (s*s + (k-3)*(k-3)/4)
		d.JarqueBeraP = dist.ChiSquarePValue(d.JarqueBera, 2)
	} else {
		d.JarqueBeraP = 1.0
	}

	// Durbin-Watson: first-order residual autocorrelation
	num, den := 0.0, 0.0
	for i, e := range res {
		den += e * e
		if i > 0 {
			diff := e - res[i-1]
			num += diff * diff
		}
	}
	if den > 0 {
		d.DurbinWatson = num / den
	}

	// Breusch-Pagan: regress squared residuals on the same design
	if len(terms) > 0 && den > 0 {
		sq := make([]float64, len(res))
		for i, e := range res {
			sq[i] = e * e
		}
		if aux, err := FitOLS("squared_residuals", sq, terms); err == nil {
			d.BreuschPagan = n * aux.R2
			d.BreuschPaganP = dist.ChiSquarePValue(d.BreuschPagan, len(terms))
		} else {
			m.Warnings = append(m.Warnings,
				fmt.Sprintf("Breusch-Pagan auxiliary regression failed: %v", err))
		}
	}

	// VIF: regress each predictor on the others
	if len(terms) >= 2 {
		d.VIF = map[string]float64{}
		for i, t := range terms {
			others := make([]Term, 0, len(terms)-1)
			others = append(others, terms[:i]...)
			others = append(others, terms[i+1:]...)
			aux, err := FitOLS(t.Name, t.Values, others)
			if err != nil {
				m.Warnings = append(m.Warnings,
					fmt.Sprintf("VIF for %s unavailable: %v", t.Name, err))
				continue
			}
			if aux.R2 >= 1 {
				d.VIF[t.Name] = math.Inf(1)
			} else {
				d.VIF[t.Name] = 1 / (1 - aux.R2)
			}
		}
	}

	return d
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
