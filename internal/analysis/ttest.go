package analysis

import (
	"fmt"
	"math"

	"ecothread/domain/core"
)

// TTestResult holds the outcome of a Welch two-sample t-test
type TTestResult struct {
	GroupA     string  `json:"group_a"`
	GroupB     string  `json:"group_b"`
	NA         int     `json:"n_a"`
	NB         int     `json:"n_b"`
	MeanA      float64 `json:"mean_a"`
	MeanB      float64 `json:"mean_b"`
	TStatistic float64 `json:"t_statistic"`
	DF         float64 `json:"df"`
	PValue     float64 `json:"p_value"`
	// CohenD is the pooled-SD effect size, independent of sample size
	CohenD float64 `json:"cohen_d"`
	// AdjustedP is set by multiple-comparison procedures (post-hoc use)
	AdjustedP float64  `json:"adjusted_p,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Significant reports whether the test rejects at the given alpha, using the
// adjusted p-value when one was set.
func (r TTestResult) Significant(alpha float64) bool {
	p := r.PValue
	if r.AdjustedP > 0 {
		p = r.AdjustedP
	}
	return p < alpha
}

// WelchTTest compares the means of two independent samples without assuming
// equal variances. Degrees of freedom follow the Welch-Satterthwaite
// equation; the p-value is exact from the t-distribution.
func WelchTTest(labelA string, a []float64, labelB string, b []float64) (TTestResult, error) {
	result := TTestResult{GroupA: labelA, GroupB: labelB, NA: len(a), NB: len(b)}

	if len(a) < 2 || len(b) < 2 {
		return result, fmt.Errorf("%w: t-test needs at least 2 observations per group (got %d, %d)",
			core.ErrInsufficientData, len(a), len(b))
	}

	n1, n2 := float64(len(a)), float64(len(b))
	result.MeanA = mean(a)
	result.MeanB = mean(b)
	var1 := sampleVariance(a, result.MeanA)
	var2 := sampleVariance(b, result.MeanB)

	if var1 == 0 && var2 == 0 {
		if result.MeanA == result.MeanB {
			// Identical constant samples: no difference, undefined statistic
			result.PValue = 1.0
			result.Warnings = append(result.Warnings,
				"both samples have zero variance and equal means; test statistic undefined")
			return result, nil
		}
		return result, fmt.Errorf("%w: both samples have zero variance", core.ErrDegenerateSample)
	}

	se := math.Sqrt(var1/n1 + var2/n2)
	result.TStatistic = (result.MeanA - result.MeanB) / se

	// Welch-Satterthwaite degrees of freedom
	result.DF = math.Pow(var1/n1+var2/n2, 2) /
		(math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))

	result.PValue = NewDistributions().TTestPValue(result.TStatistic, result.DF)

	pooledSD := math.Sqrt(((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2))
	if pooledSD > 0 {
		result.CohenD = (result.MeanA - result.MeanB) / pooledSD
	}

	return result, nil
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func sampleVariance(data []float64, mean float64) float64 {
	if len(data) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(data)-1)
}
