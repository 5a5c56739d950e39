package analysis

import (
	"fmt"

	"ecothread/domain/core"
)

// GroupStat summarizes one level of the grouping factor
type GroupStat struct {
	Label string  `json:"label"`
	N     int     `json:"n"`
	Mean  float64 `json:"mean"`
}

// AnovaResult holds the outcome of a one-way analysis of variance
type AnovaResult struct {
	FStatistic float64     `json:"f_statistic"`
	DFBetween  int         `json:"df_between"`
	DFWithin   int         `json:"df_within"`
	PValue     float64     `json:"p_value"`
	// EtaSquared is the proportion of variance explained by the factor
	EtaSquared float64     `json:"eta_squared"`
	Groups     []GroupStat `json:"groups"`
	// Pairwise holds Bonferroni-adjusted Welch comparisons between levels
	Pairwise []TTestResult `json:"pairwise,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// OneWayANOVA tests whether the group means of a numeric column partitioned
// by a categorical column differ, and runs Bonferroni-adjusted pairwise
// Welch t-tests as the post-hoc step.
func OneWayANOVA(groups map[string][]float64) (AnovaResult, error) {
	result := AnovaResult{}

	keys := GroupKeys(groups)
	if len(keys) < 2 {
		return result, fmt.Errorf("%w: ANOVA needs at least 2 groups, got %d",
			core.ErrInsufficientData, len(keys))
	}

	totalN := 0
	grandSum := 0.0
	for _, key := range keys {
		values := groups[key]
		if len(values) < 2 {
			return result, fmt.Errorf("%w: group %q has %d observations, need at least 2",
				core.ErrInsufficientData, key, len(values))
		}
		totalN += len(values)
		for _, v := range values {
			grandSum += v
		}
	}
	grandMean := grandSum / float64(totalN)

	// Between- and within-group sums of squares
	ssBetween, ssWithin := 0.0, 0.0
	for _, key := range keys {
		values := groups[key]
		m := mean(values)
		result.Groups = append(result.Groups, GroupStat{Label: key, N: len(values), Mean: m})

		d := m - grandMean
		ssBetween += float64(len(values)) * d * d
		for _, v := range values {
			dv := v - m
			ssWithin += dv * dv
		}
	}

	result.DFBetween = len(keys) - 1
	result.DFWithin = totalN - len(keys)

	if ssWithin == 0 {
		if ssBetween == 0 {
			// Every observation identical: nothing to test
			result.PValue = 1.0
			result.Warnings = append(result.Warnings,
				"all observations identical; F statistic undefined")
			return result, nil
		}
		return result, fmt.Errorf("%w: zero within-group variance", core.ErrDegenerateSample)
	}

	msBetween := ssBetween / float64(result.DFBetween)
	msWithin := ssWithin / float64(result.DFWithin)
	result.FStatistic = msBetween / msWithin
	result.PValue = NewDistributions().FTestPValue(result.FStatistic,
		float64(result.DFBetween), float64(result.DFWithin))
	result.EtaSquared = ssBetween / (ssBetween + ssWithin)

	result.Pairwise = pairwiseWelch(keys, groups, &result)
	return result, nil
}

// pairwiseWelch runs all pairwise Welch comparisons with Bonferroni
// adjustment. Degenerate pairs become warnings, not failures: the omnibus
// result stands on its own.
func pairwiseWelch(keys []string, groups map[string][]float64, result *AnovaResult) []TTestResult {
	comparisons := len(keys) * (len(keys) - 1) / 2
	out := make([]TTestResult, 0, comparisons)

	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			tt, err := WelchTTest(keys[i], groups[keys[i]], keys[j], groups[keys[j]])
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("post-hoc %s vs %s: %v", keys[i], keys[j], err))
				continue
			}
			tt.AdjustedP = tt.PValue * float64(comparisons)
			if tt.AdjustedP > 1 {
				tt.AdjustedP = 1
			}
			out = append(out, tt)
		}
	}
	return out
}
