package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"ecothread/domain/core"
)

// ColumnSummary holds descriptive statistics for one numeric column
type ColumnSummary struct {
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
}

// Describe computes a full descriptive summary for a numeric column
func Describe(data []float64) (ColumnSummary, error) {
	summary := ColumnSummary{N: len(data)}
	if len(data) == 0 {
		return summary, core.ErrEmptyDataset
	}

	var err error
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, err
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return summary, err
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, err
	}

	if len(data) >= 2 {
		// Sample standard deviation
		if summary.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return summary, err
		}
	}
	// stats.Percentile rejects ranks below the first element, which the
	// quartiles hit for n < 4; such samples keep zero quartiles.
	if len(data) >= 4 {
		if summary.Q25, err = stats.Percentile(data, 25); err != nil {
			return summary, err
		}
		if summary.Q75, err = stats.Percentile(data, 75); err != nil {
			return summary, err
		}
	}

	summary.Skewness = skewness(data, summary.Mean, summary.StdDev)
	summary.Kurtosis = kurtosis(data, summary.Mean, summary.StdDev)
	return summary, nil
}

// DescribeGroups computes a summary per group, keyed by the group label.
// Returned keys are sorted for deterministic iteration by callers that
// range over GroupKeys.
func DescribeGroups(groups map[string][]float64) (map[string]ColumnSummary, error) {
	out := make(map[string]ColumnSummary, len(groups))
	for key, values := range groups {
		summary, err := Describe(values)
		if err != nil {
			return nil, err
		}
		out[key] = summary
	}
	return out, nil
}

// GroupKeys returns the sorted group labels of a grouped sample
func GroupKeys[V any](groups map[string]V) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// skewness computes the adjusted Fisher-Pearson coefficient of skewness
func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d
	}

	return (sum / n) * math.Sqrt(n*(n-1)) / (n - 2)
}

// kurtosis computes sample kurtosis (3 = normal)
func kurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d * d
	}

	return sum / n
}
