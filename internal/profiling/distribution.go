package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Distribution summarizes the shape of a score distribution
type Distribution struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	P90      float64 `json:"p90"`
	P99      float64 `json:"p99"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"` // above q75 + 1.5·IQR
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeDistribution computes the summary of data. Empty data yields a zero summary.
func (da *DistributionAnalyzer) AnalyzeDistribution(data []float64) (Distribution, error) {
	d := Distribution{Count: len(data)}
	if len(data) == 0 {
		return d, nil
	}

	input := stats.Float64Data(data)

	var err error
	if d.Mean, err = input.Mean(); err != nil {
		return d, err
	}
	if d.StdDev, err = input.StandardDeviation(); err != nil {
		return d, err
	}
	if d.Min, err = input.Min(); err != nil {
		return d, err
	}
	if d.Max, err = input.Max(); err != nil {
		return d, err
	}
	if d.Median, err = input.Median(); err != nil {
		return d, err
	}

	// Nearest rank is defined for any non-empty input, interpolation is not
	percentiles := []struct {
		p   float64
		dst *float64
	}{
		{25, &d.Q25},
		{75, &d.Q75},
		{90, &d.P90},
		{99, &d.P99},
	}
	for _, pc := range percentiles {
		if *pc.dst, err = stats.PercentileNearestRank(input, pc.p); err != nil {
			return d, err
		}
	}

	d.Skewness = calculateSkewness(data, d.Mean, d.StdDev)
	d.Outliers = countHighOutliers(data, d.Q25, d.Q75)

	return d, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// countHighOutliers counts values above the upper IQR fence. Rare tokens sit on
// the high side, so only that side is reported.
func countHighOutliers(data []float64, q25, q75 float64) int {
	upperBound := q75 + 1.5*(q75-q25)

	outlierCount := 0
	for _, x := range data {
		if x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
