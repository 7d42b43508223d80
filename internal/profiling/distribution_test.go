package profiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeDistribution(t *testing.T) {
	data := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 40}

	d, err := NewDistributionAnalyzer().AnalyzeDistribution(data)
	require.NoError(t, err)

	assert.Equal(t, 10, d.Count)
	assert.InDelta(t, 6.7, d.Mean, 1e-9)
	assert.InDelta(t, 3.0, d.Median, 1e-9)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 40.0, d.Max)
	assert.Equal(t, 2.0, d.Q25)
	assert.Equal(t, 4.0, d.Q75)
	assert.Equal(t, 5.0, d.P90)
	assert.Equal(t, 40.0, d.P99)
	assert.Equal(t, 1, d.Outliers)
	assert.Greater(t, d.Skewness, 0.0)
}

func TestAnalyzeDistribution_Degenerate(t *testing.T) {
	analyzer := NewDistributionAnalyzer()

	empty, err := analyzer.AnalyzeDistribution(nil)
	require.NoError(t, err)
	assert.Equal(t, Distribution{}, empty)

	single, err := analyzer.AnalyzeDistribution([]float64{2.5})
	require.NoError(t, err)
	assert.Equal(t, 1, single.Count)
	assert.Equal(t, 2.5, single.P99)
	assert.Equal(t, 0.0, single.StdDev)
	assert.Equal(t, 0.0, single.Skewness)

	flat, err := analyzer.AnalyzeDistribution([]float64{10, 10, 10, 10})
	require.NoError(t, err)
	assert.Equal(t, 0.0, flat.Skewness)
	assert.Equal(t, 0, flat.Outliers)
}
