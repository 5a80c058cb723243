package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		minor float64
		want  string
	}{
		{0, "0 KES"},
		{99, "0 KES"},
		{12345, "123 KES"},
		{123456700, "1,234,567 KES"},
		{-50000, "-500 KES"},
		{100000, "1,000 KES"},
		{99999, "999 KES"},
		{-123456700, "-1,234,567 KES"},
		{1234567890000, "12,345,678,900 KES"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.minor, "KES"), "minor=%v", tt.minor)
	}
}

func TestStatsHelpers(t *testing.T) {
	sorted := sortedCopy([]float64{5, 1, 3, 2, 4})
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, sorted)
	assert.Equal(t, 3.0, median(sorted))
	assert.Equal(t, 5.0, percentile(sorted, 0.95))
	assert.Equal(t, 2.0, percentile(sorted, 0.25))

	assert.Equal(t, 0.0, sampleStdDev([]float64{7}))
	assert.InDelta(t, 2.0, sampleStdDev([]float64{20, 22, 24}), 1e-9)
	assert.InDelta(t, 1200.0, populationStdDev([]float64{1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 5000}), 1e-9)

	assert.Equal(t, 5.0, ratio(5, 0))
	assert.Equal(t, 100.0, clamp(140, 0, 100))
	assert.Equal(t, 0.0, clamp(-3, 0, 100))
}
