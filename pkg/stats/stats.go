// Package stats provides descriptive statistics over metric samples.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes a sample.
type Distribution struct {
	Min    float64 `json:"min" yaml:"min" toon:"min"`
	Max    float64 `json:"max" yaml:"max" toon:"max"`
	Mean   float64 `json:"mean" yaml:"mean" toon:"mean"`
	StdDev float64 `json:"stddev" yaml:"stddev" toon:"stddev"`
	P50    float64 `json:"p50" yaml:"p50" toon:"p50"`
	P90    float64 `json:"p90" yaml:"p90" toon:"p90"`
}

// Describe computes the distribution of values, rounded to 2 decimals.
// StdDev is the population standard deviation. An empty sample yields zeros.
func Describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return Distribution{
		Min:    Round2(sorted[0]),
		Max:    Round2(sorted[len(sorted)-1]),
		Mean:   Round2(mean),
		StdDev: Round2(std),
		P50:    Round2(Percentile(sorted, 0.5)),
		P90:    Round2(Percentile(sorted, 0.9)),
	}
}

// Percentile returns the empirical p-quantile (0 <= p <= 1) of a sorted
// slice. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = math.Max(0, math.Min(1, p))
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Ints converts an int sample to float64.
func Ints(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// Regression holds least-squares statistics for a series indexed 0..n-1.
type Regression struct {
	Slope       float64 `json:"slope" yaml:"slope" toon:"slope"`
	Intercept   float64 `json:"intercept" yaml:"intercept" toon:"intercept"`
	RSquared    float64 `json:"r_squared" yaml:"r_squared" toon:"r_squared"`
	Correlation float64 `json:"correlation" yaml:"correlation" toon:"correlation"`
}

// Regress fits ys against their index. Returns zero values for fewer than
// 2 points, and zero correlation/R² for a constant series.
func Regress(ys []float64) Regression {
	n := len(ys)
	if n < 2 {
		return Regression{}
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	r := Regression{Slope: slope, Intercept: intercept}
	if _, std := stat.PopMeanStdDev(ys, nil); std > 0 {
		r.RSquared = stat.RSquared(xs, ys, nil, intercept, slope)
		r.Correlation = stat.Correlation(xs, ys, nil)
	}
	return r
}
