package complexity

import "math"

// Maintainability computes the maintainability index
//
//	MI = 171 - 5.2*ln(LOC) - 0.23*CC - 16.2*ln(HV)
//
// with LOC and HV floored at 1, clamped to [0, 100] and rounded to two decimals.
func Maintainability(linesOfCode, cyclomatic int, halsteadVolume float64) float64 {
	loc := math.Max(float64(linesOfCode), 1)
	hv := math.Max(halsteadVolume, 1)

	mi := 171 - 5.2*math.Log(loc) - 0.23*float64(cyclomatic) - 16.2*math.Log(hv)
	return round2(clamp(mi, 0, 100))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
