package core

import "math"

// -----------------------------------------------------------------------------

// Summary holds the reduction of one numeric series.
type Summary struct {
	Min   float64
	Max   float64
	Mean  float64
	Count int
}

// -----------------------------------------------------------------------------

// ComputeSummary reduces data to min/max/mean. ok is false for an empty
// series, in which case the returned Summary is the zero value and must not
// be read as a sample.
func ComputeSummary(data []float64) (s Summary, ok bool) {
	if len(data) == 0 {
		return Summary{}, false
	}

	s = Summary{Min: data[0], Max: data[0], Count: len(data)}
	for _, v := range data[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = ClampMean(CalculateMean(data), s.Min, s.Max)
	return s, true
}

// -----------------------------------------------------------------------------

// CalculateMean computes the arithmetic mean with a running update, which
// stays finite for series whose plain sum would overflow.
func CalculateMean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	mean := 0.0
	for i, v := range data {
		mean += (v - mean) / float64(i+1)
	}
	return mean
}

// -----------------------------------------------------------------------------

// ClampMean keeps a floating point mean inside [min, max]. Rounding can push
// the mean of identical values one ulp past them.
func ClampMean(mean, min, max float64) float64 {
	return math.Max(min, math.Min(max, mean))
}
