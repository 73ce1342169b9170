// Package anymeter accumulates evaluation statistics for
// clustering and segmentation models.
package anymeter

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// A Meter accumulates values and reports named statistics
// about them.
type Meter interface {
	// Reset clears all accumulated values.
	Reset()

	// Summary produces the current statistics.
	Summary() map[string]float64
}

// Average tracks the mean and standard deviation of a
// stream of values, such as per-batch losses.
type Average struct {
	values []float64
}

// Add records a value.
func (a *Average) Add(x float64) {
	a.values = append(a.values, x)
}

// Count returns the number of recorded values.
func (a *Average) Count() int {
	return len(a.values)
}

// Reset clears the recorded values.
func (a *Average) Reset() {
	a.values = nil
}

// Value returns the mean and the unbiased standard
// deviation of the recorded values.
//
// With no values, the mean is NaN.
// With fewer than two values, the deviation is 0.
func (a *Average) Value() (mean, stddev float64) {
	switch len(a.values) {
	case 0:
		return math.NaN(), 0
	case 1:
		return a.values[0], 0
	}
	return stat.MeanStdDev(a.values, nil)
}

// Summary reports "mean" and "std".
func (a *Average) Summary() map[string]float64 {
	mean, std := a.Value()
	return map[string]float64{"mean": mean, "std": std}
}
