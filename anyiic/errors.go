package anyiic

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned when a joint distribution is
// requested for a batch with no rows.
var ErrEmptyBatch = errors.New("anyiic: empty batch")

// An InvalidDistributionError is returned when a row of a
// prediction matrix is not a probability simplex.
type InvalidDistributionError struct {
	// Arg names the offending argument.
	Arg string

	// Row is the index of the first bad row.
	Row int

	// Sum is the sum of the bad row.
	Sum float64

	// Negative is set if the row contains a negative or
	// non-finite entry, in which case Sum is only the sum
	// up to that entry.
	Negative bool
}

// Error returns a description of the bad row.
func (i *InvalidDistributionError) Error() string {
	if i.Negative {
		return fmt.Sprintf("%s not normalized: row %d has an invalid entry", i.Arg, i.Row)
	}
	return fmt.Sprintf("%s not normalized: row %d sums to %g", i.Arg, i.Row, i.Sum)
}

// A ShapeMismatchError is returned when an argument does
// not have the shape it is required to have.
//
// For matrices, shapes are given as {rows, cols}.
// When the packed data of a matrix disagrees with its
// declared shape, the shapes are element counts.
type ShapeMismatchError struct {
	Arg      string
	Expected []int
	Actual   []int
}

// Error returns a description of the mismatch.
func (s *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch for %s: expected %s but got %s", s.Arg,
		formatShape(s.Expected), formatShape(s.Actual))
}

func formatShape(shape []int) string {
	var res string
	for i, x := range shape {
		if i > 0 {
			res += "x"
		}
		res += fmt.Sprint(x)
	}
	return "(" + res + ")"
}
