package anyiic

import (
	"math"

	"github.com/unixpickle/anydiff"
)

// SimplexTolerance is the largest absolute deviation from
// 1 allowed in the sum of a probability vector.
const SimplexTolerance = 1e-4

// CheckSimplex verifies that every row of m is a
// probability vector.
//
// If the packed data does not match the shape of m, a
// *ShapeMismatchError is returned.
// Otherwise, the first bad row is reported with an
// *InvalidDistributionError.
func CheckSimplex(name string, m *anydiff.Matrix) error {
	if err := checkPacked(name, m); err != nil {
		return err
	}
	return checkRows(name, vectorFloats(m.Data.Output()), m.Rows, m.Cols)
}

// CheckSimplexFloats is like CheckSimplex for a list of
// rows.
func CheckSimplexFloats(name string, rows [][]float64) error {
	m, err := floatsMatrix(name, rows)
	if err != nil {
		return err
	}
	return CheckSimplex(name, m)
}

func checkPacked(name string, m *anydiff.Matrix) error {
	if size := m.Data.Output().Len(); size != m.Rows*m.Cols {
		return &ShapeMismatchError{
			Arg:      name,
			Expected: []int{m.Rows * m.Cols},
			Actual:   []int{size},
		}
	}
	return nil
}

func checkRows(name string, data []float64, rows, cols int) error {
	for row := 0; row < rows; row++ {
		var sum float64
		for _, x := range data[row*cols : (row+1)*cols] {
			if !(x >= 0) || math.IsInf(x, 1) {
				return &InvalidDistributionError{Arg: name, Row: row, Sum: sum, Negative: true}
			}
			sum += x
		}
		if math.Abs(sum-1) > SimplexTolerance {
			return &InvalidDistributionError{Arg: name, Row: row, Sum: sum}
		}
	}
	return nil
}
