package anyiic

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
)

var floatCreator = anyvec64.DefaultCreator{}

// vectorFloats gets the contents of a vector as float64
// values.
// The result must not be modified.
func vectorFloats(v anyvec.Vector) []float64 {
	switch d := v.Data().(type) {
	case []float64:
		return d
	case []float32:
		res := make([]float64, len(d))
		for i, x := range d {
			res[i] = float64(x)
		}
		return res
	default:
		panic(fmt.Sprintf("unsupported numeric type: %T", d))
	}
}

// makeVector creates a vector with the creator's numeric
// type from float64 values.
func makeVector(c anyvec.Creator, data []float64) anyvec.Vector {
	return c.MakeVectorData(c.MakeNumericList(data))
}

// floatsMatrix packs a list of rows into a constant
// matrix.
func floatsMatrix(name string, rows [][]float64) (*anydiff.Matrix, error) {
	if len(rows) == 0 {
		return &anydiff.Matrix{
			Data: anydiff.NewConst(floatCreator.MakeVector(0)),
		}, nil
	}
	cols := len(rows[0])
	packed := make([]float64, 0, cols*len(rows))
	for i, row := range rows {
		if len(row) != cols {
			return nil, &ShapeMismatchError{
				Arg:      fmt.Sprintf("%s[%d]", name, i),
				Expected: []int{cols},
				Actual:   []int{len(row)},
			}
		}
		packed = append(packed, row...)
	}
	return &anydiff.Matrix{
		Data: anydiff.NewConst(makeVector(floatCreator, packed)),
		Rows: len(rows),
		Cols: cols,
	}, nil
}

// splitRows unpacks a row-major matrix.
func splitRows(data []float64, cols int) [][]float64 {
	res := make([][]float64, len(data)/cols)
	for i := range res {
		res[i] = append([]float64{}, data[i*cols:(i+1)*cols]...)
	}
	return res
}
