package anyiic

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// Joint computes the joint distribution of two batches of
// probability vectors.
//
// Both matrices must have one row per batch item and one
// column per cluster, and every row must be a probability
// vector.
// The result is a row-major k-by-k matrix, where k is the
// number of columns.
// It is symmetric, and its entries add up to 1.
//
// Shapes are checked before distributions, and no part of
// the result is computed if either check fails.
func Joint(xOut, xTfOut *anydiff.Matrix) (anydiff.Res, error) {
	if err := checkPair(xOut, xTfOut); err != nil {
		return nil, err
	}
	return newJointRes(xOut.Data, xTfOut.Data, xOut.Rows, xOut.Cols), nil
}

// JointFloats is like Joint, but it operates on plain
// lists of rows.
func JointFloats(xOut, xTfOut [][]float64) ([][]float64, error) {
	x, err := floatsMatrix("x_out", xOut)
	if err != nil {
		return nil, err
	}
	y, err := floatsMatrix("x_tf_out", xTfOut)
	if err != nil {
		return nil, err
	}
	joint, err := Joint(x, y)
	if err != nil {
		return nil, err
	}
	return splitRows(vectorFloats(joint.Output()), x.Cols), nil
}

func checkPair(xOut, xTfOut *anydiff.Matrix) error {
	if err := checkPacked("x_out", xOut); err != nil {
		return err
	}
	if err := checkPacked("x_tf_out", xTfOut); err != nil {
		return err
	}
	if xOut.Rows != xTfOut.Rows || xOut.Cols != xTfOut.Cols {
		return &ShapeMismatchError{
			Arg:      "x_tf_out",
			Expected: []int{xOut.Rows, xOut.Cols},
			Actual:   []int{xTfOut.Rows, xTfOut.Cols},
		}
	}
	if xOut.Rows == 0 {
		return ErrEmptyBatch
	}
	if err := CheckSimplex("x_out", xOut); err != nil {
		return err
	}
	return CheckSimplex("x_tf_out", xTfOut)
}

type jointRes struct {
	X    anydiff.Res
	Y    anydiff.Res
	Rows int
	Cols int

	// Total is the sum of the symmetrized accumulator,
	// before normalization.
	Total float64

	Probs  []float64
	OutVec anyvec.Vector
	V      anydiff.VarSet
}

// newJointRes computes the joint distribution without
// validating its inputs.
func newJointRes(x, y anydiff.Res, rows, cols int) *jointRes {
	xData := vectorFloats(x.Output())
	yData := vectorFloats(y.Output())

	acc := make([]float64, cols*cols)
	for n := 0; n < rows; n++ {
		xRow := xData[n*cols : (n+1)*cols]
		yRow := yData[n*cols : (n+1)*cols]
		for a, xa := range xRow {
			accRow := acc[a*cols : (a+1)*cols]
			for b, yb := range yRow {
				accRow[b] += xa * yb
			}
		}
	}

	sym := make([]float64, len(acc))
	var total float64
	for a := 0; a < cols; a++ {
		for b := 0; b < cols; b++ {
			sym[a*cols+b] = (acc[a*cols+b] + acc[b*cols+a]) / 2
		}
	}
	for _, s := range sym {
		total += s
	}
	for i := range sym {
		sym[i] /= total
	}

	return &jointRes{
		X:      x,
		Y:      y,
		Rows:   rows,
		Cols:   cols,
		Total:  total,
		Probs:  sym,
		OutVec: makeVector(x.Output().Creator(), sym),
		V:      anydiff.MergeVarSets(x.Vars(), y.Vars()),
	}
}

func (j *jointRes) Output() anyvec.Vector {
	return j.OutVec
}

func (j *jointRes) Vars() anydiff.VarSet {
	return j.V
}

func (j *jointRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	upstream := vectorFloats(u)
	k := j.Cols

	// Normalization: each output is sym/total, and total
	// depends on every entry.
	var dot float64
	for i, x := range upstream {
		dot += x * j.Probs[i]
	}
	symGrad := make([]float64, len(upstream))
	for i, x := range upstream {
		symGrad[i] = (x - dot) / j.Total
	}

	accGrad := make([]float64, len(symGrad))
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			accGrad[a*k+b] = (symGrad[a*k+b] + symGrad[b*k+a]) / 2
		}
	}

	c := j.OutVec.Creator()
	if g.Intersects(j.X.Vars()) {
		yData := vectorFloats(j.Y.Output())
		xGrad := make([]float64, j.Rows*k)
		for n := 0; n < j.Rows; n++ {
			yRow := yData[n*k : (n+1)*k]
			for a := 0; a < k; a++ {
				var sum float64
				for b, yb := range yRow {
					sum += accGrad[a*k+b] * yb
				}
				xGrad[n*k+a] = sum
			}
		}
		j.X.Propagate(makeVector(c, xGrad), g)
	}
	if g.Intersects(j.Y.Vars()) {
		xData := vectorFloats(j.X.Output())
		yGrad := make([]float64, j.Rows*k)
		for n := 0; n < j.Rows; n++ {
			xRow := xData[n*k : (n+1)*k]
			for b := 0; b < k; b++ {
				var sum float64
				for a, xa := range xRow {
					sum += accGrad[a*k+b] * xa
				}
				yGrad[n*k+b] = sum
			}
		}
		j.Y.Propagate(makeVector(c, yGrad), g)
	}
}
