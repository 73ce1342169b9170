package anyclust

import (
	"fmt"

	"github.com/unixpickle/anydiff"
)

// CrossEntropy is an anynet.Cost which applies a softmax
// to the actual outputs and measures the cross-entropy
// against the desired probabilities.
//
// It is useful for supervised fine-tuning of a clustering
// head on the few labeled samples available.
type CrossEntropy struct {
	// Weights optionally scales the cost of each class.
	// If it is nil, every class has weight 1.
	Weights []float64
}

// Cost computes the weighted cross-entropy for each item
// in the batch.
func (c *CrossEntropy) Cost(desired, actual anydiff.Res, n int) anydiff.Res {
	cols := actual.Output().Len() / n
	if c.Weights != nil {
		if len(c.Weights) != cols {
			panic(fmt.Sprintf("expected %d class weights but got %d", cols, len(c.Weights)))
		}
		desired = anydiff.Mul(desired, c.repeatedWeights(actual, n))
	}
	logProbs := anydiff.LogSoftmax(actual, cols)
	dots := anydiff.SumCols(&anydiff.Matrix{
		Data: anydiff.Mul(desired, logProbs),
		Rows: n,
		Cols: cols,
	})
	return anydiff.Scale(dots, dots.Output().Creator().MakeNumeric(-1))
}

func (c *CrossEntropy) repeatedWeights(actual anydiff.Res, n int) anydiff.Res {
	cr := actual.Output().Creator()
	weights := make([]float64, 0, len(c.Weights)*n)
	for i := 0; i < n; i++ {
		weights = append(weights, c.Weights...)
	}
	return anydiff.NewConst(cr.MakeVectorData(cr.MakeNumericList(weights)))
}
