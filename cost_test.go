package anyclust

import (
	"math"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvec64"
)

func TestCrossEntropy(t *testing.T) {
	// log(1 + e + e^2) and companions for the logits (0, 1, 2).
	logZ := math.Log(1 + math.E + math.E*math.E)
	t.Run("Unweighted", func(t *testing.T) {
		testCost(t, &CrossEntropy{}, []float32{
			1, 0, 0,
			0, 0.5, 0.5,
		}, []float32{
			0, 1, 2,
			0, 1, 2,
		}, []float32{
			float32(logZ),
			float32(logZ - 1.5),
		}, 2)
	})
	t.Run("Weighted", func(t *testing.T) {
		testCost(t, &CrossEntropy{Weights: []float64{1, 2, 4}}, []float32{
			1, 0, 0,
			0, 0.5, 0.5,
		}, []float32{
			0, 1, 2,
			0, 1, 2,
		}, []float32{
			float32(logZ),
			float32(3*logZ - 5),
		}, 2)
	})
}

func TestCrossEntropyMatchesDotCost(t *testing.T) {
	desired := anydiff.NewConst(anyvec64.DefaultCreator{}.MakeVectorData([]float64{0.2, 0.8, 0, 1}))
	actual := anydiff.NewConst(anyvec64.DefaultCreator{}.MakeVectorData([]float64{-1, 3, 0.5, 0.25}))
	expected := anynet.DotCost{}.Cost(desired, anynet.LogSoftmax.Apply(actual, 2), 2)
	actualCost := (&CrossEntropy{}).Cost(desired, actual, 2)
	for i, x := range expected.Output().Data().([]float64) {
		a := actualCost.Output().Data().([]float64)[i]
		if math.Abs(x-a) > 1e-8 {
			t.Errorf("component %d: expected %f but got %f", i, x, a)
		}
	}
}

func TestCrossEntropyProp(t *testing.T) {
	v1 := anydiff.NewVar(anyvec64.DefaultCreator{}.MakeVectorData([]float64{1.5, 2, 2.5, 3, 3.5, 4}))
	v2 := anydiff.NewVar(anyvec64.DefaultCreator{}.MakeVectorData([]float64{0, 1, 0, 0.25, 0.25, 0.5}))
	checker := &anydifftest.ResChecker{
		F: func() anydiff.Res {
			return (&CrossEntropy{Weights: []float64{1, 0.5, 3}}).Cost(v2, v1, 2)
		},
		V: []*anydiff.Var{v1, v2},
		Delta: 1e-6,
		Prec:  1e-5,
	}
	checker.FullCheck(t)
}

func TestSoftmax(t *testing.T) {
	in := anydiff.NewConst(anyvec32.MakeVectorData([]float32{0, 0, math.Ln2, 0}))
	out := Softmax{}.Apply(in, 2).Output().Data().([]float32)
	expected := []float32{0.5, 0.5, 2.0 / 3, 1.0 / 3}
	for i, x := range expected {
		if math.Abs(float64(x-out[i])) > 1e-4 {
			t.Errorf("component %d: expected %f but got %f", i, x, out[i])
		}
	}
}

func testCost(t *testing.T, c anynet.Cost, desired, output, expected []float32, n int) {
	desiredRes := anydiff.NewConst(anyvec32.MakeVectorData(desired))
	outputRes := anydiff.NewConst(anyvec32.MakeVectorData(output))

	actual := c.Cost(desiredRes, outputRes, n).Output().Data().([]float32)

	for i, x := range expected {
		a := actual[i]
		if math.IsNaN(float64(a)) || math.Abs(float64(x-a)) > 1e-3 {
			t.Errorf("component %d: expected %f but got %f", i, x, a)
		}
	}
}
