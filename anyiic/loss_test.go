package anyiic

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/serializer"
)

func TestLossOneHot(t *testing.T) {
	x := [][]float64{{1, 0}}
	for _, lambda := range []float64{0, 1, 2} {
		loss, lossNoLambda, err := LossFloats(x, x, lambda, 0)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(lossNoLambda) > 1e-12 {
			t.Errorf("lambda=%f: expected no-lambda loss of 0 but got %e", lambda, lossNoLambda)
		}
		if math.Abs(loss) > 1e-12 {
			t.Errorf("lambda=%f: expected loss of 0 but got %e", lambda, loss)
		}
	}
}

func TestLossLambdaZero(t *testing.T) {
	x := [][]float64{{0.5, 0.5}, {1, 0}}
	joint, err := JointFloats(x, x)
	if err != nil {
		t.Fatal(err)
	}
	var entropy float64
	for _, row := range joint {
		for _, p := range row {
			entropy -= p * math.Log(p)
		}
	}

	loss, lossNoLambda, err := LossFloats(x, x, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(loss-entropy) > testPrecision {
		t.Errorf("expected loss %f but got %f", entropy, loss)
	}
	_, expectedNoLambda, err := LossFloats(x, x, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if lossNoLambda != expectedNoLambda {
		t.Errorf("expected no-lambda loss %f but got %f", expectedNoLambda, lossNoLambda)
	}
	if math.Abs(loss-lossNoLambda) < 1e-3 {
		t.Error("lambda of 0 should differ from lambda of 1")
	}

	zero, _, err := IID{}.LossFloats(x, x)
	if err != nil {
		t.Fatal(err)
	}
	if zero != loss {
		t.Errorf("zero IID should match lambda 0: %f vs %f", zero, loss)
	}
}

func TestNewIID(t *testing.T) {
	x := [][]float64{{0.5, 0.5}, {1, 0}}
	loss, lossNoLambda, err := NewIID().LossFloats(x, x)
	if err != nil {
		t.Fatal(err)
	}
	if loss != lossNoLambda {
		t.Errorf("default lambda should be 1: %f vs %f", loss, lossNoLambda)
	}
}

func TestLossBalanced(t *testing.T) {
	x := [][]float64{{1, 0}, {0, 1}}
	loss, lossNoLambda, err := IID{Lambda: 2}.LossFloats(x, x)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(lossNoLambda+math.Ln2) > 1e-12 {
		t.Errorf("expected no-lambda loss %f but got %f", -math.Ln2, lossNoLambda)
	}
	if math.Abs(loss+3*math.Ln2) > 1e-12 {
		t.Errorf("expected loss %f but got %f", -3*math.Ln2, loss)
	}
}

func TestLossNaive(t *testing.T) {
	x := randomSimplices(6, 3)
	y := randomSimplices(6, 3)
	for _, lambda := range []float64{0.5, 1, 1.7} {
		loss, lossNoLambda, err := LossFloats(x, y, lambda, 1e-3)
		if err != nil {
			t.Fatal(err)
		}
		expected := naiveLoss(x, y, lambda, 1e-3)
		if math.Abs(loss-expected) > testPrecision {
			t.Errorf("lambda=%f: expected %f but got %f", lambda, expected, loss)
		}
		expected = naiveLoss(x, y, 1, 1e-3)
		if math.Abs(lossNoLambda-expected) > testPrecision {
			t.Errorf("lambda=%f: expected no-lambda %f but got %f", lambda, expected, lossNoLambda)
		}
	}
}

func TestLossArgumentSymmetry(t *testing.T) {
	x1 := randomSimplices(1, 10)
	x2 := randomSimplices(1, 10)
	for _, lambda := range []float64{1, 2.5} {
		loss1, noLambda1, err := LossFloats(x1, x2, lambda, 0)
		if err != nil {
			t.Fatal(err)
		}
		loss2, noLambda2, err := LossFloats(x2, x1, lambda, 0)
		if err != nil {
			t.Fatal(err)
		}
		if noLambda1 != noLambda2 {
			t.Errorf("no-lambda losses differ: %f vs %f", noLambda1, noLambda2)
		}
		if loss1 != loss2 {
			t.Errorf("losses differ: %f vs %f", loss1, loss2)
		}
	}
}

func TestLossLambdaOne(t *testing.T) {
	x := randomSimplices(8, 4)
	y := randomSimplices(8, 4)
	loss, lossNoLambda, err := IID{Lambda: 1}.LossFloats(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if loss != lossNoLambda {
		t.Errorf("losses differ: %f vs %f", loss, lossNoLambda)
	}
}

func TestLossErrors(t *testing.T) {
	_, _, err := IID{}.LossFloats([][]float64{{0.9, 0.05}}, [][]float64{{0.5, 0.5}})
	var distErr *InvalidDistributionError
	if !errors.As(err, &distErr) {
		t.Errorf("unexpected error: %v", err)
	}
	_, _, err = IID{}.LossFloats(randomSimplices(1, 10), randomSimplices(5, 10))
	var shapeErr *ShapeMismatchError
	if !errors.As(err, &shapeErr) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMarginals(t *testing.T) {
	pi, pj := Marginals([]float64{
		0.1, 0.2,
		0.3, 0.4,
	}, 2)
	expectedPi := []float64{0.3, 0.3, 0.7, 0.7}
	expectedPj := []float64{0.4, 0.6, 0.4, 0.6}
	for i := range expectedPi {
		if math.Abs(pi[i]-expectedPi[i]) > testPrecision {
			t.Errorf("pi[%d]: expected %f but got %f", i, expectedPi[i], pi[i])
		}
		if math.Abs(pj[i]-expectedPj[i]) > testPrecision {
			t.Errorf("pj[%d]: expected %f but got %f", i, expectedPj[i], pj[i])
		}
	}
}

func TestClamp(t *testing.T) {
	in := []float64{0, 0.5, 1e-20, 0.01}
	out := clamp(in, 0.01)
	if !reflect.DeepEqual(out, []float64{0.01, 0.5, 0.01, 0.01}) {
		t.Errorf("unexpected output: %v", out)
	}
	if !reflect.DeepEqual(in, []float64{0, 0.5, 1e-20, 0.01}) {
		t.Error("input was modified")
	}
}

func TestLossGrad(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	x := randomSimplexVar(c, 6, 3)
	y := randomSimplexVar(c, 6, 3)
	for _, lambda := range []float64{1, 2} {
		checker := &anydifftest.ResChecker{
			F: func() anydiff.Res {
				return newLossRes(newJointRes(x, y, 6, 3), 3, lambda, DefaultEpsilon)
			},
			V:     []*anydiff.Var{x, y},
			Delta: 1e-6,
			Prec:  1e-5,
		}
		checker.FullCheck(t)
	}
}

func TestLossGradClamped(t *testing.T) {
	// Entries of the joint involving the last cluster are
	// far below the clamp floor, so they pass no gradient.
	c := anyvec64.DefaultCreator{}
	x := anydiff.NewVar(c.MakeVectorData(c.MakeNumericList([]float64{
		0.6, 0.4 - 1e-9, 1e-9,
		0.3, 0.7 - 1e-9, 1e-9,
	})))
	checker := &anydifftest.ResChecker{
		F: func() anydiff.Res {
			return newLossRes(newJointRes(x, x, 2, 3), 3, 1.5, 1e-6)
		},
		V:     []*anydiff.Var{x},
		Delta: 1e-7,
		Prec:  1e-4,
	}
	checker.FullCheck(t)
}

func TestIIDSerialize(t *testing.T) {
	iid := IID{Lambda: 1.5, Epsilon: 1e-10}
	data, err := serializer.SerializeAny(iid)
	if err != nil {
		t.Fatal(err)
	}
	var newIID IID
	if err := serializer.DeserializeAny(data, &newIID); err != nil {
		t.Fatal(err)
	}
	if newIID != iid {
		t.Errorf("expected %v but got %v", iid, newIID)
	}
}

// naiveLoss computes the loss directly from its
// definition.
func naiveLoss(x, y [][]float64, lambda, eps float64) float64 {
	k := len(x[0])
	joint := make([][]float64, k)
	for a := range joint {
		joint[a] = make([]float64, k)
	}
	var total float64
	for n := range x {
		for a := 0; a < k; a++ {
			for b := 0; b < k; b++ {
				p := (x[n][a]*y[n][b] + x[n][b]*y[n][a]) / 2
				joint[a][b] += p
				total += p
			}
		}
	}
	pi := make([]float64, k)
	pj := make([]float64, k)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			joint[a][b] /= total
		}
	}
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			pi[a] += joint[a][b]
			pj[b] += joint[a][b]
		}
	}
	var loss float64
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			p := math.Max(joint[a][b], eps)
			loss -= p * (math.Log(p) - lambda*math.Log(math.Max(pj[b], eps)) -
				lambda*math.Log(math.Max(pi[a], eps)))
		}
	}
	return loss
}
