package anyiic

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// DefaultLambda is the marginal weight used by NewIID.
const DefaultLambda = 1.0

// DefaultEpsilon is the clamp floor used when IID.Epsilon
// is 0.
// It is the machine epsilon for float64.
const DefaultEpsilon = 2.220446049250313e-16

func init() {
	var i IID
	serializer.RegisterTypedDeserializer(i.SerializerType(), DeserializeIID)
}

// IID configures the IIC loss.
//
// An IID carries no state besides its configuration, so a
// single value may be used from many goroutines at once.
type IID struct {
	// Lambda weights the marginal entropy terms.
	// Values above 1 push towards more balanced cluster
	// assignments.
	// It is used as-is, so 0 drops the marginal terms
	// entirely; NewIID uses DefaultLambda.
	Lambda float64

	// Epsilon is the floor that probabilities are clamped
	// to before taking logarithms.
	// If it is 0, DefaultEpsilon is used.
	Epsilon float64
}

// NewIID creates an IID with DefaultLambda and
// DefaultEpsilon.
func NewIID() IID {
	return IID{Lambda: DefaultLambda, Epsilon: DefaultEpsilon}
}

// DeserializeIID deserializes an IID.
func DeserializeIID(d []byte) (IID, error) {
	var res IID
	if err := serializer.DeserializeAny(d, &res.Lambda, &res.Epsilon); err != nil {
		return IID{}, essentials.AddCtx("deserialize IID", err)
	}
	return res, nil
}

// Loss computes the IIC loss for two batches of
// probability vectors.
//
// The first result is weighted by Lambda.
// The second result always uses a weight of 1, making it
// the negative mutual information of the joint
// distribution.
// Both results have a single component.
//
// See Joint for the requirements on the inputs.
func (i IID) Loss(xOut, xTfOut *anydiff.Matrix) (loss, lossNoLambda anydiff.Res, err error) {
	joint, err := Joint(xOut, xTfOut)
	if err != nil {
		return nil, nil, err
	}
	loss = newLossRes(joint, xOut.Cols, i.Lambda, i.epsilon())
	lossNoLambda = newLossRes(joint, xOut.Cols, 1, i.epsilon())
	return
}

// LossFloats is like Loss, but it operates on plain lists
// of rows.
func (i IID) LossFloats(xOut, xTfOut [][]float64) (loss, lossNoLambda float64, err error) {
	x, err := floatsMatrix("x_out", xOut)
	if err != nil {
		return 0, 0, err
	}
	y, err := floatsMatrix("x_tf_out", xTfOut)
	if err != nil {
		return 0, 0, err
	}
	lossRes, noLambdaRes, err := i.Loss(x, y)
	if err != nil {
		return 0, 0, err
	}
	return vectorFloats(lossRes.Output())[0], vectorFloats(noLambdaRes.Output())[0], nil
}

// LossFloats computes the IIC loss with the given
// configuration.
// It is equivalent to IID{lambda, eps}.LossFloats, so
// lambda is taken exactly and only an eps of 0 falls back
// to DefaultEpsilon.
func LossFloats(xOut, xTfOut [][]float64, lambda, eps float64) (loss, lossNoLambda float64,
	err error) {
	return IID{Lambda: lambda, Epsilon: eps}.LossFloats(xOut, xTfOut)
}

// SerializerType returns the unique ID used to serialize
// an IID with the serializer package.
func (i IID) SerializerType() string {
	return "github.com/unixpickle/anyclust/anyiic.IID"
}

// Serialize serializes the configuration.
func (i IID) Serialize() ([]byte, error) {
	return serializer.SerializeAny(i.Lambda, i.Epsilon)
}

func (i IID) epsilon() float64 {
	if i.Epsilon == 0 {
		return DefaultEpsilon
	}
	return i.Epsilon
}

// Marginals computes the row and column marginals of a
// row-major k-by-k joint distribution.
//
// Both results are k-by-k, row-major.
// Every row of pi is constant, holding the sum of the
// corresponding row of joint.
// Every column of pj is constant, holding the sum of the
// corresponding column of joint.
func Marginals(joint []float64, k int) (pi, pj []float64) {
	rowSums := make([]float64, k)
	colSums := make([]float64, k)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			rowSums[a] += joint[a*k+b]
			colSums[b] += joint[a*k+b]
		}
	}
	pi = make([]float64, k*k)
	pj = make([]float64, k*k)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			pi[a*k+b] = rowSums[a]
			pj[a*k+b] = colSums[b]
		}
	}
	return
}

// clamp returns a copy of v with every entry below eps
// replaced by eps.
func clamp(v []float64, eps float64) []float64 {
	res := make([]float64, len(v))
	for i, x := range v {
		if x < eps {
			res[i] = eps
		} else {
			res[i] = x
		}
	}
	return res
}

type lossRes struct {
	Joint   anydiff.Res
	K       int
	Lambda  float64
	Epsilon float64
	OutVec  anyvec.Vector
}

// newLossRes computes the clamped loss from a joint
// distribution.
//
// The joint and both marginals are clamped independently,
// with the marginals derived from the unclamped joint.
func newLossRes(joint anydiff.Res, k int, lambda, eps float64) *lossRes {
	probs := vectorFloats(joint.Output())
	pi, pj := Marginals(probs, k)
	probs, pi, pj = clamp(probs, eps), clamp(pi, eps), clamp(pj, eps)

	var sum float64
	for i, p := range probs {
		sum += p * (math.Log(p) - lambda*math.Log(pj[i]) - lambda*math.Log(pi[i]))
	}

	c := joint.Output().Creator()
	return &lossRes{
		Joint:   joint,
		K:       k,
		Lambda:  lambda,
		Epsilon: eps,
		OutVec:  makeVector(c, []float64{-sum}),
	}
}

func (l *lossRes) Output() anyvec.Vector {
	return l.OutVec
}

func (l *lossRes) Vars() anydiff.VarSet {
	return l.Joint.Vars()
}

func (l *lossRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	if !g.Intersects(l.Joint.Vars()) {
		return
	}
	upstream := vectorFloats(u)[0]
	k := l.K

	raw := vectorFloats(l.Joint.Output())
	rawPi, rawPj := Marginals(raw, k)
	probs := clamp(raw, l.Epsilon)
	pi := clamp(rawPi, l.Epsilon)
	pj := clamp(rawPj, l.Epsilon)

	jointGrad := make([]float64, len(raw))
	rowGrad := make([]float64, k)
	colGrad := make([]float64, k)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			i := a*k + b
			p := probs[i]
			if raw[i] >= l.Epsilon {
				jointGrad[i] = l.Lambda*(math.Log(pj[i])+math.Log(pi[i])) - math.Log(p) - 1
			}
			if rawPi[i] >= l.Epsilon {
				rowGrad[a] += l.Lambda * p / pi[i]
			}
			if rawPj[i] >= l.Epsilon {
				colGrad[b] += l.Lambda * p / pj[i]
			}
		}
	}
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			i := a*k + b
			jointGrad[i] = upstream * (jointGrad[i] + rowGrad[a] + colGrad[b])
		}
	}

	l.Joint.Propagate(makeVector(l.OutVec.Creator(), jointGrad), g)
}
