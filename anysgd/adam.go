package anysgd

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

const (
	adamDefaultDecayRate1 = 0.9
	adamDefaultDecayRate2 = 0.999
	adamDefaultDamping    = 1e-8
)

// Adam implements the adaptive moments SGD technique
// described in https://arxiv.org/pdf/1412.6980.pdf.
type Adam struct {
	// These are decay rates for the first and second
	// moments of the gradient.
	// If these are 0, defaults from the Adam paper are
	// used.
	DecayRate1, DecayRate2 float64

	// Damping is used to prevent divisions by zero.
	// If it is 0, a default is used.
	Damping float64

	firstMoment  anydiff.Grad
	secondMoment anydiff.Grad
	iteration    float64
}

// Transform replaces the gradient with the Adam step
// direction and returns it.
func (a *Adam) Transform(grad anydiff.Grad) anydiff.Grad {
	rate1 := valueOrDefault(a.DecayRate1, adamDefaultDecayRate1)
	rate2 := valueOrDefault(a.DecayRate2, adamDefaultDecayRate2)
	damping := valueOrDefault(a.Damping, adamDefaultDamping)

	if a.firstMoment == nil {
		a.firstMoment = zeroGrad(grad)
		a.secondMoment = zeroGrad(grad)
	}
	for variable, vec := range grad {
		c := vec.Creator()

		first := a.firstMoment[variable]
		first.Scale(c.MakeNumeric(rate1))
		scaled := vec.Copy()
		scaled.Scale(c.MakeNumeric(1 - rate1))
		first.Add(scaled)

		second := a.secondMoment[variable]
		second.Scale(c.MakeNumeric(rate2))
		squared := vec.Copy()
		anyvec.Pow(squared, c.MakeNumeric(2))
		squared.Scale(c.MakeNumeric(1 - rate2))
		second.Add(squared)
	}

	a.iteration++
	correction := math.Sqrt(1-math.Pow(rate2, a.iteration)) /
		(1 - math.Pow(rate1, a.iteration))
	for variable, vec := range grad {
		c := vec.Creator()
		vec.Set(a.firstMoment[variable])
		vec.Scale(c.MakeNumeric(correction))

		divisor := a.secondMoment[variable].Copy()
		divisor.AddScalar(c.MakeNumeric(damping))
		anyvec.Pow(divisor, c.MakeNumeric(0.5))
		vec.Div(divisor)
	}

	return grad
}

func zeroGrad(g anydiff.Grad) anydiff.Grad {
	res := anydiff.Grad{}
	for variable, vec := range g {
		res[variable] = vec.Creator().MakeVector(vec.Len())
	}
	return res
}

func valueOrDefault(value, def float64) float64 {
	if value == 0 {
		return def
	}
	return value
}
