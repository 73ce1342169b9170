// Package anyaug provides random input transformations
// for producing alternative views of training samples.
package anyaug

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/unixpickle/anyvec"
)

// An Augmenter produces a randomly transformed copy of an
// input.
//
// Augment must not modify its input.
// The augmenters in this package may be used from
// multiple goroutines at once, even when they share a
// seeded random source.
type Augmenter interface {
	Augment(in anyvec.Vector) anyvec.Vector
}

// A Pipeline applies a list of Augmenters in order.
type Pipeline []Augmenter

// Augment applies every augmenter in the pipeline.
// An empty pipeline returns a copy of the input.
func (p Pipeline) Augment(in anyvec.Vector) anyvec.Vector {
	if len(p) == 0 {
		return in.Copy()
	}
	for _, a := range p {
		in = a.Augment(in)
	}
	return in
}

// Noise adds independent Gaussian noise to every
// component.
type Noise struct {
	Stddev float64

	// Rand is the source of randomness.
	// If it is nil, the global source is used.
	Rand *rand.Rand
}

// Augment adds noise to a copy of in.
func (n *Noise) Augment(in anyvec.Vector) anyvec.Vector {
	data := vectorFloats(in)
	res := make([]float64, len(data))
	for i, x := range data {
		res[i] = x + normFloat(n.Rand)*n.Stddev
	}
	return makeVector(in.Creator(), res)
}

// Clip clamps every component to a range.
type Clip struct {
	Min, Max float64
}

// Augment clamps a copy of in.
func (c *Clip) Augment(in anyvec.Vector) anyvec.Vector {
	data := vectorFloats(in)
	res := make([]float64, len(data))
	for i, x := range data {
		if x < c.Min {
			x = c.Min
		} else if x > c.Max {
			x = c.Max
		}
		res[i] = x
	}
	return makeVector(in.Creator(), res)
}

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

func makeVector(c anyvec.Creator, data []float64) anyvec.Vector {
	return c.MakeVectorData(c.MakeNumericList(data))
}

// randLock guards every non-nil *rand.Rand used by an
// augmenter, since rand.Rand is not safe for concurrent
// use.
var randLock sync.Mutex

func normFloat(r *rand.Rand) float64 {
	if r == nil {
		return rand.NormFloat64()
	}
	randLock.Lock()
	defer randLock.Unlock()
	return r.NormFloat64()
}

func intn(r *rand.Rand, n int) int {
	if r == nil {
		return rand.Intn(n)
	}
	randLock.Lock()
	defer randLock.Unlock()
	return r.Intn(n)
}

func uniform(r *rand.Rand) float64 {
	if r == nil {
		return rand.Float64()
	}
	randLock.Lock()
	defer randLock.Unlock()
	return r.Float64()
}
