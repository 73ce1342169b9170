// Package anytune fine-tunes clustering networks on the
// labeled subset of a dataset.
package anytune

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/unixpickle/anyclust"
	"github.com/unixpickle/anyclust/anyiic"
	"github.com/unixpickle/anyclust/anysgd"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// A Batch stores inputs and one-hot targets in a packed
// format.
type Batch struct {
	Inputs  *anydiff.Const
	Targets *anydiff.Const
	Num     int
}

// A Trainer constructs batches, computes gradients, and
// tallies up costs for supervised training on labeled
// anyiic samples.
type Trainer struct {
	// Net produces one vector of logits per input.
	Net anynet.Layer

	// Cost compares one-hot targets to the logits.
	// If it is nil, an unweighted anyclust.CrossEntropy is
	// used.
	Cost anynet.Cost

	NumClasses int
	Params     []*anydiff.Var

	// Average indicates whether or not the total cost
	// should be averaged over the batch.
	Average bool

	// After every gradient computation, LastCost is set to
	// the cost from the batch.
	LastCost float64

	// MaxGos specifies the maximum goroutines to use
	// simultaneously for fetching samples.
	// If it is 0, GOMAXPROCS is used.
	MaxGos int
}

// Fetch produces a *Batch for the subset of samples.
// The s argument must implement anyiic.SampleList, and
// every sample must have a label.
func (t *Trainer) Fetch(s anysgd.SampleList) (anysgd.Batch, error) {
	if s.Len() == 0 {
		return nil, errors.New("fetch batch: empty batch")
	}

	l := s.(anyiic.SampleList)
	ins := make([]anyvec.Vector, l.Len())
	targets := make([]anyvec.Vector, l.Len())

	idxChan := make(chan int, l.Len())
	for i := 0; i < l.Len(); i++ {
		idxChan <- i
	}
	close(idxChan)

	maxGos := t.MaxGos
	if maxGos == 0 {
		maxGos = runtime.GOMAXPROCS(0)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, maxGos)
	for i := 0; i < maxGos; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxChan {
				sample, err := l.GetSample(i)
				if err == nil {
					targets[i], err = t.oneHot(sample)
				}
				if err != nil {
					errChan <- essentials.AddCtx("fetch batch", err)
					return
				}
				ins[i] = sample.Input
			}
		}()
	}

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, err
	}

	c := ins[0].Creator()
	return &Batch{
		Inputs:  anydiff.NewConst(c.Concat(ins...)),
		Targets: anydiff.NewConst(c.Concat(targets...)),
		Num:     l.Len(),
	}, nil
}

// TotalCost computes the total cost for the *Batch.
func (t *Trainer) TotalCost(batch anysgd.Batch) anydiff.Res {
	b := batch.(*Batch)
	outRes := t.Net.Apply(b.Inputs, b.Num)
	cost := t.cost().Cost(b.Targets, outRes, b.Num)
	total := anydiff.Sum(cost)
	if t.Average {
		divisor := 1 / float64(b.Num)
		return anydiff.Scale(total, total.Output().Creator().MakeNumeric(divisor))
	}
	return total
}

// Gradient computes the gradient for the batch's cost.
// It also sets t.LastCost to the numerical value of the
// total cost.
//
// The b argument must be a *Batch.
func (t *Trainer) Gradient(b anysgd.Batch) (anydiff.Grad, error) {
	cost := t.TotalCost(b)
	switch data := cost.Output().Data().(type) {
	case []float32:
		t.LastCost = float64(data[0])
	case []float64:
		t.LastCost = data[0]
	default:
		return nil, fmt.Errorf("fine-tune gradient: unsupported numeric type %T", data)
	}

	res := anydiff.NewGrad(t.Params...)
	c := cost.Output().Creator()
	cost.Propagate(c.MakeVectorData(c.MakeNumericList([]float64{1})), res)
	return res, nil
}

func (t *Trainer) cost() anynet.Cost {
	if t.Cost == nil {
		return &anyclust.CrossEntropy{}
	}
	return t.Cost
}

func (t *Trainer) oneHot(sample *anyiic.Sample) (anyvec.Vector, error) {
	if sample.Label < 0 || sample.Label >= t.NumClasses {
		return nil, fmt.Errorf("label %d out of range [0, %d)", sample.Label, t.NumClasses)
	}
	data := make([]float64, t.NumClasses)
	data[sample.Label] = 1
	c := sample.Input.Creator()
	return c.MakeVectorData(c.MakeNumericList(data)), nil
}

// Labeled returns the samples which have a label.
func Labeled(samples anyiic.SliceSampleList) anyiic.SliceSampleList {
	var res anyiic.SliceSampleList
	for _, s := range samples {
		if s.Label >= 0 {
			res = append(res, s)
		}
	}
	return res
}
