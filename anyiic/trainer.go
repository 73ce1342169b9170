package anyiic

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/unixpickle/anyclust/anyaug"
	"github.com/unixpickle/anyclust/anysgd"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// A Batch stores a batch of inputs alongside augmented
// versions of the same inputs, in a packed format.
type Batch struct {
	Inputs    *anydiff.Const
	Augmented *anydiff.Const
	Num       int
}

// A Trainer creates batches, computes gradients, and adds
// up costs for IIC.
type Trainer struct {
	// Net maps inputs to probabilities over clusters,
	// e.g. by ending in anyclust.Softmax.
	Net anynet.Layer

	// Augment produces the second view of every input.
	// If it is nil, the second view is a copy of the
	// input.
	// It is called from up to MaxGos goroutines at once.
	Augment anyaug.Augmenter

	// Cost configures the loss.
	// The zero value has Lambda 0; use NewIID for the
	// usual weighting.
	Cost   IID
	Params []*anydiff.Var

	// After every gradient computation, LastCost and
	// LastCostNoLambda are set to the two IIC losses from
	// the batch.
	LastCost         float64
	LastCostNoLambda float64

	// MaxGos specifies the maximum goroutines to use
	// simultaneously for fetching and augmenting samples.
	// If it is 0, GOMAXPROCS is used.
	MaxGos int
}

// Fetch produces a *Batch for the subset of samples.
// The s argument must implement SampleList.
// The batch may not be empty.
func (t *Trainer) Fetch(s anysgd.SampleList) (anysgd.Batch, error) {
	if s.Len() == 0 {
		return nil, errors.New("fetch batch: empty batch")
	}

	l := s.(SampleList)
	ins := make([]anyvec.Vector, l.Len())
	augs := make([]anyvec.Vector, l.Len())

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
				if err != nil {
					errChan <- essentials.AddCtx("fetch batch", err)
					return
				}
				ins[i] = sample.Input
				if t.Augment == nil {
					augs[i] = sample.Input.Copy()
				} else {
					augs[i] = t.Augment.Augment(sample.Input)
				}
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
		Inputs:    anydiff.NewConst(c.Concat(ins...)),
		Augmented: anydiff.NewConst(c.Concat(augs...)),
		Num:       l.Len(),
	}, nil
}

// TotalCost applies the network to both views of the
// batch and computes both IIC losses.
//
// See IID.Loss for details.
func (t *Trainer) TotalCost(b *Batch) (loss, lossNoLambda anydiff.Res, err error) {
	outs := t.Net.Apply(b.Inputs, b.Num)
	augOuts := t.Net.Apply(b.Augmented, b.Num)
	if outs.Output().Len()%b.Num != 0 {
		panic(fmt.Sprintf("output length %d not divisible by batch size %d",
			outs.Output().Len(), b.Num))
	}
	cols := outs.Output().Len() / b.Num
	return t.Cost.Loss(
		&anydiff.Matrix{Data: outs, Rows: b.Num, Cols: cols},
		&anydiff.Matrix{Data: augOuts, Rows: b.Num, Cols: cols},
	)
}

// Gradient computes the gradient of the weighted loss for
// the batch.
// It also sets t.LastCost and t.LastCostNoLambda.
//
// The b argument must be a *Batch.
func (t *Trainer) Gradient(b anysgd.Batch) (anydiff.Grad, error) {
	loss, lossNoLambda, err := t.TotalCost(b.(*Batch))
	if err != nil {
		return nil, essentials.AddCtx("IIC gradient", err)
	}
	t.LastCost = vectorFloats(loss.Output())[0]
	t.LastCostNoLambda = vectorFloats(lossNoLambda.Output())[0]

	res := anydiff.NewGrad(t.Params...)
	c := loss.Output().Creator()
	loss.Propagate(makeVector(c, []float64{1}), res)
	return res, nil
}

// Assign computes the most likely cluster for each input.
//
// The net is treated the same way as Trainer.Net.
func Assign(net anynet.Layer, inputs []anyvec.Vector) []int {
	if len(inputs) == 0 {
		return nil
	}
	joined := inputs[0].Creator().Concat(inputs...)
	outs := vectorFloats(net.Apply(anydiff.NewConst(joined), len(inputs)).Output())
	cols := len(outs) / len(inputs)
	res := make([]int, len(inputs))
	for i := range res {
		row := outs[i*cols : (i+1)*cols]
		for j, x := range row {
			if x > row[res[i]] {
				res[i] = j
			}
		}
	}
	return res
}
