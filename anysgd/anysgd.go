// Package anysgd provides a stochastic gradient descent
// loop for training clustering networks.
package anysgd

import (
	"errors"
	"sync"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/essentials"
)

// SGD performs stochastic gradient descent.
type SGD struct {
	// Fetcher loads each mini-batch.
	Fetcher Fetcher

	// Gradienter computes initial, untransformed gradients
	// for each mini-batch.
	Gradienter Gradienter

	// Transformer, if non-nil, is used to transform each
	// gradient before the step.
	Transformer Transformer

	// Samples is the list of training samples.
	// It is re-shuffled before every epoch.
	//
	// The list may not be empty.
	Samples SampleList

	// Rater determines the learning rate for each step.
	Rater Rater

	// StatusFunc, if non-nil, is called before every
	// iteration with the next mini-batch.
	StatusFunc func(b Batch)

	// BatchSize is the mini-batch size.
	// If it is 0, then the entire sample list is used at
	// every iteration.
	BatchSize int

	// NumProcessed is the number of samples that have been
	// passed to Gradienter so far.
	// It is used to compute the epoch for Rater.
	NumProcessed int
}

// Run runs SGD until done is closed or an error occurs.
//
// While Run is executing, s.Samples is modified by a
// background goroutine.
// That goroutine has finished by the time Run returns.
func (s *SGD) Run(done <-chan struct{}) error {
	if s.Samples.Len() == 0 {
		return errors.New("run SGD: empty sample list")
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	batches := s.fetchBatches(stop, &wg)
	defer wg.Wait()
	defer close(stop)

	for {
		select {
		case <-done:
			return nil
		default:
		}

		var next *fetchedBatch
		select {
		case <-done:
			return nil
		case next = <-batches:
		}
		if next.Err != nil {
			return essentials.AddCtx("run SGD", next.Err)
		}

		if s.StatusFunc != nil {
			s.StatusFunc(next.Batch)
			select {
			case <-done:
				return nil
			default:
			}
		}

		grad, err := s.Gradienter.Gradient(next.Batch)
		if err != nil {
			return essentials.AddCtx("run SGD", err)
		}
		if s.Transformer != nil {
			grad = s.Transformer.Transform(grad)
		}

		scaleGrad(grad, -s.Rater.Rate(s.Epoch()))
		grad.AddToVars()

		s.NumProcessed += next.Size
	}
}

// Epoch returns the (fractional) number of passes that
// have been made over the samples.
func (s *SGD) Epoch() float64 {
	return float64(s.NumProcessed) / float64(s.Samples.Len())
}

type fetchedBatch struct {
	Batch Batch
	Size  int
	Err   error
}

func (s *SGD) fetchBatches(stop <-chan struct{}, wg *sync.WaitGroup) <-chan *fetchedBatch {
	res := make(chan *fetchedBatch, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		idx := s.Samples.Len()
		for {
			if idx == s.Samples.Len() {
				Shuffle(s.Samples)
				idx = 0
			}
			size := s.batchSize(s.Samples.Len() - idx)
			batch, err := s.Fetcher.Fetch(s.Samples.Slice(idx, idx+size))
			idx += size
			select {
			case res <- &fetchedBatch{Batch: batch, Size: size, Err: err}:
			case <-stop:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return res
}

func (s *SGD) batchSize(remaining int) int {
	if s.BatchSize == 0 || s.BatchSize > remaining {
		return remaining
	}
	return s.BatchSize
}

func scaleGrad(g anydiff.Grad, scale float64) {
	for _, v := range g {
		g.Scale(v.Creator().MakeNumeric(scale))
		return
	}
}
