package anysgd

import "github.com/unixpickle/anydiff"

// A Transformer transforms gradients before they are
// applied, e.g. to implement adaptive step sizes.
//
// After its first call, a Transformer expects to see
// gradients for the same variables.
// A Transformer may modify its input and return it.
// Its output is only valid until the next call.
type Transformer interface {
	Transform(g anydiff.Grad) anydiff.Grad
}

// A Batch is an immutable, fully-loaded mini-batch.
//
// Batches are obtained using a Fetcher and then used as
// arguments to a Gradienter.
type Batch interface{}

// A Fetcher loads Batches for SampleLists.
//
// SGD calls Fetch on a separate goroutine, so that the
// next Batch is ready when the previous one is done.
type Fetcher interface {
	Fetch(s SampleList) (Batch, error)
}

// A Gradienter computes a gradient for a Batch.
//
// An error is fatal: SGD stops and returns it.
// The same gradient instance may be re-used by successive
// calls to Gradient.
type Gradienter interface {
	Gradient(b Batch) (anydiff.Grad, error)
}

// A Rater determines the learning rate given the epoch.
// An "epoch" is a full pass over the training set, so
// fractional epochs are possible.
type Rater interface {
	Rate(epoch float64) float64
}

// A SampleList represents a list of training samples.
type SampleList interface {
	// Len returns the number of samples.
	Len() int

	// Swap swaps two samples.
	Swap(i, j int)

	// Slice generates a shallow copy of a subset of the
	// list.
	Slice(i, j int) SampleList
}
