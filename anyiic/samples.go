package anyiic

import (
	"crypto/md5"
	"encoding/binary"
	"math"

	"github.com/unixpickle/anyclust/anysgd"
	"github.com/unixpickle/anyvec"
)

// A Sample is an unlabeled training input.
//
// Label is only used for evaluation.
// It should be -1 if no label is known.
type Sample struct {
	Input anyvec.Vector
	Label int
}

// A SampleList is an anysgd.SampleList that produces
// clustering samples.
type SampleList interface {
	anysgd.SampleList

	GetSample(idx int) (*Sample, error)
}

// A SliceSampleList is a concrete SampleList with
// predetermined samples.
type SliceSampleList []*Sample

// Len returns the number of samples.
func (s SliceSampleList) Len() int {
	return len(s)
}

// Swap swaps two samples.
func (s SliceSampleList) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// Slice copies a sub-slice of the list.
func (s SliceSampleList) Slice(i, j int) anysgd.SampleList {
	return append(SliceSampleList{}, s[i:j]...)
}

// GetSample returns the sample at the index.
func (s SliceSampleList) GetSample(idx int) (*Sample, error) {
	return s[idx], nil
}

// Hash hashes the input of the sample at the index.
// It makes it possible to use anysgd.HashSplit.
func (s SliceSampleList) Hash(idx int) []byte {
	h := md5.New()
	var buf [8]byte
	for _, x := range vectorFloats(s[idx].Input) {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	return h.Sum(nil)
}
