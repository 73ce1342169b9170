package anysgd

import "encoding/binary"

// A Hasher is a SampleList with the added capability to
// produce a hash for a given sample.
type Hasher interface {
	SampleList
	Hash(i int) []byte
}

// HashSplit partitions a Hasher.
// It can be used to deterministically split data up into
// separate validation and training samples, since a
// sample's side depends only on its hash.
//
// The Hasher h is re-ordered so that the left partition
// comes first.
//
// The leftRatio argument specifies the expected fraction
// of samples that should end up on the left partition.
func HashSplit(h Hasher, leftRatio float64) (left, right SampleList) {
	var numLeft int
	for i := 0; i < h.Len(); i++ {
		if hashFraction(h.Hash(i)) < leftRatio {
			h.Swap(numLeft, i)
			numLeft++
		}
	}
	return h.Slice(0, numLeft), h.Slice(numLeft, h.Len())
}

// hashFraction maps the leading bytes of a hash into the
// range [0, 1).
func hashFraction(hash []byte) float64 {
	var buf [8]byte
	copy(buf[:], hash)
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}
