// Package anyclust provides building blocks for training
// neural networks to cluster unlabeled data.
// Sub-packages implement the clustering objectives,
// the training loop, data augmentation, and evaluation
// meters.
package anyclust

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/serializer"
)

func init() {
	var s Softmax
	serializer.RegisterTypedDeserializer(s.SerializerType(), DeserializeSoftmax)
}

// Softmax is a layer which turns each vector in a batch
// into a probability distribution.
//
// It is meant to be the final layer of a clustering head,
// since clustering objectives operate on probabilities
// rather than log probabilities.
type Softmax struct{}

// DeserializeSoftmax deserializes a Softmax.
func DeserializeSoftmax(d []byte) (Softmax, error) {
	if len(d) != 0 {
		return Softmax{}, fmt.Errorf("deserialize Softmax: unexpected data length %d", len(d))
	}
	return Softmax{}, nil
}

// Apply applies the softmax to every vector in the batch.
func (s Softmax) Apply(in anydiff.Res, n int) anydiff.Res {
	inLen := in.Output().Len()
	if inLen%n != 0 {
		panic("batch size must divide input length")
	}
	return anydiff.Exp(anydiff.LogSoftmax(in, inLen/n))
}

// SerializerType returns the unique ID used to serialize
// a Softmax.
func (s Softmax) SerializerType() string {
	return "github.com/unixpickle/anyclust.Softmax"
}

// Serialize serializes the layer.
func (s Softmax) Serialize() ([]byte, error) {
	return []byte{}, nil
}
