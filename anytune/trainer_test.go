package anytune

import (
	"math/rand"
	"testing"

	"github.com/unixpickle/anyclust/anyiic"
	"github.com/unixpickle/anyclust/anysgd"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
)

func TestTrainerFetch(t *testing.T) {
	c := anyvec32.DefaultCreator{}
	trainer := &Trainer{NumClasses: 3}
	samples := anyiic.SliceSampleList{
		{Input: c.MakeVectorData([]float32{1, 2}), Label: 2},
		{Input: c.MakeVectorData([]float32{3, 4}), Label: 0},
	}
	batch, err := trainer.Fetch(samples)
	if err != nil {
		t.Fatal(err)
	}
	targets := batch.(*Batch).Targets.Output().Data().([]float32)
	expected := []float32{0, 0, 1, 1, 0, 0}
	for i, x := range expected {
		if targets[i] != x {
			t.Fatalf("expected targets %v but got %v", expected, targets)
		}
	}

	unlabeled := append(samples, &anyiic.Sample{Input: c.MakeVectorData([]float32{5, 6}), Label: -1})
	if _, err := trainer.Fetch(unlabeled); err == nil {
		t.Error("expected error for unlabeled sample")
	}
	if len(Labeled(unlabeled)) != 2 {
		t.Error("unexpected labeled count")
	}
}

func TestTrainerTrain(t *testing.T) {
	c := anyvec32.DefaultCreator{}
	net := anynet.Net{anynet.NewFC(c, 2, 2)}
	trainer := &Trainer{
		Net:        net,
		NumClasses: 2,
		Params:     net.Parameters(),
		Average:    true,
	}

	var samples anyiic.SliceSampleList
	var inputs []anyvec.Vector
	var labels []int
	for i := 0; i < 40; i++ {
		label := i % 2
		x := float32(label*4-2) + float32(rand.NormFloat64())*0.5
		in := c.MakeVectorData([]float32{x, float32(rand.NormFloat64())})
		inputs = append(inputs, in)
		labels = append(labels, label)
		samples = append(samples, &anyiic.Sample{Input: in, Label: label})
	}

	s := &anysgd.SGD{
		Fetcher:     trainer,
		Gradienter:  trainer,
		Transformer: &anysgd.Adam{},
		Samples:     samples,
		Rater:       anysgd.ConstRater(0.05),
		BatchSize:   10,
	}
	done := make(chan struct{})
	var iter int
	s.StatusFunc = func(b anysgd.Batch) {
		iter++
		if iter == 400 {
			close(done)
		}
	}
	if err := s.Run(done); err != nil {
		t.Fatal(err)
	}

	var correct int
	for i, cluster := range anyiic.Assign(net, inputs) {
		if cluster == labels[i] {
			correct++
		}
	}
	if correct < 36 {
		t.Errorf("only %d of 40 samples correct", correct)
	}
}
