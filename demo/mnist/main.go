package main

import (
	"flag"
	"log"

	"github.com/unixpickle/anyclust"
	"github.com/unixpickle/anyclust/anyaug"
	"github.com/unixpickle/anyclust/anyiic"
	"github.com/unixpickle/anyclust/anymeter"
	"github.com/unixpickle/anyclust/anysgd"
	"github.com/unixpickle/anyclust/anytune"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyconv"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/mnist"
	"github.com/unixpickle/rip"
	"github.com/unixpickle/serializer"
)

var Creator anyvec.Creator

func main() {
	var batchSize int
	var stepSize float64
	var lambda float64
	var clusters int
	var noise float64
	var pan int
	var conv bool
	var labeled int
	var outFile string

	flag.IntVar(&batchSize, "batch", 500, "SGD batch size")
	flag.Float64Var(&stepSize, "step", 0.001, "SGD step size")
	flag.Float64Var(&lambda, "lambda", 1, "marginal entropy weight")
	flag.IntVar(&clusters, "clusters", 10, "number of clusters")
	flag.Float64Var(&noise, "noise", 0.1, "augmentation noise stddev")
	flag.IntVar(&pan, "pan", 2, "maximum augmentation translation")
	flag.BoolVar(&conv, "conv", false, "use a convolutional network")
	flag.IntVar(&labeled, "labeled", 0, "labeled samples for fine-tuning")
	flag.StringVar(&outFile, "out", "mnist_iic_net", "network output file")
	flag.Parse()

	log.Println("Setting up...")

	Creator = anyvec32.CurrentCreator()

	var network anynet.Net
	if err := serializer.LoadAny(outFile, &network); err != nil {
		log.Println("Creating new network...")
		if conv {
			network = convNetwork(clusters)
		} else {
			network = anynet.Net{
				anynet.NewFC(Creator, 28*28, 300),
				anynet.Tanh,
				anynet.NewFC(Creator, 300, clusters),
				anyclust.Softmax{},
			}
		}
	} else {
		log.Println("Loaded network.")
	}

	samples := loadSamples(mnist.LoadTrainingDataSet())
	training, validation := anysgd.HashSplit(samples, 0.9)
	log.Printf("Using %d training and %d validation samples.", training.Len(),
		validation.Len())

	shape := anyaug.ImageShape{Width: 28, Height: 28, Depth: 1}
	t := &anyiic.Trainer{
		Net: network,
		Augment: anyaug.Pipeline{
			&anyaug.Pan{Shape: shape, MaxPixels: pan},
			&anyaug.Noise{Stddev: noise},
			&anyaug.Clip{Min: 0, Max: 1},
		},
		Cost:   anyiic.IID{Lambda: lambda},
		Params: network.Parameters(),
	}

	var iterNum int
	var costs anymeter.Average
	var s *anysgd.SGD
	s = &anysgd.SGD{
		Fetcher:     t,
		Gradienter:  t,
		Transformer: &anysgd.Adam{},
		Samples:     training,
		Rater:       anysgd.ConstRater(stepSize),
		StatusFunc: func(b anysgd.Batch) {
			if iterNum > 0 {
				costs.Add(t.LastCostNoLambda)
				log.Printf("iter %d: epoch=%.2f cost=%f mi=%f", iterNum, s.Epoch(),
					t.LastCost, -t.LastCostNoLambda)
			}
			iterNum++
		},
		BatchSize: batchSize,
	}

	log.Println("Press ctrl+c once to stop...")
	if err := s.Run(rip.NewRIP().Chan()); err != nil {
		log.Fatal(err)
	}
	mean, std := costs.Value()
	log.Printf("Average cost: %f (std %f)", mean, std)

	if labeled > 0 {
		fineTune(network, anytune.Labeled(training.(anyiic.SliceSampleList)),
			labeled, clusters, stepSize)
	}

	log.Println("Computing statistics...")
	printStats("Validation", network, validation.(anyiic.SliceSampleList))
	printStats("Testing", network, loadSamples(mnist.LoadTestingDataSet()))

	if err := serializer.SaveAny(outFile, network); err != nil {
		log.Fatal(err)
	}
}

func convNetwork(clusters int) anynet.Net {
	conv := &anyconv.Conv{
		FilterCount:  16,
		FilterWidth:  5,
		FilterHeight: 5,
		StrideX:      1,
		StrideY:      1,
		InputWidth:   28,
		InputHeight:  28,
		InputDepth:   1,
	}
	conv.InitRand(Creator)
	pool := &anyconv.MaxPool{
		SpanX:       2,
		SpanY:       2,
		InputWidth:  conv.OutputWidth(),
		InputHeight: conv.OutputHeight(),
		InputDepth:  conv.OutputDepth(),
	}
	return anynet.Net{
		conv,
		anyconv.NewBatchNorm(Creator, conv.OutputDepth()),
		anynet.ReLU,
		pool,
		anynet.NewFC(Creator, pool.OutputWidth()*pool.OutputHeight()*pool.OutputDepth(),
			clusters),
		anyclust.Softmax{},
	}
}

// fineTune trains the network's logits to predict the
// labels of the first few samples.
func fineTune(network anynet.Net, samples anyiic.SliceSampleList, num, classes int,
	stepSize float64) {
	if num < len(samples) {
		samples = samples[:num]
	}
	if len(samples) == 0 {
		log.Println("No labeled samples to fine-tune on.")
		return
	}
	logits := network[:len(network)-1]
	t := &anytune.Trainer{
		Net:        logits,
		NumClasses: classes,
		Params:     logits.Parameters(),
		Average:    true,
	}
	s := &anysgd.SGD{
		Fetcher:     t,
		Gradienter:  t,
		Transformer: &anysgd.Adam{},
		Samples:     samples,
		Rater:       anysgd.ConstRater(stepSize),
		BatchSize:   min(100, len(samples)),
	}
	var iterNum int
	s.StatusFunc = func(b anysgd.Batch) {
		if iterNum > 0 {
			log.Printf("fine-tune iter %d: cost=%f", iterNum, t.LastCost)
		}
		iterNum++
	}
	log.Printf("Fine-tuning on %d labeled samples. Press ctrl+c once to stop...",
		len(samples))
	if err := s.Run(rip.NewRIP().Chan()); err != nil {
		log.Fatal(err)
	}
}

func loadSamples(d mnist.DataSet) anyiic.SliceSampleList {
	var res anyiic.SliceSampleList
	for _, sample := range d.Samples {
		vec := Creator.MakeVectorData(Creator.MakeNumericList(sample.Intensities))
		res = append(res, &anyiic.Sample{Input: vec, Label: sample.Label})
	}
	return res
}

func printStats(name string, net anynet.Net, samples anyiic.SliceSampleList) {
	var acc anymeter.ClusterAccuracy
	const batch = 1000
	for i := 0; i < len(samples); i += batch {
		chunk := samples[i:min(len(samples), i+batch)]
		var inputs []anyvec.Vector
		var labels []int
		for _, s := range chunk {
			inputs = append(inputs, s.Input)
			labels = append(labels, s.Label)
		}
		if err := acc.Add(anyiic.Assign(net, inputs), labels); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("%s: accuracy=%f mapping=%v", name, acc.Value(), acc.Mapping())
}
