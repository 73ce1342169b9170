package anymeter

import (
	"errors"
	"fmt"

	hungarianAlgorithm "github.com/oddg/hungarian-algorithm"
)

// ClusterAccuracy measures how well unsupervised cluster
// assignments agree with ground-truth labels.
//
// Clusters are matched to labels by the one-to-one mapping
// that maximizes the number of agreeing samples.
// Samples with negative labels are ignored.
type ClusterAccuracy struct {
	// confusion[cluster][label] counts samples.
	confusion [][]int
	total     int
}

// Add records a batch of predictions and their labels.
func (c *ClusterAccuracy) Add(preds, labels []int) error {
	if len(preds) != len(labels) {
		return fmt.Errorf("add cluster predictions: got %d predictions but %d labels",
			len(preds), len(labels))
	}
	for i, pred := range preds {
		if pred < 0 {
			return errors.New("add cluster predictions: negative cluster index")
		}
		label := labels[i]
		if label < 0 {
			continue
		}
		c.grow(pred+1, label+1)
		c.confusion[pred][label]++
		c.total++
	}
	return nil
}

// Reset clears all recorded samples.
func (c *ClusterAccuracy) Reset() {
	c.confusion = nil
	c.total = 0
}

// Value returns the fraction of samples whose cluster is
// mapped to their label.
//
// With no samples, it returns 0.
func (c *ClusterAccuracy) Value() float64 {
	if c.total == 0 {
		return 0
	}
	var correct int
	for cluster, label := range c.Mapping() {
		correct += c.confusion[cluster][label]
	}
	return float64(correct) / float64(c.total)
}

// Mapping returns the best assignment of clusters to
// labels.
//
// Clusters that have no label (because there are more
// clusters than labels) are absent from the map.
func (c *ClusterAccuracy) Mapping() map[int]int {
	numClusters := len(c.confusion)
	if numClusters == 0 {
		return map[int]int{}
	}
	numLabels := len(c.confusion[0])
	size := numClusters
	if numLabels > size {
		size = numLabels
	}

	// The solver minimizes, so agreement counts become
	// non-negative costs on a padded square matrix.
	var maxCount int
	for _, row := range c.confusion {
		for _, count := range row {
			if count > maxCount {
				maxCount = count
			}
		}
	}
	cost := make([][]int, size)
	for i := range cost {
		cost[i] = make([]int, size)
		for j := range cost[i] {
			cost[i][j] = maxCount
			if i < numClusters && j < numLabels {
				cost[i][j] -= c.confusion[i][j]
			}
		}
	}
	assignment, err := hungarianAlgorithm.Solve(cost)
	if err != nil {
		panic(fmt.Sprintf("match clusters to labels: %v", err))
	}

	res := map[int]int{}
	for cluster, label := range assignment {
		if cluster < numClusters && label < numLabels {
			res[cluster] = label
		}
	}
	return res
}

// Summary reports "acc".
func (c *ClusterAccuracy) Summary() map[string]float64 {
	return map[string]float64{"acc": c.Value()}
}

func (c *ClusterAccuracy) grow(clusters, labels int) {
	if len(c.confusion) > 0 && len(c.confusion[0]) > labels {
		labels = len(c.confusion[0])
	}
	for len(c.confusion) < clusters {
		c.confusion = append(c.confusion, nil)
	}
	for i, row := range c.confusion {
		for len(row) < labels {
			row = append(row, 0)
		}
		c.confusion[i] = row
	}
}
