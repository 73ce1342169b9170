package anymeter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const defaultHausdorffClasses = 4

// Masks is a packed batch of one-hot segmentation masks,
// stored in batch-class-row-column order.
type Masks struct {
	Data    []float64
	Batch   int
	Classes int
	Height  int
	Width   int
}

func (m *Masks) mask(b, c int) []float64 {
	size := m.Height * m.Width
	start := (b*m.Classes + c) * size
	return m.Data[start : start+size]
}

func (m *Masks) checkOneHot(name string) error {
	if len(m.Data) != m.Batch*m.Classes*m.Height*m.Width {
		return fmt.Errorf("%s: data length %d does not match %dx%dx%dx%d", name,
			len(m.Data), m.Batch, m.Classes, m.Height, m.Width)
	}
	size := m.Height * m.Width
	for b := 0; b < m.Batch; b++ {
		for pixel := 0; pixel < size; pixel++ {
			var sum float64
			for c := 0; c < m.Classes; c++ {
				x := m.mask(b, c)[pixel]
				if x != 0 && x != 1 {
					return fmt.Errorf("%s: entry %g is not 0 or 1", name, x)
				}
				sum += x
			}
			if sum != 1 {
				return fmt.Errorf("%s: item %d pixel %d is not one-hot", name, b, pixel)
			}
		}
	}
	return nil
}

// Hausdorff logs the symmetric Hausdorff distance between
// predicted and ground-truth masks for every batch item
// and class.
//
// Each mask row is treated as a point, so the distance is
// between the sets of rows of the two masks.
type Hausdorff struct {
	// Classes is the expected number of classes.
	// If it is 0, it is set by the first call to Add.
	Classes int

	// ReportAxes lists the classes that Summary and the
	// report statistics of Value consider.
	// If it is nil, all classes are used.
	// Add rejects axes outside of [0, Classes), and Value
	// and Summary skip them.
	ReportAxes []int

	log [][]float64
}

// Add logs the distances for a batch.
func (h *Hausdorff) Add(pred, label *Masks) error {
	if err := pred.checkOneHot("prediction"); err != nil {
		return err
	}
	if err := label.checkOneHot("label"); err != nil {
		return err
	}
	if pred.Batch != label.Batch || pred.Classes != label.Classes ||
		pred.Height != label.Height || pred.Width != label.Width {
		return fmt.Errorf("mask shapes differ: %dx%dx%dx%d and %dx%dx%dx%d",
			pred.Batch, pred.Classes, pred.Height, pred.Width,
			label.Batch, label.Classes, label.Height, label.Width)
	}
	if h.Classes == 0 {
		h.Classes = pred.Classes
	} else if h.Classes != pred.Classes {
		return fmt.Errorf("expected %d classes but got %d", h.Classes, pred.Classes)
	}
	for _, axis := range h.ReportAxes {
		if axis < 0 || axis >= h.Classes {
			return fmt.Errorf("report axis %d out of range for %d classes", axis, h.Classes)
		}
	}
	for b := 0; b < pred.Batch; b++ {
		row := make([]float64, pred.Classes)
		for c := range row {
			// Binary masks are measured on the first channel.
			channel := c
			if pred.Classes == 2 {
				channel = 0
			}
			row[c] = hausdorffDistance(pred.mask(b, channel), label.mask(b, channel),
				pred.Width)
		}
		h.log = append(h.log, row)
	}
	return nil
}

// Reset clears the log.
func (h *Hausdorff) Reset() {
	h.log = nil
}

// Value computes statistics over the logged items.
//
// The report mean and deviation are taken over the
// per-item averages of the report axes.
// The means and stds are per class.
// Deviations are unbiased, so they are NaN for a single
// logged item.
// If no report axis is in range, the report statistics
// are NaN.
func (h *Hausdorff) Value() (reportMean, reportStd float64, means, stds []float64) {
	log := h.logRows()
	classes := len(log[0])
	column := make([]float64, len(log))
	for c := 0; c < classes; c++ {
		for i, row := range log {
			column[i] = row[c]
		}
		mean, std := stat.MeanStdDev(column, nil)
		means = append(means, mean)
		stds = append(stds, std)
	}

	axes := h.reportAxes(classes)
	itemMeans := make([]float64, len(log))
	for i, row := range log {
		for _, axis := range axes {
			itemMeans[i] += row[axis]
		}
		itemMeans[i] /= float64(len(axes))
	}
	reportMean, reportStd = stat.MeanStdDev(itemMeans, nil)
	return
}

// Summary reports the mean distance of each report axis,
// keyed as "HD0", "HD1", etc.
func (h *Hausdorff) Summary() map[string]float64 {
	_, _, means, _ := h.Value()
	res := map[string]float64{}
	for _, axis := range h.reportAxes(len(means)) {
		res[fmt.Sprintf("HD%d", axis)] = means[axis]
	}
	return res
}

// DetailedSummary is like Summary, but it reports every
// class.
func (h *Hausdorff) DetailedSummary() map[string]float64 {
	_, _, means, _ := h.Value()
	res := map[string]float64{}
	for i, mean := range means {
		res[fmt.Sprintf("HD%d", i)] = mean
	}
	return res
}

func (h *Hausdorff) logRows() [][]float64 {
	if len(h.log) > 0 {
		return h.log
	}
	classes := h.Classes
	if classes == 0 {
		classes = defaultHausdorffClasses
	}
	return [][]float64{make([]float64, classes)}
}

func (h *Hausdorff) reportAxes(classes int) []int {
	if h.ReportAxes != nil {
		var res []int
		for _, axis := range h.ReportAxes {
			if axis >= 0 && axis < classes {
				res = append(res, axis)
			}
		}
		return res
	}
	res := make([]int, classes)
	for i := range res {
		res[i] = i
	}
	return res
}

func hausdorffDistance(a, b []float64, width int) float64 {
	return math.Max(directedHausdorff(a, b, width), directedHausdorff(b, a, width))
}

// directedHausdorff finds the largest distance from a row
// of a to its nearest row of b.
func directedHausdorff(a, b []float64, width int) float64 {
	var res float64
	for i := 0; i < len(a); i += width {
		nearest := math.Inf(1)
		for j := 0; j < len(b); j += width {
			nearest = math.Min(nearest, floats.Distance(a[i:i+width], b[j:j+width], 2))
		}
		res = math.Max(res, nearest)
	}
	return res
}
