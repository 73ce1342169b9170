package anyaug

import (
	"fmt"
	"math/rand"

	"github.com/unixpickle/anyvec"
)

// ImageShape describes the layout of an image stored as a
// row-major vector with depth as the innermost dimension.
type ImageShape struct {
	Width  int
	Height int
	Depth  int
}

// Len returns the number of components in an image.
func (i ImageShape) Len() int {
	return i.Width * i.Height * i.Depth
}

func (i ImageShape) check(in anyvec.Vector) {
	if in.Len() != i.Len() {
		panic(fmt.Sprintf("image length should be %d, but got %d", i.Len(), in.Len()))
	}
}

// remap builds an image whose pixel (x, y) comes from the
// input pixel f(x, y).
func (i ImageShape) remap(data []float64, f func(x, y int) (int, int)) []float64 {
	res := make([]float64, len(data))
	for y := 0; y < i.Height; y++ {
		for x := 0; x < i.Width; x++ {
			srcX, srcY := f(x, y)
			dst := (y*i.Width + x) * i.Depth
			src := (srcY*i.Width + srcX) * i.Depth
			copy(res[dst:dst+i.Depth], data[src:src+i.Depth])
		}
	}
	return res
}

// Pan translates images by a random offset, wrapping
// pixels around the edges.
type Pan struct {
	Shape ImageShape

	// MaxPixels is the largest offset along each axis.
	MaxPixels int

	Rand *rand.Rand
}

// Augment pans a copy of in.
func (p *Pan) Augment(in anyvec.Vector) anyvec.Vector {
	p.Shape.check(in)
	ox := intn(p.Rand, 2*p.MaxPixels+1) - p.MaxPixels
	oy := intn(p.Rand, 2*p.MaxPixels+1) - p.MaxPixels
	if ox == 0 && oy == 0 {
		return in.Copy()
	}
	w, h := p.Shape.Width, p.Shape.Height
	res := p.Shape.remap(vectorFloats(in), func(x, y int) (int, int) {
		return wrap(x-ox, w), wrap(y-oy, h)
	})
	return makeVector(in.Creator(), res)
}

// HorizFlip mirrors images from left to right with some
// probability.
type HorizFlip struct {
	Shape ImageShape

	// Prob is the probability of flipping.
	// If it is 0, 0.5 is used.
	Prob float64

	Rand *rand.Rand
}

// Augment returns a copy of in, possibly mirrored.
func (h *HorizFlip) Augment(in anyvec.Vector) anyvec.Vector {
	h.Shape.check(in)
	prob := h.Prob
	if prob == 0 {
		prob = 0.5
	}
	if uniform(h.Rand) >= prob {
		return in.Copy()
	}
	w := h.Shape.Width
	res := h.Shape.remap(vectorFloats(in), func(x, y int) (int, int) {
		return w - x - 1, y
	})
	return makeVector(in.Creator(), res)
}

func wrap(x, size int) int {
	x %= size
	if x < 0 {
		x += size
	}
	return x
}
