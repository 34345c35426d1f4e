package imaging

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKernelSize reports a kernel size that is even or below 3.
	ErrInvalidKernelSize = errors.New("kernel size must be odd and >= 3")
	// ErrUnknownEffect reports an effect name outside the supported set.
	ErrUnknownEffect = errors.New("unknown effect")
)

type effectKind int

const (
	effectBlur effectKind = iota
	effectSharpen
	effectEdge
	effectGrayscale
)

// Effect selects a filter and, where it applies, a kernel size. It is a
// plain value: build it once, resolve it to a Kernel once, and the
// convolution loop never branches on the effect again.
type Effect struct {
	kind effectKind
	size int
}

// Blur is a box-averaging blur of the given odd size; larger sizes blur more.
func Blur(size int) Effect { return Effect{kind: effectBlur, size: size} }

// Sharpen is an edge-enhancing high-pass filter of the given odd size.
func Sharpen(size int) Effect { return Effect{kind: effectSharpen, size: size} }

// Edge is the fixed 3x3 edge-detection filter.
func Edge() Effect { return Effect{kind: effectEdge, size: 3} }

// Grayscale averages the color channels; it is not kernel-based.
func Grayscale() Effect { return Effect{kind: effectGrayscale} }

// ParseEffect resolves an effect name and kernel size from configuration.
// An unknown name or a bad size is a configuration error, fatal to the run.
func ParseEffect(name string, size int) (Effect, error) {
	switch name {
	case "blur":
		e := Blur(size)
		_, err := e.Kernel()
		return e, err
	case "sharpen":
		e := Sharpen(size)
		_, err := e.Kernel()
		return e, err
	case "edge":
		return Edge(), nil
	case "grayscale":
		return Grayscale(), nil
	default:
		return Effect{}, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
}

// Name returns the configuration name of the effect.
func (e Effect) Name() string {
	switch e.kind {
	case effectBlur:
		return "blur"
	case effectSharpen:
		return "sharpen"
	case effectEdge:
		return "edge"
	default:
		return "grayscale"
	}
}

// Label is the suffix appended to output file names,
// e.g. cat.jpg -> cat_blurred_5.jpg.
func (e Effect) Label() string {
	switch e.kind {
	case effectBlur:
		return fmt.Sprintf("blurred_%d", e.size)
	case effectSharpen:
		return "sharpened"
	case effectEdge:
		return "edges"
	default:
		return "grayscale"
	}
}

// Kernel resolves the effect into a concrete kernel. Grayscale has no
// kernel and resolves to nil; callers treat a nil kernel as the
// grayscale transform.
func (e Effect) Kernel() (*Kernel, error) {
	if e.kind == effectGrayscale {
		return nil, nil
	}
	if e.size < 3 || e.size%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKernelSize, e.size)
	}
	switch e.kind {
	case effectBlur:
		return newBoxBlur(e.size), nil
	case effectSharpen:
		return newSharpen(e.size), nil
	default:
		return newEdge(), nil
	}
}

// Kernel is an odd-sized square matrix of weights plus a divisor applied
// at accumulation time. The effective per-pixel scale of a weight is
// weight/divisor, so a box blur can keep integer weights and an exact
// 1/(k*k) scale. Kernels are immutable once built.
type Kernel struct {
	weights []float64
	dim     int
	radius  int
	divisor float64
}

// Dim returns the kernel's side length.
func (k *Kernel) Dim() int { return k.dim }

// Weight returns the weight at kernel column i, row j.
func (k *Kernel) Weight(i, j int) float64 { return k.weights[j*k.dim+i] }

// Divisor returns the normalization divisor applied at accumulation time.
func (k *Kernel) Divisor() float64 { return k.divisor }

// Sum returns the effective sum of the kernel, i.e. sum(weights)/divisor.
// Normalized kernels sum to 1.
func (k *Kernel) Sum() float64 {
	var s float64
	for _, w := range k.weights {
		s += w
	}
	return s / k.divisor
}

// newBoxBlur builds a uniform averaging kernel: every weight 1 with
// divisor dim*dim, giving an exact 1/(dim*dim) scale per cell.
func newBoxBlur(dim int) *Kernel {
	weights := make([]float64, dim*dim)
	for i := range weights {
		weights[i] = 1
	}
	return &Kernel{weights: weights, dim: dim, radius: dim / 2, divisor: float64(dim * dim)}
}

// newSharpen builds the high-pass sharpen kernel: center 5, the four
// orthogonal immediate neighbors -1, everything else 0. The weights sum
// to 1 for every odd dim, so flat regions keep their brightness.
func newSharpen(dim int) *Kernel {
	weights := make([]float64, dim*dim)
	c := dim / 2
	weights[c*dim+c] = 5
	weights[(c-1)*dim+c] = -1
	weights[(c+1)*dim+c] = -1
	weights[c*dim+c-1] = -1
	weights[c*dim+c+1] = -1
	return &Kernel{weights: weights, dim: dim, radius: dim / 2, divisor: 1}
}

// newEdge builds the fixed 3x3 edge-detection kernel. Its weights sum to
// zero; saturation handles the negative results.
func newEdge() *Kernel {
	return &Kernel{
		weights: []float64{-1, -1, -1, -1, 8, -1, -1, -1, -1},
		dim:     3,
		radius:  1,
		divisor: 1,
	}
}
