package imaging

import "math"

// Options tunes channel handling during a filter pass.
type Options struct {
	// PreserveAlpha copies the alpha channel from the source instead of
	// convolving it with the color channels.
	PreserveAlpha bool
}

// Convolve applies the kernel to every pixel of src and writes the result
// into dst. Both buffers must have identical dimensions. The output is a
// pure function of (src, kernel, opts): no state, no randomness, and
// therefore bit-identical however the rows are scheduled.
func Convolve(dst, src *Image, k *Kernel, opts Options) {
	ConvolveRows(dst, src, k, opts, 0, src.Height)
}

// ConvolveRows applies the kernel to output rows [y0, y1) only. Workers
// convolving disjoint row ranges of the same dst never touch each other's
// bytes, which is what makes the lock-free row tiling in package scheduler
// correct.
//
// For every output pixel and channel the engine accumulates
// sum(weight(i,j) * src(clamp(x+i-r), clamp(y+j-r), c)) / divisor,
// then rounds and saturates to [0, 255].
func ConvolveRows(dst, src *Image, k *Kernel, opts Options, y0, y1 int) {
	w, h := src.Width, src.Height
	dim, r := k.dim, k.radius

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			var acc [Channels]float64
			for j := 0; j < dim; j++ {
				sy := clampIndex(y+j-r, h)
				rowOff := sy * w * Channels
				for i := 0; i < dim; i++ {
					weight := k.weights[j*dim+i]
					if weight == 0 {
						continue
					}
					sx := clampIndex(x+i-r, w)
					off := rowOff + sx*Channels
					acc[0] += weight * float64(src.Pix[off])
					acc[1] += weight * float64(src.Pix[off+1])
					acc[2] += weight * float64(src.Pix[off+2])
					acc[3] += weight * float64(src.Pix[off+3])
				}
			}
			off := (y*w + x) * Channels
			dst.Pix[off] = saturate(acc[0] / k.divisor)
			dst.Pix[off+1] = saturate(acc[1] / k.divisor)
			dst.Pix[off+2] = saturate(acc[2] / k.divisor)
			if opts.PreserveAlpha {
				dst.Pix[off+3] = src.Pix[off+3]
			} else {
				dst.Pix[off+3] = saturate(acc[3] / k.divisor)
			}
		}
	}
}

// GrayscaleRows converts output rows [y0, y1) to grayscale by averaging
// the color channels. Alpha passes through unchanged.
func GrayscaleRows(dst, src *Image, y0, y1 int) {
	w := src.Width
	for y := y0; y < y1; y++ {
		off := y * w * Channels
		for x := 0; x < w; x++ {
			r := float64(src.Pix[off])
			g := float64(src.Pix[off+1])
			b := float64(src.Pix[off+2])
			grey := saturate((r + g + b) / 3)
			dst.Pix[off] = grey
			dst.Pix[off+1] = grey
			dst.Pix[off+2] = grey
			dst.Pix[off+3] = src.Pix[off+3]
			off += Channels
		}
	}
}

// saturate rounds the accumulated value and clamps it to the valid 8-bit
// sample range instead of wrapping.
func saturate(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
