// Package imaging holds the pixel buffers, filter kernels and the
// convolution engine used by the batch drivers in package scheduler.
package imaging

// Channels is the number of interleaved samples per pixel (RGBA).
const Channels = 4

// Image is a W x H buffer of interleaved 8-bit RGBA samples.
// Pix is laid out row-major: the sample for channel c of pixel (x, y)
// lives at Pix[(y*Width+x)*Channels+c].
//
// An Image is owned by exactly one pipeline stage at a time. During a
// parallel convolution the source buffer is shared read-only across all
// workers and the destination is partitioned into disjoint row ranges,
// so no locking is ever needed on the buffer itself.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// New returns a zeroed image of the given dimensions.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}
}

// Clone returns a deep copy of the image.
func (im *Image) Clone() *Image {
	cp := &Image{Width: im.Width, Height: im.Height, Pix: make([]uint8, len(im.Pix))}
	copy(cp.Pix, im.Pix)
	return cp
}

// PixOffset returns the index of the first sample of pixel (x, y).
func (im *Image) PixOffset(x, y int) int {
	return (y*im.Width + x) * Channels
}

// clampIndex pulls an out-of-range coordinate back to the nearest valid
// index in [0, size). Each axis is clamped independently before lookup,
// so every kernel cell contributes a sample even at the borders.
func clampIndex(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}

// SampleClamped returns the sample for channel c at (x, y), resolving
// out-of-range coordinates with the clamp-to-edge border policy.
func (im *Image) SampleClamped(x, y, c int) uint8 {
	x = clampIndex(x, im.Width)
	y = clampIndex(y, im.Height)
	return im.Pix[(y*im.Width+x)*Channels+c]
}
