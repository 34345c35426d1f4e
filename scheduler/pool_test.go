package scheduler

import (
	"bytes"
	"errors"
	"testing"

	"filterforge/imaging"
)

func TestPartitionRowsBalanced(t *testing.T) {
	tests := []struct {
		height, chunks int
		wantSizes      []int
	}{
		{10, 3, []int{4, 3, 3}},
		{9, 3, []int{3, 3, 3}},
		{7, 4, []int{2, 2, 2, 1}},
		{5, 8, []int{1, 1, 1, 1, 1}}, // fewer chunks than requested
		{1, 1, []int{1}},
		{6, 1, []int{6}},
	}
	for _, tc := range tests {
		spans := PartitionRows(tc.height, tc.chunks)
		if len(spans) != len(tc.wantSizes) {
			t.Errorf("PartitionRows(%d, %d) = %d spans, want %d",
				tc.height, tc.chunks, len(spans), len(tc.wantSizes))
			continue
		}
		y := 0
		for i, span := range spans {
			if span.Y0 != y {
				t.Errorf("PartitionRows(%d, %d) span %d starts at %d, want %d",
					tc.height, tc.chunks, i, span.Y0, y)
			}
			if got := span.Y1 - span.Y0; got != tc.wantSizes[i] {
				t.Errorf("PartitionRows(%d, %d) span %d size = %d, want %d",
					tc.height, tc.chunks, i, got, tc.wantSizes[i])
			}
			y = span.Y1
		}
		if y != tc.height {
			t.Errorf("PartitionRows(%d, %d) covers [0,%d), want [0,%d)",
				tc.height, tc.chunks, y, tc.height)
		}
	}
}

func TestPartitionRowsProperties(t *testing.T) {
	for height := 1; height <= 64; height++ {
		for chunks := 1; chunks <= 12; chunks++ {
			spans := PartitionRows(height, chunks)
			y := 0
			minSize, maxSize := height, 0
			for _, span := range spans {
				if span.Y0 != y {
					t.Fatalf("H=%d N=%d: gap or overlap at row %d", height, chunks, y)
				}
				size := span.Y1 - span.Y0
				if size < minSize {
					minSize = size
				}
				if size > maxSize {
					maxSize = size
				}
				y = span.Y1
			}
			if y != height {
				t.Fatalf("H=%d N=%d: covered [0,%d)", height, chunks, y)
			}
			if maxSize-minSize > 1 {
				t.Fatalf("H=%d N=%d: span sizes range from %d to %d", height, chunks, minSize, maxSize)
			}
		}
	}
}

func TestPartitionRowsDegenerate(t *testing.T) {
	if spans := PartitionRows(0, 4); spans != nil {
		t.Errorf("PartitionRows(0, 4) = %v, want nil", spans)
	}
	if spans := PartitionRows(4, 0); spans != nil {
		t.Errorf("PartitionRows(4, 0) = %v, want nil", spans)
	}
}

func testImage(w, h int) *imaging.Image {
	img := imaging.New(w, h)
	for i := range img.Pix {
		img.Pix[i] = uint8(i*37 + 13)
	}
	return img
}

func mustKernel(t *testing.T, e imaging.Effect) *imaging.Kernel {
	t.Helper()
	k, err := e.Kernel()
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestFilterDeterministicAcrossPoolSizes(t *testing.T) {
	src := testImage(33, 21)
	for _, e := range []imaging.Effect{imaging.Blur(5), imaging.Sharpen(3), imaging.Edge(), imaging.Grayscale()} {
		k := mustKernel(t, e)

		var reference []uint8
		for _, workers := range []int{1, 2, 8} {
			pool := NewPool(workers)
			out, err := pool.Filter(src, k, imaging.Options{})
			pool.Close()
			if err != nil {
				t.Fatalf("%s with %d workers: %v", e.Name(), workers, err)
			}
			if out.Width != src.Width || out.Height != src.Height {
				t.Fatalf("%s: output %dx%d, want %dx%d", e.Name(), out.Width, out.Height, src.Width, src.Height)
			}
			if reference == nil {
				reference = out.Pix
				continue
			}
			if !bytes.Equal(reference, out.Pix) {
				t.Errorf("%s: output with %d workers differs from 1 worker", e.Name(), workers)
			}
		}
	}
}

func TestPoolIsReusableAcrossImages(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	k := mustKernel(t, imaging.Blur(3))
	for i := 0; i < 5; i++ {
		src := testImage(16+i, 9+i)
		want, err := filterImage(src, k, imaging.Options{})
		if err != nil {
			t.Fatal(err)
		}
		got, err := pool.Filter(src, k, imaging.Options{})
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(want.Pix, got.Pix) {
			t.Fatalf("image %d: pooled result differs from single-threaded result", i)
		}
	}
}

func TestFilterFailureDiscardsOutput(t *testing.T) {
	// A buffer shorter than the claimed dimensions makes the convolution
	// panic inside a worker; the pool must turn that into
	// ErrProcessingFailed instead of returning a partial image.
	broken := &imaging.Image{Width: 8, Height: 8, Pix: make([]uint8, 16)}
	pool := NewPool(4)
	defer pool.Close()

	out, err := pool.Filter(broken, mustKernel(t, imaging.Blur(3)), imaging.Options{})
	if !errors.Is(err, ErrProcessingFailed) {
		t.Fatalf("err = %v, want ErrProcessingFailed", err)
	}
	if out != nil {
		t.Fatal("partial output returned alongside failure")
	}

	// The pool must stay usable after a failed image.
	src := testImage(8, 8)
	if _, err := pool.Filter(src, mustKernel(t, imaging.Blur(3)), imaging.Options{}); err != nil {
		t.Fatalf("pool unusable after failure: %v", err)
	}
}
