package imaging

import "testing"

func TestSampleClamped(t *testing.T) {
	img := New(3, 2)
	// Distinct value per pixel so clamped lookups are attributable.
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.Pix[img.PixOffset(x, y)] = uint8(10*y + x)
		}
	}

	tests := []struct {
		x, y int
		want uint8 // channel 0 of the clamped pixel
	}{
		{0, 0, 0},
		{2, 1, 12},
		{-1, 0, 0},   // x clamps to 0
		{-5, -5, 0},  // both axes clamp independently
		{3, 0, 2},    // x clamps to W-1
		{1, -2, 1},   // y clamps to 0
		{1, 7, 11},   // y clamps to H-1
		{99, 99, 12}, // both clamp to the far corner
		{-1, 1, 10},
	}
	for _, tc := range tests {
		if got := img.SampleClamped(tc.x, tc.y, 0); got != tc.want {
			t.Errorf("SampleClamped(%d, %d, 0) = %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	img := New(2, 2)
	img.Pix[0] = 42
	cp := img.Clone()
	cp.Pix[0] = 7
	if img.Pix[0] != 42 {
		t.Fatal("mutating the clone changed the original")
	}
	if cp.Width != img.Width || cp.Height != img.Height {
		t.Fatalf("clone dims %dx%d, want %dx%d", cp.Width, cp.Height, img.Width, img.Height)
	}
}
