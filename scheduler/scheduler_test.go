package scheduler

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"filterforge/imaging"
)

// writePNG drops a small valid image into dir.
func writePNG(t *testing.T, dir, name string) {
	t.Helper()
	img := imaging.New(12, 8)
	for i := range img.Pix {
		if i%imaging.Channels == 3 {
			img.Pix[i] = 255
		} else {
			img.Pix[i] = uint8(i * 7)
		}
	}
	if err := imaging.Encode(filepath.Join(dir, name), img); err != nil {
		t.Fatal(err)
	}
}

// writeCorrupt drops a file with an image extension but garbage content.
func writeCorrupt(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRunSkipsCorruptFilesAndContinues(t *testing.T) {
	for _, mode := range []string{ModeSequential, ModeRows, ModeFiles, ModeSteal} {
		t.Run(mode, func(t *testing.T) {
			dir := t.TempDir()
			writePNG(t, dir, "a.png")
			writePNG(t, dir, "b.png")
			writePNG(t, dir, "c.png")
			writeCorrupt(t, dir, "broken.png")

			cfg := Config{
				InputDir: dir,
				Effect:   imaging.Blur(3),
				Workers:  3,
				Mode:     mode,
			}
			if err := Run(cfg, zerolog.Nop()); err != nil {
				t.Fatalf("run failed: %v", err)
			}

			for _, name := range []string{"a", "b", "c"} {
				if !exists(filepath.Join(dir, name+"_blurred_3.png")) {
					t.Errorf("missing output for %s.png", name)
				}
			}
			if exists(filepath.Join(dir, "broken_blurred_3.png")) {
				t.Error("corrupt input produced an output file")
			}
		})
	}
}

func TestRunFailsWhenEveryFileFails(t *testing.T) {
	dir := t.TempDir()
	writeCorrupt(t, dir, "x.png")
	writeCorrupt(t, dir, "y.jpg")

	err := Run(Config{InputDir: dir, Effect: imaging.Sharpen(3)}, zerolog.Nop())
	if !errors.Is(err, ErrAllFilesFailed) {
		t.Fatalf("err = %v, want ErrAllFilesFailed", err)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png")

	if err := Run(Config{InputDir: dir, Effect: imaging.Blur(4)}, zerolog.Nop()); !errors.Is(err, imaging.ErrInvalidKernelSize) {
		t.Errorf("even kernel size: err = %v, want ErrInvalidKernelSize", err)
	}
	if err := Run(Config{InputDir: dir, Effect: imaging.Blur(3), Mode: "bsp"}, zerolog.Nop()); err == nil {
		t.Error("unknown mode accepted")
	}
	if err := Run(Config{InputDir: filepath.Join(dir, "missing"), Effect: imaging.Blur(3)}, zerolog.Nop()); err == nil {
		t.Error("missing input directory accepted")
	}
	if err := Run(Config{InputDir: t.TempDir(), Effect: imaging.Blur(3)}, zerolog.Nop()); err == nil {
		t.Error("empty input directory accepted")
	}
}

func TestRunWritesResultsRecord(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png")
	results := filepath.Join(t.TempDir(), "results.jsonl")

	cfg := Config{
		InputDir:    dir,
		Effect:      imaging.Grayscale(),
		Workers:     2,
		Mode:        ModeRows,
		ResultsPath: results,
	}
	if err := Run(cfg, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(results)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Fatalf("results file malformed: %q", data)
	}
}

func TestRunOutputMatchesSingleThreaded(t *testing.T) {
	// The same input filtered through different modes and worker counts
	// must produce byte-identical files.
	reference := func(mode string, workers int) []byte {
		dir := t.TempDir()
		writePNG(t, dir, "img.png")
		cfg := Config{InputDir: dir, Effect: imaging.Sharpen(3), Workers: workers, Mode: mode}
		if err := Run(cfg, zerolog.Nop()); err != nil {
			t.Fatalf("%s/%d: %v", mode, workers, err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "img_sharpened.png"))
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	want := reference(ModeSequential, 1)
	for _, tc := range []struct {
		mode    string
		workers int
	}{
		{ModeRows, 1}, {ModeRows, 2}, {ModeRows, 8},
		{ModeFiles, 4}, {ModeSteal, 4},
	} {
		if got := reference(tc.mode, tc.workers); !bytes.Equal(got, want) {
			t.Errorf("%s with %d workers produced different bytes", tc.mode, tc.workers)
		}
	}
}
