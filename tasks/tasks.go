// Package tasks discovers image files to process and hands them out to
// workers through a spinlock-guarded queue.
package tasks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Task names one image to process: where to read it and where the
// filtered result goes.
type Task struct {
	InPath  string
	OutPath string
}

// imageExts are the input extensions the discovery step recognizes.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Discover scans dir (non-recursively) for image files and builds one
// task per file. Output files land next to their inputs with the effect
// label appended to the stem, e.g. cat.jpg -> cat_blurred_5.jpg.
// WebP and GIF inputs are written back as PNG since the codec only
// encodes PNG and JPEG.
//
// An unreadable directory is a configuration error and fatal to the run;
// an empty directory simply yields no tasks.
func Discover(dir, label string) ([]Task, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan input directory: %w", err)
	}

	var found []Task
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !imageExts[ext] {
			continue
		}
		outExt := ext
		if ext == ".webp" || ext == ".gif" {
			outExt = ".png"
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		found = append(found, Task{
			InPath:  filepath.Join(dir, name),
			OutPath: filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, label, outExt)),
		})
	}
	return found, nil
}
