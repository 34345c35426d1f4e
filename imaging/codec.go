package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"

	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// Decode reads an image file (PNG, JPEG, GIF or WebP) into an Image.
// A failure here is a per-file error: the batch drivers log it and move
// on to the next file.
func Decode(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)

	// NewRGBA with a zero-origin rect gives Stride == 4*width, so the
	// pixel data is contiguous and can be adopted directly.
	return &Image{Width: bounds.Dx(), Height: bounds.Dy(), Pix: rgba.Pix}, nil
}

// Encode writes the image to path, choosing the format from the file
// extension (.png or .jpg/.jpeg).
func Encode(path string, im *Image) error {
	rgba := &image.RGBA{
		Pix:    im.Pix,
		Stride: im.Width * Channels,
		Rect:   image.Rect(0, 0, im.Width, im.Height),
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, rgba)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, rgba, &jpeg.Options{Quality: jpegQuality})
	default:
		err = fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
