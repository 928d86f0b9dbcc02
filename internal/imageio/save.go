// Package imageio writes rendered images in the formats the CLIs offer.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// ErrUnknownFormat is returned for an extension with no encoder.
var ErrUnknownFormat = errors.New("imageio: unknown image format")

// Encode writes img to w in the named format: webp (lossless), tga or png.
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "webp":
		return nativewebp.Encode(w, img, nil)
	case "tga":
		return tga.Encode(w, img)
	case "png":
		return png.Encode(w, img)
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

// Save encodes img by the extension of path, creating parent directories.
func Save(path string, img image.Image) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		return fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("imageio: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("imageio: encode %s: %w", path, err)
	}
	return f.Close()
}
