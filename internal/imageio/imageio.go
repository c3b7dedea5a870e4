// Package imageio writes rendered frames to disk in the format implied by
// the file extension.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

const JPEGQuality = 95

var ErrUnsupportedFormat = errors.New("imageio: unsupported image format")

// Error records a failed sink operation and the cause.
type Error struct {
	Op     string
	Path   string
	Format string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("imageio: ")
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Format != "" {
		fmt.Fprintf(&b, " (%s)", e.Format)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Format normalizes a file extension or format name to a canonical format
// name.
func Format(name string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return "png", nil
	case "jpg", "jpeg":
		return "jpeg", nil
	case "bmp":
		return "bmp", nil
	case "tif", "tiff":
		return "tiff", nil
	}
	return "", ErrUnsupportedFormat
}

// Formats lists the canonical format names Encode accepts.
func Formats() []string {
	return []string{"png", "jpeg", "bmp", "tiff"}
}

func Encode(w io.Writer, img image.Image, format string) error {
	f, err := Format(format)
	if err != nil {
		return &Error{Op: "encode", Format: format, Err: err}
	}

	switch f {
	case "png":
		err = png.Encode(w, img)
	case "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case "bmp":
		err = bmp.Encode(w, img)
	case "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		return &Error{Op: "encode", Format: f, Err: err}
	}
	return nil
}

// Save encodes img to path, choosing the format from the extension.
func Save(path string, img image.Image) error {
	ext := filepath.Ext(path)
	format, err := Format(ext)
	if err != nil {
		return &Error{Op: "save", Path: path, Format: ext, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &Error{Op: "save", Path: path, Format: format, Err: err}
	}

	if err := Encode(f, img, format); err != nil {
		f.Close()
		os.Remove(path)
		var ie *Error
		if errors.As(err, &ie) {
			ie.Path = path
		}
		return err
	}
	if err := f.Close(); err != nil {
		return &Error{Op: "close", Path: path, Format: format, Err: err}
	}
	return nil
}

// Load decodes an image written by Save.
func Load(path string) (image.Image, error) {
	ext := filepath.Ext(path)
	format, err := Format(ext)
	if err != nil {
		return nil, &Error{Op: "load", Path: path, Format: ext, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Op: "load", Path: path, Format: format, Err: err}
	}
	defer f.Close()

	var img image.Image
	switch format {
	case "png":
		img, err = png.Decode(f)
	case "jpeg":
		img, err = jpeg.Decode(f)
	case "bmp":
		img, err = bmp.Decode(f)
	case "tiff":
		img, err = tiff.Decode(f)
	}
	if err != nil {
		return nil, &Error{Op: "load", Path: path, Format: format, Err: err}
	}
	return img, nil
}

// Thumbnail scales img down to at most maxWidth pixels wide, keeping the
// aspect ratio. Images already narrow enough are copied unscaled.
func Thumbnail(img image.Image, maxWidth int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth > 0 && w > maxWidth {
		h = max(1, h*maxWidth/w)
		w = maxWidth
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
		return dst
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
