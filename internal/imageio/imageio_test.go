package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: 100, A: 255})
		}
	}
	return img
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{".png", "png", false},
		{"PNG", "png", false},
		{".jpg", "jpeg", false},
		{"jpeg", "jpeg", false},
		{".bmp", "bmp", false},
		{".tif", "tiff", false},
		{".tiff", "tiff", false},
		{".gif", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := Format(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Format(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	img := testImage(5, 3)

	for _, ext := range []string{".png", ".bmp", ".tiff", ".jpg"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "frame"+ext)
			if err := Save(path, img); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Bounds().Dx() != 5 || got.Bounds().Dy() != 3 {
				t.Errorf("bounds = %v, want 5x3", got.Bounds())
			}
		})
	}
}

func TestSave_PNGIsLossless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	img := testImage(4, 4)
	if err := Save(path, img); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			r1, g1, b1, a1 := img.At(x, y).RGBA()
			r2, g2, b2, a2 := got.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				t.Fatalf("pixel (%d,%d) changed", x, y)
			}
		}
	}
}

func TestSave_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.gif")
	err := Save(path, testImage(2, 2))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
	var ie *Error
	if !errors.As(err, &ie) || ie.Path != path {
		t.Errorf("error does not carry the path: %v", err)
	}
}

func TestSave_UnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "frame.png")
	err := Save(path, testImage(2, 2))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error does not wrap the cause: %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error message %q lacks path", err.Error())
	}
}

func TestSave_EncodeFailureRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))

	err := Save(path, empty)
	if err == nil {
		t.Fatal("expected error encoding an empty image")
	}
	var ie *Error
	if !errors.As(err, &ie) || ie.Op != "encode" || ie.Path != path {
		t.Errorf("error = %#v, want encode error carrying the path", err)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, fs.ErrNotExist) {
		t.Errorf("partial file left behind: stat error = %v", statErr)
	}
}

func TestFormats_AllEncodable(t *testing.T) {
	for _, f := range Formats() {
		var buf bytes.Buffer
		if err := Encode(&buf, testImage(2, 2), f); err != nil {
			t.Errorf("Encode(%s): %v", f, err)
		}
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(3, 3), "png"); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("missing PNG signature")
	}

	buf.Reset()
	if err := Encode(&buf, testImage(3, 3), "webp"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Encode(webp) error = %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		w, h, maxW   int
		wantW, wantH int
	}{
		{800, 600, 80, 80, 60},
		{40, 30, 80, 40, 30},
		{100, 1, 10, 10, 1},
		{50, 50, 0, 50, 50},
	}
	for _, tt := range tests {
		got := Thumbnail(testImage(tt.w, tt.h), tt.maxW)
		if got.Bounds().Dx() != tt.wantW || got.Bounds().Dy() != tt.wantH {
			t.Errorf("Thumbnail(%dx%d, %d) = %v, want %dx%d",
				tt.w, tt.h, tt.maxW, got.Bounds(), tt.wantW, tt.wantH)
		}
	}
}
