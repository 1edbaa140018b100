package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// RequireMagick skips the test unless the identify, mogrify and composite
// commands are on PATH.
func RequireMagick(t testing.TB) {
	t.Helper()
	for _, name := range []string{"identify", "mogrify", "composite"} {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not installed: %v", name, err)
		}
	}
}

// Encode renders a solid width x height image of color c in format.
func Encode(t testing.TB, width, height int, c color.Color, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(width, height, c)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// PNG renders a solid PNG image.
func PNG(t testing.TB, width, height int, c color.Color) []byte {
	t.Helper()
	return Encode(t, width, height, c, imaging.PNG)
}

// JPEG renders a solid JPEG image.
func JPEG(t testing.TB, width, height int, c color.Color) []byte {
	t.Helper()
	return Encode(t, width, height, c, imaging.JPEG)
}

// AnimatedGIF renders a GIF with one solid frame per color.
func AnimatedGIF(t testing.TB, width, height int, colors ...color.Color) []byte {
	t.Helper()
	anim := &gif.GIF{}
	for _, c := range colors {
		palette := color.Palette{color.Black, c}
		frame := image.NewPaletted(image.Rect(0, 0, width, height), palette)
		for i := range frame.Pix {
			frame.Pix[i] = 1
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 10)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		t.Fatalf("failed to encode gif: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to name inside dir and returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// DecodeBounds decodes the image at path and returns its size.
func DecodeBounds(t testing.TB, path string) image.Point {
	t.Helper()
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return img.Bounds().Size()
}

// DecodeBlobBounds decodes data and returns its size.
func DecodeBlobBounds(t testing.TB, data []byte) image.Point {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode image: %v", err)
	}
	return img.Bounds().Size()
}

// Glob returns the files in dir matching pattern.
func Glob(t testing.TB, dir, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		t.Fatalf("bad glob %q: %v", pattern, err)
	}
	return matches
}
