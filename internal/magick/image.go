package magick

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
)

// Image is an image file on disk operated on through the external tool.
//
// An Image created by FromBlob, FromReader, Open or Create owns a temp file
// that Destroy removes. An Image created by New works directly on the
// caller's path and never deletes it.
type Image struct {
	tool      *Tool
	path      string
	temp      *TempFile
	destroyed bool
}

// FromBlob writes data to a new temp file with extension ext and validates it.
// The returned error is ErrInvalid if the tool cannot decode data.
func (t *Tool) FromBlob(ctx context.Context, data []byte, ext string) (*Image, error) {
	return t.FromReader(ctx, bytes.NewReader(data), ext)
}

// FromReader copies r into a new temp file with extension ext and validates it.
func (t *Tool) FromReader(ctx context.Context, r io.Reader, ext string) (*Image, error) {
	return t.Create(ctx, ext, true, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
}

// Create makes an Image from a new temp file filled by fill. With validate
// false the identify check is skipped, which is useful when fill writes a
// placeholder that a later command will replace.
func (t *Tool) Create(ctx context.Context, ext string, validate bool, fill func(io.Writer) error) (*Image, error) {
	tf, err := t.newTempFile(ext, fill)
	if err != nil {
		return nil, err
	}
	img := &Image{tool: t, path: tf.Path(), temp: tf}
	if validate {
		if err := img.validate(ctx); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// Open reads the file at path into a private temp copy and validates it.
// The file at path is never modified.
func (t *Tool) Open(ctx context.Context, path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, operationalError(err, "failed to read %s", path)
	}
	return t.FromBlob(ctx, data, filepath.Ext(path))
}

// FromFile is an alias for Open.
func (t *Tool) FromFile(ctx context.Context, path string) (*Image, error) {
	return t.Open(ctx, path)
}

// New validates the image at path and operates on it in place.
// Mutations change the caller's file; Destroy leaves it on disk.
func (t *Tool) New(ctx context.Context, path string) (*Image, error) {
	img := &Image{tool: t, path: path}
	if err := img.validate(ctx); err != nil {
		return nil, err
	}
	return img, nil
}

// Path returns the image's current file path.
func (img *Image) Path() string {
	return img.path
}

// Owned reports whether the image owns a temp file.
func (img *Image) Owned() bool {
	return img.temp != nil
}

// Destroyed reports whether the image has been destroyed.
func (img *Image) Destroyed() bool {
	return img.destroyed
}

// Destroy releases the image. An owned temp file is deleted; a caller path
// given to New is left alone. The image cannot be used afterwards.
func (img *Image) Destroy() error {
	img.destroyed = true
	if img.temp == nil {
		return nil
	}
	err := img.temp.Remove()
	img.temp = nil
	return err
}

// destroyOnError destroys the image when err is non-nil and returns err.
func (img *Image) destroyOnError(err error) error {
	if err != nil {
		if derr := img.Destroy(); derr != nil {
			img.tool.logger.Warn().Err(derr).Str("path", img.path).Msg("failed to destroy image")
		}
	}
	return err
}

// run executes a command for this image, destroying it on failure.
func (img *Image) run(ctx context.Context, name string, args ...string) (string, error) {
	if img.destroyed {
		return "", ErrDestroyed
	}
	res, err := img.tool.run(ctx, name, args...)
	if err != nil {
		return "", img.destroyOnError(err)
	}
	return res.Output, nil
}

func (img *Image) validate(ctx context.Context) error {
	_, err := img.run(ctx, cmdIdentify, img.path)
	return err
}

// Valid reports whether the tool still recognizes the file as an image.
// Unlike other operations a failed check does not destroy the image.
func (img *Image) Valid(ctx context.Context) bool {
	if img.destroyed {
		return false
	}
	_, err := img.tool.run(ctx, cmdIdentify, img.path)
	return err == nil
}

// Write copies the image to outputPath and validates the copy.
func (img *Image) Write(ctx context.Context, outputPath string) error {
	if img.destroyed {
		return ErrDestroyed
	}
	if err := copyFile(img.path, outputPath); err != nil {
		return img.destroyOnError(operationalError(err, "failed to write %s", outputPath))
	}
	_, err := img.run(ctx, cmdIdentify, outputPath)
	return err
}

// WriteTo streams the image bytes to w.
func (img *Image) WriteTo(w io.Writer) (int64, error) {
	if img.destroyed {
		return 0, ErrDestroyed
	}
	f, err := os.Open(img.path)
	if err != nil {
		return 0, operationalError(err, "failed to open %s", img.path)
	}
	defer f.Close()
	return io.Copy(w, f)
}

// Blob returns the full image file content.
func (img *Image) Blob() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := img.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// fileExists reports whether path names an existing file.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
