package magick

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// tempSeq numbers temp files within this process.
var tempSeq atomic.Uint64

// maxTempAttempts bounds the search for an unused temp name.
const maxTempAttempts = 10000

// TempFile is an exclusively owned temporary file holding image bytes.
// Its name is <prefix><pid>-<seq><ext>.
type TempFile struct {
	path    string
	removed bool
}

// Path returns the file's current path.
func (f *TempFile) Path() string {
	return f.path
}

// Removed reports whether Remove has run.
func (f *TempFile) Removed() bool {
	return f.removed
}

// Remove deletes the file. It is safe to call more than once; a file that is
// already gone is not an error.
func (f *TempFile) Remove() error {
	if f.removed {
		return nil
	}
	f.removed = true
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove temp file: %w", err)
	}
	return nil
}

// normalizeExt turns "png" or ".png" into ".png" and leaves "" alone.
func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// newTempFile creates a new temp file with the given extension and writes it
// with fill, which may be nil for an empty file. The file is closed before
// returning.
func (t *Tool) newTempFile(ext string, fill func(io.Writer) error) (*TempFile, error) {
	ext = normalizeExt(ext)
	pid := os.Getpid()

	var f *os.File
	for attempt := 0; ; attempt++ {
		name := fmt.Sprintf("%s%d-%d%s", t.tempPrefix, pid, tempSeq.Add(1), ext)
		var err error
		f, err = os.OpenFile(filepath.Join(t.tempDir, name), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) || attempt >= maxTempAttempts {
			return nil, operationalError(err, "failed to create temp file")
		}
	}

	tf := &TempFile{path: f.Name()}
	if fill != nil {
		if err := fill(f); err != nil {
			_ = f.Close()
			_ = tf.Remove()
			return nil, operationalError(err, "failed to write temp file")
		}
	}
	if err := f.Close(); err != nil {
		_ = tf.Remove()
		return nil, operationalError(err, "failed to close temp file")
	}

	t.logger.Trace().Str("path", tf.path).Msg("temp file created")
	return tf, nil
}
