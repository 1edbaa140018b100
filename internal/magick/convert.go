package magick

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Format converts the image to the format named by ext ("png", ".jpg") and
// moves it to the matching path. Multi-frame sources may make the tool write
// numbered page files (stem-0.png, stem-1.png, ...) instead of one file; page
// selects which of them becomes the image. Page files never outlive the call.
//
// The file at the old path is removed when the extension changes, including a
// caller's file wrapped with New.
func (img *Image) Format(ctx context.Context, ext string, page int) error {
	if img.destroyed {
		return ErrDestroyed
	}
	ext = strings.TrimPrefix(normalizeExt(ext), ".")
	if ext == "" {
		return operationalError(nil, "format requires an extension")
	}

	oldPath := img.path
	stem := strings.TrimSuffix(oldPath, filepath.Ext(oldPath))
	newPath := stem + "." + ext

	defer func() {
		if err := removePageFiles(stem, ext); err != nil {
			img.tool.logger.Warn().Err(err).Str("stem", stem).Msg("failed to remove page files")
		}
	}()

	if _, err := img.run(ctx, cmdMogrify, "-format", ext, oldPath); err != nil {
		return err
	}

	if newPath != oldPath {
		if err := os.Remove(oldPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			img.tool.logger.Warn().Err(err).Str("path", oldPath).Msg("failed to remove pre-conversion file")
		}
	}
	img.path = newPath
	if img.temp != nil {
		img.temp.path = newPath
	}

	if !fileExists(newPath) {
		pagePath := pageFileName(stem, page, ext)
		if err := copyFile(pagePath, newPath); err != nil && !fileExists(newPath) {
			return img.destroyOnError(operationalError(err, "unable to format to %s", ext))
		}
	}
	return nil
}

func pageFileName(stem string, page int, ext string) string {
	return fmt.Sprintf("%s-%d.%s", stem, page, ext)
}

// removePageFiles deletes every stem-<n>.ext file.
func removePageFiles(stem, ext string) error {
	dir, base := filepath.Split(stem)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var errs []error
	suffix := "." + ext
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rest, ok := strings.CutPrefix(entry.Name(), base+"-")
		if !ok {
			continue
		}
		num, ok := strings.CutSuffix(rest, suffix)
		if !ok || !isDigits(num) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
