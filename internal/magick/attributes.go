package magick

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Attribute names understood by Attribute.
const (
	AttrFormat     = "format"
	AttrType       = "type"
	AttrWidth      = "width"
	AttrHeight     = "height"
	AttrDimensions = "dimensions"
	AttrSize       = "size"
	AttrOriginalAt = "original_at"
)

// exifPrefix marks attribute names passed through as %[EXIF:...] queries.
const exifPrefix = "EXIF:"

// exifTimeLayout is the EXIF DateTimeOriginal format.
const exifTimeLayout = "2006:01:02 15:04:05"

// lineEnd terminates every identify format string so that each frame of a
// multi-frame image prints on its own line. It is the escape sequence the
// tool expands, not a literal newline.
var lineEnd = func() string {
	if runtime.GOOS == "windows" {
		return `\r\n`
	}
	return `\n`
}()

// Attribute looks up a named attribute:
//
//   - "format", "type": the tool's format name, e.g. "PNG"
//   - "width", "height": int
//   - "dimensions": [2]int{width, height}
//   - "size": int64 file size in bytes, read from the filesystem
//   - "original_at": time.Time from EXIF DateTimeOriginal, or nil if absent
//   - "EXIF:<tag>": the raw EXIF value as a string
//   - anything else: used verbatim as an identify -format string
//
// Only the first frame's line is returned for multi-frame images.
func (img *Image) Attribute(ctx context.Context, name string) (any, error) {
	switch name {
	case AttrFormat, AttrType:
		return img.Type(ctx)
	case AttrWidth:
		return img.Width(ctx)
	case AttrHeight:
		return img.Height(ctx)
	case AttrDimensions:
		return img.Dimensions(ctx)
	case AttrSize:
		return img.Size()
	case AttrOriginalAt:
		at, ok, err := img.OriginalAt(ctx)
		if err != nil || !ok {
			return nil, err
		}
		return at, nil
	}
	if len(name) >= len(exifPrefix) && strings.EqualFold(name[:len(exifPrefix)], exifPrefix) {
		return img.query(ctx, "%["+name+"]")
	}
	return img.query(ctx, name)
}

// query runs identify with format and returns the first output line.
func (img *Image) query(ctx context.Context, format string) (string, error) {
	out, err := img.run(ctx, cmdIdentify, "-format", format+lineEnd, img.path)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(out, "\n")
	return strings.TrimRight(line, "\r"), nil
}

// queryInt runs a single-field numeric query.
func (img *Image) queryInt(ctx context.Context, format string) (int, error) {
	out, err := img.query(ctx, format)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, operationalError(err, "unexpected identify output %q", out)
	}
	return n, nil
}

// Type returns the tool's name for the image format, e.g. "JPEG".
func (img *Image) Type(ctx context.Context) (string, error) {
	out, err := img.query(ctx, "%m")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// MimeType returns the MIME type derived from the format, e.g. "image/jpeg".
func (img *Image) MimeType(ctx context.Context) (string, error) {
	format, err := img.Type(ctx)
	if err != nil {
		return "", err
	}
	return "image/" + strings.ToLower(format), nil
}

// Width returns the width of the first frame in pixels.
func (img *Image) Width(ctx context.Context) (int, error) {
	return img.queryInt(ctx, "%w")
}

// Height returns the height of the first frame in pixels.
func (img *Image) Height(ctx context.Context) (int, error) {
	return img.queryInt(ctx, "%h")
}

// Dimensions returns the width and height of the first frame with a single
// identify call.
func (img *Image) Dimensions(ctx context.Context) ([2]int, error) {
	out, err := img.query(ctx, "%w %h")
	if err != nil {
		return [2]int{}, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return [2]int{}, operationalError(nil, "unexpected identify output %q", out)
	}
	var dims [2]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return [2]int{}, operationalError(err, "unexpected identify output %q", out)
		}
		dims[i] = n
	}
	return dims, nil
}

// Size returns the file size in bytes. The tool is not consulted because it
// reports the first frame's size for multi-frame files.
func (img *Image) Size() (int64, error) {
	if img.destroyed {
		return 0, ErrDestroyed
	}
	info, err := os.Stat(img.path)
	if err != nil {
		return 0, operationalError(err, "failed to stat %s", img.path)
	}
	return info.Size(), nil
}

// OriginalAt returns the EXIF original capture time in local time. ok is
// false when the tag is missing or cannot be parsed.
func (img *Image) OriginalAt(ctx context.Context) (at time.Time, ok bool, err error) {
	out, err := img.query(ctx, "%[EXIF:DateTimeOriginal]")
	if err != nil {
		return time.Time{}, false, err
	}
	at, perr := parseEXIFTime(out)
	if perr != nil {
		return time.Time{}, false, nil
	}
	return at, true, nil
}

func parseEXIFTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty EXIF time")
	}
	return time.ParseInLocation(exifTimeLayout, value, time.Local)
}
