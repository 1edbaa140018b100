package magick

import (
	"context"
	"strconv"

	"github.com/ironsheep/magick-tools-mcp/internal/command"
)

// Run passes args straight to mogrify, followed by the image path, and
// transforms the image in place.
func (img *Image) Run(ctx context.Context, args ...string) error {
	if img.destroyed {
		return ErrDestroyed
	}
	full := make([]string, 0, len(args)+1)
	full = append(full, args...)
	full = append(full, img.path)
	_, err := img.run(ctx, cmdMogrify, full...)
	return err
}

// ApplyFlag runs mogrify with a single flag: "-name args... path". A name that
// already starts with "-" or "+" is used as-is. It returns the image to allow
// chaining.
func (img *Image) ApplyFlag(ctx context.Context, name string, args ...string) (*Image, error) {
	if err := img.Run(ctx, flagTokens(name, args...)...); err != nil {
		return img, err
	}
	return img, nil
}

// Combine collects flags with build and applies them in one mogrify call.
func (img *Image) Combine(ctx context.Context, build func(*Options)) error {
	opts := NewOptions()
	build(opts)
	return img.Apply(ctx, opts)
}

// Apply runs the flags accumulated in opts as one mogrify call.
func (img *Image) Apply(ctx context.Context, opts *Options) error {
	return img.Run(ctx, opts.Args()...)
}

// Collapse reduces a multi-frame image to its first frame at full quality.
func (img *Image) Collapse(ctx context.Context) error {
	if img.destroyed {
		return ErrDestroyed
	}
	_, err := img.run(ctx, cmdMogrify, "-quality", "100", img.path+"[0]")
	return err
}

// Resize scales the image to geometry, e.g. "800x600" or "50%".
func (img *Image) Resize(ctx context.Context, geometry string) error {
	_, err := img.ApplyFlag(ctx, "resize", geometry)
	return err
}

// Rotate rotates the image clockwise by degrees.
func (img *Image) Rotate(ctx context.Context, degrees float64) error {
	_, err := img.ApplyFlag(ctx, "rotate", strconv.FormatFloat(degrees, 'f', -1, 64))
	return err
}

// Quality sets the compression quality.
func (img *Image) Quality(ctx context.Context, quality int) error {
	_, err := img.ApplyFlag(ctx, "quality", strconv.Itoa(quality))
	return err
}

// Strip removes profiles and comments.
func (img *Image) Strip(ctx context.Context) error {
	_, err := img.ApplyFlag(ctx, "strip")
	return err
}

func flagTokens(name string, args ...string) []string {
	if !command.IsSwitch(name) {
		name = "-" + name
	}
	tokens := make([]string, 0, len(args)+1)
	tokens = append(tokens, name)
	return append(tokens, args...)
}
