package magick

import (
	"context"
	"sort"
)

// Composite places top over bottom with the composite command and returns the
// result as a new Image with extension ext. Each opts entry becomes
// "-key value" (or just "-key" for an empty value), in sorted key order.
//
// The inputs are left untouched whether or not the command succeeds.
func (t *Tool) Composite(ctx context.Context, top, bottom *Image, ext string, opts map[string]string) (*Image, error) {
	if top.destroyed || bottom.destroyed {
		return nil, ErrDestroyed
	}

	out, err := t.newTempFile(ext, nil)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, 2*len(keys)+3)
	for _, k := range keys {
		args = append(args, flagTokens(k)...)
		if v := opts[k]; v != "" {
			args = append(args, v)
		}
	}
	args = append(args, top.path, bottom.path, out.Path())

	if _, err := t.run(ctx, cmdComposite, args...); err != nil {
		_ = out.Remove()
		return nil, err
	}

	img := &Image{tool: t, path: out.Path(), temp: out}
	if err := img.validate(ctx); err != nil {
		return nil, err
	}
	return img, nil
}

// Composite places img over other. See Tool.Composite.
func (img *Image) Composite(ctx context.Context, other *Image, ext string, opts map[string]string) (*Image, error) {
	return img.tool.Composite(ctx, img, other, ext, opts)
}
