package magick

import (
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Options accumulates mogrify flags so several transforms run in one call.
// Tokens keep their insertion order and are never deduplicated.
type Options struct {
	args []string
}

// NewOptions returns an empty Options.
func NewOptions() *Options {
	return &Options{}
}

// Flag appends "-name" followed by args as separate tokens.
func (o *Options) Flag(name string, args ...string) *Options {
	return o.Push(flagTokens(name, args...)...)
}

// Plus appends "+value", the tool's form for negating or resetting a switch,
// e.g. Plus("repage").
func (o *Options) Plus(value string) *Options {
	return o.Push("+" + value)
}

// Push appends raw tokens unchanged. Every other builder goes through it.
func (o *Options) Push(tokens ...string) *Options {
	o.args = append(o.args, tokens...)
	return o
}

// Resize appends -resize geometry.
func (o *Options) Resize(geometry string) *Options {
	return o.Flag("resize", geometry)
}

// Gravity appends -gravity, e.g. "NorthWest" or "Center".
func (o *Options) Gravity(gravity string) *Options {
	return o.Flag("gravity", gravity)
}

// Quality appends -quality.
func (o *Options) Quality(quality int) *Options {
	return o.Flag("quality", strconv.Itoa(quality))
}

// Rotate appends -rotate.
func (o *Options) Rotate(degrees float64) *Options {
	return o.Flag("rotate", strconv.FormatFloat(degrees, 'f', -1, 64))
}

// Strip appends -strip.
func (o *Options) Strip() *Options {
	return o.Flag("strip")
}

// Fill appends -fill with c as a hex color.
func (o *Options) Fill(c colorful.Color) *Options {
	return o.Flag("fill", c.Clamped().Hex())
}

// Background appends -background with c as a hex color.
func (o *Options) Background(c colorful.Color) *Options {
	return o.Flag("background", c.Clamped().Hex())
}

// Args returns a copy of the accumulated tokens.
func (o *Options) Args() []string {
	return append([]string(nil), o.args...)
}

// Len returns the number of accumulated tokens.
func (o *Options) Len() int {
	return len(o.args)
}
