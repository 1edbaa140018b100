// Package magick manipulates images by delegating all work to an installed
// ImageMagick or GraphicsMagick toolchain.
//
// An Image is a file on disk. Images built from bytes or opened from a path
// own a private temporary copy, so the caller's original file is never
// modified. Every read runs "identify", every mutation runs "mogrify" in
// place, and Composite runs "composite" to produce a new Image.
//
// # Tool
//
// Tool carries the configuration shared by all images it creates: the
// processor prefix ("" for ImageMagick 6, "magick" for ImageMagick 7, "gm" for
// GraphicsMagick), the default command timeout, the temp directory, and the
// logger. A Tool is configured once in NewTool and is immutable afterwards.
//
//	tool := magick.NewTool(magick.WithTimeout(30 * time.Second))
//	img, err := tool.Open(ctx, "photo.jpg")
//	if err != nil {
//	    return err
//	}
//	defer img.Destroy()
//
//	if err := img.Combine(ctx, func(o *magick.Options) {
//	    o.Resize("800x600").Quality(85).Strip()
//	}); err != nil {
//	    return err
//	}
//	return img.Write(ctx, "thumb.jpg")
//
// # Errors
//
// A failed command is reported as a *CommandError of one of two kinds.
// KindInvalid means the tool could not decode the input; KindError covers
// every other failure including timeouts. Use errors.Is with ErrInvalid or
// ErrCommand to tell them apart.
//
// # Destruction
//
// Any failed command run on behalf of an Image destroys it before the error is
// returned: its owned temp file is removed and every later call returns
// ErrDestroyed. Destroyed reports that state.
//
// # Thread Safety
//
// Tool is safe for concurrent use. An Image is not; callers that share one
// between goroutines must synchronize access themselves.
package magick
