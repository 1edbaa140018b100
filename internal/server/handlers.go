package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/magick-tools-mcp/internal/magick"
)

// JSON-RPC error codes returned by tools/call.
const (
	codeInvalidParams = -32602
	codeToolFailed    = -32000
	codeInvalidImage  = -32001
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "magick_open", "magick_convert").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Input the image tool cannot decode returns code -32001; every other tool
// failure returns -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug().Err(err).Str("tool", params.Name).Msg("tool failed")
		if errors.Is(err, magick.ErrInvalid) {
			return s.errorResponse(req.ID, codeInvalidImage, "Invalid image", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Looks up images by handle
//  4. Calls the magick operation
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Lifecycle
	case "magick_open":
		return s.handleOpen(ctx, args)
	case "magick_from_base64":
		return s.handleFromBase64(ctx, args)
	case "magick_close":
		return s.handleClose(args)

	// Queries
	case "magick_info":
		return s.handleInfo(ctx, args)
	case "magick_attribute":
		return s.handleAttribute(ctx, args)

	// Mutations
	case "magick_transform":
		return s.handleTransform(ctx, args)
	case "magick_apply":
		return s.handleApply(ctx, args)
	case "magick_convert":
		return s.handleConvert(ctx, args)
	case "magick_collapse":
		return s.handleCollapse(ctx, args)
	case "magick_composite":
		return s.handleComposite(ctx, args)

	// Output
	case "magick_write":
		return s.handleWrite(ctx, args)
	case "magick_blob":
		return s.handleBlob(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// withImage runs fn on the image for handle. An image destroyed by a failed
// operation is dropped from the store.
func (s *Server) withImage(handle string, fn func(*magick.Image) (interface{}, error)) (interface{}, error) {
	img, err := s.store.Get(handle)
	if err != nil {
		return nil, err
	}
	result, err := fn(img)
	if img.Destroyed() {
		_ = s.store.Evict(handle)
	}
	return result, err
}

// ImageInfo describes an open image.
type ImageInfo struct {
	// Handle identifies the image in later tool calls.
	Handle string `json:"handle"`

	// Format is the tool's format name, e.g. "PNG".
	Format string `json:"format"`

	// MimeType is derived from Format, e.g. "image/png".
	MimeType string `json:"mime_type"`

	// Width and Height are the first frame's dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// FileSizeBytes is the size of the image file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// describe collects ImageInfo for img.
func describe(ctx context.Context, handle string, img *magick.Image) (*ImageInfo, error) {
	format, err := img.Type(ctx)
	if err != nil {
		return nil, err
	}
	dims, err := img.Dimensions(ctx)
	if err != nil {
		return nil, err
	}
	size, err := img.Size()
	if err != nil {
		return nil, err
	}
	return &ImageInfo{
		Handle:        handle,
		Format:        format,
		MimeType:      "image/" + strings.ToLower(format),
		Width:         dims[0],
		Height:        dims[1],
		FileSizeBytes: size,
	}, nil
}

// register stores a new image and describes it. The image is evicted again
// if it cannot be described.
func (s *Server) register(ctx context.Context, img *magick.Image) (interface{}, error) {
	handle := s.store.Put(img)
	info, err := describe(ctx, handle, img)
	if err != nil {
		_ = s.store.Evict(handle)
		return nil, err
	}
	return info, nil
}

// === Lifecycle Handlers ===

type openArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleOpen(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a openArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	img, err := s.tool.Open(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	return s.register(ctx, img)
}

type fromBase64Args struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

func (s *Server) handleFromBase64(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a fromBase64Args
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	img, err := s.tool.FromBlob(ctx, data, a.Format)
	if err != nil {
		return nil, err
	}
	return s.register(ctx, img)
}

type handleArgs struct {
	Handle string `json:"handle"`
}

func (s *Server) handleClose(args json.RawMessage) (interface{}, error) {
	var a handleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.store.Get(a.Handle); err != nil {
		return nil, err
	}
	if err := s.store.Evict(a.Handle); err != nil {
		return nil, err
	}
	return map[string]interface{}{"handle": a.Handle, "closed": true}, nil
}

// === Query Handlers ===

func (s *Server) handleInfo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a handleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.withImage(a.Handle, func(img *magick.Image) (interface{}, error) {
		return describe(ctx, a.Handle, img)
	})
}

type attributeArgs struct {
	Handle string `json:"handle"`
	Name   string `json:"name"`
}

func (s *Server) handleAttribute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a attributeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	return s.withImage(a.Handle, func(img *magick.Image) (interface{}, error) {
		value, err := img.Attribute(ctx, a.Name)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"name": a.Name, "value": value}, nil
	})
}

// === Mutation Handlers ===

// transformStep is one entry of a magick_transform call. Exactly one of Flag
// or Plus is set.
type transformStep struct {
	Flag string   `json:"flag"`
	Args []string `json:"args"`
	Plus string   `json:"plus"`
}

type transformArgs struct {
	Handle     string          `json:"handle"`
	Fill       string          `json:"fill"`
	Background string          `json:"background"`
	Gravity    string          `json:"gravity"`
	Steps      []transformStep `json:"steps"`
}

// buildOptions turns the transform arguments into mogrify options.
// Colors and gravity come first so later steps can use them.
func (a *transformArgs) buildOptions() (*magick.Options, error) {
	opts := magick.NewOptions()
	if a.Fill != "" {
		c, err := colorful.Hex(a.Fill)
		if err != nil {
			return nil, fmt.Errorf("invalid fill color %q: %w", a.Fill, err)
		}
		opts.Fill(c)
	}
	if a.Background != "" {
		c, err := colorful.Hex(a.Background)
		if err != nil {
			return nil, fmt.Errorf("invalid background color %q: %w", a.Background, err)
		}
		opts.Background(c)
	}
	if a.Gravity != "" {
		opts.Gravity(a.Gravity)
	}
	for i, step := range a.Steps {
		switch {
		case step.Flag != "" && step.Plus != "":
			return nil, fmt.Errorf("step %d: flag and plus are mutually exclusive", i)
		case step.Flag != "":
			opts.Flag(step.Flag, step.Args...)
		case step.Plus != "":
			opts.Plus(step.Plus)
		default:
			return nil, fmt.Errorf("step %d: flag or plus is required", i)
		}
	}
	if opts.Len() == 0 {
		return nil, fmt.Errorf("no transform steps given")
	}
	return opts, nil
}

func (s *Server) handleTransform(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a transformArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.buildOptions()
	if err != nil {
		return nil, err
	}
	return s.withImage(a.Handle, func(img *magick.Image) (interface{}, error) {
		if err := img.Apply(ctx, opts); err != nil {
			return nil, err
		}
		return describe(ctx, a.Handle, img)
	})
}

type applyArgs struct {
	Handle string   `json:"handle"`
	Flag   string   `json:"flag"`
	Args   []string `json:"args"`
}

func (s *Server) handleApply(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a applyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Flag == "" {
		return nil, fmt.Errorf("flag is required")
	}
	return s.withImage(a.Handle, func(img *magick.Image) (interface{}, error) {
		if _, err := img.ApplyFlag(ctx, a.Flag, a.Args...); err != nil {
			return nil, err
		}
		return describe(ctx, a.Handle, img)
	})
}

type convertArgs struct {
	Handle string `json:"handle"`
	Format string `json:"format"`
	Page   int    `json:"page"`
}

func (s *Server) handleConvert(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a convertArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Format == "" {
		return nil, fmt.Errorf("format is required")
	}
	if a.Page < 0 {
		return nil, fmt.Errorf("page must not be negative")
	}
	return s.withImage(a.Handle, func(img *magick.Image) (interface{}, error) {
		if err := img.Format(ctx, a.Format, a.Page); err != nil {
			return nil, err
		}
		return describe(ctx, a.Handle, img)
	})
}

func (s *Server) handleCollapse(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a handleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.withImage(a.Handle, func(img *magick.Image) (interface{}, error) {
		if err := img.Collapse(ctx); err != nil {
			return nil, err
		}
		return describe(ctx, a.Handle, img)
	})
}

type compositeArgs struct {
	Top     string            `json:"top"`
	Bottom  string            `json:"bottom"`
	Format  string            `json:"format"`
	Options map[string]string `json:"options"`
}

func (s *Server) handleComposite(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a compositeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Format == "" {
		a.Format = "png"
	}
	top, err := s.store.Get(a.Top)
	if err != nil {
		return nil, err
	}
	bottom, err := s.store.Get(a.Bottom)
	if err != nil {
		return nil, err
	}
	img, err := s.tool.Composite(ctx, top, bottom, a.Format, a.Options)
	if err != nil {
		return nil, err
	}
	return s.register(ctx, img)
}

// === Output Handlers ===

type writeArgs struct {
	Handle string `json:"handle"`
	Path   string `json:"path"`
}

func (s *Server) handleWrite(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a writeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return s.withImage(a.Handle, func(img *magick.Image) (interface{}, error) {
		if err := img.Write(ctx, a.Path); err != nil {
			return nil, err
		}
		return map[string]interface{}{"handle": a.Handle, "path": a.Path}, nil
	})
}

// BlobResult carries the encoded image bytes.
type BlobResult struct {
	MimeType    string `json:"mime_type"`
	SizeBytes   int    `json:"size_bytes"`
	ImageBase64 string `json:"image_base64"`
}

func (s *Server) handleBlob(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a handleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.withImage(a.Handle, func(img *magick.Image) (interface{}, error) {
		mime, err := img.MimeType(ctx)
		if err != nil {
			return nil, err
		}
		data, err := img.Blob()
		if err != nil {
			return nil, err
		}
		return &BlobResult{
			MimeType:    mime,
			SizeBytes:   len(data),
			ImageBase64: base64.StdEncoding.EncodeToString(data),
		}, nil
	})
}
