package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/magick-tools-mcp/internal/magick"
	"github.com/ironsheep/magick-tools-mcp/internal/testutil"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

// newMagickServer returns a server backed by the image tool, skipping the
// test when the tool is not installed.
func newMagickServer(t *testing.T) *Server {
	t.Helper()
	testutil.RequireMagick(t)
	tool := magick.NewTool(magick.WithTempDir(t.TempDir()), magick.WithTimeout(30*time.Second))
	s := New(tool)
	t.Cleanup(func() { _ = s.store.Clear() })
	return s
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	params, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	require.NoError(t, err)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	require.NotNil(t, resp)
	return resp
}

// callResult calls a tool that must succeed and decodes its text content into v.
func callResult(t *testing.T, s *Server, name string, args interface{}, v interface{}) {
	t.Helper()
	resp := callTool(t, s, name, args)
	require.Nil(t, resp.Error, "tool %s failed: %+v", name, resp.Error)

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), v))
}

func openPNG(t *testing.T, s *Server, width, height int, c color.Color) ImageInfo {
	t.Helper()
	path := testutil.WriteFile(t, t.TempDir(), "in.png", testutil.PNG(t, width, height, c))
	var info ImageInfo
	callResult(t, s, "magick_open", map[string]string{"path": path}, &info)
	return info
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "magick_nope", map[string]string{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeToolFailed, resp.Error.Code)
	assert.Contains(t, resp.Error.Data, "unknown tool")
}

func TestHandleToolsCall_UnknownHandle(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"magick_info", "magick_collapse", "magick_blob", "magick_close"} {
		t.Run(name, func(t *testing.T) {
			resp := callTool(t, s, name, map[string]string{"handle": "missing"})
			require.NotNil(t, resp.Error)
			assert.Equal(t, codeToolFailed, resp.Error.Code)
			assert.Contains(t, resp.Error.Data, "unknown image handle")
		})
	}
}

func TestHandleToolsCall_MissingArguments(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		tool string
		args map[string]interface{}
		want string
	}{
		{"magick_open", map[string]interface{}{}, "path is required"},
		{"magick_from_base64", map[string]interface{}{"data": "!!!"}, "invalid base64"},
		{"magick_attribute", map[string]interface{}{"handle": "h"}, "name is required"},
		{"magick_apply", map[string]interface{}{"handle": "h"}, "flag is required"},
		{"magick_convert", map[string]interface{}{"handle": "h"}, "format is required"},
		{"magick_convert", map[string]interface{}{"handle": "h", "format": "png", "page": -1}, "page must not be negative"},
		{"magick_write", map[string]interface{}{"handle": "h"}, "path is required"},
		{"magick_transform", map[string]interface{}{"handle": "h"}, "no transform steps"},
	}
	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.want, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			require.NotNil(t, resp.Error)
			assert.Equal(t, codeToolFailed, resp.Error.Code)
			assert.Contains(t, resp.Error.Data, tt.want)
		})
	}
}

func TestTransformArgs_BuildOptions(t *testing.T) {
	a := transformArgs{
		Fill:    "#ff0000",
		Gravity: "Center",
		Steps: []transformStep{
			{Flag: "resize", Args: []string{"50%"}},
			{Plus: "repage"},
		},
	}
	opts, err := a.buildOptions()
	require.NoError(t, err)
	assert.Equal(t, []string{"-fill", "#ff0000", "-gravity", "Center", "-resize", "50%", "+repage"}, opts.Args())

	_, err = (&transformArgs{Fill: "red"}).buildOptions()
	assert.ErrorContains(t, err, "invalid fill color")

	_, err = (&transformArgs{Background: "#zz"}).buildOptions()
	assert.ErrorContains(t, err, "invalid background color")

	_, err = (&transformArgs{Steps: []transformStep{{Flag: "a", Plus: "b"}}}).buildOptions()
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = (&transformArgs{Steps: []transformStep{{}}}).buildOptions()
	assert.ErrorContains(t, err, "flag or plus is required")
}

func TestHandleOpen(t *testing.T) {
	s := newMagickServer(t)
	info := openPNG(t, s, 100, 80, red)

	assert.NotEmpty(t, info.Handle)
	assert.Equal(t, "PNG", info.Format)
	assert.Equal(t, "image/png", info.MimeType)
	assert.Equal(t, 100, info.Width)
	assert.Equal(t, 80, info.Height)
	assert.Positive(t, info.FileSizeBytes)
	assert.Equal(t, 1, s.store.Len())
}

func TestHandleOpen_MissingFile(t *testing.T) {
	s := newMagickServer(t)
	resp := callTool(t, s, "magick_open", map[string]string{"path": filepath.Join(t.TempDir(), "nope.png")})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeToolFailed, resp.Error.Code)
	assert.Equal(t, 0, s.store.Len())
}

func TestHandleFromBase64(t *testing.T) {
	s := newMagickServer(t)
	data := base64.StdEncoding.EncodeToString(testutil.JPEG(t, 32, 16, blue))

	var info ImageInfo
	callResult(t, s, "magick_from_base64", map[string]string{"data": data, "format": "jpg"}, &info)
	assert.Equal(t, "JPEG", info.Format)
	assert.Equal(t, 32, info.Width)
	assert.Equal(t, 16, info.Height)
}

func TestHandleFromBase64_InvalidImage(t *testing.T) {
	s := newMagickServer(t)
	data := base64.StdEncoding.EncodeToString([]byte("this is not an image"))

	resp := callTool(t, s, "magick_from_base64", map[string]string{"data": data})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidImage, resp.Error.Code)
	assert.Equal(t, 0, s.store.Len())
}

func TestHandleAttribute(t *testing.T) {
	s := newMagickServer(t)
	info := openPNG(t, s, 12, 7, green)

	var got struct {
		Name  string      `json:"name"`
		Value interface{} `json:"value"`
	}
	callResult(t, s, "magick_attribute", map[string]string{"handle": info.Handle, "name": "width"}, &got)
	assert.Equal(t, float64(12), got.Value)

	callResult(t, s, "magick_attribute", map[string]string{"handle": info.Handle, "name": "%wx%h"}, &got)
	assert.Equal(t, "12x7", got.Value)
}

func TestHandleTransform(t *testing.T) {
	s := newMagickServer(t)
	info := openPNG(t, s, 100, 80, red)

	var out ImageInfo
	callResult(t, s, "magick_transform", map[string]interface{}{
		"handle":     info.Handle,
		"background": "#0000ff",
		"steps": []map[string]interface{}{
			{"flag": "resize", "args": []string{"50%"}},
			{"flag": "rotate", "args": []string{"90"}},
			{"plus": "repage"},
		},
	}, &out)
	assert.Equal(t, info.Handle, out.Handle)
	assert.Equal(t, 40, out.Width)
	assert.Equal(t, 50, out.Height)
}

func TestHandleApply_FailureEvicts(t *testing.T) {
	s := newMagickServer(t)
	info := openPNG(t, s, 10, 10, red)

	resp := callTool(t, s, "magick_apply", map[string]interface{}{
		"handle": info.Handle,
		"flag":   "no-such-option",
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeToolFailed, resp.Error.Code)
	assert.Equal(t, 0, s.store.Len())

	resp = callTool(t, s, "magick_info", map[string]string{"handle": info.Handle})
	require.NotNil(t, resp.Error)
}

func TestHandleConvert(t *testing.T) {
	s := newMagickServer(t)
	info := openPNG(t, s, 20, 10, red)

	var out ImageInfo
	callResult(t, s, "magick_convert", map[string]interface{}{"handle": info.Handle, "format": "jpg"}, &out)
	assert.Equal(t, "JPEG", out.Format)
	assert.Equal(t, "image/jpeg", out.MimeType)
}

func TestHandleCollapse(t *testing.T) {
	s := newMagickServer(t)
	path := testutil.WriteFile(t, t.TempDir(), "anim.gif", testutil.AnimatedGIF(t, 8, 8, red, green, blue))

	var info ImageInfo
	callResult(t, s, "magick_open", map[string]string{"path": path}, &info)

	var out ImageInfo
	callResult(t, s, "magick_collapse", map[string]string{"handle": info.Handle}, &out)
	assert.Equal(t, "GIF", out.Format)

	var frames struct {
		Value string `json:"value"`
	}
	callResult(t, s, "magick_attribute", map[string]string{"handle": info.Handle, "name": "%n"}, &frames)
	assert.Equal(t, "1", frames.Value)
}

func TestHandleComposite(t *testing.T) {
	s := newMagickServer(t)
	bottom := openPNG(t, s, 40, 30, blue)
	top := openPNG(t, s, 10, 10, red)

	var out ImageInfo
	callResult(t, s, "magick_composite", map[string]interface{}{
		"top":     top.Handle,
		"bottom":  bottom.Handle,
		"options": map[string]string{"gravity": "center"},
	}, &out)
	assert.NotEqual(t, top.Handle, out.Handle)
	assert.NotEqual(t, bottom.Handle, out.Handle)
	assert.Equal(t, "PNG", out.Format)
	assert.Equal(t, 40, out.Width)
	assert.Equal(t, 30, out.Height)
	assert.Equal(t, 3, s.store.Len())
}

func TestHandleWrite(t *testing.T) {
	s := newMagickServer(t)
	info := openPNG(t, s, 16, 9, green)
	dest := filepath.Join(t.TempDir(), "out dir", "written.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))

	var out map[string]interface{}
	callResult(t, s, "magick_write", map[string]string{"handle": info.Handle, "path": dest}, &out)
	assert.Equal(t, dest, out["path"])

	bounds := testutil.DecodeBounds(t, dest)
	assert.Equal(t, 16, bounds.X)
	assert.Equal(t, 9, bounds.Y)
}

func TestHandleBlob(t *testing.T) {
	s := newMagickServer(t)
	info := openPNG(t, s, 6, 4, red)

	var out BlobResult
	callResult(t, s, "magick_blob", map[string]string{"handle": info.Handle}, &out)
	assert.Equal(t, "image/png", out.MimeType)

	data, err := base64.StdEncoding.DecodeString(out.ImageBase64)
	require.NoError(t, err)
	assert.Len(t, data, out.SizeBytes)

	bounds := testutil.DecodeBlobBounds(t, data)
	assert.Equal(t, 6, bounds.X)
	assert.Equal(t, 4, bounds.Y)
}

func TestHandleClose(t *testing.T) {
	s := newMagickServer(t)
	info := openPNG(t, s, 5, 5, red)

	img, err := s.store.Get(info.Handle)
	require.NoError(t, err)
	tempPath := img.Path()
	require.FileExists(t, tempPath)

	var out map[string]interface{}
	callResult(t, s, "magick_close", map[string]string{"handle": info.Handle}, &out)
	assert.Equal(t, true, out["closed"])
	assert.Equal(t, 0, s.store.Len())
	assert.NoFileExists(t, tempPath)
	assert.True(t, img.Destroyed())
}
