// Package server implements the MCP (Model Context Protocol) server for the
// image tool wrapper.
//
// This package provides a JSON-RPC 2.0 server that exposes the magick package
// through the MCP protocol, so MCP clients can open images, inspect them, run
// mogrify transforms, convert and composite them, and write the results.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// The server stops at EOF on stdin or when its context is cancelled, even if
// no further input arrives.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Lifecycle:
//   - magick_open: Copy a file into a temp image and return a handle
//   - magick_from_base64: Create an image from base64 bytes
//   - magick_close: Release a handle and delete its temp file
//
// Queries:
//   - magick_info: Format, MIME type, dimensions and size
//   - magick_attribute: Named attribute, EXIF tag or raw format string
//
// Mutations:
//   - magick_transform: Several mogrify flags in one invocation
//   - magick_apply: A single mogrify flag
//   - magick_convert: Change format, selecting a page of multi-page sources
//   - magick_collapse: Keep only the first frame
//   - magick_composite: Overlay one image on another into a new handle
//
// Output:
//   - magick_write: Copy the image to a path
//   - magick_blob: Return the bytes as base64
//
// # Image Handles
//
// Opened images live in an ImageStore keyed by UUID handle. An image destroyed
// by a failed command is evicted from the store, so its handle stops
// resolving. Every image still open when Serve returns is destroyed.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32001 when the image tool cannot decode the input, -32000 for
//     any other tool failure, -32602 for malformed tools/call params
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	tool := magick.NewTool(magick.WithTimeout(time.Minute))
//	srv := server.New(tool, server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
