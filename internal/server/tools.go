package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func handleProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Image handle returned by magick_open, magick_from_base64 or magick_composite",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Lifecycle
		{
			Name:        "magick_open",
			Description: "Open an image file. The file is copied to a private temp file, so later mutations never touch the original. Returns a handle with format and dimensions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "magick_from_base64",
			Description: "Create an image from base64-encoded bytes. The bytes are validated with identify before a handle is returned.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"data": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image bytes",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Optional file extension hint (e.g., 'png', '.jpg')",
					},
				},
				"required": []string{"data"},
			},
		},
		{
			Name:        "magick_close",
			Description: "Release an image handle and delete its temp file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty(),
				},
				"required": []string{"handle"},
			},
		},

		// Queries
		{
			Name:        "magick_info",
			Description: "Get the format, MIME type, dimensions and file size of an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty(),
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "magick_attribute",
			Description: "Query an image attribute. Known names: format, type, width, height, dimensions, size, original_at. Names starting with 'EXIF:' query that EXIF tag. Any other name is passed to identify -format verbatim (e.g., '%x %y').",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty(),
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Attribute name, EXIF:<tag>, or a raw format string",
					},
				},
				"required": []string{"handle", "name"},
			},
		},

		// Mutations
		{
			Name:        "magick_transform",
			Description: "Apply a sequence of mogrify flags to an image in a single tool invocation. Each step is either a '-flag' with arguments or a '+value' switch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty(),
					"fill": map[string]interface{}{
						"type":        "string",
						"description": "Optional fill color as hex (e.g., '#ff0000'), applied before the steps",
					},
					"background": map[string]interface{}{
						"type":        "string",
						"description": "Optional background color as hex, applied before the steps",
					},
					"gravity": map[string]interface{}{
						"type":        "string",
						"description": "Optional gravity (e.g., 'Center', 'NorthWest'), applied before the steps",
					},
					"steps": map[string]interface{}{
						"type":        "array",
						"description": "Ordered mogrify steps",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"flag": map[string]interface{}{
									"type":        "string",
									"description": "Flag name without the leading dash (e.g., 'resize')",
								},
								"args": map[string]interface{}{
									"type":        "array",
									"items":       map[string]interface{}{"type": "string"},
									"description": "Flag arguments (e.g., ['50%'])",
								},
								"plus": map[string]interface{}{
									"type":        "string",
									"description": "A '+' switch without the plus sign (e.g., 'repage')",
								},
							},
						},
					},
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "magick_apply",
			Description: "Apply a single mogrify flag to an image (e.g., flag 'rotate' with args ['90']).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty(),
					"flag": map[string]interface{}{
						"type":        "string",
						"description": "Flag name without the leading dash",
					},
					"args": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Flag arguments",
					},
				},
				"required": []string{"handle", "flag"},
			},
		},
		{
			Name:        "magick_convert",
			Description: "Convert an image to another format. For multi-page sources, 'page' selects which page to keep.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty(),
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Target extension (e.g., 'jpg', 'png')",
					},
					"page": map[string]interface{}{
						"type":        "integer",
						"description": "Page index to keep for multi-page sources. Default 0",
						"default":     0,
					},
				},
				"required": []string{"handle", "format"},
			},
		},
		{
			Name:        "magick_collapse",
			Description: "Collapse a multi-frame image (e.g., animated GIF) to its first frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty(),
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "magick_composite",
			Description: "Composite the top image over the bottom image into a new image. Neither input is modified.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"top": map[string]interface{}{
						"type":        "string",
						"description": "Handle of the overlay image",
					},
					"bottom": map[string]interface{}{
						"type":        "string",
						"description": "Handle of the base image",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Output extension. Default 'png'",
						"default":     "png",
					},
					"options": map[string]interface{}{
						"type":                 "object",
						"additionalProperties": map[string]interface{}{"type": "string"},
						"description":          "composite options keyed by name without the dash (e.g., {\"gravity\": \"center\"}). Empty values pass the bare switch",
					},
				},
				"required": []string{"top", "bottom"},
			},
		},

		// Output
		{
			Name:        "magick_write",
			Description: "Write the image to a file path. The written file is validated with identify.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty(),
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute destination path",
					},
				},
				"required": []string{"handle", "path"},
			},
		},
		{
			Name:        "magick_blob",
			Description: "Return the image bytes as base64 along with the MIME type.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty(),
				},
				"required": []string{"handle"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
