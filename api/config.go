// Package api provides the HTTP surface for asking questions over notes and
// managing the notes themselves.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8787")
	ListenAddr string

	// MCP mounts the MCP tool server at /mcp when true.
	MCP bool
}
