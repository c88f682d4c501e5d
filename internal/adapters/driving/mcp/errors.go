// Package mcp provides an MCP (Model Context Protocol) server adapter for
// docqa. It lets AI assistants search the indexed documentation and ask
// questions about it.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
