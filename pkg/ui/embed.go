// Package ui provides the embedded web UI served by the tikgrab server.
package ui

import (
	_ "embed"
)

// IndexHTML is the resolver page. It talks to /api/v1 and keeps its
// session id in localStorage, sending it as X-Session-ID.
//
//go:embed index.html
var IndexHTML []byte
