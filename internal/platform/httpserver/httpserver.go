// Package httpserver builds the process's http.Server around the router.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server for the given router. The read-header timeout bounds
// slow clients; request deadlines belong to the handlers.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
