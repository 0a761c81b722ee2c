package httpapi

import (
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"ghcn-dashboard/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Handler wraps mux in the middleware chain used by the server.
func Handler(mux *http.ServeMux) http.Handler {
	return gzhttp.GzipHandler(requestID(requestLogger(mux)))
}
