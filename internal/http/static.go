package http

import (
	"context"
	"embed"
	"log/slog"
	"net/http"
	"time"
)

//go:embed static/sw.js static/manifest.json
var staticFiles embed.FS

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// staticAsset serves one embedded file with the given media type. The service
// worker is served with caching disabled.
func staticAsset(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := staticFiles.ReadFile("static/" + name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		if name == "sw.js" {
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Service-Worker-Allowed", "/")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// healthHandler pings the store with a short deadline.
func healthHandler(pinger Pinger, logger *slog.Logger) http.HandlerFunc {
	responder := newResponder(logger)
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger == nil {
			responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			responder.loggerFor(ctx).ErrorContext(ctx, "health check failed", "error", err)
			responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

type healthResponse struct {
	Status string `json:"status"`
}
