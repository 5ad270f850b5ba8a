package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/akitas-arrow/child-name/internal/platform/requestctx"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

var startTime = time.Now()

type healthHandlers struct {
	store Pinger
}

func (h healthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h healthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			requestctx.Logger(r.Context()).Warn("readiness check failed", zap.Error(err))
			writeHealth(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"checks": map[string]string{"store": "error"},
			})
			return
		}
	}
	writeHealth(w, http.StatusOK, map[string]any{
		"status": "ok",
		"checks": map[string]string{"store": "ok"},
	})
}

func writeHealth(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
