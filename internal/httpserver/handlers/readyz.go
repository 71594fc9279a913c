package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/toolshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
)

const readyzPingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Store string `json:"store"`
}

// Readyz reports ready only while the remote store answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzPingTimeout)
		defer cancel()

		if d.Store == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Store: "not configured"})
			return
		}
		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Store: "unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Store: "ok"})
	}
}
