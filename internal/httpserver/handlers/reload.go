package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/toolshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
)

type reloadResponse struct {
	Status string `json:"status"`
	Tools  int    `json:"tools"` // catalog size when the reload was queued
}

// Reload queues a full reload of the catalog from the store. Only one
// reload waits at a time; a second request while one is queued gets 429.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("store reload queued", logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, reloadResponse{Status: "queued", Tools: d.Catalog.Len()})
		default:
			d.Logger.Warn("store reload already queued", logger.String("remote_ip", r.RemoteAddr))
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "reload already queued"})
		}
	}
}
