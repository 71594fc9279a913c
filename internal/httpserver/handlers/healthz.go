package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/toolshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/toolshelf/internal/version"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Tools         int     `json:"tools"`
	PendingDelete bool    `json:"pending_delete"`
	version.Info
}

// Healthz is liveness only; it never touches the store.
func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		_, pending := d.Catalog.PendingDelete()
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: time.Since(start).Seconds(),
			Tools:         d.Catalog.Len(),
			PendingDelete: pending,
			Info:          d.Build,
		})
	}
}
