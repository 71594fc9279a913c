package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/toolshelf/internal/httpserver/deps"
)

// Notifications lists the feed. ?after=<id> returns only newer entries.
func Notifications(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var after int64
		if v := r.URL.Query().Get("after"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "after must be a non-negative integer", Field: "after"})
				return
			}
			after = n
		}
		writeJSON(w, http.StatusOK, d.Notifications.Since(after))
	}
}
