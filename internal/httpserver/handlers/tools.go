package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/toolshelf/internal/domain"
	"github.com/MrSnakeDoc/toolshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
)

type pendingDeleteResponse struct {
	Tool     *domain.Tool `json:"tool"`
	Deadline time.Time    `json:"deadline"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	Defaults   []string `json:"defaults"`
}

type undoRequest struct {
	ID string `json:"id"`
}

// ListTools serves the projected list: ?category= and ?q= filter, ?sort= orders.
func ListTools(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mode, err := domain.ParseSort(q.Get("sort"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		tools := d.Catalog.View(domain.View{Category: q.Get("category"), Query: q.Get("q"), Sort: mode})
		writeJSON(w, http.StatusOK, tools)
	}
}

func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, categoriesResponse{
			Categories: d.Catalog.Categories(),
			Defaults:   domain.DefaultCategories,
		})
	}
}

func GetTool(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := d.Catalog.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, d.Logger, domain.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// CreateTool adds a tool optimistically and answers 202 with its temporary
// ID. With ?wait=true it answers 201 once the store has assigned the real ID.
func CreateTool(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft domain.Draft
		if err := decodeJSON(r, &draft, false); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		p, err := d.Catalog.Add(r.Context(), draft)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
		if !wait {
			writeJSON(w, http.StatusAccepted, p.Tool())
			return
		}

		id, err := p.Wait(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		t, ok := d.Catalog.Get(id)
		if !ok {
			// deleted between confirmation and now
			writeError(w, d.Logger, domain.ErrNotFound)
			return
		}
		w.Header().Set("Location", "/api/tools/"+id)
		writeJSON(w, http.StatusCreated, t)
	}
}

// UpdateTool applies a partial edit. Absent fields keep their value.
func UpdateTool(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.Patch
		if err := decodeJSON(r, &patch, false); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		t, err := d.Catalog.Edit(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func UseTool(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := d.Catalog.MarkUsed(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// DeleteTool hides the tool and starts its undo window.
func DeleteTool(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pd, err := d.Catalog.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusAccepted, pendingDeleteResponse{Tool: pd.Tool, Deadline: pd.Deadline})
	}
}

func PendingDelete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pd, ok := d.Catalog.PendingDelete()
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, pendingDeleteResponse{Tool: pd.Tool, Deadline: pd.Deadline})
	}
}

// UndoDelete restores the pending delete. The body {"id": ...} is optional;
// without it whatever is pending is restored.
func UndoDelete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req undoRequest
		if err := decodeJSON(r, &req, true); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		if !d.Catalog.Undo(req.ID) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "nothing to undo"})
			return
		}
		d.Logger.Debug("delete undone via endpoint", logger.String("tool_id", req.ID))
		w.WriteHeader(http.StatusNoContent)
	}
}
