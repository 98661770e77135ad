package inventory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/procuredesk/procuredesk/internal/platform/httpx"
)

// Handler exposes the item catalog and the highlight feed.
type Handler struct {
	logger  *slog.Logger
	catalog *Catalog
	hub     *Hub
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, catalog *Catalog, hub *Hub) *Handler {
	return &Handler{logger: logger, catalog: catalog, hub: hub}
}

// MountRoutes registers the catalog and event-stream routes on the root
// router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventory/items", h.listItems)
	r.Get("/inventory/items/{code}", h.getItem)
	r.Post("/inventory/reload", h.reload)
	r.Get("/highlights/stream", h.stream)
}

// MountDepartmentRoutes registers the routes that live under a department
// subtree carrying a {department} URL parameter.
func (h *Handler) MountDepartmentRoutes(r chi.Router) {
	r.Get("/highlights", h.snapshot)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.catalog.List(r.URL.Query().Get("q")))
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(chi.URLParam(r, "code"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Reload(r.Context()); err != nil {
		h.logger.Error("reload catalog", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.hub.Snapshot(chi.URLParam(r, "department")))
}

// stream pushes highlight events over server-sent events until the client
// disconnects.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.Problem(w, http.StatusInternalServerError, "Streaming Unsupported", "")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub.ID)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: highlight\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
