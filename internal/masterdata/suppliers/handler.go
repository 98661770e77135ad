package suppliers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/procuredesk/procuredesk/internal/platform/httpx"
)

// Handler exposes the supplier history.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the supplier routes on the root router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/suppliers", h.history)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.History(r.Context())
	if err != nil {
		h.logger.Error("load supplier history", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, names)
}
