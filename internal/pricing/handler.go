package pricing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/procuredesk/procuredesk/internal/platform/httpx"
)

// Handler exposes pricing, the archive and the trend feed.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the pricing routes. The router is expected to
// carry a {department} URL parameter.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pricing/active", h.active)
	r.Get("/pricing/archived", h.archived)
	r.Get("/pricing/trends", h.trends)
	r.Post("/pricing/trends", h.updateTrend)
	r.Post("/pricing/{number}/prices", h.savePrices)
	r.Post("/pricing/{number}/revert", h.revert)
	r.Get("/pricing/{number}/valuation", h.valuation)
}

func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	lpos, err := h.service.ActiveUnpriced(r.Context(), chi.URLParam(r, "department"))
	if err != nil {
		h.logger.Error("list unpriced orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lpos)
}

func (h *Handler) archived(w http.ResponseWriter, r *http.Request) {
	lpos, err := h.service.Archived(r.Context(), chi.URLParam(r, "department"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lpos)
}

func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.service.Trends(r.Context(), chi.URLParam(r, "department"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, trends)
}

type trendUpdateRequest struct {
	ResourceCode string `json:"resource_code"`
	Description  string `json:"item_description"`
	Unit         string `json:"unit"`
	Price        string `json:"price"`
}

func (h *Handler) updateTrend(w http.ResponseWriter, r *http.Request) {
	var req trendUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	err := h.service.UpdatePriceTrend(r.Context(), chi.URLParam(r, "department"),
		req.ResourceCode, req.Description, req.Unit, req.Price)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type savePricesRequest struct {
	Entries map[int]PriceEntry `json:"entries"`
}

func (h *Handler) savePrices(w http.ResponseWriter, r *http.Request) {
	var req savePricesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	err := h.service.SaveLineItemPrices(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number"), req.Entries)
	if err != nil {
		h.logger.Error("save line item prices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) revert(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RevertArchivedLPO(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) valuation(w http.ResponseWriter, r *http.Request) {
	val, err := h.service.Valuate(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, val)
}
