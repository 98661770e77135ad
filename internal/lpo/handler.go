package lpo

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/procuredesk/procuredesk/internal/platform/httpx"
)

// Handler exposes the order registry and delivery reconciliation.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the order routes. The router is expected to carry
// a {department} URL parameter.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/lpos", h.list)
	r.Get("/lpos/completed", h.listCompleted)
	r.Get("/lpos/{number}", h.get)
	r.Get("/lpos/{number}/report", h.report)
	r.Delete("/lpos/{number}", h.delete)
	r.Post("/lpos/{number}/deliveries", h.recordDelivery)
	r.Put("/lpos/{number}/deliveries/{index}", h.editDelivery)
	r.Delete("/lpos/{number}/deliveries/{index}", h.deleteDelivery)
	r.Post("/lpos/{number}/delivered", h.markDelivered)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	lpos, err := h.service.Filter(r.Context(), chi.URLParam(r, "department"),
		r.URL.Query().Get("q"), r.URL.Query().Get("status"))
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lpos)
}

func (h *Handler) listCompleted(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListCompleted(r.Context(), chi.URLParam(r, "department"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Report(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type deliveryRequest struct {
	Date       string            `json:"date"`
	Quantities map[string]string `json:"quantities"`
}

func (h *Handler) recordDelivery(w http.ResponseWriter, r *http.Request) {
	var req deliveryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	err := h.service.RecordDelivery(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number"),
		DeliveryInput{Date: req.Date, Quantities: req.Quantities})
	if err != nil {
		h.logger.Error("record delivery", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) editDelivery(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Index", err.Error())
		return
	}
	var req deliveryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.service.EditDelivery(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number"), index,
		DeliveryInput{Date: req.Date, Quantities: req.Quantities}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteDelivery(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Index", err.Error())
		return
	}
	if err := h.service.DeleteDelivery(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number"), index); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markDelivered(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkDelivered(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
