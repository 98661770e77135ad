package procurement

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/procuredesk/procuredesk/internal/platform/httpx"
)

// Handler exposes the purchase request lifecycle to the UI.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the purchase request routes. The router is expected
// to carry a {department} URL parameter.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/prs", h.listPending)
	r.Get("/prs/rejected", h.listRejected)
	r.Post("/prs", h.submit)
	r.Put("/prs/{number}/details", h.saveDetails)
	r.Post("/prs/{number}/approve", h.approve)
	r.Post("/prs/{number}/reject", h.reject)
	r.Post("/prs/{number}/restore", h.restore)
	r.Delete("/prs/{number}", h.deletePending)
	r.Delete("/prs/rejected/{number}", h.deleteRejected)
}

type submitRequest struct {
	Number       string              `json:"pr_number"`
	RequiredDate string              `json:"required_date"`
	Priority     string              `json:"priority" validate:"omitempty,oneof=Low Normal High Urgent"`
	Description  string              `json:"description"`
	Items        []submitItemRequest `json:"items" validate:"required,min=1,dive"`
}

type submitItemRequest struct {
	ResourceCode string  `json:"resource_code" validate:"required"`
	Description  string  `json:"item_description"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	UnitPrice    float64 `json:"unit_price" validate:"gte=0"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}
	input := SubmitInput{
		Department:   chi.URLParam(r, "department"),
		Number:       req.Number,
		RequiredDate: req.RequiredDate,
		Priority:     req.Priority,
		Description:  req.Description,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, LineItemInput(item))
	}
	pr, err := h.service.Submit(r.Context(), input)
	if err != nil {
		h.logger.Error("submit purchase request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, pr)
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	prs, err := h.service.FilterPending(r.Context(), chi.URLParam(r, "department"),
		r.URL.Query().Get("q"), r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Error("list pending purchase requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, prs)
}

func (h *Handler) listRejected(w http.ResponseWriter, r *http.Request) {
	prs, err := h.service.FilterRejected(r.Context(), chi.URLParam(r, "department"),
		r.URL.Query().Get("q"), r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Error("list rejected purchase requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, prs)
}

type detailsRequest struct {
	LPONumber    string `json:"lpo_number"`
	SupplierName string `json:"supplier_name"`
	PhoneNumber  string `json:"phone_number"`
}

func (h *Handler) saveDetails(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	err := h.service.SaveApprovalDetails(r.Context(), ApprovalDetailsInput{
		Department:   chi.URLParam(r, "department"),
		Number:       chi.URLParam(r, "number"),
		LPONumber:    req.LPONumber,
		SupplierName: req.SupplierName,
		PhoneNumber:  req.PhoneNumber,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	lpoNumber, err := h.service.Approve(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number"))
	if err != nil {
		h.logger.Error("approve purchase request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"lpo_number": lpoNumber})
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}
	if err := h.service.Reject(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number"), req.Reason); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Restore(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deletePending(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePending(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteRejected(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRejected(r.Context(), chi.URLParam(r, "department"), chi.URLParam(r, "number")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validationDetail(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return "invalid field: " + errs[0].Field()
	}
	return err.Error()
}
