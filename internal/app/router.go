package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/procuredesk/procuredesk/internal/inventory"
	"github.com/procuredesk/procuredesk/internal/lpo"
	"github.com/procuredesk/procuredesk/internal/masterdata/departments"
	"github.com/procuredesk/procuredesk/internal/masterdata/suppliers"
	"github.com/procuredesk/procuredesk/internal/platform/httpx"
	"github.com/procuredesk/procuredesk/internal/pricing"
	"github.com/procuredesk/procuredesk/internal/procurement"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	ProcurementHandler *procurement.Handler
	LPOHandler         *lpo.Handler
	PricingHandler     *pricing.Handler
	InventoryHandler   *inventory.Handler
	DepartmentsHandler *departments.Handler
	SuppliersHandler   *suppliers.Handler

	// RefreshTrigger runs one highlight refresh cycle on demand.
	RefreshTrigger func(ctx context.Context) error
}

// NewRouter constructs the chi.Router serving the local UI.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	if !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// the SSE stream outlives any request deadline, so the inventory
		// routes mount outside the timeout group
		params.InventoryHandler.MountRoutes(r)

		r.Group(func(r chi.Router) {
			if params.Config != nil && params.Config.AppRequestTimeout > 0 {
				r.Use(chimw.Timeout(params.Config.AppRequestTimeout))
			}
			params.DepartmentsHandler.MountRoutes(r)
			params.SuppliersHandler.MountRoutes(r)
			r.Route("/departments/{department}", func(r chi.Router) {
				params.ProcurementHandler.MountRoutes(r)
				params.LPOHandler.MountRoutes(r)
				params.PricingHandler.MountRoutes(r)
				params.InventoryHandler.MountDepartmentRoutes(r)
			})
			if params.RefreshTrigger != nil {
				r.Post("/refresh", func(w http.ResponseWriter, req *http.Request) {
					if err := params.RefreshTrigger(req.Context()); err != nil {
						params.Logger.Error("manual refresh", slog.Any("error", err))
						httpx.RespondError(w, err)
						return
					}
					w.WriteHeader(http.StatusNoContent)
				})
			}
		})
	})

	return r
}
