package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/procuredesk/procuredesk/internal/app"
	"github.com/procuredesk/procuredesk/internal/inventory"
	"github.com/procuredesk/procuredesk/internal/lpo"
	"github.com/procuredesk/procuredesk/internal/masterdata/departments"
	"github.com/procuredesk/procuredesk/internal/masterdata/suppliers"
	"github.com/procuredesk/procuredesk/internal/platform/filestore"
	"github.com/procuredesk/procuredesk/internal/pricing"
	"github.com/procuredesk/procuredesk/internal/procurement"
	"github.com/procuredesk/procuredesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store, err := filestore.New(cfg.DataDir, logger)
	if err != nil {
		logger.Error("open data dir", slog.Any("error", err))
		os.Exit(1)
	}

	hub := inventory.NewHub(logger)
	catalog := inventory.NewCatalog(store)
	if err := catalog.Reload(ctx); err != nil {
		logger.Warn("load item catalog", slog.Any("error", err))
	}

	departmentService := departments.NewService(store, logger)
	supplierService := suppliers.NewService(store)

	lpoService := lpo.NewService(lpo.NewRepository(store), hub, logger, time.Now)
	procurementService := procurement.NewService(
		procurement.NewRepository(store), lpoService, hub, supplierService, catalog, logger, time.Now)
	pricingService := pricing.NewService(lpo.NewRepository(store), pricing.NewRepository(store), logger, time.Now)

	refresher := jobs.NewRefresher(cfg.RefreshInterval, departmentLister{departmentService},
		func(ctx context.Context, department string) error {
			codes, err := procurementService.PendingItemCodes(ctx, department)
			if err != nil {
				return err
			}
			hub.PublishPendingItems(department, codes)
			lpos, err := lpoService.List(ctx, department)
			if err != nil {
				return err
			}
			hub.PublishOpenOrderItems(department, lpo.OpenItemCodes(lpos))
			return nil
		}, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		ProcurementHandler: procurement.NewHandler(logger, procurementService),
		LPOHandler:         lpo.NewHandler(logger, lpoService),
		PricingHandler:     pricing.NewHandler(logger, pricingService),
		InventoryHandler:   inventory.NewHandler(logger, catalog, hub),
		DepartmentsHandler: departments.NewHandler(logger, departmentService),
		SuppliersHandler:   suppliers.NewHandler(logger, supplierService),
		RefreshTrigger:     refresher.Trigger,
	})

	// no WriteTimeout: the highlight event stream holds its response open
	server := &http.Server{
		Addr:        cfg.AppAddr,
		Handler:     router,
		ReadTimeout: cfg.AppReadTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening", slog.String("addr", cfg.AppAddr), slog.String("data_dir", store.Dir()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := refresher.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("stopped")
}

type departmentLister struct {
	service *departments.Service
}

func (d departmentLister) List(ctx context.Context) ([]string, error) {
	return d.service.List(ctx)
}
