package e2e

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/procuredesk/procuredesk/internal/inventory"
	"github.com/procuredesk/procuredesk/internal/lpo"
	"github.com/procuredesk/procuredesk/internal/masterdata/suppliers"
	"github.com/procuredesk/procuredesk/internal/platform/filestore"
	"github.com/procuredesk/procuredesk/internal/pricing"
	"github.com/procuredesk/procuredesk/internal/procurement"
)

type pipeline struct {
	store       *filestore.Store
	hub         *inventory.Hub
	procurement *procurement.Service
	lpo         *lpo.Service
	pricing     *pricing.Service
	suppliers   *suppliers.Service
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := filestore.New(t.TempDir(), logger)
	require.NoError(t, err)

	clock := func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }
	hub := inventory.NewHub(logger)
	catalog := inventory.NewCatalog(store)
	supplierService := suppliers.NewService(store)
	lpoService := lpo.NewService(lpo.NewRepository(store), hub, logger, clock)
	procurementService := procurement.NewService(
		procurement.NewRepository(store), lpoService, hub, supplierService, catalog, logger, clock)
	pricingService := pricing.NewService(lpo.NewRepository(store), pricing.NewRepository(store), logger, clock)

	return &pipeline{
		store:       store,
		hub:         hub,
		procurement: procurementService,
		lpo:         lpoService,
		pricing:     pricingService,
		suppliers:   supplierService,
	}
}

// Walks a request through the whole pipeline: submission, approval,
// deliveries, pricing and revert, against real files on disk.
func TestFullProcurementFlow(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	const dept = "Electrical"

	pr, err := p.procurement.Submit(ctx, procurement.SubmitInput{
		Department:  dept,
		Description: "cable pull, level 3",
		Items: []procurement.LineItemInput{
			{ResourceCode: "R1", Description: "Power cable 4mm", Unit: "roll", Quantity: 10, UnitPrice: 120},
			{ResourceCode: "R2", Description: "Conduit 25mm", Unit: "len", Quantity: 40, UnitPrice: 6},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "PR-001", pr.Number)

	require.NoError(t, p.procurement.SaveApprovalDetails(ctx, procurement.ApprovalDetailsInput{
		Department: dept, Number: pr.Number,
		LPONumber: "LPO/EL/2024/02", SupplierName: "Danway", PhoneNumber: "+971501234567",
	}))

	lpoNumber, err := p.procurement.Approve(ctx, dept, pr.Number)
	require.NoError(t, err)
	require.Equal(t, "LPO-001", lpoNumber)

	// approval emptied the pending set, the order opened the LPO set
	require.Empty(t, p.hub.Snapshot(dept).Pending)
	require.Equal(t, []string{"R1", "R2"}, p.hub.Snapshot(dept).OpenOrders)

	history, err := p.suppliers.History(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Danway"}, history)

	// two partial deliveries complete the order
	require.NoError(t, p.lpo.RecordDelivery(ctx, dept, lpoNumber, lpo.DeliveryInput{
		Date: "2024-01-03", Quantities: map[string]string{"R1": "10", "R2": "15"},
	}))
	report, err := p.lpo.Report(ctx, dept, lpoNumber)
	require.NoError(t, err)
	require.Equal(t, lpo.ReceivingPartial, report.Status)
	require.Equal(t, []string{"R2"}, p.hub.Snapshot(dept).OpenOrders)

	require.NoError(t, p.lpo.RecordDelivery(ctx, dept, lpoNumber, lpo.DeliveryInput{
		Date: "2024-01-08", Quantities: map[string]string{"R2": "25"},
	}))
	report, err = p.lpo.Report(ctx, dept, lpoNumber)
	require.NoError(t, err)
	require.Equal(t, lpo.ReceivingComplete, report.Status)
	require.Empty(t, p.hub.Snapshot(dept).OpenOrders)

	completed, err := p.lpo.ListCompleted(ctx, dept)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, "PR-001", completed[0].PRNumber)

	// pricing archives a copy and feeds the trend history
	require.NoError(t, p.pricing.SaveLineItemPrices(ctx, dept, lpoNumber, map[int]pricing.PriceEntry{
		0: {Price: "118.00"},
		1: {Price: "5.50"},
	}))
	active, err := p.pricing.ActiveUnpriced(ctx, dept)
	require.NoError(t, err)
	require.Empty(t, active)

	rate, err := p.pricing.CurrentUnitRate(ctx, dept, "R1", "Power cable 4mm")
	require.NoError(t, err)
	require.Equal(t, 118.0, rate)

	val, err := p.pricing.Valuate(ctx, dept, lpoNumber)
	require.NoError(t, err)
	require.Equal(t, 10*118.0+40*5.50, val.ReceivedTotal)
	require.Equal(t, 0.0, val.PendingTotal)

	// revert returns the order to the active list, trends keep history
	require.NoError(t, p.pricing.RevertArchivedLPO(ctx, dept, lpoNumber))
	active, err = p.pricing.ActiveUnpriced(ctx, dept)
	require.NoError(t, err)
	require.Len(t, active, 1)
	rate, err = p.pricing.CurrentUnitRate(ctx, dept, "R1", "Power cable 4mm")
	require.NoError(t, err)
	require.Equal(t, 118.0, rate)
}

// A fresh service stack over the same data directory sees the same state.
func TestStateSurvivesRestart(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }

	store, err := filestore.New(dir, logger)
	require.NoError(t, err)
	lpoService := lpo.NewService(lpo.NewRepository(store), nil, logger, clock)
	procurementService := procurement.NewService(
		procurement.NewRepository(store), lpoService, nil, nil, nil, logger, clock)

	pr, err := procurementService.Submit(ctx, procurement.SubmitInput{
		Department: "Plumbing",
		Items:      []procurement.LineItemInput{{ResourceCode: "P1", Quantity: 3, UnitPrice: 40}},
	})
	require.NoError(t, err)

	reopened, err := filestore.New(dir, logger)
	require.NoError(t, err)
	reopenedService := procurement.NewService(
		procurement.NewRepository(reopened), lpoService, nil, nil, nil, logger, clock)

	pending, err := reopenedService.ListPending(ctx, "Plumbing")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, pr.Number, pending[0].Number)
	require.Equal(t, 120.0, pending[0].TotalValue)
}
