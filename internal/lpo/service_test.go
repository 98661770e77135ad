package lpo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/procuredesk/procuredesk/internal/platform/filestore"
	"github.com/procuredesk/procuredesk/internal/procurement"
	"github.com/procuredesk/procuredesk/internal/shared"
)

type fakeSink struct {
	last map[string][]string
}

func (f *fakeSink) PublishOpenOrderItems(department string, codes []string) {
	if f.last == nil {
		f.last = map[string][]string{}
	}
	f.last[department] = codes
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*Service, *fakeSink) {
	t.Helper()
	store, err := filestore.New(t.TempDir(), testLogger())
	require.NoError(t, err)
	sink := &fakeSink{}
	clock := func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) }
	return NewService(NewRepository(store), sink, testLogger(), clock), sink
}

func approvedPR(number string) procurement.PurchaseRequest {
	return procurement.PurchaseRequest{
		Number:       number,
		Department:   "site",
		RequestDate:  "28/12/2023",
		Status:       procurement.PRStatusPending,
		ItemsCount:   1,
		TotalValue:   250,
		LPONumber:    "LPO/ST/44",
		SupplierName: "Danway",
		PhoneNumber:  "+971501234567",
		Items: []procurement.LineItem{
			{ResourceCode: "R1", Description: "Rebar 10mm", Unit: "ton", Quantity: 10, UnitPrice: 25, TotalPrice: 250},
		},
	}
}

func TestConvertApprovedSubstitutesPrefix(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()

	number, err := svc.ConvertApproved(ctx, approvedPR("PR-007"))
	require.NoError(t, err)
	require.Equal(t, "LPO-007", number)

	order, err := svc.Get(ctx, "site", "LPO-007")
	require.NoError(t, err)
	require.Equal(t, "PR-007", order.PRNumber)
	require.Equal(t, "LPO/ST/44", order.ManualNumber)
	require.Equal(t, "LPO/ST/44", order.DisplayNumber())
	require.Equal(t, AwaitingDelivery, order.WorkflowStatus)
	require.Equal(t, StatusInvoicePrepared, order.LPOStatus)
	require.Equal(t, "01/01/2024", order.ApprovalDate)
	require.Empty(t, order.Deliveries)
	require.NotNil(t, order.Items[0].UnitPrice)
	require.Equal(t, 25.0, *order.Items[0].UnitPrice)
	require.Equal(t, []string{"R1"}, sink.last["site"])
}

func TestConvertApprovedWithoutPrefixUsesIdentifierVerbatim(t *testing.T) {
	svc, _ := newTestService(t)

	number, err := svc.ConvertApproved(context.Background(), approvedPR("REQ-2024-9"))
	require.NoError(t, err)
	require.Equal(t, "REQ-2024-9", number)
}

func TestConvertApprovedRejectsDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ConvertApproved(ctx, approvedPR("PR-007"))
	require.NoError(t, err)
	_, err = svc.ConvertApproved(ctx, approvedPR("PR-007"))
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRecordDeliveryScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.ConvertApproved(ctx, approvedPR("PR-007"))
	require.NoError(t, err)

	err = svc.RecordDelivery(ctx, "site", "LPO-007", DeliveryInput{
		Date: "2024-01-01", Quantities: map[string]string{"R1": "4"},
	})
	require.NoError(t, err)

	order, err := svc.Get(ctx, "site", "LPO-007")
	require.NoError(t, err)
	require.Equal(t, 6.0, PendingQuantity(order, "R1"))
	require.Equal(t, StatusPartiallyReceived, order.LPOStatus)
	require.Equal(t, ReceivingPartial, OverallStatus(order))

	err = svc.RecordDelivery(ctx, "site", "LPO-007", DeliveryInput{
		Date: "2024-01-05", Quantities: map[string]string{"R1": "6"},
	})
	require.NoError(t, err)

	order, err = svc.Get(ctx, "site", "LPO-007")
	require.NoError(t, err)
	require.Equal(t, 0.0, PendingQuantity(order, "R1"))
	require.Equal(t, StatusCompleted, order.LPOStatus)
	require.Equal(t, ReceivingComplete, OverallStatus(order))

	completed, err := svc.ListCompleted(ctx, "site")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, "LPO-007", completed[0].LPONumber)
	require.Equal(t, "PR-007", completed[0].PRNumber)
}

func TestRecordDeliveryValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.ConvertApproved(ctx, approvedPR("PR-007"))
	require.NoError(t, err)

	// all blank or zero
	err = svc.RecordDelivery(ctx, "site", "LPO-007", DeliveryInput{
		Quantities: map[string]string{"R1": "", "R2": "0"},
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	// non-numeric aborts and names the code
	err = svc.RecordDelivery(ctx, "site", "LPO-007", DeliveryInput{
		Quantities: map[string]string{"R1": "ten"},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "R1")

	order, err := svc.Get(ctx, "site", "LPO-007")
	require.NoError(t, err)
	require.Empty(t, order.Deliveries)

	// only positive quantities are stored
	err = svc.RecordDelivery(ctx, "site", "LPO-007", DeliveryInput{
		Quantities: map[string]string{"R1": "4", "R2": "0"},
	})
	require.NoError(t, err)
	order, err = svc.Get(ctx, "site", "LPO-007")
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"R1": 4}, order.Deliveries[0].Items)
	require.Equal(t, "2024-01-01", order.Deliveries[0].Date) // clock default
}

func TestEditDeliveryRemovesZeroedCodes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	pr := approvedPR("PR-007")
	pr.Items = append(pr.Items, procurement.LineItem{ResourceCode: "R2", Quantity: 5})
	_, err := svc.ConvertApproved(ctx, pr)
	require.NoError(t, err)

	require.NoError(t, svc.RecordDelivery(ctx, "site", "LPO-007", DeliveryInput{
		Date: "2024-01-01", Quantities: map[string]string{"R1": "4", "R2": "2"},
	}))

	err = svc.EditDelivery(ctx, "site", "LPO-007", 0, DeliveryInput{
		Date:       "2024-01-02",
		Quantities: map[string]string{"R1": "5", "R2": "0"},
	})
	require.NoError(t, err)

	order, err := svc.Get(ctx, "site", "LPO-007")
	require.NoError(t, err)
	require.Equal(t, "2024-01-02", order.Deliveries[0].Date)
	require.Equal(t, map[string]float64{"R1": 5}, order.Deliveries[0].Items)
	_, present := order.Deliveries[0].Items["R2"]
	require.False(t, present)

	// bad index and bad number
	require.ErrorIs(t, svc.EditDelivery(ctx, "site", "LPO-007", 5, DeliveryInput{}), shared.ErrNotFound)
	err = svc.EditDelivery(ctx, "site", "LPO-007", 0, DeliveryInput{Quantities: map[string]string{"R1": "x"}})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteDeliveryRecomputesStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.ConvertApproved(ctx, approvedPR("PR-007"))
	require.NoError(t, err)

	require.NoError(t, svc.RecordDelivery(ctx, "site", "LPO-007", DeliveryInput{
		Date: "2024-01-01", Quantities: map[string]string{"R1": "10"},
	}))
	order, err := svc.Get(ctx, "site", "LPO-007")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, order.LPOStatus)

	require.NoError(t, svc.DeleteDelivery(ctx, "site", "LPO-007", 0))
	order, err = svc.Get(ctx, "site", "LPO-007")
	require.NoError(t, err)
	require.Equal(t, 0.0, ReceivedQuantity(order, "R1"))
	require.Equal(t, ReceivingYetToReceive, OverallStatus(order))
	require.Equal(t, StatusInvoicePrepared, order.LPOStatus)
}

func TestMarkDelivered(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.ConvertApproved(ctx, approvedPR("PR-007"))
	require.NoError(t, err)

	require.NoError(t, svc.MarkDelivered(ctx, "site", "LPO-007"))
	order, err := svc.Get(ctx, "site", "LPO-007")
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, order.LPOStatus)
	require.Equal(t, "01/01/2024 08:00", order.DeliveryDate)
}

func TestFilterMatchesManualNumber(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.ConvertApproved(ctx, approvedPR("PR-007"))
	require.NoError(t, err)

	byManual, err := svc.Filter(ctx, "site", "lpo/st/44", "")
	require.NoError(t, err)
	require.Len(t, byManual, 1)

	byItem, err := svc.Filter(ctx, "site", "rebar", "")
	require.NoError(t, err)
	require.Len(t, byItem, 1)

	byStatus, err := svc.Filter(ctx, "site", "", "Invoice Prepared")
	require.NoError(t, err)
	require.Len(t, byStatus, 1)

	none, err := svc.Filter(ctx, "site", "aggregate", "")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestDeleteOrderClearsHighlights(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()
	_, err := svc.ConvertApproved(ctx, approvedPR("PR-007"))
	require.NoError(t, err)
	require.Equal(t, []string{"R1"}, sink.last["site"])

	require.NoError(t, svc.Delete(ctx, "site", "LPO-007"))
	require.Empty(t, sink.last["site"])

	require.ErrorIs(t, svc.Delete(ctx, "site", "LPO-007"), shared.ErrNotFound)
}
