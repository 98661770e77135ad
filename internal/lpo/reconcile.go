package lpo

// ReceivedQuantity sums the quantity received for a resource code across
// all deliveries on the order. Delivery order does not matter.
func ReceivedQuantity(l LPO, code string) float64 {
	var total float64
	for _, d := range l.Deliveries {
		total += d.Items[code]
	}
	return total
}

// PendingQuantity is ordered minus received for a resource code. It can go
// negative when more was received than ordered; persisted data is never
// clamped.
func PendingQuantity(l LPO, code string) float64 {
	var ordered float64
	for _, item := range l.Items {
		if item.ResourceCode == code {
			ordered += item.Quantity
		}
	}
	return ordered - ReceivedQuantity(l, code)
}

// ItemStatus classifies a single line. It is a two-state predicate:
// complete once nothing is pending, otherwise yet to receive. The partial
// state exists only on the whole-order aggregate.
func ItemStatus(l LPO, item LineItem) ReceivingStatus {
	if item.Quantity-ReceivedQuantity(l, item.ResourceCode) <= 0 {
		return ReceivingComplete
	}
	return ReceivingYetToReceive
}

// OverallStatus classifies the whole order. With no deliveries it is yet
// to receive; with any line still short it is partial; otherwise complete.
func OverallStatus(l LPO) ReceivingStatus {
	if len(l.Deliveries) == 0 {
		return ReceivingYetToReceive
	}
	for _, item := range l.Items {
		if ReceivedQuantity(l, item.ResourceCode) < item.Quantity {
			return ReceivingPartial
		}
	}
	return ReceivingComplete
}

// refreshStatus folds the receiving state into the lpo_status field. An
// order with no deliveries keeps its invoice-prepared state; an explicit
// delivered override is left alone.
func refreshStatus(l *LPO) {
	if l.LPOStatus == StatusDelivered {
		return
	}
	switch OverallStatus(*l) {
	case ReceivingComplete:
		l.LPOStatus = StatusCompleted
	case ReceivingPartial:
		l.LPOStatus = StatusPartiallyReceived
	default:
		l.LPOStatus = StatusInvoicePrepared
	}
}

// ItemReceipt is one reconciliation row for the receive view.
type ItemReceipt struct {
	ResourceCode string          `json:"resource_code"`
	Description  string          `json:"item_description"`
	Unit         string          `json:"unit"`
	Ordered      float64         `json:"ordered"`
	Received     float64         `json:"received"`
	Pending      float64         `json:"pending"`
	Status       ReceivingStatus `json:"status"`
}

// Reconcile produces the per-item receipt rows for an order.
func Reconcile(l LPO) []ItemReceipt {
	rows := make([]ItemReceipt, 0, len(l.Items))
	for _, item := range l.Items {
		received := ReceivedQuantity(l, item.ResourceCode)
		rows = append(rows, ItemReceipt{
			ResourceCode: item.ResourceCode,
			Description:  item.Description,
			Unit:         item.Unit,
			Ordered:      item.Quantity,
			Received:     received,
			Pending:      item.Quantity - received,
			Status:       ItemStatus(l, item),
		})
	}
	return rows
}
