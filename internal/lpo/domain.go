package lpo

// ReceivingStatus summarises deliveries against ordered quantities.
type ReceivingStatus string

const (
	ReceivingYetToReceive ReceivingStatus = "Yet to Receive"
	ReceivingPartial      ReceivingStatus = "Partially Received"
	ReceivingComplete     ReceivingStatus = "Completely Received"
)

// Status values carried on the lpo_status field.
type Status string

const (
	StatusInvoicePrepared   Status = "Invoice Prepared"
	StatusPartiallyReceived Status = "Partially Received"
	StatusCompleted         Status = "Completed"
	StatusDelivered         Status = "Delivered"
)

// AwaitingDelivery is the workflow status a request carries once converted.
const AwaitingDelivery = "LPO - Awaiting Delivery"

// LineItem is one ordered resource on an LPO. UnitPrice is a pointer so an
// unpriced line stays absent from the document rather than reading as zero.
type LineItem struct {
	ResourceCode string   `json:"resource_code"`
	Description  string   `json:"item_description"`
	Unit         string   `json:"unit"`
	Quantity     float64  `json:"quantity"`
	UnitPrice    *float64 `json:"unit_price,omitempty"`
	TotalPrice   float64  `json:"total_price,omitempty"`
}

// Delivery is one receipt event: quantities received per resource code on
// a given date. Only codes actually received appear.
type Delivery struct {
	Date  string             `json:"date"`
	Items map[string]float64 `json:"items"`
}

// LPO is the persisted form of a local purchase order. Field names match
// the on-disk documents; most fields carry over from the originating
// purchase request.
type LPO struct {
	Number          string     `json:"lpo_number"`
	ManualNumber    string     `json:"manual_lpo_number,omitempty"`
	PRNumber        string     `json:"pr_number"`
	Department      string     `json:"department"`
	RequestDate     string     `json:"request_date,omitempty"`
	RequiredDate    string     `json:"required_date,omitempty"`
	ApprovalDate    string     `json:"approval_date"`
	WorkflowStatus  string     `json:"status"`
	LPOStatus       Status     `json:"lpo_status"`
	Priority        string     `json:"priority,omitempty"`
	ItemsCount      int        `json:"items_count"`
	TotalValue      float64    `json:"total_value"`
	Description     string     `json:"description,omitempty"`
	SupplierName    string     `json:"supplier_name,omitempty"`
	PhoneNumber     string     `json:"phone_number,omitempty"`
	Items           []LineItem `json:"items"`
	Deliveries      []Delivery `json:"deliveries,omitempty"`
	DeliveryDate    string     `json:"delivery_date,omitempty"`
	PricingUpdated  bool       `json:"pricing_updated,omitempty"`
}

// DisplayNumber prefers the manually captured LPO number over the derived
// one wherever an order is shown or searched.
func (l LPO) DisplayNumber() string {
	if l.ManualNumber != "" {
		return l.ManualNumber
	}
	return l.Number
}

// CompletedRecord is the summary appended to the completed collection once
// every ordered quantity has been received.
type CompletedRecord struct {
	LPONumber     string  `json:"lpo_number"`
	PRNumber      string  `json:"pr_number"`
	Department    string  `json:"department"`
	SupplierName  string  `json:"supplier_name,omitempty"`
	TotalValue    float64 `json:"total_value"`
	ItemsCount    int     `json:"items_count"`
	CompletedDate string  `json:"completed_date"`
}
