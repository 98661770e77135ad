package procurement

// Purchase request lifecycle statuses.
type PRStatus string

const (
	PRStatusPending  PRStatus = "Pending Approval"
	PRStatusRejected PRStatus = "Rejected"
)

// Request priorities accepted on submission.
const (
	PriorityLow    = "Low"
	PriorityNormal = "Normal"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

// PlaceholderPhone is the dial-code stub the drafting view pre-fills.
// A phone field still holding it counts as not provided.
const PlaceholderPhone = "+971"

// LineItem is one requested resource on a purchase request.
type LineItem struct {
	ResourceCode string  `json:"resource_code"`
	Description  string  `json:"item_description"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	TotalPrice   float64 `json:"total_price"`
}

// PurchaseRequest is the persisted form of a department purchase request.
// Field names match the on-disk documents.
type PurchaseRequest struct {
	Number       string     `json:"pr_number"`
	Department   string     `json:"department"`
	RequestDate  string     `json:"request_date"`
	RequiredDate string     `json:"required_date,omitempty"`
	Status       PRStatus   `json:"status"`
	Priority     string     `json:"priority,omitempty"`
	ItemsCount   int        `json:"items_count"`
	TotalValue   float64    `json:"total_value"`
	Description  string     `json:"description,omitempty"`
	Items        []LineItem `json:"items"`

	// Approval details, filled in before conversion.
	LPONumber    string `json:"lpo_number,omitempty"`
	SupplierName string `json:"supplier_name,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`

	// Rejection details, present only on rejected requests.
	RejectionReason string `json:"rejection_reason,omitempty"`
	RejectionDate   string `json:"rejection_date,omitempty"`
}

// ApprovalReady reports whether the request carries the details approval
// requires: an LPO number, a supplier, and a phone number beyond the
// pre-filled dial code.
func (pr PurchaseRequest) ApprovalReady() bool {
	if pr.LPONumber == "" || pr.SupplierName == "" {
		return false
	}
	return pr.PhoneNumber != "" && pr.PhoneNumber != PlaceholderPhone
}

// ItemCodes returns the distinct resource codes on the request, in order
// of first appearance.
func (pr PurchaseRequest) ItemCodes() []string {
	seen := make(map[string]struct{}, len(pr.Items))
	codes := make([]string, 0, len(pr.Items))
	for _, item := range pr.Items {
		if _, ok := seen[item.ResourceCode]; ok {
			continue
		}
		seen[item.ResourceCode] = struct{}{}
		codes = append(codes, item.ResourceCode)
	}
	return codes
}
