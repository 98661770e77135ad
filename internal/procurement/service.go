package procurement

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/procuredesk/procuredesk/internal/shared"
)

// RepositoryPort describes the persistence operations Service needs.
type RepositoryPort interface {
	Pending(ctx context.Context, department string) ([]PurchaseRequest, error)
	SavePending(ctx context.Context, department string, prs []PurchaseRequest) error
	Rejected(ctx context.Context, department string) ([]PurchaseRequest, error)
	SaveRejected(ctx context.Context, department string, prs []PurchaseRequest) error
}

// ConverterPort turns an approved request into a registered LPO and
// returns the assigned LPO number.
type ConverterPort interface {
	ConvertApproved(ctx context.Context, pr PurchaseRequest) (string, error)
}

// HighlightSink receives the resource codes currently awaiting approval
// for a department.
type HighlightSink interface {
	PublishPendingItems(department string, codes []string)
}

// SupplierLog remembers supplier names for the drafting view.
type SupplierLog interface {
	RememberSupplier(ctx context.Context, name string) error
}

// StockPort answers how much of a resource is available to request.
type StockPort interface {
	Available(code string) (float64, bool)
}

// Service orchestrates the purchase request lifecycle.
type Service struct {
	repo       RepositoryPort
	converter  ConverterPort
	highlights HighlightSink
	suppliers  SupplierLog
	stock      StockPort
	logger     *slog.Logger
	now        shared.Clock
}

// NewService constructs the procurement service. highlights, suppliers and
// stock may be nil; the corresponding behaviour is skipped.
func NewService(repo RepositoryPort, converter ConverterPort, highlights HighlightSink, suppliers SupplierLog, stock StockPort, logger *slog.Logger, now shared.Clock) *Service {
	return &Service{repo: repo, converter: converter, highlights: highlights, suppliers: suppliers, stock: stock, logger: logger, now: now}
}

// SubmitInput describes a new purchase request.
type SubmitInput struct {
	Department   string
	Number       string
	RequiredDate string
	Priority     string
	Description  string
	Items        []LineItemInput
}

// LineItemInput is one requested line on submission.
type LineItemInput struct {
	ResourceCode string
	Description  string
	Unit         string
	Quantity     float64
	UnitPrice    float64
}

// ApprovalDetailsInput carries the supplier details saved onto a pending
// request ahead of approval.
type ApprovalDetailsInput struct {
	Department   string
	Number       string
	LPONumber    string
	SupplierName string
	PhoneNumber  string
}

// Submit validates and stores a new purchase request in the pending
// collection. Quantities are clamped to the available stock when the stock
// port knows the resource; unusable quantities become zero.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (PurchaseRequest, error) {
	if input.Department == "" {
		return PurchaseRequest{}, shared.Validationf("department is required")
	}
	if len(input.Items) == 0 {
		return PurchaseRequest{}, shared.Validationf("purchase request needs at least one item")
	}

	pending, err := s.repo.Pending(ctx, input.Department)
	if err != nil {
		return PurchaseRequest{}, err
	}
	rejected, err := s.repo.Rejected(ctx, input.Department)
	if err != nil {
		return PurchaseRequest{}, err
	}

	number := input.Number
	if number == "" {
		number = nextNumber(pending, rejected)
	} else if findPR(pending, number) >= 0 || findPR(rejected, number) >= 0 {
		return PurchaseRequest{}, shared.Validationf("purchase request %s already exists", number)
	}

	pr := PurchaseRequest{
		Number:       number,
		Department:   input.Department,
		RequestDate:  shared.Today(s.now),
		RequiredDate: input.RequiredDate,
		Status:       PRStatusPending,
		Priority:     defaultString(input.Priority, PriorityNormal),
		Description:  input.Description,
	}
	for _, line := range input.Items {
		if line.ResourceCode == "" {
			return PurchaseRequest{}, shared.Validationf("line item missing resource code")
		}
		qty := s.clampQuantity(line.ResourceCode, line.Quantity)
		item := LineItem{
			ResourceCode: line.ResourceCode,
			Description:  line.Description,
			Unit:         line.Unit,
			Quantity:     qty,
			UnitPrice:    line.UnitPrice,
			TotalPrice:   round2(qty * line.UnitPrice),
		}
		pr.Items = append(pr.Items, item)
		pr.TotalValue += item.TotalPrice
	}
	pr.TotalValue = round2(pr.TotalValue)
	pr.ItemsCount = len(pr.Items)

	pending = append(pending, pr)
	if err := s.repo.SavePending(ctx, input.Department, pending); err != nil {
		return PurchaseRequest{}, err
	}
	s.logger.Info("purchase request submitted",
		slog.String("pr", pr.Number), slog.String("department", input.Department),
		slog.Int("items", pr.ItemsCount))
	s.publishPending(input.Department, pending)
	return pr, nil
}

// SaveApprovalDetails stores LPO number, supplier and phone on a pending
// request. A phone still holding the dial-code placeholder is rejected.
func (s *Service) SaveApprovalDetails(ctx context.Context, input ApprovalDetailsInput) error {
	if input.PhoneNumber == PlaceholderPhone {
		return shared.Validationf("phone number not provided")
	}
	pending, err := s.repo.Pending(ctx, input.Department)
	if err != nil {
		return err
	}
	idx := findPR(pending, input.Number)
	if idx < 0 {
		return shared.NotFoundf("pending purchase request %s", input.Number)
	}
	pending[idx].LPONumber = input.LPONumber
	pending[idx].SupplierName = input.SupplierName
	pending[idx].PhoneNumber = input.PhoneNumber
	return s.repo.SavePending(ctx, input.Department, pending)
}

// Approve converts a pending request into an LPO and removes it from the
// pending collection. The approval details gate must be satisfied first.
// Returns the registered LPO number.
func (s *Service) Approve(ctx context.Context, department, number string) (string, error) {
	pending, err := s.repo.Pending(ctx, department)
	if err != nil {
		return "", err
	}
	idx := findPR(pending, number)
	if idx < 0 {
		return "", shared.NotFoundf("pending purchase request %s", number)
	}
	pr := pending[idx]
	if !pr.ApprovalReady() {
		return "", shared.Validationf("purchase request %s is missing LPO number, supplier or phone", number)
	}

	lpoNumber, err := s.converter.ConvertApproved(ctx, pr)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", number, err)
	}

	pending = append(pending[:idx], pending[idx+1:]...)
	if err := s.repo.SavePending(ctx, department, pending); err != nil {
		return "", err
	}
	if s.suppliers != nil {
		if err := s.suppliers.RememberSupplier(ctx, pr.SupplierName); err != nil {
			s.logger.Warn("record supplier history", slog.Any("error", err))
		}
	}
	s.logger.Info("purchase request approved",
		slog.String("pr", number), slog.String("lpo", lpoNumber),
		slog.String("department", department))
	s.publishPending(department, pending)
	return lpoNumber, nil
}

// Reject moves a pending request to the rejected collection with the given
// reason and a rejection timestamp.
func (s *Service) Reject(ctx context.Context, department, number, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return shared.Validationf("rejection reason is required")
	}
	pending, err := s.repo.Pending(ctx, department)
	if err != nil {
		return err
	}
	idx := findPR(pending, number)
	if idx < 0 {
		return shared.NotFoundf("pending purchase request %s", number)
	}
	pr := pending[idx]
	pr.Status = PRStatusRejected
	pr.RejectionReason = reason
	pr.RejectionDate = shared.Stamp(s.now)

	rejected, err := s.repo.Rejected(ctx, department)
	if err != nil {
		return err
	}
	rejected = append(rejected, pr)
	if err := s.repo.SaveRejected(ctx, department, rejected); err != nil {
		return err
	}
	pending = append(pending[:idx], pending[idx+1:]...)
	if err := s.repo.SavePending(ctx, department, pending); err != nil {
		return err
	}
	s.logger.Info("purchase request rejected", slog.String("pr", number), slog.String("department", department))
	s.publishPending(department, pending)
	return nil
}

// Restore moves a rejected request back to pending, clearing the rejection
// details.
func (s *Service) Restore(ctx context.Context, department, number string) error {
	rejected, err := s.repo.Rejected(ctx, department)
	if err != nil {
		return err
	}
	idx := findPR(rejected, number)
	if idx < 0 {
		return shared.NotFoundf("rejected purchase request %s", number)
	}
	pr := rejected[idx]
	pr.Status = PRStatusPending
	pr.RejectionReason = ""
	pr.RejectionDate = ""

	pending, err := s.repo.Pending(ctx, department)
	if err != nil {
		return err
	}
	pending = append(pending, pr)
	if err := s.repo.SavePending(ctx, department, pending); err != nil {
		return err
	}
	rejected = append(rejected[:idx], rejected[idx+1:]...)
	if err := s.repo.SaveRejected(ctx, department, rejected); err != nil {
		return err
	}
	s.logger.Info("purchase request restored", slog.String("pr", number), slog.String("department", department))
	s.publishPending(department, pending)
	return nil
}

// DeletePending removes a pending request permanently.
func (s *Service) DeletePending(ctx context.Context, department, number string) error {
	pending, err := s.repo.Pending(ctx, department)
	if err != nil {
		return err
	}
	idx := findPR(pending, number)
	if idx < 0 {
		return shared.NotFoundf("pending purchase request %s", number)
	}
	pending = append(pending[:idx], pending[idx+1:]...)
	if err := s.repo.SavePending(ctx, department, pending); err != nil {
		return err
	}
	s.publishPending(department, pending)
	return nil
}

// DeleteRejected removes a rejected request permanently.
func (s *Service) DeleteRejected(ctx context.Context, department, number string) error {
	rejected, err := s.repo.Rejected(ctx, department)
	if err != nil {
		return err
	}
	idx := findPR(rejected, number)
	if idx < 0 {
		return shared.NotFoundf("rejected purchase request %s", number)
	}
	rejected = append(rejected[:idx], rejected[idx+1:]...)
	return s.repo.SaveRejected(ctx, department, rejected)
}

// ListPending returns the pending requests for a department.
func (s *Service) ListPending(ctx context.Context, department string) ([]PurchaseRequest, error) {
	return s.repo.Pending(ctx, department)
}

// ListRejected returns the rejected requests for a department.
func (s *Service) ListRejected(ctx context.Context, department string) ([]PurchaseRequest, error) {
	return s.repo.Rejected(ctx, department)
}

// FilterPending returns the pending requests whose number, supplier,
// description or items match the query, case-insensitively, and whose
// request date contains the date filter. Both filters are ANDed; an empty
// filter matches everything.
func (s *Service) FilterPending(ctx context.Context, department, query, date string) ([]PurchaseRequest, error) {
	pending, err := s.repo.Pending(ctx, department)
	if err != nil {
		return nil, err
	}
	return filterPRs(pending, query, date), nil
}

// FilterRejected is FilterPending over the rejected collection.
func (s *Service) FilterRejected(ctx context.Context, department, query, date string) ([]PurchaseRequest, error) {
	rejected, err := s.repo.Rejected(ctx, department)
	if err != nil {
		return nil, err
	}
	return filterPRs(rejected, query, date), nil
}

// PendingItemCodes lists the resource codes on all pending requests for a
// department, deduplicated.
func (s *Service) PendingItemCodes(ctx context.Context, department string) ([]string, error) {
	pending, err := s.repo.Pending(ctx, department)
	if err != nil {
		return nil, err
	}
	return pendingCodes(pending), nil
}

func (s *Service) publishPending(department string, pending []PurchaseRequest) {
	if s.highlights == nil {
		return
	}
	s.highlights.PublishPendingItems(department, pendingCodes(pending))
}

func (s *Service) clampQuantity(code string, qty float64) float64 {
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty < 0 {
		return 0
	}
	if s.stock != nil {
		// a zero available quantity means the stock is untracked, not empty
		if available, ok := s.stock.Available(code); ok && available > 0 && qty > available {
			return available
		}
	}
	return qty
}

func pendingCodes(pending []PurchaseRequest) []string {
	seen := map[string]struct{}{}
	var codes []string
	for _, pr := range pending {
		for _, code := range pr.ItemCodes() {
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
	}
	return codes
}

var fold = cases.Fold()

func filterPRs(prs []PurchaseRequest, query, date string) []PurchaseRequest {
	query = strings.TrimSpace(query)
	date = strings.TrimSpace(date)
	if query == "" && date == "" {
		return prs
	}
	needle := fold.String(query)
	var out []PurchaseRequest
	for _, pr := range prs {
		if needle != "" && !matchesPR(pr, needle) {
			continue
		}
		if date != "" && !strings.Contains(pr.RequestDate, date) {
			continue
		}
		out = append(out, pr)
	}
	return out
}

func matchesPR(pr PurchaseRequest, needle string) bool {
	fields := []string{pr.Number, pr.SupplierName, pr.Description, pr.LPONumber}
	for _, item := range pr.Items {
		fields = append(fields, item.ResourceCode, item.Description)
	}
	for _, field := range fields {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

func findPR(prs []PurchaseRequest, number string) int {
	for i, pr := range prs {
		if pr.Number == number {
			return i
		}
	}
	return -1
}

// nextNumber picks the next sequential PR number across both collections.
func nextNumber(pending, rejected []PurchaseRequest) string {
	max := 0
	for _, pr := range append(append([]PurchaseRequest{}, pending...), rejected...) {
		n, ok := numberSuffix(pr.Number)
		if ok && n > max {
			max = n
		}
	}
	return fmt.Sprintf("PR-%03d", max+1)
}

func numberSuffix(number string) (int, bool) {
	rest, found := strings.CutPrefix(number, "PR-")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
