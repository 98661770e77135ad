package lpo

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/procuredesk/procuredesk/internal/procurement"
	"github.com/procuredesk/procuredesk/internal/shared"
)

// RepositoryPort describes the persistence operations Service needs.
type RepositoryPort interface {
	LPOs(ctx context.Context, department string) ([]LPO, error)
	SaveLPOs(ctx context.Context, department string, lpos []LPO) error
	Completed(ctx context.Context, department string) ([]CompletedRecord, error)
	SaveCompleted(ctx context.Context, department string, records []CompletedRecord) error
}

// HighlightSink receives the resource codes still open on registered orders.
type HighlightSink interface {
	PublishOpenOrderItems(department string, codes []string)
}

// Service maintains the order registry and reconciles deliveries against it.
type Service struct {
	repo       RepositoryPort
	highlights HighlightSink
	logger     *slog.Logger
	now        shared.Clock
}

// NewService constructs the LPO service. highlights may be nil.
func NewService(repo RepositoryPort, highlights HighlightSink, logger *slog.Logger, now shared.Clock) *Service {
	return &Service{repo: repo, highlights: highlights, logger: logger, now: now}
}

// ConvertApproved registers an approved purchase request as an LPO and
// returns the assigned number. The derived number substitutes the LPO-
// prefix for PR-; an identifier without that prefix is used verbatim.
func (s *Service) ConvertApproved(ctx context.Context, pr procurement.PurchaseRequest) (string, error) {
	number := pr.Number
	if strings.HasPrefix(pr.Number, "PR-") {
		number = strings.Replace(pr.Number, "PR-", "LPO-", 1)
	} else {
		s.logger.Warn("request number has no PR- prefix, using it verbatim",
			slog.String("pr", pr.Number))
	}

	lpos, err := s.repo.LPOs(ctx, pr.Department)
	if err != nil {
		return "", err
	}
	if findLPO(lpos, number) >= 0 {
		return "", shared.Validationf("order %s already registered", number)
	}

	order := LPO{
		Number:         number,
		ManualNumber:   pr.LPONumber,
		PRNumber:       pr.Number,
		Department:     pr.Department,
		RequestDate:    pr.RequestDate,
		RequiredDate:   pr.RequiredDate,
		ApprovalDate:   shared.Today(s.now),
		WorkflowStatus: AwaitingDelivery,
		LPOStatus:      StatusInvoicePrepared,
		Priority:       pr.Priority,
		ItemsCount:     pr.ItemsCount,
		TotalValue:     pr.TotalValue,
		Description:    pr.Description,
		SupplierName:   pr.SupplierName,
		PhoneNumber:    pr.PhoneNumber,
	}
	for _, item := range pr.Items {
		line := LineItem{
			ResourceCode: item.ResourceCode,
			Description:  item.Description,
			Unit:         item.Unit,
			Quantity:     item.Quantity,
			TotalPrice:   item.TotalPrice,
		}
		if item.UnitPrice != 0 {
			price := item.UnitPrice
			line.UnitPrice = &price
		}
		order.Items = append(order.Items, line)
	}

	lpos = append(lpos, order)
	if err := s.repo.SaveLPOs(ctx, pr.Department, lpos); err != nil {
		return "", err
	}
	s.logger.Info("order registered", slog.String("lpo", number), slog.String("department", pr.Department))
	s.publishOpen(pr.Department, lpos)
	return number, nil
}

// List returns the order registry for a department.
func (s *Service) List(ctx context.Context, department string) ([]LPO, error) {
	return s.repo.LPOs(ctx, department)
}

// Filter returns the orders whose numbers, supplier or items match the
// query, case-insensitively, optionally restricted to one lpo_status. The
// manual number is searched alongside the derived one.
func (s *Service) Filter(ctx context.Context, department, query, status string) ([]LPO, error) {
	lpos, err := s.repo.LPOs(ctx, department)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	status = strings.TrimSpace(status)
	if query == "" && status == "" {
		return lpos, nil
	}
	needle := fold.String(query)
	var out []LPO
	for _, l := range lpos {
		if needle != "" && !matchesLPO(l, needle) {
			continue
		}
		if status != "" && !strings.EqualFold(string(l.LPOStatus), status) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// Get returns a single order by its derived number.
func (s *Service) Get(ctx context.Context, department, number string) (LPO, error) {
	lpos, err := s.repo.LPOs(ctx, department)
	if err != nil {
		return LPO{}, err
	}
	idx := findLPO(lpos, number)
	if idx < 0 {
		return LPO{}, shared.NotFoundf("order %s", number)
	}
	return lpos[idx], nil
}

// Delete removes an order from the registry.
func (s *Service) Delete(ctx context.Context, department, number string) error {
	lpos, err := s.repo.LPOs(ctx, department)
	if err != nil {
		return err
	}
	idx := findLPO(lpos, number)
	if idx < 0 {
		return shared.NotFoundf("order %s", number)
	}
	lpos = append(lpos[:idx], lpos[idx+1:]...)
	if err := s.repo.SaveLPOs(ctx, department, lpos); err != nil {
		return err
	}
	s.publishOpen(department, lpos)
	return nil
}

// DeliveryInput carries one receipt event. Quantities map resource codes
// to the received amount as entered; blank entries are ignored and
// non-numeric entries fail the whole operation.
type DeliveryInput struct {
	Date       string
	Quantities map[string]string
}

// RecordDelivery appends a receipt to an order and refreshes its status.
// At least one positive quantity is required.
func (s *Service) RecordDelivery(ctx context.Context, department, number string, input DeliveryInput) error {
	parsed, err := parseQuantities(input.Quantities)
	if err != nil {
		return err
	}
	items := make(map[string]float64, len(parsed))
	for code, qty := range parsed {
		if qty > 0 {
			items[code] = qty
		}
	}
	if len(items) == 0 {
		return shared.Validationf("delivery needs at least one received quantity")
	}
	date := input.Date
	if date == "" {
		date = s.now().Format(shared.ISODate)
	}

	return s.mutate(ctx, department, number, func(l *LPO) error {
		l.Deliveries = append(l.Deliveries, Delivery{Date: date, Items: items})
		return nil
	})
}

// EditDelivery rewrites an existing receipt in place. Positive values
// replace the stored amount, zero or negative values remove the code
// entirely, and blank entries leave it untouched. A non-blank date replaces
// the stored one. Any non-numeric entry aborts the whole edit.
func (s *Service) EditDelivery(ctx context.Context, department, number string, index int, input DeliveryInput) error {
	parsed, err := parseQuantities(input.Quantities)
	if err != nil {
		return err
	}
	return s.mutate(ctx, department, number, func(l *LPO) error {
		if index < 0 || index >= len(l.Deliveries) {
			return shared.NotFoundf("delivery %d on order %s", index, number)
		}
		if input.Date != "" {
			l.Deliveries[index].Date = input.Date
		}
		if l.Deliveries[index].Items == nil {
			l.Deliveries[index].Items = map[string]float64{}
		}
		for code, qty := range parsed {
			if qty > 0 {
				l.Deliveries[index].Items[code] = qty
			} else {
				delete(l.Deliveries[index].Items, code)
			}
		}
		return nil
	})
}

// DeleteDelivery removes a receipt by position and refreshes the status.
func (s *Service) DeleteDelivery(ctx context.Context, department, number string, index int) error {
	return s.mutate(ctx, department, number, func(l *LPO) error {
		if index < 0 || index >= len(l.Deliveries) {
			return shared.NotFoundf("delivery %d on order %s", index, number)
		}
		l.Deliveries = append(l.Deliveries[:index], l.Deliveries[index+1:]...)
		return nil
	})
}

// MarkDelivered overrides the order status with an explicit delivered
// stamp.
func (s *Service) MarkDelivered(ctx context.Context, department, number string) error {
	return s.mutate(ctx, department, number, func(l *LPO) error {
		l.LPOStatus = StatusDelivered
		l.DeliveryDate = shared.Stamp(s.now)
		return nil
	})
}

// ReceiveReport is the reconciliation view for one order.
type ReceiveReport struct {
	LPONumber    string          `json:"lpo_number"`
	DisplayLPO   string          `json:"display_lpo_number"`
	SupplierName string          `json:"supplier_name,omitempty"`
	Status       ReceivingStatus `json:"status"`
	Items        []ItemReceipt   `json:"items"`
	Deliveries   []Delivery      `json:"deliveries,omitempty"`
}

// Report builds the reconciliation view for one order.
func (s *Service) Report(ctx context.Context, department, number string) (ReceiveReport, error) {
	order, err := s.Get(ctx, department, number)
	if err != nil {
		return ReceiveReport{}, err
	}
	return ReceiveReport{
		LPONumber:    order.Number,
		DisplayLPO:   order.DisplayNumber(),
		SupplierName: order.SupplierName,
		Status:       OverallStatus(order),
		Items:        Reconcile(order),
		Deliveries:   order.Deliveries,
	}, nil
}

// ListCompleted returns the completion feed for a department.
func (s *Service) ListCompleted(ctx context.Context, department string) ([]CompletedRecord, error) {
	return s.repo.Completed(ctx, department)
}

// mutate applies fn to one order, refreshes its status, persists the
// registry and maintains the completion feed and highlight set.
func (s *Service) mutate(ctx context.Context, department, number string, fn func(*LPO) error) error {
	lpos, err := s.repo.LPOs(ctx, department)
	if err != nil {
		return err
	}
	idx := findLPO(lpos, number)
	if idx < 0 {
		return shared.NotFoundf("order %s", number)
	}
	if err := fn(&lpos[idx]); err != nil {
		return err
	}
	refreshStatus(&lpos[idx])
	if err := s.repo.SaveLPOs(ctx, department, lpos); err != nil {
		return err
	}
	if OverallStatus(lpos[idx]) == ReceivingComplete {
		if err := s.recordCompletion(ctx, department, lpos[idx]); err != nil {
			s.logger.Warn("record completion", slog.Any("error", err))
		}
	}
	s.publishOpen(department, lpos)
	return nil
}

// recordCompletion appends to the completion feed once per order.
func (s *Service) recordCompletion(ctx context.Context, department string, order LPO) error {
	records, err := s.repo.Completed(ctx, department)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.LPONumber == order.Number {
			return nil
		}
	}
	records = append(records, CompletedRecord{
		LPONumber:     order.Number,
		PRNumber:      order.PRNumber,
		Department:    order.Department,
		SupplierName:  order.SupplierName,
		TotalValue:    order.TotalValue,
		ItemsCount:    order.ItemsCount,
		CompletedDate: shared.Today(s.now),
	})
	return s.repo.SaveCompleted(ctx, department, records)
}

func (s *Service) publishOpen(department string, lpos []LPO) {
	if s.highlights == nil {
		return
	}
	s.highlights.PublishOpenOrderItems(department, OpenItemCodes(lpos))
}

// OpenItemCodes lists the distinct resource codes still awaiting receipt
// across the given orders, in order of first appearance.
func OpenItemCodes(lpos []LPO) []string {
	seen := map[string]struct{}{}
	var codes []string
	for _, l := range lpos {
		for _, item := range l.Items {
			if ItemStatus(l, item) == ReceivingComplete {
				continue
			}
			if _, ok := seen[item.ResourceCode]; ok {
				continue
			}
			seen[item.ResourceCode] = struct{}{}
			codes = append(codes, item.ResourceCode)
		}
	}
	return codes
}

var fold = cases.Fold()

func matchesLPO(l LPO, needle string) bool {
	fields := []string{l.Number, l.ManualNumber, l.PRNumber, l.SupplierName, l.Description}
	for _, item := range l.Items {
		fields = append(fields, item.ResourceCode, item.Description)
	}
	for _, field := range fields {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

func findLPO(lpos []LPO, number string) int {
	for i, l := range lpos {
		if l.Number == number {
			return i
		}
	}
	return -1
}

// parseQuantities converts entered quantities, skipping blanks. A value
// that does not parse fails the operation naming the offending code.
func parseQuantities(in map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(in))
	for code, raw := range in {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		qty, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, shared.Validationf("quantity for %s is not a number", code)
		}
		out[code] = qty
	}
	return out, nil
}
