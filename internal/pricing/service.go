package pricing

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/procuredesk/procuredesk/internal/lpo"
	"github.com/procuredesk/procuredesk/internal/shared"
)

// OrderRegistryPort is the slice of the order registry the pricing flow
// needs.
type OrderRegistryPort interface {
	LPOs(ctx context.Context, department string) ([]lpo.LPO, error)
	SaveLPOs(ctx context.Context, department string, lpos []lpo.LPO) error
}

// RepositoryPort describes the pricing persistence operations.
type RepositoryPort interface {
	Archived(ctx context.Context, department string) ([]lpo.LPO, error)
	SaveArchived(ctx context.Context, department string, lpos []lpo.LPO) error
	Trends(ctx context.Context, department string) (map[string]TrendEntry, error)
	SaveTrends(ctx context.Context, department string, trends map[string]TrendEntry) error
}

// Service finalizes order pricing and maintains the trend feed.
type Service struct {
	orders OrderRegistryPort
	repo   RepositoryPort
	logger *slog.Logger
	now    shared.Clock
}

// NewService constructs the pricing service.
func NewService(orders OrderRegistryPort, repo RepositoryPort, logger *slog.Logger, now shared.Clock) *Service {
	return &Service{orders: orders, repo: repo, logger: logger, now: now}
}

// ActiveUnpriced lists the orders still awaiting pricing: registry entries
// whose number does not appear in the archived collection.
func (s *Service) ActiveUnpriced(ctx context.Context, department string) ([]lpo.LPO, error) {
	lpos, err := s.orders.LPOs(ctx, department)
	if err != nil {
		return nil, err
	}
	archived, err := s.repo.Archived(ctx, department)
	if err != nil {
		return nil, err
	}
	done := make(map[string]struct{}, len(archived))
	for _, l := range archived {
		done[l.Number] = struct{}{}
	}
	var out []lpo.LPO
	for _, l := range lpos {
		if _, ok := done[l.Number]; !ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// Archived lists the priced orders for a department.
func (s *Service) Archived(ctx context.Context, department string) ([]lpo.LPO, error) {
	return s.repo.Archived(ctx, department)
}

// PriceEntry is the entered price and unit for one line, addressed by its
// position on the order. A blank price leaves the line unpriced.
type PriceEntry struct {
	Price string `json:"price"`
	Unit  string `json:"unit"`
}

// SaveLineItemPrices applies entered prices to a copy of the order,
// archives the copy and feeds each priced line into the trend history. The
// registry entry itself is left untouched; prices live on the archived
// copy. A non-numeric price aborts the whole save.
func (s *Service) SaveLineItemPrices(ctx context.Context, department, number string, entries map[int]PriceEntry) error {
	lpos, err := s.orders.LPOs(ctx, department)
	if err != nil {
		return err
	}
	idx := findLPO(lpos, number)
	if idx < 0 {
		return shared.NotFoundf("order %s", number)
	}
	archived, err := s.repo.Archived(ctx, department)
	if err != nil {
		return err
	}
	if findLPO(archived, number) >= 0 {
		return shared.Validationf("order %s is already priced", number)
	}

	priced := cloneLPO(lpos[idx])
	for i, entry := range entries {
		if i < 0 || i >= len(priced.Items) {
			return shared.NotFoundf("line %d on order %s", i, number)
		}
		raw := strings.TrimSpace(entry.Price)
		if raw == "" {
			priced.Items[i].UnitPrice = nil
		} else {
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return shared.Validationf("price for %s is not a number", priced.Items[i].ResourceCode)
			}
			priced.Items[i].UnitPrice = &price
		}
		if entry.Unit != "" {
			priced.Items[i].Unit = entry.Unit
		}
	}
	priced.PricingUpdated = true

	archived = append(archived, priced)
	if err := s.repo.SaveArchived(ctx, department, archived); err != nil {
		return err
	}
	for _, item := range priced.Items {
		if item.UnitPrice == nil {
			continue
		}
		if err := s.appendTrend(ctx, department, item.ResourceCode, item.Description, item.Unit, *item.UnitPrice); err != nil {
			s.logger.Warn("update price trend", slog.Any("error", err),
				slog.String("resource", item.ResourceCode))
		}
	}
	s.logger.Info("order priced", slog.String("lpo", number), slog.String("department", department))
	return nil
}

// RevertArchivedLPO removes an order from the priced collection and clears
// the pricing from the registry copy, returning it to the active list.
// Reverting an order that is not archived is a no-op.
func (s *Service) RevertArchivedLPO(ctx context.Context, department, number string) error {
	archived, err := s.repo.Archived(ctx, department)
	if err != nil {
		return err
	}
	idx := findLPO(archived, number)
	if idx < 0 {
		return nil
	}
	archived = append(archived[:idx], archived[idx+1:]...)
	if err := s.repo.SaveArchived(ctx, department, archived); err != nil {
		return err
	}

	lpos, err := s.orders.LPOs(ctx, department)
	if err != nil {
		return err
	}
	if i := findLPO(lpos, number); i >= 0 {
		for j := range lpos[i].Items {
			lpos[i].Items[j].UnitPrice = nil
		}
		lpos[i].PricingUpdated = false
		if err := s.orders.SaveLPOs(ctx, department, lpos); err != nil {
			return err
		}
	}
	s.logger.Info("order pricing reverted", slog.String("lpo", number), slog.String("department", department))
	return nil
}

// UpdatePriceTrend appends one observation to a resource's history. A
// blank price is a deliberate no-op; an unparsable one is rejected.
func (s *Service) UpdatePriceTrend(ctx context.Context, department, code, description, unit, price string) error {
	raw := strings.TrimSpace(price)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return shared.Validationf("price for %s is not a number", code)
	}
	return s.appendTrend(ctx, department, code, description, unit, value)
}

// Trends returns the trend collection for a department.
func (s *Service) Trends(ctx context.Context, department string) (map[string]TrendEntry, error) {
	return s.repo.Trends(ctx, department)
}

// CurrentUnitRate returns the latest observed price for the best
// case-insensitive match on resource code and description, or 0 when the
// resource has no history.
func (s *Service) CurrentUnitRate(ctx context.Context, department, code, description string) (float64, error) {
	trends, err := s.repo.Trends(ctx, department)
	if err != nil {
		return 0, err
	}
	return currentRate(trends, code, description), nil
}

// ItemValuation values one order line at the current trend rate.
type ItemValuation struct {
	ResourceCode   string  `json:"resource_code"`
	Description    string  `json:"item_description"`
	Unit           string  `json:"unit"`
	Ordered        float64 `json:"ordered"`
	Received       float64 `json:"received"`
	Pending        float64 `json:"pending"`
	UnitRate       float64 `json:"unit_rate"`
	ReceivedAmount float64 `json:"received_amount"`
	PendingAmount  float64 `json:"pending_amount"`
}

// Valuation is the received and outstanding value of one order at current
// trend rates. Display only, never persisted.
type Valuation struct {
	LPONumber     string          `json:"lpo_number"`
	Items         []ItemValuation `json:"items"`
	ReceivedTotal float64         `json:"received_total"`
	PendingTotal  float64         `json:"pending_total"`
}

// Valuate prices an order's received and pending quantities at the latest
// trend rates. Pending quantities are clamped at zero here; stored
// quantities are never clamped.
func (s *Service) Valuate(ctx context.Context, department, number string) (Valuation, error) {
	lpos, err := s.orders.LPOs(ctx, department)
	if err != nil {
		return Valuation{}, err
	}
	idx := findLPO(lpos, number)
	if idx < 0 {
		return Valuation{}, shared.NotFoundf("order %s", number)
	}
	trends, err := s.repo.Trends(ctx, department)
	if err != nil {
		return Valuation{}, err
	}

	order := lpos[idx]
	val := Valuation{LPONumber: number}
	for _, item := range order.Items {
		received := lpo.ReceivedQuantity(order, item.ResourceCode)
		pending := item.Quantity - received
		if pending < 0 {
			pending = 0
		}
		rate := currentRate(trends, item.ResourceCode, item.Description)
		row := ItemValuation{
			ResourceCode:   item.ResourceCode,
			Description:    item.Description,
			Unit:           item.Unit,
			Ordered:        item.Quantity,
			Received:       received,
			Pending:        pending,
			UnitRate:       rate,
			ReceivedAmount: received * rate,
			PendingAmount:  pending * rate,
		}
		val.Items = append(val.Items, row)
		val.ReceivedTotal += row.ReceivedAmount
		val.PendingTotal += row.PendingAmount
	}
	return val, nil
}

func (s *Service) appendTrend(ctx context.Context, department, code, description, unit string, price float64) error {
	trends, err := s.repo.Trends(ctx, department)
	if err != nil {
		return err
	}
	if trends == nil {
		trends = map[string]TrendEntry{}
	}
	key := trendKey(code, description, unit)
	entry, ok := trends[key]
	if !ok {
		entry = TrendEntry{ResourceCode: code, Description: description, Unit: unit}
	}
	entry.PriceHistory = append(entry.PriceHistory, PricePoint{
		Price:     price,
		Timestamp: shared.Stamp(s.now),
	})
	trends[key] = entry
	return s.repo.SaveTrends(ctx, department, trends)
}

// currentRate picks the matching entry with the newest observation. The
// same code and description can live under several units; scanning sorted
// keys keeps the answer stable when timestamps tie or fail to parse.
func currentRate(trends map[string]TrendEntry, code, description string) float64 {
	codeKey := fold.String(code)
	descKey := fold.String(description)
	keys := make([]string, 0, len(trends))
	for key := range trends {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var rate float64
	var latest time.Time
	found := false
	for _, key := range keys {
		entry := trends[key]
		if fold.String(entry.ResourceCode) != codeKey || fold.String(entry.Description) != descKey {
			continue
		}
		point, ok := entry.LatestPoint()
		if !ok {
			continue
		}
		at, err := time.Parse(shared.StampDate, point.Timestamp)
		if err != nil {
			at = time.Time{}
		}
		if !found || at.After(latest) {
			rate, latest, found = point.Price, at, true
		}
	}
	return rate
}

func cloneLPO(l lpo.LPO) lpo.LPO {
	out := l
	out.Items = make([]lpo.LineItem, len(l.Items))
	copy(out.Items, l.Items)
	for i := range out.Items {
		if out.Items[i].UnitPrice != nil {
			price := *out.Items[i].UnitPrice
			out.Items[i].UnitPrice = &price
		}
	}
	out.Deliveries = make([]lpo.Delivery, len(l.Deliveries))
	copy(out.Deliveries, l.Deliveries)
	return out
}

func findLPO(lpos []lpo.LPO, number string) int {
	for i, l := range lpos {
		if l.Number == number {
			return i
		}
	}
	return -1
}
