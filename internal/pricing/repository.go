package pricing

import (
	"context"

	"github.com/procuredesk/procuredesk/internal/lpo"
	"github.com/procuredesk/procuredesk/internal/platform/filestore"
)

// Repository stores archived orders and price trends in the department
// JSON collections.
type Repository struct {
	store *filestore.Store
}

// NewRepository wires the repository to a file store.
func NewRepository(store *filestore.Store) *Repository {
	return &Repository{store: store}
}

// Archived loads the priced order collection for a department.
func (r *Repository) Archived(ctx context.Context, department string) ([]lpo.LPO, error) {
	var lpos []lpo.LPO
	if err := r.store.Load(filestore.KindArchivedLPOs, department, &lpos); err != nil {
		return nil, err
	}
	return lpos, nil
}

// SaveArchived replaces the priced order collection for a department.
func (r *Repository) SaveArchived(ctx context.Context, department string, lpos []lpo.LPO) error {
	return r.store.Save(filestore.KindArchivedLPOs, department, lpos)
}

// Trends loads the trend collection for a department.
func (r *Repository) Trends(ctx context.Context, department string) (map[string]TrendEntry, error) {
	trends := map[string]TrendEntry{}
	if err := r.store.Load(filestore.KindTrends, department, &trends); err != nil {
		return nil, err
	}
	return trends, nil
}

// SaveTrends replaces the trend collection for a department.
func (r *Repository) SaveTrends(ctx context.Context, department string, trends map[string]TrendEntry) error {
	return r.store.Save(filestore.KindTrends, department, trends)
}
