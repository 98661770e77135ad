package lpo

import (
	"context"

	"github.com/procuredesk/procuredesk/internal/platform/filestore"
)

// Repository stores purchase orders and completion records in the
// department JSON collections.
type Repository struct {
	store *filestore.Store
}

// NewRepository wires the repository to a file store.
func NewRepository(store *filestore.Store) *Repository {
	return &Repository{store: store}
}

// LPOs loads the order registry for a department.
func (r *Repository) LPOs(ctx context.Context, department string) ([]LPO, error) {
	var lpos []LPO
	if err := r.store.Load(filestore.KindLPOs, department, &lpos); err != nil {
		return nil, err
	}
	return lpos, nil
}

// SaveLPOs replaces the order registry for a department.
func (r *Repository) SaveLPOs(ctx context.Context, department string, lpos []LPO) error {
	return r.store.Save(filestore.KindLPOs, department, lpos)
}

// Completed loads the completion feed for a department.
func (r *Repository) Completed(ctx context.Context, department string) ([]CompletedRecord, error) {
	var records []CompletedRecord
	if err := r.store.Load(filestore.KindCompletedPRs, department, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveCompleted replaces the completion feed for a department.
func (r *Repository) SaveCompleted(ctx context.Context, department string, records []CompletedRecord) error {
	return r.store.Save(filestore.KindCompletedPRs, department, records)
}
