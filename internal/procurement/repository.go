package procurement

import (
	"context"

	"github.com/procuredesk/procuredesk/internal/platform/filestore"
)

// Repository stores purchase requests in the department JSON collections.
type Repository struct {
	store *filestore.Store
}

// NewRepository wires the repository to a file store.
func NewRepository(store *filestore.Store) *Repository {
	return &Repository{store: store}
}

// Pending loads the pending collection for a department.
func (r *Repository) Pending(ctx context.Context, department string) ([]PurchaseRequest, error) {
	var prs []PurchaseRequest
	if err := r.store.Load(filestore.KindPendingPRs, department, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

// SavePending replaces the pending collection for a department.
func (r *Repository) SavePending(ctx context.Context, department string, prs []PurchaseRequest) error {
	return r.store.Save(filestore.KindPendingPRs, department, prs)
}

// Rejected loads the rejected collection for a department.
func (r *Repository) Rejected(ctx context.Context, department string) ([]PurchaseRequest, error) {
	var prs []PurchaseRequest
	if err := r.store.Load(filestore.KindRejectedPRs, department, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

// SaveRejected replaces the rejected collection for a department.
func (r *Repository) SaveRejected(ctx context.Context, department string, prs []PurchaseRequest) error {
	return r.store.Save(filestore.KindRejectedPRs, department, prs)
}
