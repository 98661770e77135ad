// Package suppliers remembers supplier names across purchase requests so
// the drafting view can offer them.
package suppliers

import (
	"context"
	"strings"

	"github.com/procuredesk/procuredesk/internal/platform/filestore"
)

// Service manages the supplier history list.
type Service struct {
	store *filestore.Store
}

// NewService wires the service to a file store.
func NewService(store *filestore.Store) *Service {
	return &Service{store: store}
}

// History returns the remembered supplier names.
func (s *Service) History(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.store.LoadGlobal(filestore.GlobalSupplierHistory, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// RememberSupplier appends a supplier name if it is not already present.
// Blank names are ignored.
func (s *Service) RememberSupplier(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	names, err := s.History(ctx)
	if err != nil {
		return err
	}
	for _, existing := range names {
		if strings.EqualFold(existing, name) {
			return nil
		}
	}
	names = append(names, name)
	return s.store.SaveGlobal(filestore.GlobalSupplierHistory, names)
}
