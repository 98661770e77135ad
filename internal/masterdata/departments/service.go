// Package departments maintains the department list the home view offers:
// a fixed trade set plus user-added custom departments.
package departments

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/procuredesk/procuredesk/internal/platform/filestore"
	"github.com/procuredesk/procuredesk/internal/shared"
)

// Defaults are the built-in trade departments.
var Defaults = []string{"Electrical", "Plumbing", "Ducting", "Firefighting", "Fire Alarm"}

// Service manages the custom department list.
type Service struct {
	store  *filestore.Store
	logger *slog.Logger
}

// NewService wires the service to a file store.
func NewService(store *filestore.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

var title = cases.Title(language.English)

// List returns the default departments followed by the custom ones.
func (s *Service) List(ctx context.Context) ([]string, error) {
	custom, err := s.custom(ctx)
	if err != nil {
		return nil, err
	}
	return append(append([]string(nil), Defaults...), custom...), nil
}

// Add stores a new custom department. Names are title-cased and must be
// unique across defaults and customs.
func (s *Service) Add(ctx context.Context, name string) (string, error) {
	name = title.String(strings.TrimSpace(name))
	if name == "" {
		return "", shared.Validationf("department name is required")
	}
	custom, err := s.custom(ctx)
	if err != nil {
		return "", err
	}
	for _, existing := range append(append([]string(nil), Defaults...), custom...) {
		if strings.EqualFold(existing, name) {
			return "", shared.Validationf("department %s already exists", name)
		}
	}
	custom = append(custom, name)
	if err := s.store.SaveGlobal(filestore.GlobalCustomDepartments, custom); err != nil {
		return "", err
	}
	s.logger.Info("custom department added", slog.String("department", name))
	return name, nil
}

// Remove deletes a custom department. Defaults cannot be removed.
func (s *Service) Remove(ctx context.Context, name string) error {
	for _, d := range Defaults {
		if strings.EqualFold(d, name) {
			return shared.Validationf("department %s is built in", d)
		}
	}
	custom, err := s.custom(ctx)
	if err != nil {
		return err
	}
	for i, existing := range custom {
		if strings.EqualFold(existing, name) {
			custom = append(custom[:i], custom[i+1:]...)
			return s.store.SaveGlobal(filestore.GlobalCustomDepartments, custom)
		}
	}
	return shared.NotFoundf("custom department %s", name)
}

func (s *Service) custom(ctx context.Context) ([]string, error) {
	var custom []string
	if err := s.store.LoadGlobal(filestore.GlobalCustomDepartments, &custom); err != nil {
		return nil, err
	}
	return custom, nil
}
