// Package filestore persists application state as per-department JSON
// documents on local disk. Each collection is one file; writes replace the
// whole document atomically via a temp file and rename.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/procuredesk/procuredesk/internal/shared"
)

// Kind names a department-scoped collection.
type Kind string

const (
	KindPendingPRs   Kind = "pending_prs"
	KindRejectedPRs  Kind = "rejected_prs"
	KindLPOs         Kind = "lpo"
	KindArchivedLPOs Kind = "archived_lpos"
	KindTrends       Kind = "trends"
	KindCompletedPRs Kind = "completed_prs"
)

// Global collection file names, not scoped to a department.
const (
	GlobalCustomDepartments = "custom_departments.json"
	GlobalSupplierHistory   = "supplier_history.json"
)

// Store reads and writes JSON collections under a single data directory.
// All access goes through one mutex; collections are small and the
// application is single-user, so contention is not a concern.
type Store struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex
}

// New ensures dir exists and returns a store rooted there.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, shared.Storagef("create data dir %s: %v", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the data directory the store is rooted at.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(kind Kind, department string) string {
	dept := shared.NormalizeDepartment(department)
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", kind, dept))
}

// Load decodes the collection for kind/department into v. A missing file
// leaves v untouched so callers start from their zero collection. A file
// that no longer parses is treated the same way, with a warning; the next
// save rewrites it whole.
func (s *Store) Load(kind Kind, department string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(s.path(kind, department), v)
}

// Save atomically replaces the collection for kind/department with v.
func (s *Store) Save(kind Kind, department string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(s.path(kind, department), v)
}

// LoadGlobal decodes a non-department collection into v.
func (s *Store) LoadGlobal(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(filepath.Join(s.dir, name), v)
}

// SaveGlobal atomically replaces a non-department collection with v.
func (s *Store) SaveGlobal(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(filepath.Join(s.dir, name), v)
}

func (s *Store) load(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return shared.Storagef("read %s: %v", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("collection unreadable, starting empty",
			slog.String("file", filepath.Base(path)), slog.Any("error", err))
		return nil
	}
	return nil
}

func (s *Store) save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return shared.Formatf("encode %s: %v", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return shared.Storagef("stage %s: %v", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return shared.Storagef("write %s: %v", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return shared.Storagef("close %s: %v", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return shared.Storagef("replace %s: %v", filepath.Base(path), err)
	}
	return nil
}
