package filestore

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	Number string  `json:"pr_number"`
	Total  float64 `json:"total_value"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := []record{{Number: "PR-001", Total: 1500}, {Number: "PR-002", Total: 80.5}}
	require.NoError(t, s.Save(KindPendingPRs, "Civil Works", in))

	var out []record
	require.NoError(t, s.Load(KindPendingPRs, "civil works", &out))
	require.Equal(t, in, out)

	// the file name carries the normalized department
	_, err := os.Stat(filepath.Join(s.Dir(), "pending_prs_civil_works.json"))
	require.NoError(t, err)
}

func TestMissingFileLeavesCollectionEmpty(t *testing.T) {
	s := newTestStore(t)

	var out []record
	require.NoError(t, s.Load(KindLPOs, "mep", &out))
	require.Empty(t, out)
}

func TestCorruptFileDegradesToEmpty(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Dir(), "trends_mep.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	out := map[string]record{}
	require.NoError(t, s.Load(KindTrends, "mep", &out))
	require.Empty(t, out)
}

func TestSaveReplacesWholeDocument(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(KindRejectedPRs, "site", []record{{Number: "PR-001"}, {Number: "PR-002"}}))
	require.NoError(t, s.Save(KindRejectedPRs, "site", []record{{Number: "PR-002"}}))

	var out []record
	require.NoError(t, s.Load(KindRejectedPRs, "site", &out))
	require.Len(t, out, 1)
	require.Equal(t, "PR-002", out[0].Number)
}

func TestGlobalCollections(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveGlobal(GlobalSupplierHistory, []string{"Al Futtaim", "Danway"}))

	var out []string
	require.NoError(t, s.LoadGlobal(GlobalSupplierHistory, &out))
	require.Equal(t, []string{"Al Futtaim", "Danway"}, out)
}
