package suppliers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/procuredesk/procuredesk/internal/platform/filestore"
)

func TestRememberSupplierKeepsUniqueNames(t *testing.T) {
	store, err := filestore.New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.RememberSupplier(ctx, "Danway"))
	require.NoError(t, svc.RememberSupplier(ctx, "Al Futtaim"))
	require.NoError(t, svc.RememberSupplier(ctx, "danway")) // duplicate, ignored
	require.NoError(t, svc.RememberSupplier(ctx, "  "))     // blank, ignored

	names, err := svc.History(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Danway", "Al Futtaim"}, names)
}
