package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticDepts []string

func (d staticDepts) List(ctx context.Context) ([]string, error) {
	return d, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTriggerRefreshesEveryDepartment(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	r := NewRefresher(time.Hour, staticDepts{"electrical", "plumbing"}, func(ctx context.Context, dept string) error {
		mu.Lock()
		seen = append(seen, dept)
		mu.Unlock()
		return nil
	}, testLogger())

	require.NoError(t, r.Trigger(context.Background()))
	require.Equal(t, []string{"electrical", "plumbing"}, seen)
}

func TestConcurrentTriggersCollapse(t *testing.T) {
	var cycles atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	r := NewRefresher(time.Hour, staticDepts{"electrical"}, func(ctx context.Context, dept string) error {
		cycles.Add(1)
		close(started)
		<-release
		return nil
	}, testLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Trigger(context.Background())
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Trigger(context.Background()) // joins the in-flight cycle
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), cycles.Load())
}

func TestRunStopsOnCancel(t *testing.T) {
	r := NewRefresher(5*time.Millisecond, staticDepts{"electrical"}, func(ctx context.Context, dept string) error {
		return nil
	}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := r.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
