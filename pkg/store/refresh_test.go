package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kitchensink/pkg/codec"
	"github.com/aretw0/kitchensink/pkg/retry"
	"github.com/aretw0/kitchensink/pkg/shutdown"
)

// versionFetcher bumps the stored version, failing the first failFirst calls.
type versionFetcher struct {
	calls     atomic.Int32
	failFirst int32
	sawStore  atomic.Bool
}

func (f *versionFetcher) Fetch(ctx context.Context, current *Store[catalog]) (catalog, error) {
	n := f.calls.Add(1)
	if current == nil {
		return catalog{Version: 100}, nil
	}
	f.sawStore.Store(true)
	if n <= f.failFirst {
		return catalog{}, errors.New("upstream flaky")
	}
	prev := current.Snapshot()
	return catalog{Version: prev.Version + 1}, nil
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestNewWithFetcher_SeedsWithoutCurrentStore(t *testing.T) {
	f := &versionFetcher{}
	s, err := NewWithFetcher[catalog](context.Background(), storePath(t), codec.JSON[catalog]{}, f)
	require.NoError(t, err)

	assert.Equal(t, 100, s.Snapshot().Version)
	assert.False(t, f.sawStore.Load())
}

func TestNewWithFetcher_ExistingFileSkipsFetch(t *testing.T) {
	path := storePath(t)
	first, err := NewWithDefault[catalog](path, codec.JSON[catalog]{})
	require.NoError(t, err)
	require.NoError(t, first.Write(catalog{Version: 7}))

	f := &versionFetcher{}
	s, err := NewWithFetcher[catalog](context.Background(), path, codec.JSON[catalog]{}, f)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Snapshot().Version)
	assert.Zero(t, f.calls.Load())
}

func TestScheduleUpdates_RefreshesAndStopsOnShutdown(t *testing.T) {
	coord := shutdown.New()
	s, err := NewWithDefault[catalog](storePath(t), codec.JSON[catalog]{})
	require.NoError(t, err)

	f := &versionFetcher{}
	task := s.ScheduleUpdates(coord, f, 10*time.Millisecond, WithTaskName("catalog-refresh"))
	assert.Equal(t, "catalog-refresh", task.Name())

	waitFor(t, func() bool { return s.Snapshot().Version >= 4 }, "three refreshes")
	assert.True(t, f.sawStore.Load())

	reopened, err := NewWithDefault[catalog](s.Path(), codec.JSON[catalog]{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, reopened.Snapshot().Version, 4, "refreshed values reach the disk")

	coord.Cancel()
	res, err := coord.Wait()
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "catalog-refresh", res.Tasks[0].Name)
	assert.NoError(t, res.Tasks[0].Err)
}

func TestScheduleUpdates_FailuresDoNotStopTheLoop(t *testing.T) {
	coord := shutdown.New()
	s, err := NewWithDefault[catalog](storePath(t), codec.JSON[catalog]{})
	require.NoError(t, err)

	f := &versionFetcher{failFirst: 3}
	s.ScheduleUpdates(coord, f, 10*time.Millisecond, WithBackoff(nil))

	waitFor(t, func() bool { return s.Snapshot().Version >= 2 }, "a refresh after failures")
	assert.GreaterOrEqual(t, f.calls.Load(), int32(4))

	coord.Cancel()
	_, err = coord.Wait()
	require.NoError(t, err)
}

func TestScheduleUpdates_WaitsForFirstInterval(t *testing.T) {
	coord := shutdown.New()
	s, err := NewWithDefault[catalog](storePath(t), codec.JSON[catalog]{})
	require.NoError(t, err)

	f := &versionFetcher{failFirst: 2}
	s.ScheduleUpdates(coord, f, time.Hour, WithBackoff(func() retry.Iterator {
		return &retry.Limited{Delay: time.Millisecond, Retries: 5}
	}))

	// Nothing happens before the first interval elapses.
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, f.calls.Load())

	coord.Cancel()
	_, err = coord.Wait()
	require.NoError(t, err)
}

func TestRefresh_RetriesUntilSuccess(t *testing.T) {
	s, err := NewWithDefault[catalog](storePath(t), codec.JSON[catalog]{})
	require.NoError(t, err)

	f := &versionFetcher{failFirst: 2}
	s.refresh(context.Background(), f, func() retry.Iterator {
		return &retry.Limited{Delay: time.Millisecond, Retries: 5}
	})

	assert.Equal(t, int32(3), f.calls.Load())
	assert.Equal(t, 2, s.Snapshot().Version)
}

func TestRefresh_GivesUpAfterRetries(t *testing.T) {
	s, err := NewWithDefault[catalog](storePath(t), codec.JSON[catalog]{})
	require.NoError(t, err)

	f := &versionFetcher{failFirst: 10}
	s.refresh(context.Background(), f, func() retry.Iterator {
		return &retry.Limited{Delay: time.Millisecond, Retries: 2}
	})

	assert.Equal(t, int32(3), f.calls.Load())
	assert.Equal(t, 1, s.Snapshot().Version, "failed refresh leaves the value untouched")
}

func TestFetchFunc(t *testing.T) {
	var f Fetcher[catalog] = FetchFunc[catalog](func(ctx context.Context, current *Store[catalog]) (catalog, error) {
		return catalog{Version: 9}, nil
	})
	v, err := f.Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 9, v.Version)
}
