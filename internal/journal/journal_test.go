package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, queue int) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(context.Background(), Options{Path: path, QueueSize: queue})
	require.NoError(t, err)
	return j, path
}

func TestJournal_RecordAndReopen(t *testing.T) {
	j, path := openTemp(t, 16)
	j.Record(KindLifecycle, "starting")
	j.Record(KindMessage, "IP: 1.2.3.4 | Message: hi")
	j.Record(KindAdmin, "cleared")
	require.NoError(t, j.Close(context.Background()))

	j2, err := Open(context.Background(), Options{Path: path})
	require.NoError(t, err)
	defer j2.Close(context.Background())

	entries, err := j2.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, KindAdmin, entries[0].Kind)
	require.Equal(t, "cleared", entries[0].Content)
	require.Equal(t, KindMessage, entries[1].Kind)
	require.Equal(t, KindLifecycle, entries[2].Kind)
	require.WithinDuration(t, time.Now(), entries[0].CreatedAt, time.Minute)
}

func TestJournal_RecentLimit(t *testing.T) {
	j, _ := openTemp(t, 64)
	for i := 0; i < 10; i++ {
		j.Record(KindMessage, fmt.Sprintf("m%d", i))
	}

	require.Eventually(t, func() bool {
		entries, err := j.Recent(context.Background(), 100)
		return err == nil && len(entries) == 10
	}, 5*time.Second, 10*time.Millisecond)

	entries, err := j.Recent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "m9", entries[0].Content)
	require.NoError(t, j.Close(context.Background()))
}

func TestJournal_RecordAfterCloseIsDropped(t *testing.T) {
	j, _ := openTemp(t, 4)
	require.NoError(t, j.Close(context.Background()))

	require.NotPanics(t, func() { j.Record(KindMessage, "late") })
	require.Equal(t, int64(1), j.Dropped())
	require.ErrorIs(t, j.Close(context.Background()), ErrClosed)

	_, err := j.Recent(context.Background(), 1)
	require.ErrorIs(t, err, ErrClosed)
}

func TestJournal_RecordNeverBlocks(t *testing.T) {
	j, _ := openTemp(t, 1)
	defer j.Close(context.Background())

	var wg sync.WaitGroup
	done := make(chan struct{})
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				j.Record(KindMessage, "flood")
			}
		}()
	}
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Record blocked")
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), Options{})
	require.Error(t, err)
}

func TestDiscard(t *testing.T) {
	var s Sink = Discard{}
	require.NotPanics(t, func() { s.Record(KindError, "x") })
}
