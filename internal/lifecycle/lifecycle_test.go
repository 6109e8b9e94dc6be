package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/lifelink-go/internal/journal"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []string
	kinds   []journal.Kind
}

func (s *recordingSink) Record(kind journal.Kind, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds = append(s.kinds, kind)
	s.entries = append(s.entries, content)
}

func TestMachine_HappyPath(t *testing.T) {
	sink := &recordingSink{}
	m := New(sink)
	ctx := context.Background()

	require.Equal(t, StateStarting, m.State())
	require.False(t, m.Serving())

	require.NoError(t, m.Ready(ctx))
	require.True(t, m.Serving())

	require.NoError(t, m.Drain(ctx))
	require.Equal(t, StateDraining, m.State())

	require.NoError(t, m.Stop(ctx))
	require.Equal(t, StateStopped, m.State())

	require.Equal(t, []string{
		"server Starting -> Serving (Ready)",
		"server Serving -> Draining (Shutdown)",
		"server Draining -> Stopped (Stopped)",
	}, sink.entries)
}

func TestMachine_InvalidTransition(t *testing.T) {
	m := New(nil)
	ctx := context.Background()

	require.Error(t, m.Stop(ctx))
	require.Equal(t, StateStarting, m.State())

	require.NoError(t, m.Ready(ctx))
	require.Error(t, m.Ready(ctx))
}

func TestMachine_Fail(t *testing.T) {
	sink := &recordingSink{}
	m := New(sink)

	require.NoError(t, m.Fail(context.Background(), errors.New("bind: <in use>")))
	require.Equal(t, StateFailed, m.State())
	require.Equal(t, journal.KindError, sink.kinds[0])
	require.Equal(t, "server failed: bind: &lt;in use&gt;", sink.entries[0])

	// terminal
	require.Error(t, m.Ready(context.Background()))
}
