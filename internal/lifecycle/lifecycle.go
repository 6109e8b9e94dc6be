// Package lifecycle tracks the server through Starting, Serving, Draining and
// Stopped (or Failed). Every transition is logged and journaled.
package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/qmuntal/stateless"

	"github.com/comigor/lifelink-go/internal/journal"
	"github.com/comigor/lifelink-go/internal/logger"
	"github.com/comigor/lifelink-go/internal/sanitize"
)

// State of the server process.
type State string

const (
	StateStarting State = "Starting"
	StateServing  State = "Serving"
	StateDraining State = "Draining"
	StateStopped  State = "Stopped" // terminal
	StateFailed   State = "Failed"  // terminal
)

// Trigger moves the machine between states.
type Trigger string

const (
	TriggerReady    Trigger = "Ready"
	TriggerShutdown Trigger = "Shutdown"
	TriggerStopped  Trigger = "Stopped"
	TriggerFail     Trigger = "Fail"
)

// Machine is safe for concurrent use.
type Machine struct {
	mu   sync.Mutex
	fsm  *stateless.StateMachine
	sink journal.Sink
}

// New returns a machine in StateStarting.
func New(sink journal.Sink) *Machine {
	if sink == nil {
		sink = journal.Discard{}
	}
	m := &Machine{
		fsm:  stateless.NewStateMachine(StateStarting),
		sink: sink,
	}

	m.fsm.Configure(StateStarting).
		Permit(TriggerReady, StateServing).
		Permit(TriggerShutdown, StateDraining).
		Permit(TriggerFail, StateFailed)

	m.fsm.Configure(StateServing).
		Permit(TriggerShutdown, StateDraining).
		Permit(TriggerFail, StateFailed)

	m.fsm.Configure(StateDraining).
		Permit(TriggerStopped, StateStopped).
		Permit(TriggerFail, StateFailed)

	m.fsm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		line := fmt.Sprintf("server %v -> %v (%v)", t.Source, t.Destination, t.Trigger)
		logger.L.Info("lifecycle transition", "from", t.Source, "to", t.Destination, "trigger", t.Trigger)
		m.sink.Record(journal.KindLifecycle, line)
	})

	return m
}

func (m *Machine) fire(ctx context.Context, trigger Trigger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fsm.FireCtx(ctx, trigger); err != nil {
		return fmt.Errorf("lifecycle %s: %w", trigger, err)
	}
	return nil
}

// Ready marks the server as accepting requests.
func (m *Machine) Ready(ctx context.Context) error { return m.fire(ctx, TriggerReady) }

// Drain marks the start of graceful shutdown.
func (m *Machine) Drain(ctx context.Context) error { return m.fire(ctx, TriggerShutdown) }

// Stop marks a completed shutdown.
func (m *Machine) Stop(ctx context.Context) error { return m.fire(ctx, TriggerStopped) }

// Fail records a fatal error and moves to StateFailed.
func (m *Machine) Fail(ctx context.Context, cause error) error {
	logger.L.Error("server failed", "error", cause)
	m.sink.Record(journal.KindError, "server failed: "+sanitize.Sanitize(cause))
	return m.fire(ctx, TriggerFail)
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fsm.MustState().(State)
}

// Serving reports whether the server is accepting requests.
func (m *Machine) Serving() bool {
	return m.State() == StateServing
}
