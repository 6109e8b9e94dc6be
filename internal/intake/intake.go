// Package intake accepts public messages: it fills defaults, sanitizes the
// message and client address, records the combined line and forwards it to the
// journal. Internal faults are recorded as sanitized ERROR entries and
// returned to the caller, which answers with a generic failure.
package intake

import (
	"context"
	"fmt"

	"github.com/comigor/lifelink-go/internal/history"
	"github.com/comigor/lifelink-go/internal/journal"
	"github.com/comigor/lifelink-go/internal/logger"
	"github.com/comigor/lifelink-go/internal/sanitize"
)

// Placeholder replaces a missing or empty message.
const Placeholder = "No message provided"

// UnknownIP is used when no client address could be determined.
const UnknownIP = "unknown"

// ErrorPrefix starts every store entry describing an intake fault.
const ErrorPrefix = "ERROR: "

// Recorder is the subset of *history.Store used by the service.
type Recorder interface {
	Add(content string) history.Record
	AddMessage(ip, message string) history.Record
}

// Input is one inbound message.
type Input struct {
	RemoteIP string
	// Message is the raw body field; non-string values are serialized.
	Message any
}

// Service handles message intake.
type Service struct {
	store Recorder
	sink  journal.Sink
}

// New creates a Service. A nil sink discards journal entries.
func New(store Recorder, sink journal.Sink) *Service {
	if sink == nil {
		sink = journal.Discard{}
	}
	return &Service{store: store, sink: sink}
}

// Submit sanitizes and stores in. On failure the error has already been
// recorded; callers must not expose its text.
func (s *Service) Submit(ctx context.Context, in Input) (rec history.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("intake panic: %v", r)
		}
		if err != nil {
			s.recordFailure(err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return history.Record{}, fmt.Errorf("intake: %w", err)
	}

	ip := sanitize.Sanitize(in.RemoteIP)
	if ip == "" {
		ip = UnknownIP
	}
	message := in.Message
	if isAbsent(message) {
		message = Placeholder
	}

	rec = s.store.AddMessage(ip, sanitize.Sanitize(message))
	s.sink.Record(journal.KindMessage, rec.Content)
	logger.L.Info("message received", "id", rec.ID, "ip", ip)
	return rec, nil
}

func isAbsent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

func (s *Service) recordFailure(cause error) {
	line := ErrorPrefix + sanitize.Sanitize(cause)
	logger.L.Error("message processing failed", "error", line)
	s.sink.Record(journal.KindError, line)

	defer func() {
		if r := recover(); r != nil {
			logger.L.Error("recording intake failure failed", "panic", sanitize.Sanitize(fmt.Sprint(r)))
		}
	}()
	s.store.Add(line)
}
