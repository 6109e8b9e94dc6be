// Package journal is the durable, append-only log of accepted messages,
// administrative actions and server lifecycle events.
//
// Writes are fire-and-forget: Record never blocks the caller and never
// reports an error. A single background writer owns the SQLite handle;
// failures are logged and the entry is lost.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/lifelink-go/internal/logger"
)

// Kind classifies a journal entry.
type Kind string

const (
	KindMessage   Kind = "message"
	KindError     Kind = "error"
	KindAdmin     Kind = "admin"
	KindLifecycle Kind = "lifecycle"
)

// ErrClosed is returned by operations on a closed Journal.
var ErrClosed = errors.New("journal: closed")

const (
	defaultQueueSize = 256
	writeTimeout     = 5 * time.Second
)

// Sink accepts journal entries without blocking.
type Sink interface {
	Record(kind Kind, content string)
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Record(Kind, string) {}

// Entry is one persisted journal line.
type Entry struct {
	ID        int64
	Kind      Kind
	Content   string
	CreatedAt time.Time
}

// Options configures Open.
type Options struct {
	Path      string
	QueueSize int
}

// Journal writes entries to SQLite from a background goroutine.
type Journal struct {
	db    *sql.DB
	queue chan Entry
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	dropped atomic.Int64
}

// Open opens (creating if needed) the journal database and starts the writer.
func Open(ctx context.Context, opts Options) (*Journal, error) {
	if opts.Path == "" {
		return nil, errors.New("journal: empty path")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}

	db, err := sql.Open("sqlite", "file:"+opts.Path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", opts.Path, err)
	}
	// one writer plus concurrent Recent readers share a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS journal (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        kind TEXT NOT NULL,
        content TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}

	j := &Journal{
		db:    db,
		queue: make(chan Entry, opts.QueueSize),
		done:  make(chan struct{}),
	}
	go j.run()

	logger.L.Info("journal opened", "path", opts.Path)
	return j, nil
}

// Record queues an entry. If the queue is full or the journal is closed the
// entry is dropped.
func (j *Journal) Record(kind Kind, content string) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		j.dropped.Add(1)
		return
	}
	select {
	case j.queue <- Entry{Kind: kind, Content: content, CreatedAt: time.Now().UTC()}:
	default:
		j.dropped.Add(1)
		logger.L.Warn("journal queue full; entry dropped", "kind", string(kind))
	}
}

// Dropped reports how many entries were discarded.
func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

func (j *Journal) run() {
	defer close(j.done)
	for e := range j.queue {
		if err := j.write(e); err != nil {
			logger.L.Error("journal write failed", "kind", string(e.Kind), "error", err)
		}
	}
}

func (j *Journal) write(e Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO journal (kind, content, created_at) VALUES (?,?,?);`,
		string(e.Kind), e.Content, e.CreatedAt)
	return err
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	j.mu.RLock()
	closed := j.closed
	j.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, kind, content, created_at FROM journal ORDER BY id DESC LIMIT ?;`, n)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			kind string
		)
		if err := rows.Scan(&e.ID, &kind, &e.Content, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.Kind = Kind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close stops accepting entries, waits for queued ones to be written and
// closes the database. If ctx expires first the remaining entries are lost.
func (j *Journal) Close(ctx context.Context) error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return ErrClosed
	}
	j.closed = true
	close(j.queue)
	j.mu.Unlock()

	select {
	case <-j.done:
	case <-ctx.Done():
		logger.L.Warn("journal close timed out; pending entries lost", "error", ctx.Err())
	}
	return j.db.Close()
}
