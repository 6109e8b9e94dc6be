// Package view renders the administrative message list as HTML.
package view

import (
	"github.com/samber/lo/mutable"

	"github.com/comigor/lifelink-go/internal/history"
)

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.906 generate

const displayLayout = "02 Jan 2006 15:04:05.000 MST"

// Page is the data shown on the message list.
type Page struct {
	Title    string
	Capacity int
	// Records in insertion order; the page shows them newest first.
	Records []history.Record
}

func (p Page) title() string {
	if p.Title == "" {
		return "Message Logs"
	}
	return p.Title
}

// newestFirst reverses a copy so the caller's slice keeps insertion order.
func (p Page) newestFirst() []history.Record {
	records := make([]history.Record, len(p.Records))
	copy(records, p.Records)
	mutable.Reverse(records)
	return records
}

// displayTime falls back to the stored text when it does not parse.
func displayTime(rec history.Record) string {
	t, err := rec.Time()
	if err != nil {
		return rec.Timestamp
	}
	return t.UTC().Format(displayLayout)
}
