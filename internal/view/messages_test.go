package view

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/lifelink-go/internal/history"
)

func render(t *testing.T, p Page) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Messages(p).Render(context.Background(), &buf))
	return buf.String()
}

func TestMessages_NewestFirstWithCount(t *testing.T) {
	records := []history.Record{
		{ID: "a", Timestamp: "2024-01-01T00:00:00.000Z", Content: "first"},
		{ID: "b", Timestamp: "2024-01-01T00:00:01.000Z", Content: "second"},
	}
	out := render(t, Page{Capacity: 20, Records: records})

	require.Contains(t, out, "Showing 2 of 20 messages")
	require.Less(t, strings.Index(out, "second"), strings.Index(out, "first"))
	// caller's slice is left in insertion order
	require.Equal(t, "a", records[0].ID)
}

func TestMessages_Empty(t *testing.T) {
	out := render(t, Page{Capacity: 5})
	require.Contains(t, out, "No messages yet.")
	require.Contains(t, out, "Showing 0 of 5 messages")
	require.Contains(t, out, "<title>Message Logs</title>")
}

func TestMessages_EscapesMetadata(t *testing.T) {
	out := render(t, Page{
		Title:    "<Logs>",
		Capacity: 1,
		Records:  []history.Record{{ID: `"><x`, Timestamp: "t", Content: "IP: 1 | Message: &lt;b&gt;"}},
	})
	require.NotContains(t, out, "<Logs>")
	require.NotContains(t, out, `"><x`)
	require.Contains(t, out, "IP: 1 | Message: &lt;b&gt;")
}

func TestMessages_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	require.Error(t, Messages(Page{}).Render(ctx, &buf))
	require.Zero(t, buf.Len())
}

func TestMessages_FormatsTimestamps(t *testing.T) {
	out := render(t, Page{
		Capacity: 2,
		Records: []history.Record{
			{ID: "a", Timestamp: "2024-05-01T10:30:45.123Z", Content: "parsed"},
			{ID: "b", Timestamp: "not-a-time", Content: "raw"},
		},
	})
	require.Contains(t, out, `<time class="ts" datetime="2024-05-01T10:30:45.123Z">01 May 2024 10:30:45.123 UTC</time>`)
	require.Contains(t, out, `<time class="ts" datetime="not-a-time">not-a-time</time>`)
}
