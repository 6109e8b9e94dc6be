package history

import "time"

// TimestampLayout is the ISO-8601 form used for Record.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Record is a single stored message. It is never modified after Add returns it.
type Record struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Content   string `json:"content"`

	// IP and Message hold the two sanitized halves of an intake entry so they
	// can be read back without parsing Content.
	IP      string `json:"ip,omitempty"`
	Message string `json:"message,omitempty"`
}

// Time parses the record timestamp.
func (r Record) Time() (time.Time, error) {
	return time.Parse(TimestampLayout, r.Timestamp)
}

// FormatLine builds the combined intake line stored as Record.Content.
func FormatLine(ip, message string) string {
	return "IP: " + ip + " | Message: " + message
}
