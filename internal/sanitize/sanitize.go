// Package sanitize escapes externally supplied values before they are stored,
// logged or rendered.
package sanitize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// replacer walks the input once; its output is never re-scanned, so the ';'
// of an emitted entity is left alone.
var replacer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"$", "&#36;",
	";", "&#59;",
)

// Sanitize converts v to text and escapes < > " ' $ and ;.
// It never fails: values that are not text are JSON encoded first.
func Sanitize(v any) string {
	return replacer.Replace(Text(v))
}

// Text returns the canonical textual form of v without escaping it.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
