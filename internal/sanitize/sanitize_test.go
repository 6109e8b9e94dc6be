package sanitize

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"plain text unchanged", "No message provided", "No message provided"},
		{"script tag", "<script>", "&lt;script&gt;"},
		{"quotes", `"a" 'b'`, "&quot;a&quot; &#x27;b&#x27;"},
		{"shell metacharacters", "echo $HOME; ls", "echo &#36;HOME&#59; ls"},
		{"existing entity is escaped once", "&lt;", "&lt&#59;"},
		{"nil is empty", nil, ""},
		{"bytes", []byte("<b>"), "&lt;b&gt;"},
		{"error text", errors.New("bad <input>"), "bad &lt;input&gt;"},
		{"number", 42, "42"},
		{"map is json encoded", map[string]any{"a": "<x>"}, "{&quot;a&quot;:&quot;\\u003cx\\u003e&quot;}"},
		{"slice", []int{1, 2}, "[1,2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_NoDangerousCharactersRemain(t *testing.T) {
	out := Sanitize(`<img src="x" onerror='alert($x);'>`)
	require.False(t, strings.ContainsAny(out, `<>"'$`))
	// every ';' left over belongs to an entity
	require.Equal(t, strings.Count(out, "&"), strings.Count(out, ";"))
}

func TestSanitize_Deterministic(t *testing.T) {
	in := "<a href='$x'>;</a>"
	require.Equal(t, Sanitize(in), Sanitize(in))
}
