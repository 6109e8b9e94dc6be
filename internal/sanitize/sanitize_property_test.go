package sanitize

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSanitizeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("safe strings pass through unchanged", prop.ForAll(
		func(s string) bool {
			return Sanitize(s) == s
		},
		gen.RegexMatch(`^[a-zA-Z0-9 .,:!?&()\-_]*$`),
	))

	properties.Property("no markup characters survive", prop.ForAll(
		func(s string) bool {
			return !strings.ContainsAny(Sanitize(s), `<>"'$`)
		},
		gen.AnyString(),
	))

	properties.Property("output is never shorter than input", prop.ForAll(
		func(s string) bool {
			return len(Sanitize(s)) >= len(s)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
