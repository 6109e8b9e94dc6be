package history

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestStoreProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("length never exceeds capacity", prop.ForAll(
		func(capacity, adds int) bool {
			s := New(WithCapacity(capacity))
			for i := 0; i < adds; i++ {
				s.Add("x")
				if len(s.List()) > capacity {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 30),
		gen.IntRange(0, 100),
	))

	properties.Property("only the newest records survive, oldest first", prop.ForAll(
		func(capacity, extra int) bool {
			s := New(WithCapacity(capacity))
			total := capacity + extra
			for i := 0; i < total; i++ {
				s.Add(fmt.Sprint(i))
			}
			got := s.List()
			if len(got) != capacity {
				return false
			}
			for i, rec := range got {
				if rec.Content != fmt.Sprint(extra+i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 30),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}
