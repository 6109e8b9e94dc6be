// Package auth guards the administrative routes with a single static
// credential checked through HTTP Basic authentication.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/comigor/lifelink-go/internal/logger"
	"github.com/comigor/lifelink-go/internal/sanitize"
)

// DefaultRealm is announced in the challenge when none is configured.
const DefaultRealm = "Message Logs"

type ctxKey struct{}

// Guard allows exactly one username/password pair.
type Guard struct {
	Username string
	Password string
	Realm    string
}

// Allow reports whether user and pass match the configured identity.
// Empty credentials are always rejected.
func (g Guard) Allow(user, pass string) bool {
	if user == "" || pass == "" || g.Username == "" || g.Password == "" {
		return false
	}
	// evaluate both so timing does not reveal which half matched
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(g.Username))
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(g.Password))
	return userOK&passOK == 1
}

// Require wraps next so it only runs for requests carrying the configured
// credential. Everything else gets a 401 with a Basic challenge.
func (g Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || !g.Allow(user, pass) {
			logger.L.Warn("authentication failed",
				"path", r.URL.Path,
				"user", sanitize.Sanitize(user),
				"credentials_present", ok)
			g.challenge(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func (g Guard) challenge(w http.ResponseWriter) {
	realm := g.Realm
	if realm == "" {
		realm = DefaultRealm
	}
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", realm))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": "Authentication required",
	})
}

// User returns the authenticated username stored by Require.
func User(ctx context.Context) string {
	u, _ := ctx.Value(ctxKey{}).(string)
	return u
}
