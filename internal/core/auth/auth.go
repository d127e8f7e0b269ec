// Package auth provides API-key authentication for write endpoints.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

/*
 * Bearer API-key authentication.
 *
 * Keys arrive via Authorization: Bearer <key>. Comparison runs over SHA256
 * digests with subtle.ConstantTimeCompare so neither key length nor prefix
 * leaks through timing. Multiple configured keys support rotation: old and
 * new keys stay valid during migration.
 *
 * Read endpoints (matching, suggestion, explanation) are left open; only
 * mutating endpoints (reload, feedback) take this middleware.
 */

// Authenticator validates bearer API keys against a configured set.
type Authenticator struct {
	digests [][32]byte
}

// NewAuthenticator creates an authenticator from plaintext keys.
// An empty key set means authentication is disabled (development mode).
func NewAuthenticator(keys []string) *Authenticator {
	a := &Authenticator{}
	for _, k := range keys {
		a.digests = append(a.digests, sha256.Sum256([]byte(k)))
	}
	return a
}

// Enabled reports whether any keys are configured.
func (a *Authenticator) Enabled() bool {
	return len(a.digests) > 0
}

// Validate reports whether the presented key matches any configured key.
func (a *Authenticator) Validate(key string) bool {
	presented := sha256.Sum256([]byte(key))
	valid := false
	for _, d := range a.digests {
		// Check every digest regardless of earlier hits to keep timing
		// independent of which key matched.
		if subtle.ConstantTimeCompare(d[:], presented[:]) == 1 {
			valid = true
		}
	}
	return valid
}

// Middleware returns an echo middleware enforcing bearer authentication.
// A no-key configuration passes every request through.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !a.Enabled() {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			key, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || key == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			if !a.Validate(key) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid API key")
			}
			return next(c)
		}
	}
}
