package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/newswirehq/newswire-backend/api/responses"
	"github.com/newswirehq/newswire-backend/pkg/config"
	pkgerrors "github.com/newswirehq/newswire-backend/pkg/errors"
	"github.com/newswirehq/newswire-backend/pkg/logger"
)

// AccessGate requires the shared dispatcher token on machine-to-machine
// routes. The comparison is constant-time so response latency leaks nothing
// about how much of a guessed token matched.
func AccessGate(cfg config.AuthConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	expected := []byte(cfg.BearerToken)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeInternal, "access gate not configured"))
				return
			}

			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
