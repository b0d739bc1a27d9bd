package middleware

import (
	"net/http"
	"strings"

	"github.com/bugskoyan/spotify/internal/auth"
	"github.com/bugskoyan/spotify/internal/logging"
)

// SessionCookie names the cookie that carries the session token.
const SessionCookie = "session"

// TokenParser verifies a raw session token.
type TokenParser interface {
	Parse(raw string) (auth.Viewer, error)
}

// Session attaches the viewer named by the session cookie or bearer token.
// Requests without a valid token continue anonymously.
func Session(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					raw = c.Value
				}
			}
			if raw != "" && tokens != nil {
				viewer, err := tokens.Parse(raw)
				if err != nil {
					logging.WithContext(r.Context()).Debug().Err(err).Msg("ignoring session token")
				} else {
					r = r.WithContext(auth.WithViewer(r.Context(), viewer))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
