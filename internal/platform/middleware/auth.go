package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"domaindesk/internal/platform/metrics"
	"domaindesk/internal/session"
	"domaindesk/internal/transport/http/shared"
	dErrors "domaindesk/pkg/domain-errors"
	"domaindesk/pkg/requestcontext"
)

// SessionVerifier validates a session token and confirms the session is live.
type SessionVerifier interface {
	Verify(ctx context.Context, token string, now time.Time) (*session.Claims, error)
}

// RequireSession rejects requests without a live admin session with the
// uniform 401 {"message":"Unauthorized"}. The token is read from the bearer
// header first, then from the session cookie.
func RequireSession(verifier SessionVerifier, cookieName string, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token := tokenFromRequest(r, cookieName)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing session token",
					"request_id", requestID,
				)
				m.IncrementAuthFailure("missing_token")
				shared.WriteUnauthorized(w)
				return
			}

			claims, err := verifier.Verify(ctx, token, requestcontext.Now(ctx))
			if err != nil {
				reason := "invalid_session"
				if dErrors.Is(err, dErrors.CodeInternal) {
					reason = "store_unavailable"
					logger.ErrorContext(ctx, "session verification failed",
						"request_id", requestID,
						"error", err,
					)
				} else {
					logger.WarnContext(ctx, "unauthorized access - invalid session",
						"request_id", requestID,
						"error", err,
					)
				}
				m.IncrementAuthFailure(reason)
				shared.WriteUnauthorized(w)
				return
			}

			ctx = requestcontext.WithSession(ctx, claims.Subject, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
