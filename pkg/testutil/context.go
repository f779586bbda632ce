package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"domaindesk/internal/session"
	"domaindesk/pkg/requestcontext"
)

// WithSession adds an authenticated admin to the request context, as the
// session gate would.
func WithSession(req *http.Request, userID, sessionID string) *http.Request {
	return req.WithContext(requestcontext.WithSession(req.Context(), userID, sessionID))
}

// NewSessionToken records a live session in store and returns a token for it,
// standing in for the external auth service.
func NewSessionToken(t *testing.T, tokens *session.Tokens, store *session.InMemory, userID string) string {
	t.Helper()
	now := time.Now()
	sessionID := uuid.NewString()
	require.NoError(t, store.Put(context.Background(), session.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Hour),
	}))
	token, err := tokens.Issue(userID, sessionID, now, time.Hour)
	require.NoError(t, err)
	return token
}

// Authorize sets a bearer token on req.
func Authorize(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
