package session

import (
	"context"
	"time"

	dErrors "domaindesk/pkg/domain-errors"
)

// Store answers whether a session is still live.
type Store interface {
	IsActive(ctx context.Context, sessionID, userID string, now time.Time) (bool, error)
}

// Verifier combines token validation with the session store lookup.
type Verifier struct {
	tokens *Tokens
	store  Store
}

func NewVerifier(tokens *Tokens, store Store) *Verifier {
	return &Verifier{tokens: tokens, store: store}
}

// Verify returns the claims of a live session. Store outages surface as
// CodeInternal so the gate can log them apart from bad tokens.
func (v *Verifier) Verify(ctx context.Context, token string, now time.Time) (*Claims, error) {
	claims, err := v.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	active, err := v.store.IsActive(ctx, claims.SessionID, claims.Subject, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "session lookup failed")
	}
	if !active {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session revoked")
	}
	return claims, nil
}
