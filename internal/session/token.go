// Package session verifies admin sessions issued by the external auth service.
//
// A session token is an HS256 JWT carrying the user (sub) and session (sid).
// The signature proves the auth service minted it; the Store proves the
// session was not signed out since.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "domaindesk/pkg/domain-errors"
)

// Claims represents the session token claims.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Tokens signs and validates session tokens with a shared key.
type Tokens struct {
	signingKey []byte
}

func NewTokens(signingKey string) *Tokens {
	return &Tokens{signingKey: []byte(signingKey)}
}

// Issue signs a token for an existing session. Production tokens come from
// the auth service; this is used by tooling and tests sharing the key.
func (t *Tokens) Issue(userID, sessionID string, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(t.signingKey)
}

// Validate checks signature and expiry.
func (t *Tokens) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return t.signingKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "session has expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid session token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	if claims.SessionID == "" || claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session token missing subject")
	}
	return claims, nil
}
