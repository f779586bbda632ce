// Package requestcontext carries request-scoped values from the HTTP
// middleware to the services without either importing the other.
//
// Services read the clock through Now so tests can pin it:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	userIDKey      struct{}
	sessionIDKey   struct{}
	clientIPKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

func str(ctx context.Context, key any) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// UserID is the authenticated admin, empty before the session gate.
func UserID(ctx context.Context) string {
	return str(ctx, userIDKey{})
}

func SessionID(ctx context.Context) string {
	return str(ctx, sessionIDKey{})
}

// WithSession records the admin and session the gate accepted.
func WithSession(ctx context.Context, userID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey{}, userID)
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

func ClientIP(ctx context.Context) string {
	return str(ctx, clientIPKey{})
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// RequestID is the correlation id logged with every line of a request.
func RequestID(ctx context.Context) string {
	return str(ctx, requestIDKey{})
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the time the request started, or the wall clock outside a
// request.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
