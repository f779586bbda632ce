package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	dErrors "domaindesk/pkg/domain-errors"
	"domaindesk/pkg/platform/sentinel"
)

const signingKey = "test-signing-key"

type VerifierSuite struct {
	suite.Suite
	ctx    context.Context
	now    time.Time
	tokens *Tokens
	store  *InMemory
	v      *Verifier
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Now()
	s.tokens = NewTokens(signingKey)
	s.store = NewInMemory()
	s.v = NewVerifier(s.tokens, s.store)
}

func (s *VerifierSuite) issue(userID, sessionID string, ttl time.Duration) string {
	token, err := s.tokens.Issue(userID, sessionID, s.now, ttl)
	s.Require().NoError(err)
	return token
}

func (s *VerifierSuite) TestLiveSession() {
	s.Require().NoError(s.store.Put(s.ctx, Session{ID: "sess-1", UserID: "admin-1", ExpiresAt: s.now.Add(time.Hour)}))

	claims, err := s.v.Verify(s.ctx, s.issue("admin-1", "sess-1", time.Hour), s.now)
	s.Require().NoError(err)
	s.Equal("admin-1", claims.Subject)
	s.Equal("sess-1", claims.SessionID)
}

func (s *VerifierSuite) TestRejections() {
	s.Require().NoError(s.store.Put(s.ctx, Session{ID: "sess-1", UserID: "admin-1", ExpiresAt: s.now.Add(time.Hour)}))

	s.Run("garbage token", func() {
		_, err := s.v.Verify(s.ctx, "not-a-jwt", s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("wrong signing key", func() {
		other, err := NewTokens("other-key").Issue("admin-1", "sess-1", s.now, time.Hour)
		s.Require().NoError(err)
		_, err = s.v.Verify(s.ctx, other, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("expired token", func() {
		token, err := s.tokens.Issue("admin-1", "sess-1", s.now.Add(-2*time.Hour), time.Hour)
		s.Require().NoError(err)
		_, err = s.v.Verify(s.ctx, token, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("revoked session", func() {
		s.Require().NoError(s.store.Revoke(s.ctx, "sess-1"))
		_, err := s.v.Verify(s.ctx, s.issue("admin-1", "sess-1", time.Hour), s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("session of another user", func() {
		s.Require().NoError(s.store.Put(s.ctx, Session{ID: "sess-2", UserID: "admin-2", ExpiresAt: s.now.Add(time.Hour)}))
		_, err := s.v.Verify(s.ctx, s.issue("admin-1", "sess-2", time.Hour), s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *VerifierSuite) TestInMemoryExpiry() {
	s.Require().NoError(s.store.Put(s.ctx, Session{ID: "sess-1", UserID: "admin-1", ExpiresAt: s.now.Add(time.Minute)}))

	active, err := s.store.IsActive(s.ctx, "sess-1", "admin-1", s.now.Add(2*time.Minute))
	s.Require().NoError(err)
	s.False(active)
}

type RedisStoreSuite struct {
	suite.Suite
	ctx   context.Context
	mr    *miniredis.Miniredis
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.mr = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })
	s.store = NewRedisStore(client)
}

func (s *RedisStoreSuite) TestPutAndLookup() {
	s.Require().NoError(s.store.Put(s.ctx, Session{ID: "sess-1", UserID: "admin-1", ExpiresAt: time.Now().Add(time.Hour)}))

	active, err := s.store.IsActive(s.ctx, "sess-1", "admin-1", time.Now())
	s.Require().NoError(err)
	s.True(active)

	active, err = s.store.IsActive(s.ctx, "sess-1", "intruder", time.Now())
	s.Require().NoError(err)
	s.False(active)
}

func (s *RedisStoreSuite) TestExpiryThroughTTL() {
	s.Require().NoError(s.store.Put(s.ctx, Session{ID: "sess-1", UserID: "admin-1", ExpiresAt: time.Now().Add(time.Minute)}))
	s.mr.FastForward(2 * time.Minute)

	active, err := s.store.IsActive(s.ctx, "sess-1", "admin-1", time.Now())
	s.Require().NoError(err)
	s.False(active)
}

func (s *RedisStoreSuite) TestRevoke() {
	s.Require().NoError(s.store.Put(s.ctx, Session{ID: "sess-1", UserID: "admin-1", ExpiresAt: time.Now().Add(time.Hour)}))
	s.Require().NoError(s.store.Revoke(s.ctx, "sess-1"))

	active, err := s.store.IsActive(s.ctx, "sess-1", "admin-1", time.Now())
	s.Require().NoError(err)
	s.False(active)
}

func (s *RedisStoreSuite) TestUnavailable() {
	s.mr.Close()
	_, err := s.store.IsActive(s.ctx, "sess-1", "admin-1", time.Now())
	s.Require().ErrorIs(err, sentinel.ErrUnavailable)
}
