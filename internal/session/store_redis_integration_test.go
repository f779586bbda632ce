//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"domaindesk/internal/session"
	"domaindesk/pkg/testutil/containers"
)

type RedisIntegrationSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RedisIntegrationSuite))
}

func (s *RedisIntegrationSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = session.NewRedisStore(s.redis.Client.Client)
}

func (s *RedisIntegrationSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(context.Background()))
}

func (s *RedisIntegrationSuite) TestGateAgainstRealRedis() {
	ctx := context.Background()
	tokens := session.NewTokens("integration-key")
	verifier := session.NewVerifier(tokens, s.store)
	now := time.Now()

	s.Require().NoError(s.store.Put(ctx, session.Session{ID: "sid-1", UserID: "admin-1", ExpiresAt: now.Add(time.Hour)}))
	token, err := tokens.Issue("admin-1", "sid-1", now, time.Hour)
	s.Require().NoError(err)

	claims, err := verifier.Verify(ctx, token, now)
	s.Require().NoError(err)
	s.Equal("admin-1", claims.Subject)

	s.Require().NoError(s.store.Revoke(ctx, "sid-1"))
	_, err = verifier.Verify(ctx, token, now)
	s.Error(err)
}

func (s *RedisIntegrationSuite) TestHealth() {
	s.NoError(s.redis.Client.Health(context.Background()))
}
