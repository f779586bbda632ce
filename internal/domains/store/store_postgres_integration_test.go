//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"domaindesk/internal/domains/models"
	"domaindesk/internal/domains/store"
	"domaindesk/pkg/platform/sentinel"
	"domaindesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "consultations", "offers", "domain_ideas", "reports", "branding_packages", "domains"))
}

func newTestDomain(slug string) *models.Domain {
	now := time.Now().UTC().Truncate(time.Microsecond)
	price := 2500.0
	return &models.Domain{
		ID:          uuid.NewString(),
		Name:        slug + ".io",
		Slug:        slug,
		BuyNowPrice: &price,
		Status:      models.StatusAvailable,
		Industries:  []string{"ai", "devtools"},
		Keywords:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	d := newTestDomain("roundtrip")
	s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, d))

	found, err := s.store.FindByIDOrSlug(s.ctx, "roundtrip")
	s.Require().NoError(err)
	s.Equal(d.ID, found.ID)
	s.Equal([]string{"ai", "devtools"}, found.Industries)
	s.Equal([]string{}, found.Keywords)
	s.Require().NotNil(found.BuyNowPrice)
	s.InDelta(2500.0, *found.BuyNowPrice, 0.001)
	s.Nil(found.MinOfferPrice)
}

func (s *PostgresStoreSuite) TestUpdateAndDelete() {
	d := newTestDomain("mutable")
	s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, d))
	taken := newTestDomain("taken")
	s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, taken))

	d.Status = models.StatusSold
	s.Require().NoError(s.store.Update(s.ctx, d))

	d.Slug = "taken"
	s.Require().ErrorIs(s.store.Update(s.ctx, d), sentinel.ErrAlreadyUsed)

	s.Require().NoError(s.store.Delete(s.ctx, d.ID))
	_, err := s.store.FindByIDOrSlug(s.ctx, d.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.Delete(s.ctx, d.ID), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestChildren() {
	d := newTestDomain("children")
	s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, d))
	_, err := s.postgres.DB.ExecContext(s.ctx,
		`INSERT INTO domain_ideas (id, domain_id, title, preview, content) VALUES ($1, $2, 'Idea', 'p', 'c')`,
		uuid.NewString(), d.ID)
	s.Require().NoError(err)

	counts, err := s.store.ChildCounts(s.ctx, []string{d.ID})
	s.Require().NoError(err)
	s.Equal(1, counts[d.ID].Ideas)

	children, err := s.store.Children(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Len(children.Ideas, 1)
	s.Empty(children.Reports)
}

// TestConcurrentSlugClaims verifies exactly one concurrent create wins a slug.
func (s *PostgresStoreSuite) TestConcurrentSlugClaims() {
	const goroutines = 10
	var wg sync.WaitGroup
	var wins, conflicts atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateIfSlugAvailable(s.ctx, newTestDomain("contested"))
			switch {
			case err == nil:
				wins.Add(1)
			case err == sentinel.ErrAlreadyUsed:
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}
