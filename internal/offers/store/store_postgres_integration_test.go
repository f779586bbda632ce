//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	domainModels "domaindesk/internal/domains/models"
	domainStore "domaindesk/internal/domains/store"
	"domaindesk/internal/offers/models"
	"domaindesk/internal/offers/store"
	"domaindesk/pkg/platform/sentinel"
	"domaindesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	domains  *domainStore.PostgresStore
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
	s.domains = domainStore.NewPostgres(s.postgres.DB)
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "consultations", "offers", "domain_ideas", "reports", "branding_packages", "domains"))
}

func (s *PostgresStoreSuite) createDomain(slug string) *domainModels.Domain {
	now := time.Now().UTC().Truncate(time.Microsecond)
	d := &domainModels.Domain{
		ID:         uuid.NewString(),
		Name:       slug + ".io",
		Slug:       slug,
		Status:     domainModels.StatusAvailable,
		Industries: []string{},
		Keywords:   []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.Require().NoError(s.domains.CreateIfSlugAvailable(s.ctx, d))
	return d
}

func (s *PostgresStoreSuite) createOffer(domainID string, status models.Status) *models.Offer {
	o := &models.Offer{
		ID:        uuid.NewString(),
		DomainID:  domainID,
		Name:      "Dana",
		Email:     "dana@example.com",
		Amount:    4200,
		Status:    status,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Create(s.ctx, o))
	return o
}

func (s *PostgresStoreSuite) TestCreateRequiresDomain() {
	err := s.store.Create(s.ctx, &models.Offer{
		ID:        uuid.NewString(),
		DomainID:  "missing",
		Status:    models.StatusNew,
		CreatedAt: time.Now(),
	})
	s.ErrorIs(err, sentinel.ErrInvalidReference)
}

func (s *PostgresStoreSuite) TestUpdateStatusAndNotes() {
	d := s.createDomain("lumen")
	o := s.createOffer(d.ID, models.StatusNew)

	notes := "asked for escrow"
	o.Status = models.StatusNegotiating
	o.Notes = &notes
	s.Require().NoError(s.store.Update(s.ctx, o))

	found, err := s.store.FindByID(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusNegotiating, found.Status)
	s.Require().NotNil(found.Notes)
	s.Equal(notes, *found.Notes)
	s.Nil(found.Phone)
}

func (s *PostgresStoreSuite) TestCountsAndBriefs() {
	d := s.createDomain("orbit")
	s.createOffer(d.ID, models.StatusClosed)
	s.createOffer(d.ID, models.StatusNew)

	counts, err := s.store.CountByDomains(s.ctx, []string{d.ID})
	s.Require().NoError(err)
	s.Equal(2, counts[d.ID])

	closed, err := s.store.CountByStatus(s.ctx, models.StatusClosed)
	s.Require().NoError(err)
	s.Equal(1, closed)

	briefs, err := s.store.ListForDomain(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Len(briefs, 2)
}

func (s *PostgresStoreSuite) TestDomainDeleteCascades() {
	d := s.createDomain("cascade")
	o := s.createOffer(d.ID, models.StatusNew)

	s.Require().NoError(s.domains.Delete(s.ctx, d.ID))

	_, err := s.store.FindByID(s.ctx, o.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
