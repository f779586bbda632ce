package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"domaindesk/internal/domains/models"
	"domaindesk/pkg/platform/sentinel"
)

type DomainStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	base  time.Time
}

func (s *DomainStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestDomainStoreSuite(t *testing.T) {
	suite.Run(t, new(DomainStoreSuite))
}

func (s *DomainStoreSuite) newDomain(slug string, age time.Duration) *models.Domain {
	return &models.Domain{
		ID:         uuid.NewString(),
		Name:       slug + ".com",
		Slug:       slug,
		Status:     models.StatusAvailable,
		Industries: []string{},
		Keywords:   []string{},
		CreatedAt:  s.base.Add(-age),
		UpdatedAt:  s.base.Add(-age),
	}
}

func (s *DomainStoreSuite) TestLookupByIDOrSlug() {
	d := s.newDomain("acme", 0)
	s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, d))

	s.Run("finds by id", func() {
		found, err := s.store.FindByIDOrSlug(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(d.Slug, found.Slug)
	})

	s.Run("finds by slug", func() {
		found, err := s.store.FindByIDOrSlug(s.ctx, "acme")
		s.Require().NoError(err)
		s.Equal(d.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown key", func() {
		_, err := s.store.FindByIDOrSlug(s.ctx, "missing-id")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *DomainStoreSuite) TestSlugUniqueness() {
	s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, s.newDomain("taken", 0)))

	s.Run("rejects duplicate slug on create", func() {
		err := s.store.CreateIfSlugAvailable(s.ctx, s.newDomain("taken", 0))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("rejects slug change onto another domain", func() {
		other := s.newDomain("other", 0)
		s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, other))
		other.Slug = "taken"
		s.Require().ErrorIs(s.store.Update(s.ctx, other), sentinel.ErrAlreadyUsed)
	})

	s.Run("frees the old slug after rename", func() {
		d := s.newDomain("before", 0)
		s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, d))
		d.Slug = "after"
		s.Require().NoError(s.store.Update(s.ctx, d))
		s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, s.newDomain("before", 0)))
	})
}

func (s *DomainStoreSuite) TestListNewestFirstWithPaging() {
	oldest := s.newDomain("oldest", 3*time.Hour)
	middle := s.newDomain("middle", 2*time.Hour)
	newest := s.newDomain("newest", time.Hour)
	for _, d := range []*models.Domain{middle, oldest, newest} {
		s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, d))
	}

	page, err := s.store.List(s.ctx, 0, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("newest", page[0].Slug)
	s.Equal("middle", page[1].Slug)

	page, err = s.store.List(s.ctx, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("oldest", page[0].Slug)

	page, err = s.store.List(s.ctx, 10, 2)
	s.Require().NoError(err)
	s.Empty(page)
}

func (s *DomainStoreSuite) TestReturnedRecordsAreCopies() {
	d := s.newDomain("copy", 0)
	d.Keywords = []string{"one"}
	s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, d))

	found, err := s.store.FindByIDOrSlug(s.ctx, d.ID)
	s.Require().NoError(err)
	found.Keywords[0] = "mutated"

	again, err := s.store.FindByIDOrSlug(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Equal("one", again.Keywords[0])
}

func (s *DomainStoreSuite) TestChildrenCountsAndDelete() {
	d := s.newDomain("kids", 0)
	s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, d))
	s.Require().NoError(s.store.AddIdea(s.ctx, models.DomainIdea{ID: "i1", DomainID: d.ID, Title: "Marketplace"}))
	s.Require().NoError(s.store.AddIdea(s.ctx, models.DomainIdea{ID: "i2", DomainID: d.ID, Title: "SaaS"}))
	s.Require().NoError(s.store.AddReport(s.ctx, models.Report{ID: "r1", DomainID: d.ID, Title: "Market", FileURL: "https://cdn.example.com/r1.pdf"}))
	s.Require().ErrorIs(s.store.AddBrandingPackage(s.ctx, models.BrandingPackage{ID: "b1", DomainID: "ghost"}), sentinel.ErrInvalidReference)

	counts, err := s.store.ChildCounts(s.ctx, []string{d.ID})
	s.Require().NoError(err)
	s.Equal(models.Counts{Ideas: 2, Reports: 1}, counts[d.ID])

	children, err := s.store.Children(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Len(children.Ideas, 2)
	s.NotNil(children.BrandingPackages)

	s.Require().NoError(s.store.Delete(s.ctx, d.ID))
	s.Require().ErrorIs(s.store.Delete(s.ctx, d.ID), sentinel.ErrNotFound)
	counts, err = s.store.ChildCounts(s.ctx, []string{d.ID})
	s.Require().NoError(err)
	s.Zero(counts[d.ID].Ideas)
}

func (s *DomainStoreSuite) TestPriceTotals() {
	buyNow, minOffer := 1200.0, 300.0
	a := s.newDomain("priced", 0)
	a.BuyNowPrice = &buyNow
	a.MinOfferPrice = &minOffer
	s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, a))
	s.Require().NoError(s.store.CreateIfSlugAvailable(s.ctx, s.newDomain("unpriced", 0)))

	total, err := s.store.PriceTotals(s.ctx)
	s.Require().NoError(err)
	s.InDelta(1500.0, total, 0.001)
}
