package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"domaindesk/internal/offers/models"
	dErrors "domaindesk/pkg/domain-errors"
)

const statsTimeout = 5 * time.Second

// Stats is the dashboard summary.
type Stats struct {
	TotalDomains        int     `json:"totalDomains"`
	TotalOffers         int     `json:"totalOffers"`
	ClosedDeals         int     `json:"closedDeals"`
	TotalPotentialValue float64 `json:"totalPotentialValue"`
	ConversionRate      float64 `json:"conversionRate"`
}

type DomainStats interface {
	Count(ctx context.Context) (int, error)
	PriceTotals(ctx context.Context) (float64, error)
}

type OfferStats interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.Status) (int, error)
}

// Service aggregates inventory and sales figures.
type Service struct {
	domains DomainStats
	offers  OfferStats
	logger  *slog.Logger
}

func New(domains DomainStats, offers OfferStats, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{domains: domains, offers: offers, logger: logger}
}

// Stats runs the four aggregate queries concurrently. The first failure
// cancels the rest.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	var out Stats

	g.Go(func() error {
		n, err := s.domains.Count(ctx)
		out.TotalDomains = n
		return err
	})
	g.Go(func() error {
		n, err := s.offers.Count(ctx)
		out.TotalOffers = n
		return err
	})
	g.Go(func() error {
		n, err := s.offers.CountByStatus(ctx, models.StatusClosed)
		out.ClosedDeals = n
		return err
	})
	g.Go(func() error {
		v, err := s.domains.PriceTotals(ctx)
		out.TotalPotentialValue = v
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch dashboard statistics")
	}
	out.ConversionRate = ConversionRate(out.ClosedDeals, out.TotalOffers)
	return &out, nil
}

// ConversionRate is closed/total as a percentage with one decimal, or 0
// when there are no offers.
func ConversionRate(closed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(closed)/float64(total)*1000) / 10
}
