package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"domaindesk/internal/consultations/models"
	"domaindesk/internal/platform/metrics"
	"domaindesk/internal/platform/validation"
	dErrors "domaindesk/pkg/domain-errors"
	"domaindesk/pkg/platform/sentinel"
	"domaindesk/pkg/requestcontext"
)

type Store interface {
	CreateIfOfferFree(ctx context.Context, c *models.Consultation) error
	FindByID(ctx context.Context, id string) (*models.Consultation, error)
	List(ctx context.Context) ([]*models.Consultation, error)
	Update(ctx context.Context, c *models.Consultation) error
	Delete(ctx context.Context, id string) error
}

// OfferLookup resolves offers, with their domain, by id.
type OfferLookup interface {
	Refs(ctx context.Context, ids []string) (map[string]*models.OfferRef, error)
}

// Service manages consultations attached to offers.
type Service struct {
	store   Store
	offers  OfferLookup
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, offers OfferLookup, opts ...Option) *Service {
	s := &Service{store: store, offers: offers, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every consultation with its offer, newest offer first.
func (s *Service) List(ctx context.Context) ([]models.Listing, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch consultations")
	}
	offerIDs := make([]string, len(records))
	for i, c := range records {
		offerIDs[i] = c.OfferID
	}
	refs, err := s.offers.Refs(ctx, offerIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch consultations")
	}

	out := make([]models.Listing, len(records))
	for i, c := range records {
		out[i] = models.Listing{Consultation: *c, Offer: refs[c.OfferID]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Offer, out[j].Offer
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case a.CreatedAt.Equal(b.CreatedAt):
			return out[i].ID > out[j].ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out, nil
}

// Get loads one consultation with its offer.
func (s *Service) Get(ctx context.Context, id string) (*models.Listing, error) {
	c, err := s.find(ctx, id, "Failed to fetch consultation")
	if err != nil {
		return nil, err
	}
	refs, err := s.offers.Refs(ctx, []string{c.OfferID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch consultation")
	}
	return &models.Listing{Consultation: *c, Offer: refs[c.OfferID]}, nil
}

// Create opens a consultation for an offer. Omitted flags default to false.
func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*models.Consultation, error) {
	if req.OfferID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Offer ID is required")
	}
	refs, err := s.offers.Refs(ctx, []string{req.OfferID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to create consultation")
	}
	if _, ok := refs[req.OfferID]; !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "Offer not found")
	}

	c := models.New(uuid.NewString(), req, requestcontext.Now(ctx))
	if err := validation.Struct(c); err != nil {
		return nil, err
	}
	if err := s.store.CreateIfOfferFree(ctx, c); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.New(dErrors.CodeConflict, "Consultation already exists for this offer")
		case errors.Is(err, sentinel.ErrInvalidReference):
			return nil, dErrors.New(dErrors.CodeNotFound, "Offer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to create consultation")
	}

	s.logger.InfoContext(ctx, "consultation created",
		"request_id", requestcontext.RequestID(ctx),
		"consultation_id", c.ID,
		"offer_id", c.OfferID,
	)
	s.metrics.IncrementConsultationsCreated()
	return c, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateRequest) (*models.Consultation, error) {
	c, err := s.find(ctx, id, "Failed to update consultation")
	if err != nil {
		return nil, err
	}
	req.ApplyTo(c)
	c.UpdatedAt = requestcontext.Now(ctx)
	if err := validation.Struct(c); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Consultation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to update consultation")
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Consultation not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "Failed to delete consultation")
	}
	s.logger.InfoContext(ctx, "consultation deleted",
		"request_id", requestcontext.RequestID(ctx),
		"consultation_id", id,
	)
	return nil
}

func (s *Service) find(ctx context.Context, id, failure string) (*models.Consultation, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Consultation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, failure)
	}
	return c, nil
}
