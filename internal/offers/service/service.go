package service

import (
	"context"
	"errors"
	"log/slog"

	consultModels "domaindesk/internal/consultations/models"
	domainModels "domaindesk/internal/domains/models"
	"domaindesk/internal/offers/models"
	"domaindesk/internal/platform/metrics"
	dErrors "domaindesk/pkg/domain-errors"
	"domaindesk/pkg/platform/sentinel"
	"domaindesk/pkg/requestcontext"
)

type Store interface {
	List(ctx context.Context) ([]*models.Offer, error)
	FindByID(ctx context.Context, id string) (*models.Offer, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*models.Offer, error)
	Update(ctx context.Context, o *models.Offer) error
}

// DomainLookup resolves the domains offers point at.
type DomainLookup interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]*domainModels.Domain, error)
}

// ConsultationLookup resolves the consultation attached to each offer.
type ConsultationLookup interface {
	FindByOffers(ctx context.Context, offerIDs []string) (map[string]*consultModels.Consultation, error)
}

// Service moves buyer leads through their statuses.
type Service struct {
	store         Store
	domains       DomainLookup
	consultations ConsultationLookup
	logger        *slog.Logger
	metrics       *metrics.Metrics
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

// WithConsultations embeds each offer's consultation in the list view.
func WithConsultations(c ConsultationLookup) Option {
	return func(s *Service) {
		s.consultations = c
	}
}

func New(store Store, domains DomainLookup, opts ...Option) *Service {
	s := &Service{store: store, domains: domains, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every offer, newest first, with its domain and consultation.
func (s *Service) List(ctx context.Context) ([]models.Listing, error) {
	offers, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch offers")
	}

	offerIDs := make([]string, len(offers))
	domainIDs := make([]string, 0, len(offers))
	for i, o := range offers {
		offerIDs[i] = o.ID
		domainIDs = append(domainIDs, o.DomainID)
	}
	domains, err := s.domains.FindByIDs(ctx, domainIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch offers")
	}
	var consultations map[string]*consultModels.Consultation
	if s.consultations != nil {
		consultations, err = s.consultations.FindByOffers(ctx, offerIDs)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch offers")
		}
	}

	out := make([]models.Listing, len(offers))
	for i, o := range offers {
		out[i] = models.Listing{Offer: *o, Consultation: consultations[o.ID]}
		if d, ok := domains[o.DomainID]; ok {
			ref := d.Ref()
			out[i].Domain = &ref
		}
	}
	return out, nil
}

// Update changes an offer's status and notes.
func (s *Service) Update(ctx context.Context, req models.UpdateOfferRequest) (*models.Offer, error) {
	if req.ID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Offer ID is required")
	}
	if req.Status.Present() && !req.Status.Value.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid offer status")
	}

	o, err := s.store.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Offer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to update offer")
	}
	previous := o.Status
	req.ApplyTo(o)

	if err := s.store.Update(ctx, o); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Offer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to update offer")
	}

	if previous != o.Status {
		s.logger.InfoContext(ctx, "offer status changed",
			"request_id", requestcontext.RequestID(ctx),
			"offer_id", o.ID,
			"from", previous,
			"to", o.Status,
		)
	}
	s.metrics.IncrementOffersUpdated()
	return o, nil
}

// Refs resolves offers with their domain for embedding in consultations.
// Unknown ids are skipped.
func (s *Service) Refs(ctx context.Context, ids []string) (map[string]*consultModels.OfferRef, error) {
	offers, err := s.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	domainIDs := make([]string, 0, len(offers))
	for _, o := range offers {
		domainIDs = append(domainIDs, o.DomainID)
	}
	domains, err := s.domains.FindByIDs(ctx, domainIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*consultModels.OfferRef, len(offers))
	for id, o := range offers {
		var ref domainModels.Ref
		if d, ok := domains[o.DomainID]; ok {
			ref = d.Ref()
		}
		out[id] = o.Ref(ref)
	}
	return out, nil
}
