package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"domaindesk/internal/domains/models"
	"domaindesk/internal/platform/metrics"
	"domaindesk/internal/platform/validation"
	dErrors "domaindesk/pkg/domain-errors"
	"domaindesk/pkg/platform/sentinel"
	"domaindesk/pkg/requestcontext"
)

// Paging defaults for the inventory list.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type Store interface {
	CreateIfSlugAvailable(ctx context.Context, d *models.Domain) error
	FindByIDOrSlug(ctx context.Context, key string) (*models.Domain, error)
	List(ctx context.Context, offset, limit int) ([]*models.Domain, error)
	Update(ctx context.Context, d *models.Domain) error
	Delete(ctx context.Context, id string) error
	ChildCounts(ctx context.Context, ids []string) (map[string]models.Counts, error)
	Children(ctx context.Context, id string) (*models.Children, error)
}

// OfferReader exposes the offers attached to domains.
type OfferReader interface {
	CountByDomains(ctx context.Context, domainIDs []string) (map[string]int, error)
	ListForDomain(ctx context.Context, domainID string) ([]models.OfferBrief, error)
}

// Service manages the domain inventory.
type Service struct {
	store   Store
	offers  OfferReader
	cascade func(ctx context.Context, domainID string) error
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

// WithOfferReader enables offer counts and offers in domain detail.
func WithOfferReader(offers OfferReader) Option {
	return func(s *Service) {
		s.offers = offers
	}
}

// WithCascade removes records that depend on a deleted domain. Only stores
// without foreign key cascades need it.
func WithCascade(fn func(ctx context.Context, domainID string) error) Option {
	return func(s *Service) {
		s.cascade = fn
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of the inventory, newest first, with child counts.
func (s *Service) List(ctx context.Context, page, limit int) ([]models.Summary, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	domains, err := s.store.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch domains")
	}

	ids := make([]string, len(domains))
	for i, d := range domains {
		ids[i] = d.ID
	}
	counts, err := s.store.ChildCounts(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch domains")
	}
	var offerCounts map[string]int
	if s.offers != nil {
		offerCounts, err = s.offers.CountByDomains(ctx, ids)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch domains")
		}
	}

	out := make([]models.Summary, len(domains))
	for i, d := range domains {
		c := counts[d.ID]
		c.Offers = offerCounts[d.ID]
		out[i] = models.Summary{Domain: *d, Count: c}
	}
	return out, nil
}

// Get loads a domain by id or slug with its storefront records and offers.
func (s *Service) Get(ctx context.Context, idOrSlug string) (*models.Detail, error) {
	d, err := s.find(ctx, idOrSlug, "Failed to fetch domain")
	if err != nil {
		return nil, err
	}
	children, err := s.store.Children(ctx, d.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch domain")
	}
	offers := []models.OfferBrief{}
	if s.offers != nil {
		offers, err = s.offers.ListForDomain(ctx, d.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to fetch domain")
		}
	}
	return &models.Detail{Domain: *d, Children: *children, Offers: offers}, nil
}

// Create adds a domain with the documented defaults.
func (s *Service) Create(ctx context.Context, req models.CreateDomainRequest) (*models.Domain, error) {
	name := strings.TrimSpace(req.Name)
	slug := strings.TrimSpace(req.Slug)
	if name == "" || slug == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Name and slug are required")
	}

	now := requestcontext.Now(ctx)
	d := &models.Domain{
		ID:            uuid.NewString(),
		Name:          name,
		Slug:          slug,
		Description:   req.Description,
		BuyNowPrice:   req.BuyNowPrice,
		MinOfferPrice: req.MinOfferPrice,
		Status:        models.StatusAvailable,
		Industries:    []string{},
		Keywords:      []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Status != "" {
		d.Status = req.Status
	}
	if req.IsFeatured != nil {
		d.IsFeatured = *req.IsFeatured
	}
	if req.Industries != nil {
		d.Industries = req.Industries
	}
	if req.Keywords != nil {
		d.Keywords = req.Keywords
	}
	if err := validation.Struct(d); err != nil {
		return nil, err
	}

	if err := s.store.CreateIfSlugAvailable(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "Domain with this slug already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to create domain")
	}

	s.logger.InfoContext(ctx, "domain created",
		"request_id", requestcontext.RequestID(ctx),
		"domain_id", d.ID,
		"slug", d.Slug,
	)
	s.metrics.IncrementDomainsCreated()
	return d, nil
}

// Update applies a partial update to the domain matched by id or slug.
func (s *Service) Update(ctx context.Context, idOrSlug string, req models.UpdateDomainRequest) (*models.Domain, error) {
	d, err := s.find(ctx, idOrSlug, "Failed to update domain")
	if err != nil {
		return nil, err
	}

	req.ApplyTo(d)
	d.UpdatedAt = requestcontext.Now(ctx)
	if err := validation.Struct(d); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, d); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.New(dErrors.CodeConflict, "Domain with this slug already exists")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "Domain not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to update domain")
	}
	return d, nil
}

// Delete removes the domain matched by id or slug.
func (s *Service) Delete(ctx context.Context, idOrSlug string) error {
	d, err := s.find(ctx, idOrSlug, "Failed to delete domain")
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, d.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Domain not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "Failed to delete domain")
	}
	if s.cascade != nil {
		if err := s.cascade(ctx, d.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "Failed to delete domain")
		}
	}

	s.logger.InfoContext(ctx, "domain deleted",
		"request_id", requestcontext.RequestID(ctx),
		"domain_id", d.ID,
	)
	s.metrics.IncrementDomainsDeleted()
	return nil
}

func (s *Service) find(ctx context.Context, idOrSlug, failure string) (*models.Domain, error) {
	d, err := s.store.FindByIDOrSlug(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Domain not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, failure)
	}
	return d, nil
}
