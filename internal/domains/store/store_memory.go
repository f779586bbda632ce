package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"domaindesk/internal/domains/models"
	"domaindesk/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded domain store for development and tests.
type InMemory struct {
	mu       sync.RWMutex
	domains  map[string]*models.Domain
	bySlug   map[string]string
	ideas    map[string][]models.DomainIdea
	reports  map[string][]models.Report
	packages map[string][]models.BrandingPackage
}

func NewInMemory() *InMemory {
	return &InMemory{
		domains:  make(map[string]*models.Domain),
		bySlug:   make(map[string]string),
		ideas:    make(map[string][]models.DomainIdea),
		reports:  make(map[string][]models.Report),
		packages: make(map[string][]models.BrandingPackage),
	}
}

// CreateIfSlugAvailable inserts d unless its slug is taken.
func (s *InMemory) CreateIfSlugAvailable(_ context.Context, d *models.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.bySlug[d.Slug]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.domains[d.ID] = d.Clone()
	s.bySlug[d.Slug] = d.ID
	return nil
}

// FindByIDOrSlug matches key against the id first, then the slug.
func (s *InMemory) FindByIDOrSlug(_ context.Context, key string) (*models.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.lookup(key); ok {
		return d.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) lookup(key string) (*models.Domain, bool) {
	if d, ok := s.domains[key]; ok {
		return d, true
	}
	if id, ok := s.bySlug[key]; ok {
		return s.domains[id], true
	}
	return nil, false
}

// List returns a page of domains, newest first.
func (s *InMemory) List(_ context.Context, offset, limit int) ([]*models.Domain, error) {
	s.mu.RLock()
	all := make([]*models.Domain, 0, len(s.domains))
	for _, d := range s.domains {
		all = append(all, d.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []*models.Domain{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.domains), nil
}

// Update replaces the stored domain. A slug owned by another domain is
// rejected with ErrAlreadyUsed.
func (s *InMemory) Update(_ context.Context, d *models.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.domains[d.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.bySlug[d.Slug]; taken && owner != d.ID {
		return sentinel.ErrAlreadyUsed
	}
	delete(s.bySlug, current.Slug)
	s.domains[d.ID] = d.Clone()
	s.bySlug[d.Slug] = d.ID
	return nil
}

// Delete removes the domain and its storefront children.
func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.domains[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.bySlug, d.Slug)
	delete(s.domains, id)
	delete(s.ideas, id)
	delete(s.reports, id)
	delete(s.packages, id)
	return nil
}

// ChildCounts returns idea, report and branding package counts per domain.
// The Offers count is left at zero.
func (s *InMemory) ChildCounts(_ context.Context, ids []string) (map[string]models.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Counts, len(ids))
	for _, id := range ids {
		out[id] = models.Counts{
			Ideas:            len(s.ideas[id]),
			Reports:          len(s.reports[id]),
			BrandingPackages: len(s.packages[id]),
		}
	}
	return out, nil
}

func (s *InMemory) Children(_ context.Context, id string) (*models.Children, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &models.Children{
		Ideas:            orEmpty(slices.Clone(s.ideas[id])),
		Reports:          orEmpty(slices.Clone(s.reports[id])),
		BrandingPackages: orEmpty(slices.Clone(s.packages[id])),
	}, nil
}

// PriceTotals sums every buy-now price and every minimum offer price.
func (s *InMemory) PriceTotals(_ context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, d := range s.domains {
		if d.BuyNowPrice != nil {
			total += *d.BuyNowPrice
		}
		if d.MinOfferPrice != nil {
			total += *d.MinOfferPrice
		}
	}
	return total, nil
}

// AddIdea attaches storefront content. The storefront owns these records;
// the admin only reads them.
func (s *InMemory) AddIdea(_ context.Context, idea models.DomainIdea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.domains[idea.DomainID]; !ok {
		return sentinel.ErrInvalidReference
	}
	s.ideas[idea.DomainID] = append(s.ideas[idea.DomainID], idea)
	return nil
}

func (s *InMemory) AddReport(_ context.Context, report models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.domains[report.DomainID]; !ok {
		return sentinel.ErrInvalidReference
	}
	s.reports[report.DomainID] = append(s.reports[report.DomainID], report)
	return nil
}

func (s *InMemory) AddBrandingPackage(_ context.Context, pkg models.BrandingPackage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.domains[pkg.DomainID]; !ok {
		return sentinel.ErrInvalidReference
	}
	s.packages[pkg.DomainID] = append(s.packages[pkg.DomainID], pkg)
	return nil
}

// Exists reports whether a domain with id is stored. Offers use it to keep
// their domain reference valid.
func (s *InMemory) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.domains[id]
	return ok, nil
}

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// FindByIDs returns the stored domains keyed by id; unknown ids are skipped.
func (s *InMemory) FindByIDs(_ context.Context, ids []string) (map[string]*models.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*models.Domain, len(ids))
	for _, id := range ids {
		if d, ok := s.domains[id]; ok {
			out[id] = d.Clone()
		}
	}
	return out, nil
}
