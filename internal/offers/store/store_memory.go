package store

import (
	"context"
	"sort"
	"sync"

	domainModels "domaindesk/internal/domains/models"
	"domaindesk/internal/offers/models"
	"domaindesk/pkg/platform/sentinel"
)

// InMemory keeps offers in a map guarded by a mutex.
type InMemory struct {
	mu     sync.RWMutex
	offers map[string]*models.Offer
}

func NewInMemory() *InMemory {
	return &InMemory{offers: make(map[string]*models.Offer)}
}

// Create stores an offer. Offers arrive from the storefront, so only seeding
// and tests call this.
func (s *InMemory) Create(_ context.Context, o *models.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.offers[o.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.offers[o.ID] = o.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return o.Clone(), nil
}

// FindByIDs returns the stored offers keyed by id; unknown ids are skipped.
func (s *InMemory) FindByIDs(_ context.Context, ids []string) (map[string]*models.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*models.Offer, len(ids))
	for _, id := range ids {
		if o, ok := s.offers[id]; ok {
			out[id] = o.Clone()
		}
	}
	return out, nil
}

// List returns every offer, newest first.
func (s *InMemory) List(_ context.Context) ([]*models.Offer, error) {
	s.mu.RLock()
	out := make([]*models.Offer, 0, len(s.offers))
	for _, o := range s.offers {
		out = append(out, o.Clone())
	}
	s.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) Update(_ context.Context, o *models.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offers[o.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.offers[o.ID] = o.Clone()
	return nil
}

func (s *InMemory) CountByDomains(_ context.Context, domainIDs []string) (map[string]int, error) {
	want := make(map[string]struct{}, len(domainIDs))
	for _, id := range domainIDs {
		want[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(domainIDs))
	for _, o := range s.offers {
		if _, ok := want[o.DomainID]; ok {
			out[o.DomainID]++
		}
	}
	return out, nil
}

func (s *InMemory) ListForDomain(_ context.Context, domainID string) ([]domainModels.OfferBrief, error) {
	s.mu.RLock()
	matched := []*models.Offer{}
	for _, o := range s.offers {
		if o.DomainID == domainID {
			matched = append(matched, o)
		}
	}
	s.mu.RUnlock()
	sortNewestFirst(matched)

	out := make([]domainModels.OfferBrief, len(matched))
	for i, o := range matched {
		out[i] = o.Brief()
	}
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.offers), nil
}

func (s *InMemory) CountByStatus(_ context.Context, status models.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.offers {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

// DeleteByDomain removes every offer of a domain and returns their ids so
// dependent consultations can be removed too. PostgreSQL does this with
// ON DELETE CASCADE.
func (s *InMemory) DeleteByDomain(_ context.Context, domainID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for id, o := range s.offers {
		if o.DomainID == domainID {
			removed = append(removed, id)
			delete(s.offers, id)
		}
	}
	return removed, nil
}

func sortNewestFirst(offers []*models.Offer) {
	sort.Slice(offers, func(i, j int) bool {
		if offers[i].CreatedAt.Equal(offers[j].CreatedAt) {
			return offers[i].ID > offers[j].ID
		}
		return offers[i].CreatedAt.After(offers[j].CreatedAt)
	})
}
