package store

import (
	"context"
	"sync"

	"domaindesk/internal/consultations/models"
	"domaindesk/pkg/platform/sentinel"
)

// InMemory keeps consultations in a map with an offer index that enforces one
// consultation per offer.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]*models.Consultation
	byOffer map[string]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[string]*models.Consultation),
		byOffer: make(map[string]string),
	}
}

// CreateIfOfferFree inserts c unless its offer already has a consultation.
func (s *InMemory) CreateIfOfferFree(_ context.Context, c *models.Consultation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byOffer[c.OfferID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.records[c.ID] = c.Clone()
	s.byOffer[c.OfferID] = c.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// FindByOffers returns consultations keyed by offer id.
func (s *InMemory) FindByOffers(_ context.Context, offerIDs []string) (map[string]*models.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*models.Consultation, len(offerIDs))
	for _, offerID := range offerIDs {
		if id, ok := s.byOffer[offerID]; ok {
			out[offerID] = s.records[id].Clone()
		}
	}
	return out, nil
}

// List returns every consultation in no particular order; the service sorts
// by offer.
func (s *InMemory) List(_ context.Context) ([]*models.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Consultation, 0, len(s.records))
	for _, c := range s.records {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (s *InMemory) Update(_ context.Context, c *models.Consultation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.records[c.ID] = c.Clone()
	return nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.records[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byOffer, c.OfferID)
	delete(s.records, id)
	return nil
}

// DeleteByOffers removes the consultations of the given offers.
func (s *InMemory) DeleteByOffers(_ context.Context, offerIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, offerID := range offerIDs {
		if id, ok := s.byOffer[offerID]; ok {
			delete(s.records, id)
			delete(s.byOffer, offerID)
		}
	}
	return nil
}
