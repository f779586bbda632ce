package models

import (
	"time"

	domainModels "domaindesk/internal/domains/models"
	"domaindesk/pkg/patch"
)

// Consultation tracks the post-sale engagement with the buyer behind an offer.
// At most one consultation exists per offer.
type Consultation struct {
	ID                string    `json:"id"`
	OfferID           string    `json:"offerId"`
	Scheduled         bool      `json:"scheduled"`
	Completed         bool      `json:"completed"`
	FollowUpDelivered bool      `json:"followUpDelivered"`
	Notes             *string   `json:"notes"`
	DeckWriting       bool      `json:"deckWriting"`
	ProductBuild      bool      `json:"productBuild"`
	Referrals         bool      `json:"referrals"`
	InvestorIntros    bool      `json:"investorIntros"`
	RevenueShare      *float64  `json:"revenueShare" validate:"omitempty,gte=0,lte=100"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Clone returns a deep copy.
func (c *Consultation) Clone() *Consultation {
	if c == nil {
		return nil
	}
	out := *c
	if c.Notes != nil {
		n := *c.Notes
		out.Notes = &n
	}
	if c.RevenueShare != nil {
		r := *c.RevenueShare
		out.RevenueShare = &r
	}
	return &out
}

// OfferRef is the offer a consultation belongs to, with its domain.
type OfferRef struct {
	ID        string           `json:"id"`
	DomainID  string           `json:"domainId"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     *string          `json:"phone"`
	Amount    float64          `json:"amount"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	Domain    domainModels.Ref `json:"domain"`
}

// Listing is a consultation as returned by the API.
type Listing struct {
	Consultation
	Offer *OfferRef `json:"offer"`
}

// CreateRequest is the body of POST /consultations. Omitted flags default
// to false.
type CreateRequest struct {
	OfferID           string   `json:"offerId"`
	Scheduled         *bool    `json:"scheduled,omitempty"`
	Completed         *bool    `json:"completed,omitempty"`
	FollowUpDelivered *bool    `json:"followUpDelivered,omitempty"`
	Notes             *string  `json:"notes,omitempty"`
	DeckWriting       *bool    `json:"deckWriting,omitempty"`
	ProductBuild      *bool    `json:"productBuild,omitempty"`
	Referrals         *bool    `json:"referrals,omitempty"`
	InvestorIntros    *bool    `json:"investorIntros,omitempty"`
	RevenueShare      *float64 `json:"revenueShare,omitempty"`
}

// UpdateRequest is the body of PATCH /consultations/{id}.
type UpdateRequest struct {
	Scheduled         patch.Field[bool]    `json:"scheduled,omitzero"`
	Completed         patch.Field[bool]    `json:"completed,omitzero"`
	FollowUpDelivered patch.Field[bool]    `json:"followUpDelivered,omitzero"`
	Notes             patch.Field[string]  `json:"notes,omitzero"`
	DeckWriting       patch.Field[bool]    `json:"deckWriting,omitzero"`
	ProductBuild      patch.Field[bool]    `json:"productBuild,omitzero"`
	Referrals         patch.Field[bool]    `json:"referrals,omitzero"`
	InvestorIntros    patch.Field[bool]    `json:"investorIntros,omitzero"`
	RevenueShare      patch.Field[float64] `json:"revenueShare,omitzero"`
}

// ApplyTo merges the present fields into c.
func (r UpdateRequest) ApplyTo(c *Consultation) {
	r.Scheduled.ApplyValue(&c.Scheduled)
	r.Completed.ApplyValue(&c.Completed)
	r.FollowUpDelivered.ApplyValue(&c.FollowUpDelivered)
	r.Notes.Apply(&c.Notes)
	r.DeckWriting.ApplyValue(&c.DeckWriting)
	r.ProductBuild.ApplyValue(&c.ProductBuild)
	r.Referrals.ApplyValue(&c.Referrals)
	r.InvestorIntros.ApplyValue(&c.InvestorIntros)
	r.RevenueShare.Apply(&c.RevenueShare)
}

// New builds a consultation from a create request with false/null defaults.
func New(id string, req CreateRequest, now time.Time) *Consultation {
	return &Consultation{
		ID:                id,
		OfferID:           req.OfferID,
		Scheduled:         deref(req.Scheduled),
		Completed:         deref(req.Completed),
		FollowUpDelivered: deref(req.FollowUpDelivered),
		Notes:             req.Notes,
		DeckWriting:       deref(req.DeckWriting),
		ProductBuild:      deref(req.ProductBuild),
		Referrals:         deref(req.Referrals),
		InvestorIntros:    deref(req.InvestorIntros),
		RevenueShare:      req.RevenueShare,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func deref(b *bool) bool {
	return b != nil && *b
}
