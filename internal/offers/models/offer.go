package models

import (
	"time"

	consultModels "domaindesk/internal/consultations/models"
	domainModels "domaindesk/internal/domains/models"
	"domaindesk/pkg/patch"
)

// Status is the stage of a buyer lead.
type Status string

const (
	StatusNew         Status = "new"
	StatusContacted   Status = "contacted"
	StatusNegotiating Status = "negotiating"
	StatusAccepted    Status = "accepted"
	StatusClosed      Status = "closed"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusNegotiating, StatusAccepted, StatusClosed:
		return true
	}
	return false
}

// Offer is a buyer lead against a domain. Offers are submitted through the
// public storefront; the admin only moves them through statuses and keeps notes.
type Offer struct {
	ID        string    `json:"id"`
	DomainID  string    `json:"domainId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Amount    float64   `json:"amount"`
	Status    Status    `json:"status" validate:"oneof=new contacted negotiating accepted closed"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (o *Offer) Clone() *Offer {
	if o == nil {
		return nil
	}
	out := *o
	if o.Phone != nil {
		p := *o.Phone
		out.Phone = &p
	}
	if o.Notes != nil {
		n := *o.Notes
		out.Notes = &n
	}
	return &out
}

// Brief is the form embedded in a domain's detail view.
func (o *Offer) Brief() domainModels.OfferBrief {
	return domainModels.OfferBrief{
		ID:        o.ID,
		DomainID:  o.DomainID,
		Name:      o.Name,
		Email:     o.Email,
		Amount:    o.Amount,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

// Ref is the form embedded in a consultation.
func (o *Offer) Ref(domain domainModels.Ref) *consultModels.OfferRef {
	return &consultModels.OfferRef{
		ID:        o.ID,
		DomainID:  o.DomainID,
		Name:      o.Name,
		Email:     o.Email,
		Phone:     o.Phone,
		Amount:    o.Amount,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		Domain:    domain,
	}
}

// Listing is an offer in the list view, with its domain and consultation.
type Listing struct {
	Offer
	Domain       *domainModels.Ref           `json:"domain"`
	Consultation *consultModels.Consultation `json:"consultation"`
}

// UpdateOfferRequest is the body of PATCH /offers.
type UpdateOfferRequest struct {
	ID     string              `json:"id"`
	Status patch.Field[Status] `json:"status,omitzero"`
	Notes  patch.Field[string] `json:"notes,omitzero"`
}

// ApplyTo merges the present fields into o. A null status is ignored.
func (r UpdateOfferRequest) ApplyTo(o *Offer) {
	r.Status.ApplyValue(&o.Status)
	r.Notes.Apply(&o.Notes)
}
