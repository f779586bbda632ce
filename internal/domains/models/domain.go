package models

import (
	"slices"
	"time"

	"domaindesk/pkg/patch"
)

// Status is the sale state of a domain.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
)

// Domain is an inventory record: a domain name listed for sale.
type Domain struct {
	ID            string    `json:"id"`
	Name          string    `json:"name" validate:"required,domainname"`
	Slug          string    `json:"slug" validate:"required,slug"`
	Description   *string   `json:"description"`
	BuyNowPrice   *float64  `json:"buyNowPrice" validate:"omitempty,gte=0"`
	MinOfferPrice *float64  `json:"minOfferPrice" validate:"omitempty,gte=0"`
	Status        Status    `json:"status" validate:"oneof=available sold"`
	IsFeatured    bool      `json:"isFeatured"`
	Industries    []string  `json:"industries" validate:"dive,max=64"`
	Keywords      []string  `json:"keywords" validate:"dive,max=64"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers never share slices or pointers with a store.
func (d *Domain) Clone() *Domain {
	if d == nil {
		return nil
	}
	c := *d
	c.Description = clonePtr(d.Description)
	c.BuyNowPrice = clonePtr(d.BuyNowPrice)
	c.MinOfferPrice = clonePtr(d.MinOfferPrice)
	c.Industries = cloneStrings(d.Industries)
	c.Keywords = cloneStrings(d.Keywords)
	return &c
}

// Counts are the child record counts shown in the inventory list.
type Counts struct {
	Ideas            int `json:"ideas"`
	Reports          int `json:"reports"`
	BrandingPackages int `json:"brandingPackages"`
	Offers           int `json:"offers"`
}

// Summary is a domain as listed in the inventory.
type Summary struct {
	Domain
	Count Counts `json:"_count"`
}

// DomainIdea is a business idea pitched for a domain.
type DomainIdea struct {
	ID       string `json:"id"`
	DomainID string `json:"domainId"`
	Title    string `json:"title"`
	Preview  string `json:"preview"`
	Content  string `json:"content"`
}

// Report is a downloadable market report about a domain.
type Report struct {
	ID          string  `json:"id"`
	DomainID    string  `json:"domainId"`
	Title       string  `json:"title"`
	FileURL     string  `json:"fileUrl"`
	PreviewText *string `json:"previewText"`
}

// BrandingPackage is a paid branding add-on sold with a domain.
type BrandingPackage struct {
	ID       string  `json:"id"`
	DomainID string  `json:"domainId"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Price    float64 `json:"price"`
}

// Children are the storefront records attached to a domain.
type Children struct {
	Ideas            []DomainIdea      `json:"ideas"`
	Reports          []Report          `json:"reports"`
	BrandingPackages []BrandingPackage `json:"brandingPackages"`
}

// OfferBrief is an offer as embedded in a domain's detail view.
type OfferBrief struct {
	ID        string    `json:"id"`
	DomainID  string    `json:"domainId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Detail is a domain with all related records.
type Detail struct {
	Domain
	Children
	Offers []OfferBrief `json:"offers"`
}

// CreateDomainRequest is the body of POST /domains.
type CreateDomainRequest struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Description   *string  `json:"description,omitempty"`
	BuyNowPrice   *float64 `json:"buyNowPrice,omitempty"`
	MinOfferPrice *float64 `json:"minOfferPrice,omitempty"`
	Industries    []string `json:"industries,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	IsFeatured    *bool    `json:"isFeatured,omitempty"`
	Status        Status   `json:"status,omitempty"`
}

// UpdateDomainRequest is the body of PATCH /domains/{idOrSlug}. Absent fields
// are left untouched.
type UpdateDomainRequest struct {
	Name          patch.Field[string]   `json:"name,omitzero"`
	Slug          patch.Field[string]   `json:"slug,omitzero"`
	Description   patch.Field[string]   `json:"description,omitzero"`
	BuyNowPrice   patch.Field[float64]  `json:"buyNowPrice,omitzero"`
	MinOfferPrice patch.Field[float64]  `json:"minOfferPrice,omitzero"`
	Status        patch.Field[Status]   `json:"status,omitzero"`
	IsFeatured    patch.Field[bool]     `json:"isFeatured,omitzero"`
	Industries    patch.Field[[]string] `json:"industries,omitzero"`
	Keywords      patch.Field[[]string] `json:"keywords,omitzero"`
}

// ApplyTo merges the present fields into d. Empty name, slug and status
// values are ignored, as are null tag lists.
func (r UpdateDomainRequest) ApplyTo(d *Domain) {
	if r.Name.Present() && *r.Name.Value != "" {
		d.Name = *r.Name.Value
	}
	if r.Slug.Present() && *r.Slug.Value != "" {
		d.Slug = *r.Slug.Value
	}
	if r.Status.Present() && *r.Status.Value != "" {
		d.Status = *r.Status.Value
	}
	r.Description.Apply(&d.Description)
	r.BuyNowPrice.Apply(&d.BuyNowPrice)
	r.MinOfferPrice.Apply(&d.MinOfferPrice)
	r.IsFeatured.ApplyValue(&d.IsFeatured)
	if r.Industries.Present() {
		d.Industries = cloneStrings(*r.Industries.Value)
	}
	if r.Keywords.Present() {
		d.Keywords = cloneStrings(*r.Keywords.Value)
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

// Ref is the short form of a domain embedded in offers and consultations.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Ref returns the short form of d.
func (d *Domain) Ref() Ref {
	return Ref{ID: d.ID, Name: d.Name, Slug: d.Slug}
}
