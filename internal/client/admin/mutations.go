package admin

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"domaindesk/internal/client/mutation"
	"domaindesk/internal/client/querycache"
	consultModels "domaindesk/internal/consultations/models"
	domainModels "domaindesk/internal/domains/models"
	offerModels "domaindesk/internal/offers/models"
)

// DomainUpdate is a partial update of one domain.
type DomainUpdate struct {
	ID    string
	Patch domainModels.UpdateDomainRequest
}

// ConsultationUpdate is a partial update of one consultation.
type ConsultationUpdate struct {
	ID    string
	Patch consultModels.UpdateRequest
}

func (c *Client) CreateDomain(ctx context.Context, req domainModels.CreateDomainRequest) (*domainModels.Domain, error) {
	return c.createDomain.Execute(ctx, req)
}

func (c *Client) UpdateDomain(ctx context.Context, id string, patch domainModels.UpdateDomainRequest) (*domainModels.Domain, error) {
	return c.updateDomain.Execute(ctx, DomainUpdate{ID: id, Patch: patch})
}

func (c *Client) DeleteDomain(ctx context.Context, id string) error {
	_, err := c.deleteDomain.Execute(ctx, id)
	return err
}

func (c *Client) UpdateOffer(ctx context.Context, req offerModels.UpdateOfferRequest) (*offerModels.Offer, error) {
	return c.updateOffer.Execute(ctx, req)
}

func (c *Client) CreateConsultation(ctx context.Context, req consultModels.CreateRequest) (*consultModels.Consultation, error) {
	return c.createConsultation.Execute(ctx, req)
}

func (c *Client) UpdateConsultation(ctx context.Context, id string, patch consultModels.UpdateRequest) (*consultModels.Consultation, error) {
	return c.updateConsultation.Execute(ctx, ConsultationUpdate{ID: id, Patch: patch})
}

func (c *Client) DeleteConsultation(ctx context.Context, id string) error {
	_, err := c.deleteConsultation.Execute(ctx, id)
	return err
}

func (c *Client) createDomainDef() mutation.Definition[domainModels.CreateDomainRequest, *domainModels.Domain] {
	return mutation.Definition[domainModels.CreateDomainRequest, *domainModels.Domain]{
		Name: "create_domain",
		Keys: func(domainModels.CreateDomainRequest) []querycache.Key {
			return []querycache.Key{DomainsKey}
		},
		Perform: func(ctx context.Context, req domainModels.CreateDomainRequest) (*domainModels.Domain, error) {
			var out domainModels.Domain
			if err := c.api.Do(ctx, http.MethodPost, "/domains", req, &out); err != nil {
				return nil, err
			}
			return &out, nil
		},
		Success: func(domainModels.CreateDomainRequest, *domainModels.Domain) string {
			return "Domain created successfully"
		},
	}
}

func (c *Client) updateDomainDef() mutation.Definition[DomainUpdate, *domainModels.Domain] {
	return mutation.Definition[DomainUpdate, *domainModels.Domain]{
		Name: "update_domain",
		Keys: func(in DomainUpdate) []querycache.Key {
			return []querycache.Key{DomainsKey, DomainKey(in.ID)}
		},
		Speculate: func(in DomainUpdate, _ querycache.Key, current any) (any, bool) {
			switch v := current.(type) {
			case []domainModels.Summary:
				i := slices.IndexFunc(v, func(s domainModels.Summary) bool { return s.ID == in.ID })
				if i < 0 {
					return nil, false
				}
				next := slices.Clone(v)
				in.Patch.ApplyTo(&next[i].Domain)
				return next, true
			case *domainModels.Detail:
				if v.ID != in.ID {
					return nil, false
				}
				next := *v
				in.Patch.ApplyTo(&next.Domain)
				return &next, true
			}
			return nil, false
		},
		Perform: func(ctx context.Context, in DomainUpdate) (*domainModels.Domain, error) {
			var out domainModels.Domain
			if err := c.api.Do(ctx, http.MethodPatch, "/domains/"+url.PathEscape(in.ID), in.Patch, &out); err != nil {
				return nil, err
			}
			return &out, nil
		},
		Success: func(DomainUpdate, *domainModels.Domain) string { return "Domain updated successfully" },
		Failure: func(DomainUpdate, error) string { return "Failed to update domain" },
	}
}

func (c *Client) deleteDomainDef() mutation.Definition[string, struct{}] {
	return mutation.Definition[string, struct{}]{
		Name: "delete_domain",
		Keys: func(string) []querycache.Key { return []querycache.Key{DomainsKey} },
		Speculate: func(id string, _ querycache.Key, current any) (any, bool) {
			list, ok := current.([]domainModels.Summary)
			if !ok || !slices.ContainsFunc(list, func(s domainModels.Summary) bool { return s.ID == id }) {
				return nil, false
			}
			return slices.DeleteFunc(slices.Clone(list), func(s domainModels.Summary) bool { return s.ID == id }), true
		},
		Perform: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, c.api.Do(ctx, http.MethodDelete, "/domains/"+url.PathEscape(id), nil, nil)
		},
		Success: func(string, struct{}) string { return "Domain deleted successfully" },
		Failure: func(string, error) string { return "Failed to delete domain" },
	}
}

func (c *Client) updateOfferDef() mutation.Definition[offerModels.UpdateOfferRequest, *offerModels.Offer] {
	return mutation.Definition[offerModels.UpdateOfferRequest, *offerModels.Offer]{
		Name: "update_offer",
		Keys: func(offerModels.UpdateOfferRequest) []querycache.Key { return []querycache.Key{OffersKey} },
		Speculate: func(req offerModels.UpdateOfferRequest, _ querycache.Key, current any) (any, bool) {
			list, ok := current.([]offerModels.Listing)
			if !ok {
				return nil, false
			}
			i := slices.IndexFunc(list, func(o offerModels.Listing) bool { return o.ID == req.ID })
			if i < 0 {
				return nil, false
			}
			next := slices.Clone(list)
			req.ApplyTo(&next[i].Offer)
			return next, true
		},
		Perform: func(ctx context.Context, req offerModels.UpdateOfferRequest) (*offerModels.Offer, error) {
			var out offerModels.Offer
			if err := c.api.Do(ctx, http.MethodPatch, "/offers", req, &out); err != nil {
				return nil, err
			}
			return &out, nil
		},
		Success: func(offerModels.UpdateOfferRequest, *offerModels.Offer) string { return "Offer updated successfully" },
		Failure: func(offerModels.UpdateOfferRequest, error) string { return "Failed to update offer" },
	}
}

func (c *Client) createConsultationDef() mutation.Definition[consultModels.CreateRequest, *consultModels.Consultation] {
	return mutation.Definition[consultModels.CreateRequest, *consultModels.Consultation]{
		Name: "create_consultation",
		Keys: func(consultModels.CreateRequest) []querycache.Key {
			return []querycache.Key{OffersKey, ConsultationsKey}
		},
		Perform: func(ctx context.Context, req consultModels.CreateRequest) (*consultModels.Consultation, error) {
			var out consultModels.Consultation
			if err := c.api.Do(ctx, http.MethodPost, "/consultations", req, &out); err != nil {
				return nil, err
			}
			return &out, nil
		},
		Success: func(consultModels.CreateRequest, *consultModels.Consultation) string {
			return "Consultation created successfully"
		},
	}
}

func (c *Client) updateConsultationDef() mutation.Definition[ConsultationUpdate, *consultModels.Consultation] {
	return mutation.Definition[ConsultationUpdate, *consultModels.Consultation]{
		Name: "update_consultation",
		Keys: func(ConsultationUpdate) []querycache.Key {
			return []querycache.Key{OffersKey, ConsultationsKey}
		},
		Speculate: func(in ConsultationUpdate, _ querycache.Key, current any) (any, bool) {
			switch v := current.(type) {
			case []offerModels.Listing:
				i := slices.IndexFunc(v, func(o offerModels.Listing) bool {
					return o.Consultation != nil && o.Consultation.ID == in.ID
				})
				if i < 0 {
					return nil, false
				}
				next := slices.Clone(v)
				merged := *next[i].Consultation
				in.Patch.ApplyTo(&merged)
				next[i].Consultation = &merged
				return next, true
			case []consultModels.Listing:
				i := slices.IndexFunc(v, func(l consultModels.Listing) bool { return l.ID == in.ID })
				if i < 0 {
					return nil, false
				}
				next := slices.Clone(v)
				in.Patch.ApplyTo(&next[i].Consultation)
				return next, true
			}
			return nil, false
		},
		Perform: func(ctx context.Context, in ConsultationUpdate) (*consultModels.Consultation, error) {
			var out consultModels.Consultation
			if err := c.api.Do(ctx, http.MethodPatch, "/consultations/"+url.PathEscape(in.ID), in.Patch, &out); err != nil {
				return nil, err
			}
			return &out, nil
		},
		Success: func(ConsultationUpdate, *consultModels.Consultation) string {
			return "Consultation updated successfully"
		},
		Failure: func(ConsultationUpdate, error) string { return "Failed to update consultation" },
	}
}

func (c *Client) deleteConsultationDef() mutation.Definition[string, struct{}] {
	return mutation.Definition[string, struct{}]{
		Name: "delete_consultation",
		Keys: func(string) []querycache.Key { return []querycache.Key{OffersKey, ConsultationsKey} },
		Speculate: func(id string, _ querycache.Key, current any) (any, bool) {
			switch v := current.(type) {
			case []offerModels.Listing:
				i := slices.IndexFunc(v, func(o offerModels.Listing) bool {
					return o.Consultation != nil && o.Consultation.ID == id
				})
				if i < 0 {
					return nil, false
				}
				next := slices.Clone(v)
				next[i].Consultation = nil
				return next, true
			case []consultModels.Listing:
				if !slices.ContainsFunc(v, func(l consultModels.Listing) bool { return l.ID == id }) {
					return nil, false
				}
				return slices.DeleteFunc(slices.Clone(v), func(l consultModels.Listing) bool { return l.ID == id }), true
			}
			return nil, false
		},
		Perform: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, c.api.Do(ctx, http.MethodDelete, "/consultations/"+url.PathEscape(id), nil, nil)
		},
		Success: func(string, struct{}) string { return "Consultation deleted successfully" },
		Failure: func(string, error) string { return "Failed to delete consultation" },
	}
}
