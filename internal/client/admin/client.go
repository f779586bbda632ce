// Package admin is the dashboard's view of the record API: cached queries
// and the optimistic mutations that change them.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"domaindesk/internal/client/mutation"
	"domaindesk/internal/client/querycache"
	"domaindesk/internal/client/transport"
	consultModels "domaindesk/internal/consultations/models"
	domainModels "domaindesk/internal/domains/models"
	offerModels "domaindesk/internal/offers/models"
)

// Cache keys shared by queries and mutations.
var (
	DomainsKey       = querycache.Collection("domains")
	OffersKey        = querycache.Collection("offers")
	ConsultationsKey = querycache.Collection("consultations")
	DashboardKey     = querycache.Collection("dashboard")
)

func DomainKey(idOrSlug string) querycache.Key {
	return querycache.Entity("domains", idOrSlug)
}

// Client bundles the transport, the cache and the mutation controller.
type Client struct {
	api   *transport.Client
	cache *querycache.Cache

	createDomain       *mutation.Mutation[domainModels.CreateDomainRequest, *domainModels.Domain]
	updateDomain       *mutation.Mutation[DomainUpdate, *domainModels.Domain]
	deleteDomain       *mutation.Mutation[string, struct{}]
	updateOffer        *mutation.Mutation[offerModels.UpdateOfferRequest, *offerModels.Offer]
	createConsultation *mutation.Mutation[consultModels.CreateRequest, *consultModels.Consultation]
	updateConsultation *mutation.Mutation[ConsultationUpdate, *consultModels.Consultation]
	deleteConsultation *mutation.Mutation[string, struct{}]
}

// New wires a client. The controller options control notifications,
// tracing and metrics of every mutation.
func New(api *transport.Client, cache *querycache.Cache, opts ...mutation.Option) *Client {
	c := &Client{api: api, cache: cache}
	ctrl := mutation.NewController(cache, opts...)
	c.createDomain = mutation.New(ctrl, c.createDomainDef())
	c.updateDomain = mutation.New(ctrl, c.updateDomainDef())
	c.deleteDomain = mutation.New(ctrl, c.deleteDomainDef())
	c.updateOffer = mutation.New(ctrl, c.updateOfferDef())
	c.createConsultation = mutation.New(ctrl, c.createConsultationDef())
	c.updateConsultation = mutation.New(ctrl, c.updateConsultationDef())
	c.deleteConsultation = mutation.New(ctrl, c.deleteConsultationDef())
	return c
}

// Cache exposes the query cache so views can subscribe to keys.
func (c *Client) Cache() *querycache.Cache {
	return c.cache
}

func IsNotFound(err error) bool {
	return transport.StatusOf(err) == http.StatusNotFound
}

func IsConflict(err error) bool {
	return transport.StatusOf(err) == http.StatusConflict
}

func IsUnauthorized(err error) bool {
	return transport.StatusOf(err) == http.StatusUnauthorized
}

// IsDefect reports a response the client could not make sense of.
func IsDefect(err error) bool {
	return errors.Is(err, transport.ErrDecode)
}

func getter[T any](api *transport.Client, path string) querycache.Fetcher {
	return func(ctx context.Context) (any, error) {
		var out T
		if err := api.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func query[T any](ctx context.Context, c *Client, k querycache.Key, path string) (T, error) {
	var zero T
	v, err := c.cache.Fetch(ctx, k, getter[T](c.api, path))
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cached %s holds %T", k, v)
	}
	return out, nil
}
