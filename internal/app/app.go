// Package app assembles the record modules on top of a storage backend.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	consultHandler "domaindesk/internal/consultations/handler"
	consultService "domaindesk/internal/consultations/service"
	consultStore "domaindesk/internal/consultations/store"
	dashHandler "domaindesk/internal/dashboard/handler"
	dashService "domaindesk/internal/dashboard/service"
	domainHandler "domaindesk/internal/domains/handler"
	domainService "domaindesk/internal/domains/service"
	domainStore "domaindesk/internal/domains/store"
	offerHandler "domaindesk/internal/offers/handler"
	offerService "domaindesk/internal/offers/service"
	offerStore "domaindesk/internal/offers/store"
	"domaindesk/internal/platform/metrics"
	httptransport "domaindesk/internal/transport/http"
)

// DomainStore is everything the modules read and write about domains.
type DomainStore interface {
	domainService.Store
	offerService.DomainLookup
	dashService.DomainStats
}

// OfferStore is everything the modules read and write about offers.
type OfferStore interface {
	offerService.Store
	domainService.OfferReader
	dashService.OfferStats
}

// ConsultationStore is everything the modules read and write about consultations.
type ConsultationStore interface {
	consultService.Store
	offerService.ConsultationLookup
}

// Stores is one storage backend. Cascade is set when the backend cannot
// remove a deleted domain's offers and consultations by itself.
type Stores struct {
	Domains       DomainStore
	Offers        OfferStore
	Consultations ConsultationStore
	Cascade       func(ctx context.Context, domainID string) error
}

// Memory holds the concrete in-memory stores so callers can seed them.
type Memory struct {
	Domains       *domainStore.InMemory
	Offers        *offerStore.InMemory
	Consultations *consultStore.InMemory
}

func NewMemory() *Memory {
	return &Memory{
		Domains:       domainStore.NewInMemory(),
		Offers:        offerStore.NewInMemory(),
		Consultations: consultStore.NewInMemory(),
	}
}

// Stores returns the backend view of m, with a cascade that mirrors the
// PostgreSQL foreign keys.
func (m *Memory) Stores() Stores {
	return Stores{
		Domains:       m.Domains,
		Offers:        m.Offers,
		Consultations: m.Consultations,
		Cascade:       m.cascade,
	}
}

func (m *Memory) cascade(ctx context.Context, domainID string) error {
	offerIDs, err := m.Offers.DeleteByDomain(ctx, domainID)
	if err != nil {
		return fmt.Errorf("delete offers: %w", err)
	}
	if err := m.Consultations.DeleteByOffers(ctx, offerIDs); err != nil {
		return fmt.Errorf("delete consultations: %w", err)
	}
	return nil
}

// PostgresStores returns stores backed by db. Deletes cascade in the schema.
func PostgresStores(db *sql.DB) Stores {
	return Stores{
		Domains:       domainStore.NewPostgres(db),
		Offers:        offerStore.NewPostgres(db),
		Consultations: consultStore.NewPostgres(db),
	}
}

// Modules are the services behind the record API.
type Modules struct {
	Domains       *domainService.Service
	Offers        *offerService.Service
	Consultations *consultService.Service
	Dashboard     *dashService.Service
}

// Wire builds the services on top of stores.
func Wire(stores Stores, logger *slog.Logger, m *metrics.Metrics) Modules {
	domainOpts := []domainService.Option{
		domainService.WithLogger(logger),
		domainService.WithMetrics(m),
		domainService.WithOfferReader(stores.Offers),
	}
	if stores.Cascade != nil {
		domainOpts = append(domainOpts, domainService.WithCascade(stores.Cascade))
	}

	offers := offerService.New(stores.Offers, stores.Domains,
		offerService.WithLogger(logger),
		offerService.WithMetrics(m),
		offerService.WithConsultations(stores.Consultations),
	)
	return Modules{
		Domains: domainService.New(stores.Domains, domainOpts...),
		Offers:  offers,
		Consultations: consultService.New(stores.Consultations, offers,
			consultService.WithLogger(logger),
			consultService.WithMetrics(m),
		),
		Dashboard: dashService.New(stores.Domains, stores.Offers, logger),
	}
}

// Routes returns the HTTP handlers for every module.
func (m Modules) Routes(logger *slog.Logger) []httptransport.Registrar {
	return []httptransport.Registrar{
		domainHandler.New(m.Domains, logger),
		offerHandler.New(m.Offers, logger),
		consultHandler.New(m.Consultations, logger),
		dashHandler.New(m.Dashboard, logger),
	}
}
