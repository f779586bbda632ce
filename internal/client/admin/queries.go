package admin

import (
	"context"
	"net/url"

	consultModels "domaindesk/internal/consultations/models"
	dashboard "domaindesk/internal/dashboard/service"
	domainModels "domaindesk/internal/domains/models"
	offerModels "domaindesk/internal/offers/models"
)

const recentSalesLimit = 5

// Domains returns the first page of the inventory, newest first.
func (c *Client) Domains(ctx context.Context) ([]domainModels.Summary, error) {
	return query[[]domainModels.Summary](ctx, c, DomainsKey, "/domains")
}

// Domain returns one domain with its related records.
func (c *Client) Domain(ctx context.Context, idOrSlug string) (*domainModels.Detail, error) {
	return query[*domainModels.Detail](ctx, c, DomainKey(idOrSlug), "/domains/"+url.PathEscape(idOrSlug))
}

func (c *Client) Offers(ctx context.Context) ([]offerModels.Listing, error) {
	return query[[]offerModels.Listing](ctx, c, OffersKey, "/offers")
}

func (c *Client) Consultations(ctx context.Context) ([]consultModels.Listing, error) {
	return query[[]consultModels.Listing](ctx, c, ConsultationsKey, "/consultations")
}

func (c *Client) DashboardStats(ctx context.Context) (*dashboard.Stats, error) {
	return query[*dashboard.Stats](ctx, c, DashboardKey, "/dashboard")
}

// RecentSales returns the most recent closed offers.
func (c *Client) RecentSales(ctx context.Context) ([]offerModels.Listing, error) {
	offers, err := c.Offers(ctx)
	if err != nil {
		return nil, err
	}
	var sales []offerModels.Listing
	for _, o := range offers {
		if o.Status != offerModels.StatusClosed {
			continue
		}
		sales = append(sales, o)
		if len(sales) == recentSalesLimit {
			break
		}
	}
	return sales, nil
}
