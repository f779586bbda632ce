// Package seed fills the in-memory stores with a small demo inventory so a
// development server has something to show.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	consultModels "domaindesk/internal/consultations/models"
	consultStore "domaindesk/internal/consultations/store"
	domainModels "domaindesk/internal/domains/models"
	domainStore "domaindesk/internal/domains/store"
	offerModels "domaindesk/internal/offers/models"
	offerStore "domaindesk/internal/offers/store"
)

// Result lists what was created.
type Result struct {
	Domains       int
	Offers        int
	Consultations int
}

type demoDomain struct {
	name, slug  string
	buyNow      float64
	minOffer    float64
	industries  []string
	featured    bool
	offerStates []offerModels.Status
}

var demo = []demoDomain{
	{"lumen.ai", "lumen-ai", 48000, 30000, []string{"ai", "analytics"}, true,
		[]offerModels.Status{offerModels.StatusNew, offerModels.StatusNegotiating}},
	{"harbor.dev", "harbor-dev", 12000, 8000, []string{"devtools"}, false,
		[]offerModels.Status{offerModels.StatusClosed}},
	{"quill.io", "quill-io", 9500, 5000, []string{"writing", "saas"}, false,
		[]offerModels.Status{offerModels.StatusContacted, offerModels.StatusAccepted}},
}

// Demo populates the stores. It is meant for empty stores and stops at the
// first error.
func Demo(ctx context.Context, domains *domainStore.InMemory, offers *offerStore.InMemory, consultations *consultStore.InMemory, now time.Time) (Result, error) {
	var res Result
	for i, dd := range demo {
		created := now.Add(-time.Duration(len(demo)-i) * 24 * time.Hour)
		buyNow, minOffer := dd.buyNow, dd.minOffer
		description := fmt.Sprintf("Premium name for a %s brand.", dd.industries[0])
		d := &domainModels.Domain{
			ID:            uuid.NewString(),
			Name:          dd.name,
			Slug:          dd.slug,
			Description:   &description,
			BuyNowPrice:   &buyNow,
			MinOfferPrice: &minOffer,
			Status:        domainModels.StatusAvailable,
			IsFeatured:    dd.featured,
			Industries:    dd.industries,
			Keywords:      []string{},
			CreatedAt:     created,
			UpdatedAt:     created,
		}
		if err := domains.CreateIfSlugAvailable(ctx, d); err != nil {
			return res, fmt.Errorf("seed domain %s: %w", dd.slug, err)
		}
		res.Domains++

		if err := domains.AddIdea(ctx, domainModels.DomainIdea{
			ID: uuid.NewString(), DomainID: d.ID,
			Title:   "Launch plan for " + dd.name,
			Preview: "A go-to-market sketch.",
			Content: "Position the name around " + dd.industries[0] + ".",
		}); err != nil {
			return res, fmt.Errorf("seed idea: %w", err)
		}

		for j, status := range dd.offerStates {
			o := &offerModels.Offer{
				ID:        uuid.NewString(),
				DomainID:  d.ID,
				Name:      fmt.Sprintf("Buyer %d", j+1),
				Email:     fmt.Sprintf("buyer%d@%s", j+1, dd.name),
				Amount:    minOffer + float64(j)*1000,
				Status:    status,
				CreatedAt: created.Add(time.Duration(j+1) * time.Hour),
			}
			if err := offers.Create(ctx, o); err != nil {
				return res, fmt.Errorf("seed offer: %w", err)
			}
			res.Offers++

			if status == offerModels.StatusClosed || status == offerModels.StatusAccepted {
				scheduled := true
				c := consultModels.New(uuid.NewString(), consultModels.CreateRequest{
					OfferID:   o.ID,
					Scheduled: &scheduled,
				}, o.CreatedAt)
				if err := consultations.CreateIfOfferFree(ctx, c); err != nil {
					return res, fmt.Errorf("seed consultation: %w", err)
				}
				res.Consultations++
			}
		}
	}
	return res, nil
}
