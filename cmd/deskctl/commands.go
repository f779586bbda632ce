package main

import (
	"context"

	"github.com/spf13/cobra"

	"domaindesk/internal/client/admin"
	consultModels "domaindesk/internal/consultations/models"
	domainModels "domaindesk/internal/domains/models"
	offerModels "domaindesk/internal/offers/models"
	"domaindesk/pkg/patch"
)

func query[T any](use, short string, fetch func(context.Context) (T, error)) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		GroupID: "queries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := fetch(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd, out)
		},
	}
}

func queryCommands(c *admin.Client) []*cobra.Command {
	return []*cobra.Command{
		query("domains", "List domains", c.Domains),
		{
			Use:     "domain <id-or-slug>",
			Short:   "Show one domain with its offers",
			GroupID: "queries",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := c.Domain(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return emit(cmd, out)
			},
		},
		query("offers", "List offers", c.Offers),
		query("consultations", "List consultations", c.Consultations),
		query("stats", "Dashboard statistics", c.DashboardStats),
		query("sales", "Recent closed offers", c.RecentSales),
	}
}

func mutationCommands(c *admin.Client) []*cobra.Command {
	return []*cobra.Command{
		createDomainCmd(c),
		updateDomainCmd(c),
		deleteCmd("delete-domain <id>", "Delete a domain", c.DeleteDomain),
		updateOfferCmd(c),
		createConsultationCmd(c),
		updateConsultationCmd(c),
		deleteCmd("delete-consultation <id>", "Delete a consultation", c.DeleteConsultation),
	}
}

func deleteCmd(use, short string, del func(context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		GroupID: "mutations",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return del(cmd.Context(), args[0])
		},
	}
}

func createDomainCmd(c *admin.Client) *cobra.Command {
	var (
		req              domainModels.CreateDomainRequest
		description      string
		buyNow, minOffer string
		featured         bool
	)
	cmd := &cobra.Command{
		Use:     "create-domain",
		Short:   "Create a domain",
		GroupID: "mutations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("description") {
				req.Description = &description
			}
			if flags.Changed("featured") {
				req.IsFeatured = &featured
			}
			if flags.Changed("buy-now") {
				v, err := parseFloat(buyNow)
				if err != nil {
					return err
				}
				req.BuyNowPrice = &v
			}
			if flags.Changed("min-offer") {
				v, err := parseFloat(minOffer)
				if err != nil {
					return err
				}
				req.MinOfferPrice = &v
			}
			out, err := c.CreateDomain(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emit(cmd, out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "display name")
	f.StringVar(&req.Slug, "slug", "", "URL slug")
	f.StringVar(&description, "description", "", "description")
	f.StringVar(&buyNow, "buy-now", "", "buy-now price")
	f.StringVar(&minOffer, "min-offer", "", "minimum offer price")
	f.BoolVar(&featured, "featured", false, "feature on the storefront")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("slug")
	return cmd
}

func updateDomainCmd(c *admin.Client) *cobra.Command {
	var (
		name, slug, status, description string
		buyNow, minOffer                string
		featured                        bool
	)
	cmd := &cobra.Command{
		Use:     "update-domain <id>",
		Short:   "Update a domain; pass an empty price to clear it",
		GroupID: "mutations",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var req domainModels.UpdateDomainRequest
			if flags.Changed("name") {
				req.Name = patch.Of(name)
			}
			if flags.Changed("slug") {
				req.Slug = patch.Of(slug)
			}
			if flags.Changed("status") {
				req.Status = patch.Of(domainModels.Status(status))
			}
			if flags.Changed("description") {
				req.Description = patch.Of(description)
			}
			if flags.Changed("featured") {
				req.IsFeatured = patch.Of(featured)
			}
			var err error
			if req.BuyNowPrice, err = priceField(flags.Changed("buy-now"), buyNow); err != nil {
				return err
			}
			if req.MinOfferPrice, err = priceField(flags.Changed("min-offer"), minOffer); err != nil {
				return err
			}
			out, err := c.UpdateDomain(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return emit(cmd, out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "display name")
	f.StringVar(&slug, "slug", "", "URL slug")
	f.StringVar(&status, "status", "", "available, pending or sold")
	f.StringVar(&description, "description", "", "description")
	f.StringVar(&buyNow, "buy-now", "", "buy-now price")
	f.StringVar(&minOffer, "min-offer", "", "minimum offer price")
	f.BoolVar(&featured, "featured", false, "feature on the storefront")
	return cmd
}

// priceField maps "" to null so a price can be cleared.
func priceField(set bool, raw string) (patch.Field[float64], error) {
	if !set {
		return patch.Field[float64]{}, nil
	}
	if raw == "" {
		return patch.Null[float64](), nil
	}
	v, err := parseFloat(raw)
	if err != nil {
		return patch.Field[float64]{}, err
	}
	return patch.Of(v), nil
}

func updateOfferCmd(c *admin.Client) *cobra.Command {
	var status, notes string
	cmd := &cobra.Command{
		Use:     "update-offer <id>",
		Short:   "Move an offer through its statuses or edit its notes",
		GroupID: "mutations",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := offerModels.UpdateOfferRequest{ID: args[0]}
			if cmd.Flags().Changed("status") {
				req.Status = patch.Of(offerModels.Status(status))
			}
			if cmd.Flags().Changed("notes") {
				req.Notes = patch.Of(notes)
			}
			out, err := c.UpdateOffer(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emit(cmd, out)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "new, contacted, negotiating, accepted or closed")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	return cmd
}

func createConsultationCmd(c *admin.Client) *cobra.Command {
	var (
		scheduled bool
		notes     string
		share     string
	)
	cmd := &cobra.Command{
		Use:     "create-consultation <offer-id>",
		Short:   "Open a consultation for an offer",
		GroupID: "mutations",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			req := consultModels.CreateRequest{OfferID: args[0]}
			if flags.Changed("scheduled") {
				req.Scheduled = &scheduled
			}
			if flags.Changed("notes") {
				req.Notes = &notes
			}
			if flags.Changed("revenue-share") {
				v, err := parseFloat(share)
				if err != nil {
					return err
				}
				req.RevenueShare = &v
			}
			out, err := c.CreateConsultation(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emit(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&scheduled, "scheduled", false, "call is scheduled")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().StringVar(&share, "revenue-share", "", "revenue share percentage")
	return cmd
}

func updateConsultationCmd(c *admin.Client) *cobra.Command {
	var (
		bools = map[string]*bool{
			"scheduled":       new(bool),
			"completed":       new(bool),
			"follow-up":       new(bool),
			"deck-writing":    new(bool),
			"product-build":   new(bool),
			"referrals":       new(bool),
			"investor-intros": new(bool),
		}
		notes string
		share string
	)
	cmd := &cobra.Command{
		Use:     "update-consultation <id>",
		Short:   "Update a consultation; pass an empty revenue share to clear it",
		GroupID: "mutations",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			boolField := func(name string) patch.Field[bool] {
				if !flags.Changed(name) {
					return patch.Field[bool]{}
				}
				return patch.Of(*bools[name])
			}
			req := consultModels.UpdateRequest{
				Scheduled:         boolField("scheduled"),
				Completed:         boolField("completed"),
				FollowUpDelivered: boolField("follow-up"),
				DeckWriting:       boolField("deck-writing"),
				ProductBuild:      boolField("product-build"),
				Referrals:         boolField("referrals"),
				InvestorIntros:    boolField("investor-intros"),
			}
			if flags.Changed("notes") {
				req.Notes = patch.Of(notes)
			}
			var err error
			if req.RevenueShare, err = priceField(flags.Changed("revenue-share"), share); err != nil {
				return err
			}
			out, err := c.UpdateConsultation(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return emit(cmd, out)
		},
	}
	for name, p := range bools {
		cmd.Flags().BoolVar(p, name, false, name)
	}
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().StringVar(&share, "revenue-share", "", "revenue share percentage")
	return cmd
}
