package main

import (
	"errors"
	"fmt"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/catalog"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/pricing"
	"github.com/spf13/cobra"
)

func ptr[T any](v T) *T { return &v }

func samplePackages() []catalog.PackageInput {
	return []catalog.PackageInput{
		{
			Name:             ptr("Shared Marina Cruise"),
			Type:             ptr(catalog.TypeShared),
			Price:            ptr(250.0),
			PriceType:        ptr(pricing.PerPerson),
			ShortDescription: ptr("Two hours along the marina and the palm on a shared yacht."),
			Inclusions:       []string{"Soft drinks", "Life jackets", "Photo stop"},
			Featured:         ptr(true),
			Order:            ptr(1),
			Pricing: &catalog.Pricing{
				AdultPrice:  ptr(250.0),
				ChildPrice:  ptr(175.0),
				InfantPrice: ptr(0.0),
			},
		},
		{
			Name:             ptr("Premium Sunset Cruise"),
			Type:             ptr(catalog.TypePremium),
			Price:            ptr(450.0),
			PriceType:        ptr(pricing.PerPerson),
			ShortDescription: ptr("Sunset sailing with canapes and a live DJ."),
			Inclusions:       []string{"Canapes", "Soft drinks", "DJ"},
			Order:            ptr(2),
		},
		{
			Name:                ptr("VIP Yacht by the Hour"),
			Type:                ptr(catalog.TypeVIP),
			Price:               ptr(800.0),
			PriceType:           ptr(pricing.PerHour),
			MinimumBookingHours: ptr(3),
			ShortDescription:    ptr("A 55ft yacht with crew, billed per hour."),
			Order:               ptr(3),
			YachtDetails: &catalog.YachtDetails{
				Capacity:  20,
				Length:    "55ft",
				Amenities: []string{"Sun deck", "Sound system", "Water toys"},
			},
		},
		{
			Name:             ptr("Private Charter"),
			Type:             ptr(catalog.TypePrivate),
			Price:            ptr(6500.0),
			PriceType:        ptr(pricing.FlatRate),
			ShortDescription: ptr("The whole yacht for your party, one flat price."),
			Order:            ptr(4),
			Pricing:          &catalog.Pricing{VATPercentage: ptr(5.0)},
		},
	}
}

func sampleFAQs() []catalog.FAQInput {
	return []catalog.FAQInput{
		{
			Question: ptr("Where do we board?"),
			Answer:   ptr("Boarding details are sent with your booking confirmation."),
			Order:    ptr(1),
		},
		{
			Question: ptr("Can I cancel my booking?"),
			Answer:   ptr("Contact us on WhatsApp at least 48 hours before departure."),
			Order:    ptr(2),
		},
		{
			Question: ptr("Are children allowed?"),
			Answer:   ptr("Yes. Infants travel free and children get a reduced rate."),
			Order:    ptr(3),
		},
	}
}

func seedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample packages and FAQs; existing slugs are skipped",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			repo := &catalog.Repo{DB: db}
			ctx := cmd.Context()

			created := 0
			for _, in := range samplePackages() {
				p, err := repo.CreatePackage(ctx, in)
				if errors.Is(err, apperr.ErrConflict) {
					e.log.WithField("name", *in.Name).Info("package exists, skipped")
					continue
				}
				if err != nil {
					return fmt.Errorf("seed package %q: %w", *in.Name, err)
				}
				e.log.WithField("slug", p.Slug).Info("package created")
				created++
			}

			// FAQs have no natural key; only seed an empty table.
			faqs, err := repo.ListFAQs(ctx, false)
			if err != nil {
				return err
			}
			if len(faqs) == 0 {
				for _, in := range sampleFAQs() {
					if _, err := repo.CreateFAQ(ctx, in); err != nil {
						return fmt.Errorf("seed faq: %w", err)
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "packages created=%d faqs seeded=%t\n", created, len(faqs) == 0)
			return nil
		},
	}
}
