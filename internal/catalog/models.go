package catalog

import (
	"encoding/json"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/pricing"
)

type PackageType string

const (
	TypeShared  PackageType = "shared"
	TypePremium PackageType = "premium"
	TypeVIP     PackageType = "vip"
	TypePrivate PackageType = "private"
)

func (t PackageType) Valid() bool {
	switch t {
	case TypeShared, TypePremium, TypeVIP, TypePrivate:
		return true
	}
	return false
}

const DefaultMinimumHours = 2

type Pricing struct {
	AdultPrice    *float64 `json:"adultPrice,omitempty"`
	ChildPrice    *float64 `json:"childPrice,omitempty"`
	InfantPrice   *float64 `json:"infantPrice,omitempty"`
	VATPercentage *float64 `json:"vatPercentage,omitempty"`
}

type YachtDetails struct {
	Capacity  int      `json:"capacity,omitempty"`
	Length    string   `json:"length,omitempty"`
	Brand     string   `json:"brand,omitempty"`
	Year      int      `json:"year,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
}

type Package struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Slug                string        `json:"slug"`
	Type                PackageType   `json:"type"`
	Price               float64       `json:"price"`
	PriceType           pricing.Model `json:"priceType"`
	MinimumBookingHours int           `json:"minimumBookingHours"`
	Description         string        `json:"description"`
	ShortDescription    string        `json:"shortDescription"`
	Inclusions          []string      `json:"inclusions"`
	Featured            bool          `json:"featured"`
	Order               int           `json:"order"`
	Active              bool          `json:"active"`
	Pricing             Pricing       `json:"pricing"`
	YachtDetails        *YachtDetails `json:"yachtDetails,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// Rates exposes the package price sheet to the pricing calculator.
func (p Package) Rates() pricing.Rates {
	return pricing.Rates{
		Base:       p.Price,
		Adult:      p.Pricing.AdultPrice,
		Child:      p.Pricing.ChildPrice,
		Infant:     p.Pricing.InfantPrice,
		VATPercent: p.Pricing.VATPercentage,
	}
}

// PackageInput is the admin create/update body. Nil fields are left untouched on update.
type PackageInput struct {
	Name                *string        `json:"name"`
	Slug                *string        `json:"slug"`
	Type                *PackageType   `json:"type"`
	Price               *float64       `json:"price"`
	PriceType           *pricing.Model `json:"priceType"`
	MinimumBookingHours *int           `json:"minimumBookingHours"`
	Description         *string        `json:"description"`
	ShortDescription    *string        `json:"shortDescription"`
	Inclusions          []string       `json:"inclusions"`
	Featured            *bool          `json:"featured"`
	Order               *int           `json:"order"`
	Active              *bool          `json:"active"`
	Pricing             *Pricing       `json:"pricing"`
	YachtDetails        *YachtDetails  `json:"yachtDetails"`
}

// Apply merges the input into p and re-derives the slug when the name changed
// without an explicit slug.
func (in PackageInput) Apply(p *Package) {
	nameChanged := in.Name != nil && *in.Name != p.Name
	if in.Name != nil {
		p.Name = *in.Name
	}
	switch {
	case in.Slug != nil && *in.Slug != "":
		p.Slug = Slugify(*in.Slug)
	case p.Slug == "" || nameChanged:
		p.Slug = Slugify(p.Name)
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.PriceType != nil {
		p.PriceType = *in.PriceType
	}
	if in.MinimumBookingHours != nil {
		p.MinimumBookingHours = *in.MinimumBookingHours
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.ShortDescription != nil {
		p.ShortDescription = *in.ShortDescription
	}
	if in.Inclusions != nil {
		p.Inclusions = in.Inclusions
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Order != nil {
		p.Order = *in.Order
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if in.Pricing != nil {
		p.Pricing = *in.Pricing
	}
	if in.YachtDetails != nil {
		p.YachtDetails = in.YachtDetails
	}
}

// NewPackage returns a package with the storage defaults applied.
func NewPackage() Package {
	return Package{
		PriceType:           pricing.PerPerson,
		MinimumBookingHours: DefaultMinimumHours,
		Active:              true,
		Inclusions:          []string{},
	}
}

func (p Package) Validate() error {
	var f apperr.Fields
	f.Add(p.Name == "", "name")
	f.Add(p.Slug == "", "slug")
	f.Add(!p.Type.Valid(), "type")
	f.Add(p.Price < 0, "price")
	f.Add(!p.PriceType.Valid(), "priceType")
	f.Add(p.MinimumBookingHours < 0, "minimumBookingHours")
	f.Add(negative(p.Pricing.AdultPrice), "pricing.adultPrice")
	f.Add(negative(p.Pricing.ChildPrice), "pricing.childPrice")
	f.Add(negative(p.Pricing.InfantPrice), "pricing.infantPrice")
	f.Add(negative(p.Pricing.VATPercentage), "pricing.vatPercentage")
	return f.Err()
}

func negative(v *float64) bool { return v != nil && *v < 0 }

type FAQ struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Order     int       `json:"order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type FAQInput struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
	Order    *int    `json:"order"`
	Active   *bool   `json:"active"`
}

func (in FAQInput) Apply(f *FAQ) {
	if in.Question != nil {
		f.Question = *in.Question
	}
	if in.Answer != nil {
		f.Answer = *in.Answer
	}
	if in.Order != nil {
		f.Order = *in.Order
	}
	if in.Active != nil {
		f.Active = *in.Active
	}
}

func (f FAQ) Validate() error {
	var fs apperr.Fields
	fs.Add(f.Question == "", "question")
	fs.Add(f.Answer == "", "answer")
	return fs.Err()
}

// Content is a free-form page section keyed by its unique section name.
type Content struct {
	Section     string          `json:"section"`
	Title       string          `json:"title"`
	Subtitle    string          `json:"subtitle"`
	Description string          `json:"description"`
	Body        json.RawMessage `json:"content,omitempty"`
	Images      []string        `json:"images"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (c Content) Validate() error {
	var f apperr.Fields
	f.Add(c.Section == "", "section")
	f.Add(len(c.Body) > 0 && !json.Valid(c.Body), "content")
	return f.Err()
}
