// Package pricing turns a package price model and a party into a VAT-inclusive quote.
package pricing

import (
	"math"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
)

type Model string

const (
	PerPerson Model = "per_person"
	PerHour   Model = "per_hour"
	FlatRate  Model = "flat_rate"
)

func (m Model) Valid() bool {
	switch m {
	case PerPerson, PerHour, FlatRate:
		return true
	}
	return false
}

// ChildFallbackRatio applies when a per_person package has no child price.
const ChildFallbackRatio = 0.7

// Rates is the price sheet of a package. Nil tiers fall back as documented on Calculate.
type Rates struct {
	Base       float64
	Adult      *float64
	Child      *float64
	Infant     *float64
	VATPercent *float64
}

type Party struct {
	Adults   int
	Children int
	Infants  int
	Hours    float64
}

type Quote struct {
	Subtotal   float64 `json:"subtotal"`
	VAT        float64 `json:"vat"`
	VATPercent float64 `json:"vatPercentage"`
	Total      float64 `json:"total"`
}

// Calculate prices a party.
//
//	per_person: adult*a + child*c + infant*i (adult defaults to Base, child to 0.7*Base, infant to 0)
//	per_hour:   Base*Hours
//	flat_rate:  Base
//
// VAT is rounded half-up to the minor unit, total = subtotal + vat.
func Calculate(model Model, rates Rates, party Party, defaultVAT float64) (Quote, error) {
	if !model.Valid() {
		return Quote{}, apperr.Invalid("unknown price model", "priceType")
	}
	if err := checkInputs(rates, party, defaultVAT); err != nil {
		return Quote{}, err
	}

	var subtotal float64
	switch model {
	case PerPerson:
		adult := valueOr(rates.Adult, rates.Base)
		child := valueOr(rates.Child, rates.Base*ChildFallbackRatio)
		infant := valueOr(rates.Infant, 0)
		subtotal = adult*float64(party.Adults) + child*float64(party.Children) + infant*float64(party.Infants)
	case PerHour:
		if party.Hours <= 0 {
			return Quote{}, apperr.Invalid("hours must be positive", "bookingHours")
		}
		subtotal = rates.Base * party.Hours
	case FlatRate:
		subtotal = rates.Base
	}

	pct := valueOr(rates.VATPercent, defaultVAT)
	subtotal = RoundMinor(subtotal)
	vat := RoundMinor(subtotal * pct / 100)
	return Quote{
		Subtotal:   subtotal,
		VAT:        vat,
		VATPercent: pct,
		Total:      RoundMinor(subtotal + vat),
	}, nil
}

// RoundMinor rounds half-up to two decimals. Inputs are first snapped to
// micro units so that 1.005 does not round down through binary error.
func RoundMinor(v float64) float64 {
	micro := math.Round(v * 1e6)
	return math.Round(micro/1e4) / 100
}

// MinorUnits converts a major-unit amount to the gateway's smallest unit.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(RoundMinor(amount) * 100))
}

func checkInputs(r Rates, p Party, defaultVAT float64) error {
	var f apperr.Fields
	f.Add(bad(r.Base), "price")
	f.Add(r.Adult != nil && bad(*r.Adult), "pricing.adultPrice")
	f.Add(r.Child != nil && bad(*r.Child), "pricing.childPrice")
	f.Add(r.Infant != nil && bad(*r.Infant), "pricing.infantPrice")
	f.Add(r.VATPercent != nil && bad(*r.VATPercent), "pricing.vatPercentage")
	f.Add(bad(defaultVAT), "vatPercentage")
	f.Add(p.Adults < 0, "adults")
	f.Add(p.Children < 0, "children")
	f.Add(p.Infants < 0, "infants")
	f.Add(bad(p.Hours), "bookingHours")
	return f.Err()
}

func bad(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Float is a helper for building Rates literals.
func Float(v float64) *float64 { return &v }
