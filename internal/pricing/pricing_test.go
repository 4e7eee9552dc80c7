package pricing

import (
	"math"
	"testing"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_PerPersonWithFreeChild(t *testing.T) {
	rates := Rates{Base: 450, Adult: Float(450), Child: Float(0), VATPercent: Float(5)}

	q, err := Calculate(PerPerson, rates, Party{Adults: 2, Children: 1}, 5)

	require.NoError(t, err)
	assert.Equal(t, 900.0, q.Subtotal)
	assert.Equal(t, 45.0, q.VAT)
	assert.Equal(t, 945.0, q.Total)
	assert.Equal(t, 5.0, q.VATPercent)
}

func TestCalculate_PerPersonFallbacks(t *testing.T) {
	q, err := Calculate(PerPerson, Rates{Base: 100}, Party{Adults: 1, Children: 2, Infants: 3}, 5)

	require.NoError(t, err)
	// 100 + 2*70 + 3*0
	assert.Equal(t, 240.0, q.Subtotal)
	assert.Equal(t, 12.0, q.VAT)
	assert.Equal(t, 252.0, q.Total)
}

func TestCalculate_PerHour(t *testing.T) {
	q, err := Calculate(PerHour, Rates{Base: 1200}, Party{Hours: 3}, 5)
	require.NoError(t, err)
	assert.Equal(t, 3600.0, q.Subtotal)
	assert.Equal(t, 180.0, q.VAT)
	assert.Equal(t, 3780.0, q.Total)

	_, err = Calculate(PerHour, Rates{Base: 1200}, Party{}, 5)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCalculate_FlatRateUsesDefaultVAT(t *testing.T) {
	q, err := Calculate(FlatRate, Rates{Base: 5000}, Party{Adults: 12}, 5)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, q.Subtotal)
	assert.Equal(t, 250.0, q.VAT)
	assert.Equal(t, 5250.0, q.Total)
}

func TestCalculate_VATRoundsHalfUp(t *testing.T) {
	// 20.1 * 5% = 1.005
	q, err := Calculate(FlatRate, Rates{Base: 20.1}, Party{}, 5)
	require.NoError(t, err)
	assert.Equal(t, 1.01, q.VAT)
	assert.Equal(t, 21.11, q.Total)
}

func TestCalculate_TotalIsSubtotalPlusVAT(t *testing.T) {
	for _, base := range []float64{0, 1, 33.33, 249.99, 450, 1234.56} {
		for adults := 0; adults < 5; adults++ {
			for _, pct := range []float64{0, 5, 7.5, 20} {
				q, err := Calculate(PerPerson, Rates{Base: base}, Party{Adults: adults, Children: 1}, pct)
				require.NoError(t, err)
				assert.InDelta(t, q.Subtotal+q.VAT, q.Total, 1e-9)
				assert.Equal(t, RoundMinor(q.Subtotal*pct/100), q.VAT)
			}
		}
	}
}

func TestCalculate_RejectsBadInput(t *testing.T) {
	cases := map[string]struct {
		model Model
		rates Rates
		party Party
		vat   float64
	}{
		"negative price":   {PerPerson, Rates{Base: -1}, Party{Adults: 1}, 5},
		"nan adult":        {PerPerson, Rates{Base: 1, Adult: Float(math.NaN())}, Party{Adults: 1}, 5},
		"inf vat":          {FlatRate, Rates{Base: 1}, Party{}, math.Inf(1)},
		"negative infants": {PerPerson, Rates{Base: 1}, Party{Infants: -1}, 5},
		"unknown model":    {Model("per_yacht"), Rates{Base: 1}, Party{}, 5},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Calculate(tc.model, tc.rates, tc.party, tc.vat)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(94500), MinorUnits(945))
	assert.Equal(t, int64(2111), MinorUnits(21.11))
	assert.Equal(t, int64(0), MinorUnits(0))
}
