package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasExplicitPrice(t *testing.T) {
	tests := []struct {
		display string
		want    bool
	}{
		{"$485,000", true},
		{"Offers over $550,000", true},
		{"Deadline Sale", false},
		{"Price by Negotiation", false},
		{"", false},
		{"$", false},
	}
	for _, tt := range tests {
		l := Listing{PriceDisplay: tt.display}
		assert.Equal(t, tt.want, l.HasExplicitPrice(), tt.display)
	}
}

func TestParsePrice(t *testing.T) {
	p := ParsePrice("$485,000")
	require.NotNil(t, p)
	assert.Equal(t, 485000.0, *p)

	p = ParsePrice("Offers over $1,250,000")
	require.NotNil(t, p)
	assert.Equal(t, 1250000.0, *p)

	assert.Nil(t, ParsePrice("Deadline Sale"))
	assert.Nil(t, ParsePrice(""))
}

func TestAskingPrice_PrefersExplicit(t *testing.T) {
	l := Listing{
		PriceDisplay:   "$485,000",
		EstimatedPrice: &PriceRange{Min: 500000, Max: 650000, Midpoint: 575000},
	}
	p := l.AskingPrice()
	require.NotNil(t, p)
	assert.Equal(t, 485000.0, *p)
}

func TestAskingPrice_FallsBackToMidpoint(t *testing.T) {
	l := Listing{
		PriceDisplay:   "Deadline Sale",
		EstimatedPrice: &PriceRange{Min: 500000, Max: 650000, Midpoint: 575000},
	}
	p := l.AskingPrice()
	require.NotNil(t, p)
	assert.Equal(t, 575000.0, *p)

	bare := Listing{PriceDisplay: "Tender"}
	assert.Nil(t, bare.AskingPrice())
}

func TestParseIntField(t *testing.T) {
	v := ParseIntField("649 m²")
	require.NotNil(t, v)
	assert.Equal(t, 649, *v)

	assert.Nil(t, ParseIntField(""))
	assert.Nil(t, ParseIntField("n/a"))
}

func TestValuationRecordLandAreaM2(t *testing.T) {
	ha := 0.0649
	r := ValuationRecord{LandAreaHa: &ha}
	m2 := r.LandAreaM2()
	require.NotNil(t, m2)
	assert.InDelta(t, 649.0, *m2, 0.001)

	assert.Nil(t, (&ValuationRecord{}).LandAreaM2())
}
