package listing

import (
	"errors"
	"strings"
	"testing"

	"github.com/agriport/farm2market/internal/fault"
)

func validListing() *Listing {
	return &Listing{
		ProductName: "Yam",
		PriceCents:  1200,
		Quantity:    5,
		Unit:        "basket",
	}
}

func TestValidateNew_OK(t *testing.T) {
	if err := ValidateNew(validListing()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateNew_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Listing)
	}{
		{"empty name", func(l *Listing) { l.ProductName = "  " }},
		{"name too long", func(l *Listing) { l.ProductName = strings.Repeat("x", 101) }},
		{"description too long", func(l *Listing) { l.Description = strings.Repeat("x", 1001) }},
		{"zero price", func(l *Listing) { l.PriceCents = 0 }},
		{"negative price", func(l *Listing) { l.PriceCents = -100 }},
		{"zero quantity", func(l *Listing) { l.Quantity = 0 }},
		{"unknown unit", func(l *Listing) { l.Unit = "pallet" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := validListing()
			tc.mutate(l)
			err := ValidateNew(l)
			var ve *fault.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}
