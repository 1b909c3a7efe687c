package catalog

import (
	"context"
	"fmt"

	"github.com/cloudclutches/storefront/internal/money"
)

func strptr(s string) *string { return &s }

func price(s string) *money.Amount {
	a := money.MustParse(s)
	return &a
}

var starter = []ProductInput{
	{
		Name:        "Pearl Flower Hair Clip",
		Description: strptr("Beautiful pearl-studded flower clip for everyday elegance."),
		Price:       price("15.00"),
		ImageURL:    "https://images.unsplash.com/photo-1596462502278-27bf85033e5a?auto=format&fit=crop&q=80&w=800",
	},
	{
		Name:        "Silk Scrunchie Set",
		Description: strptr("Set of 3 pure silk scrunchies in pastel colors. Gentle on hair."),
		Price:       price("24.50"),
		ImageURL:    "https://images.unsplash.com/photo-1605814234033-6490d1f736dc?auto=format&fit=crop&q=80&w=800",
	},
	{
		Name:        "Rhinestone Bobby Pins",
		Description: strptr("Sparkling rhinestone bobby pins for special occasions."),
		Price:       price("12.00"),
		ImageURL:    "https://images.unsplash.com/photo-1515562141207-7a88fb7ce338?auto=format&fit=crop&q=80&w=800",
	},
	{
		Name:        "Velvet Bow Headband",
		Description: strptr("Luxurious velvet headband with a stylish knot bow."),
		Price:       price("18.00"),
		ImageURL:    "https://images.unsplash.com/photo-1579893457912-1f35fb2ccfc2?auto=format&fit=crop&q=80&w=800",
	},
}

// SeedIfEmpty inserts the starter catalog once, on an empty products table.
func SeedIfEmpty(ctx context.Context, r *Repo) (int, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for _, in := range starter {
		if _, err := r.Create(ctx, in); err != nil {
			return 0, fmt.Errorf("seed %q: %w", in.Name, err)
		}
	}
	return len(starter), nil
}
