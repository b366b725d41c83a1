package products

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildAppliesDefaults(t *testing.T) {
	p, err := Fields{Name: "Test", Price: decimal.NewFromInt(100)}.Build(0)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Stock != 0 {
		t.Fatalf("stock = %d, want 0", p.Stock)
	}
	if p.Image != DefaultImage {
		t.Fatalf("image = %q, want %q", p.Image, DefaultImage)
	}
	if !p.Price.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("price = %s", p.Price)
	}
}

func TestBuildReplacesEveryField(t *testing.T) {
	desc, cat, img, stock := "Mjuk", "Herr Mode", "picture/7.jpg", 4
	p, err := Fields{
		Name:        "Tröja",
		Description: &desc,
		Price:       decimal.RequireFromString("299.50"),
		Category:    &cat,
		Stock:       &stock,
		Image:       &img,
	}.Build(9)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := Product{ID: 9, Name: "Tröja", Description: desc, Price: decimal.RequireFromString("299.5"), Category: cat, Stock: 4, Image: img}
	if p.ID != want.ID || p.Name != want.Name || p.Description != want.Description ||
		!p.Price.Equal(want.Price) || p.Category != want.Category || p.Stock != want.Stock || p.Image != want.Image {
		t.Fatalf("got %+v, want %+v", *p, want)
	}

	// a second build without optional fields resets them
	p, err = Fields{Name: "Tröja", Price: decimal.NewFromInt(1)}.Build(9)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Description != "" || p.Category != "" || p.Stock != 0 || p.Image != DefaultImage {
		t.Fatalf("optional fields survived a full replace: %+v", *p)
	}
}

func TestBuildRejectsNegatives(t *testing.T) {
	if _, err := (Fields{Name: "x", Price: decimal.NewFromInt(-1)}).Build(0); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("negative price err = %v", err)
	}
	n := -2
	if _, err := (Fields{Name: "x", Price: decimal.NewFromInt(1), Stock: &n}).Build(0); !errors.Is(err, ErrInvalidStock) {
		t.Fatalf("negative stock err = %v", err)
	}
}
