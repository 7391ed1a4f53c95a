package store

import (
	"errors"
	"testing"
)

func TestProductRoundtrip(t *testing.T) {
	s, ctx := setupTenant(t)

	p, err := s.CreateProduct(ctx, "Canvas Tote", "Everyday carry", 2400, []ProductVariant{
		{SKU: "TOTE-NAT", Option: "Natural", PriceCents: 2400, InStock: true},
		{SKU: "TOTE-BLK", Option: "Black", PriceCents: 2600, InStock: true},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Canvas Tote" || got.PriceCents != 2400 {
		t.Errorf("got %+v", got)
	}
	if len(got.Variants) != 2 || got.Variants[1].PriceCents != 2600 {
		t.Errorf("variants not preserved: %+v", got.Variants)
	}

	list, err := s.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d products", len(list))
	}
}

func TestCreateReview_RequiresProduct(t *testing.T) {
	s, ctx := setupTenant(t)

	if _, err := s.CreateReview(ctx, "missing-product", "Alex", 5, "Great"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	p, err := s.CreateProduct(ctx, "Mug", "", 1200, nil)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	r, err := s.CreateReview(ctx, p.ID, "Alex", 4, "Solid mug")
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if r.Rating != 4 {
		t.Errorf("rating = %d", r.Rating)
	}

	reviews, err := s.ListReviews(ctx, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Author != "Alex" {
		t.Errorf("got %+v", reviews)
	}
}
