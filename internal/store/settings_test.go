package store

import (
	"context"
	"errors"
	"testing"
)

func TestSettings_Roundtrip(t *testing.T) {
	s, ctx := setupTenant(t)

	if _, err := s.GetSettings(ctx, "ai"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound before first save, got %v", err)
	}

	doc := []byte(`{"model":"gpt-4o","temperature":0.7}`)
	if err := s.PutSettings(ctx, "ai", doc); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetSettings(ctx, "ai")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(doc) {
		t.Errorf("got %s", got)
	}

	// Overwrite wins wholesale.
	if err := s.PutSettings(ctx, "ai", []byte(`{"model":"claude"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _ = s.GetSettings(ctx, "ai")
	if string(got) != `{"model":"claude"}` {
		t.Errorf("got %s", got)
	}
}

func TestSettings_DeleteRestoresNotFound(t *testing.T) {
	s, ctx := setupTenant(t)

	if err := s.PutSettings(ctx, "payout", []byte(`{"threshold":100}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.DeleteSettings(ctx, "payout"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetSettings(ctx, "payout"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSettings_PerTenant(t *testing.T) {
	s := setupStore(t)
	base := context.Background()

	t1, _ := s.CreateTenant(base, "One", "one")
	t2, _ := s.CreateTenant(base, "Two", "two")

	if err := s.PutSettings(WithTenant(base, t1.ID), "site_config", []byte(`{"theme":"dark"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, err := s.GetSettings(WithTenant(base, t2.ID), "site_config"); !errors.Is(err, ErrNotFound) {
		t.Errorf("tenant two should not see tenant one settings, got %v", err)
	}
}
