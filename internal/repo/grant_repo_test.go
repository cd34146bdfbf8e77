package repo

import (
	"context"
	"testing"

	"github.com/nkoutras/go-study-backend/internal/domain"
)

func TestCreateGrant_And_Get(t *testing.T) {
	db := newRepoDB(t, &domain.CreditGrant{})
	ctx := context.Background()

	rec, err := CreateGrant(ctx, db, "u1", "key-1", "purchase", 25)
	if err != nil {
		t.Fatalf("CreateGrant: %v", err)
	}
	if rec.ID == "" || rec.Amount != 25 || rec.Source != "purchase" {
		t.Fatalf("unexpected grant: %+v", rec)
	}

	got, err := GetGrant(ctx, db, "u1", "key-1")
	if err != nil {
		t.Fatalf("GetGrant: %v", err)
	}
	if got.ID != rec.ID {
		t.Fatalf("round-trip mismatch: %+v vs %+v", got, rec)
	}
}

func TestCreateGrant_DuplicateKey(t *testing.T) {
	db := newRepoDB(t, &domain.CreditGrant{})
	ctx := context.Background()

	if _, err := CreateGrant(ctx, db, "u1", "key-1", "promo", 5); err != nil {
		t.Fatalf("first CreateGrant: %v", err)
	}
	if _, err := CreateGrant(ctx, db, "u1", "key-1", "promo", 5); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// Same key for a different user is a distinct grant.
	if _, err := CreateGrant(ctx, db, "u2", "key-1", "promo", 5); err != nil {
		t.Fatalf("cross-user CreateGrant: %v", err)
	}
}

func TestGetGrant_NotFoundAndEmptyKey(t *testing.T) {
	db := newRepoDB(t, &domain.CreditGrant{})
	ctx := context.Background()

	if _, err := GetGrant(ctx, db, "u1", "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := GetGrant(ctx, db, "u1", "  "); err != ErrNotFound {
		t.Fatalf("blank key must behave as not found, got %v", err)
	}
}
