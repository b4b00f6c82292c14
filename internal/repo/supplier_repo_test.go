package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

func TestSupplierCRUDAndNames(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	if err := CreateSupplier(ctx, db, &domain.Supplier{ID: "A", Name: "Acme"}); err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	if err := CreateSupplier(ctx, db, &domain.Supplier{ID: "B", Name: "Bolt"}); err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	if err := CreateSupplier(ctx, db, &domain.Supplier{ID: "A", Name: "Again"}); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	s, err := GetSupplier(ctx, db, "A")
	if err != nil || s.Name != "Acme" {
		t.Fatalf("GetSupplier=%+v err=%v", s, err)
	}
	if _, err := GetSupplier(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	names, err := SupplierNames(ctx, db, []string{"A", "B", "ghost"})
	if err != nil {
		t.Fatalf("SupplierNames: %v", err)
	}
	if len(names) != 2 || names["A"] != "Acme" || names["B"] != "Bolt" {
		t.Fatalf("unexpected names: %v", names)
	}
	if empty, err := SupplierNames(ctx, db, nil); err != nil || len(empty) != 0 {
		t.Fatalf("expected empty map, got %v %v", empty, err)
	}
}

func TestSupplierDirectory(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()
	if err := CreateSupplier(ctx, db, &domain.Supplier{ID: "A", Name: "Acme"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	dir := SupplierDirectory{DB: db}
	if n, ok := dir.SupplierName(ctx, "A"); !ok || n != "Acme" {
		t.Fatalf("expected Acme, got %q %v", n, ok)
	}
	if _, ok := dir.SupplierName(ctx, "ghost"); ok {
		t.Fatalf("unknown supplier must not resolve")
	}
	if _, ok := (SupplierDirectory{}).SupplierName(ctx, "A"); ok {
		t.Fatalf("directory without DB must not resolve")
	}
}

func TestOpportunityUpsertAndGet(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()
	agency := "GSA"

	o := &domain.Opportunity{ID: "o1", Title: "Furniture", Agency: &agency}
	if err := UpsertOpportunity(ctx, db, o); err != nil {
		t.Fatalf("UpsertOpportunity: %v", err)
	}
	deadline := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	o2 := &domain.Opportunity{ID: "o1", Title: "Furniture (amended)", Agency: &agency, ResponseDeadline: &deadline}
	if err := UpsertOpportunity(ctx, db, o2); err != nil {
		t.Fatalf("UpsertOpportunity again: %v", err)
	}

	got, err := GetOpportunity(ctx, db, "o1")
	if err != nil {
		t.Fatalf("GetOpportunity: %v", err)
	}
	if got.Title != "Furniture (amended)" || got.ResponseDeadline == nil || !got.ResponseDeadline.Equal(deadline) {
		t.Fatalf("upsert did not refresh row: %+v", got)
	}

	var n int64
	db.Model(&domain.Opportunity{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected a single row, got %d", n)
	}
	if _, err := GetOpportunity(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
