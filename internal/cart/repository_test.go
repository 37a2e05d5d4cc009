package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.CartItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUpsertReplacesQuantity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	dealID := uuid.New()

	if _, err := repo.Upsert(ctx, &models.CartItem{ID: uuid.New(), UserID: userID, DealID: dealID, Quantity: 1}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := repo.Upsert(ctx, &models.CartItem{ID: uuid.New(), UserID: userID, DealID: dealID, Quantity: 4}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := repo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", rows[0].Quantity)
	}
}

func TestUpsertValidatesQuantity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)

	if _, err := repo.Upsert(context.Background(), &models.CartItem{UserID: uuid.New(), DealID: uuid.New(), Quantity: 0}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestClearByUserOnlyTouchesThatUser(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	buyer := uuid.New()
	other := uuid.New()

	for _, item := range []*models.CartItem{
		{ID: uuid.New(), UserID: buyer, DealID: uuid.New(), Quantity: 1},
		{ID: uuid.New(), UserID: buyer, DealID: uuid.New(), Quantity: 2},
		{ID: uuid.New(), UserID: other, DealID: uuid.New(), Quantity: 3},
	} {
		if _, err := repo.Upsert(ctx, item); err != nil {
			t.Fatalf("seed cart: %v", err)
		}
	}

	if err := repo.ClearByUser(ctx, buyer); err != nil {
		t.Fatalf("ClearByUser: %v", err)
	}

	mine, err := repo.ListByUser(ctx, buyer)
	if err != nil {
		t.Fatalf("list buyer: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("expected empty cart, got %d rows", len(mine))
	}

	theirs, err := repo.ListByUser(ctx, other)
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(theirs) != 1 {
		t.Fatalf("expected other user's cart untouched, got %d rows", len(theirs))
	}
}

func TestRemoveSingleDeal(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	buyer := uuid.New()
	keep := uuid.New()
	drop := uuid.New()

	for _, item := range []*models.CartItem{
		{ID: uuid.New(), UserID: buyer, DealID: keep, Quantity: 1},
		{ID: uuid.New(), UserID: buyer, DealID: drop, Quantity: 1},
	} {
		if _, err := repo.Upsert(ctx, item); err != nil {
			t.Fatalf("seed cart: %v", err)
		}
	}

	if err := repo.Remove(ctx, buyer, drop); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	rows, err := repo.ListByUser(ctx, buyer)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 1 || rows[0].DealID != keep {
		t.Fatalf("unexpected cart contents: %+v", rows)
	}
}
