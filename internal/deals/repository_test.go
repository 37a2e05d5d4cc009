package deals

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
	pkgerrors "github.com/dealhaven/dealhaven-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:deals_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Deal{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRecordSaleMovesStockToSold(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	deal := &models.Deal{ID: uuid.New(), Title: "flash widget", PriceCents: 1000, StockQuantity: 5}
	if err := db.Create(deal).Error; err != nil {
		t.Fatalf("seed deal: %v", err)
	}

	sold, err := repo.RecordSale(ctx, deal.ID, 2)
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if !sold {
		t.Fatal("expected sale to be recorded")
	}

	var loaded models.Deal
	if err := db.First(&loaded, "id = ?", deal.ID).Error; err != nil {
		t.Fatalf("load deal: %v", err)
	}
	if loaded.StockQuantity != 3 || loaded.SoldQuantity != 2 {
		t.Fatalf("unexpected counters: stock=%d sold=%d", loaded.StockQuantity, loaded.SoldQuantity)
	}
}

func TestRecordSaleRefusesToOversell(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	deal := &models.Deal{ID: uuid.New(), Title: "scarce widget", PriceCents: 1000, StockQuantity: 1}
	if err := db.Create(deal).Error; err != nil {
		t.Fatalf("seed deal: %v", err)
	}

	sold, err := repo.RecordSale(ctx, deal.ID, 2)
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if sold {
		t.Fatal("expected sale to be refused when stock is insufficient")
	}

	var loaded models.Deal
	if err := db.First(&loaded, "id = ?", deal.ID).Error; err != nil {
		t.Fatalf("load deal: %v", err)
	}
	if loaded.StockQuantity != 1 || loaded.SoldQuantity != 0 {
		t.Fatalf("counters changed on refused sale: stock=%d sold=%d", loaded.StockQuantity, loaded.SoldQuantity)
	}
}

func TestRecordSaleUnknownDeal(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)

	sold, err := repo.RecordSale(context.Background(), uuid.New(), 1)
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if sold {
		t.Fatal("expected no sale for unknown deal")
	}
}

func TestRecordSaleValidatesQuantity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)

	_, err := repo.RecordSale(context.Background(), uuid.New(), 0)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListActiveOnly(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	live := &models.Deal{ID: uuid.New(), Title: "live", PriceCents: 100, Active: true}
	retired := &models.Deal{ID: uuid.New(), Title: "retired", PriceCents: 100, Active: true}
	for _, deal := range []*models.Deal{live, retired} {
		if err := db.Create(deal).Error; err != nil {
			t.Fatalf("seed deal: %v", err)
		}
	}
	if err := db.Model(retired).Update("active", false).Error; err != nil {
		t.Fatalf("retire deal: %v", err)
	}

	rows, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "live" {
		t.Fatalf("unexpected active deals: %+v", rows)
	}

	all, err := repo.List(ctx, false)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 deals, got %d", len(all))
	}
}
