package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dealhaven/dealhaven-backend/internal/cart"
	"github.com/dealhaven/dealhaven-backend/internal/deals"
	"github.com/dealhaven/dealhaven-backend/internal/purchases"
	"github.com/dealhaven/dealhaven-backend/internal/reconcile"
	"github.com/dealhaven/dealhaven-backend/pkg/config"
	"github.com/dealhaven/dealhaven-backend/pkg/db/models"
	"github.com/dealhaven/dealhaven-backend/pkg/types"
)

type stubReconciler struct{}

func (stubReconciler) Reconcile(_ context.Context, _ reconcile.Provider, _ types.JSONMap) (*reconcile.Outcome, error) {
	return &reconcile.Outcome{Kind: reconcile.OutcomeUnknownOrder}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Deal{}, &models.CartItem{}, &models.Purchase{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "dealhaven-test"
	cfg.Webhooks.VerifySignature = false

	return NewRouter(Deps{
		Config:        cfg,
		DealsRepo:     deals.NewRepository(db),
		CartRepo:      cart.NewRepository(db),
		PurchasesRepo: purchases.NewRepository(db),
		Reconciler:    stubReconciler{},
	})
}

func TestRouterHealthLive(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-DealHaven-Env") != "test" {
		t.Fatalf("missing env header")
	}
}

func TestRouterWebhookEchoIsPublic(t *testing.T) {
	router := testRouter(t)
	for _, path := range []string{"/api/v1/webhooks/liqpay", "/api/v1/webhooks/easypay"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouterDealsArePublic(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterCartRequiresAuth(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}
}
