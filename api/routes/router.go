package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealhaven/dealhaven-backend/api/controllers"
	webhookcontrollers "github.com/dealhaven/dealhaven-backend/api/controllers/webhooks"
	"github.com/dealhaven/dealhaven-backend/api/middleware"
	"github.com/dealhaven/dealhaven-backend/internal/cart"
	"github.com/dealhaven/dealhaven-backend/internal/deals"
	"github.com/dealhaven/dealhaven-backend/internal/orders"
	"github.com/dealhaven/dealhaven-backend/internal/purchases"
	internalwebhooks "github.com/dealhaven/dealhaven-backend/internal/webhooks"
	easypaywebhook "github.com/dealhaven/dealhaven-backend/internal/webhooks/easypay"
	liqpaywebhook "github.com/dealhaven/dealhaven-backend/internal/webhooks/liqpay"
	"github.com/dealhaven/dealhaven-backend/pkg/config"
	"github.com/dealhaven/dealhaven-backend/pkg/easypay"
	"github.com/dealhaven/dealhaven-backend/pkg/liqpay"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
	"github.com/dealhaven/dealhaven-backend/pkg/metrics"
)

// Deps carries everything the HTTP surface needs. Gateway clients and guards
// may be nil in reduced deployments; the webhook handlers degrade to
// unverified, unguarded ingestion.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	MetricsRegistry *prometheus.Registry
	WebhookMetrics  *metrics.WebhookMetrics

	DealsRepo     deals.Repository
	CartRepo      cart.Repository
	PurchasesRepo purchases.Repository
	OrdersService *orders.Service
	Reconciler    webhookcontrollers.ReconcileService

	LiqPayClient  *liqpay.Client
	EasyPayClient *easypay.Client
	LiqPayGuard   *internalwebhooks.IdempotencyGuard
	EasyPayGuard  *internalwebhooks.IdempotencyGuard

	Readiness map[string]controllers.Pinger
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Readiness))
	})

	if d.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		var liqpayVerifier interface {
			VerifySignature(data, signature string) bool
		}
		if d.LiqPayClient != nil {
			liqpayVerifier = d.LiqPayClient
		}
		var easypayVerifier interface {
			VerifySignature(body []byte, signature string) bool
		}
		if d.EasyPayClient != nil {
			easypayVerifier = d.EasyPayClient
		}
		var liqpayGuard, easypayGuard webhookcontrollers.DeliveryGuard
		if d.LiqPayGuard != nil {
			liqpayGuard = d.LiqPayGuard
		}
		if d.EasyPayGuard != nil {
			easypayGuard = d.EasyPayGuard
		}

		r.Get("/liqpay", webhookcontrollers.LiqPayEcho())
		r.Post("/liqpay", webhookcontrollers.LiqPayWebhook(
			d.Reconciler, liqpaywebhook.NewProvider(), liqpayVerifier, liqpayGuard,
			cfg.Webhooks, d.WebhookMetrics, logg,
		))
		r.Get("/easypay", webhookcontrollers.EasyPayEcho())
		r.Post("/easypay", webhookcontrollers.EasyPayWebhook(
			d.Reconciler, easypaywebhook.NewProvider(), easypayVerifier, easypayGuard,
			cfg.Webhooks, d.WebhookMetrics, logg,
		))
	})

	r.Route("/api/v1/deals", func(r chi.Router) {
		r.Get("/", controllers.ListDeals(d.DealsRepo, logg))
		r.Get("/{dealID}", controllers.GetDeal(d.DealsRepo, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(d.CartRepo, logg))
			r.Post("/items", controllers.UpsertCartItem(d.CartRepo, logg))
			r.Delete("/items/{dealID}", controllers.RemoveCartItem(d.CartRepo, logg))
		})

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(d.OrdersService, logg))
			r.Get("/", controllers.ListOrders(d.OrdersService, logg))
			r.Get("/{orderNumber}", controllers.GetOrder(d.OrdersService, logg))
		})

		r.Get("/api/v1/purchases", controllers.ListPurchases(d.PurchasesRepo, logg))
	})

	return r
}
