package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dealhaven/dealhaven-backend/api/controllers"
	"github.com/dealhaven/dealhaven-backend/api/routes"
	"github.com/dealhaven/dealhaven-backend/internal/cart"
	"github.com/dealhaven/dealhaven-backend/internal/deals"
	"github.com/dealhaven/dealhaven-backend/internal/fulfillment"
	"github.com/dealhaven/dealhaven-backend/internal/gateways"
	"github.com/dealhaven/dealhaven-backend/internal/orders"
	"github.com/dealhaven/dealhaven-backend/internal/purchases"
	"github.com/dealhaven/dealhaven-backend/internal/reconcile"
	internalwebhooks "github.com/dealhaven/dealhaven-backend/internal/webhooks"
	"github.com/dealhaven/dealhaven-backend/pkg/config"
	"github.com/dealhaven/dealhaven-backend/pkg/db"
	"github.com/dealhaven/dealhaven-backend/pkg/easypay"
	"github.com/dealhaven/dealhaven-backend/pkg/liqpay"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
	"github.com/dealhaven/dealhaven-backend/pkg/metrics"
	"github.com/dealhaven/dealhaven-backend/pkg/migrate"
	"github.com/dealhaven/dealhaven-backend/pkg/outbox"
	"github.com/dealhaven/dealhaven-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	liqpayClient, err := liqpay.NewClient(context.Background(), cfg.LiqPay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create liqpay client", err)
		os.Exit(1)
	}
	easypayClient, err := easypay.NewClient(context.Background(), cfg.EasyPay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create easypay client", err)
		os.Exit(1)
	}

	liqpayGateway, err := gateways.NewLiqPayGateway(liqpayClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create liqpay gateway", err)
		os.Exit(1)
	}
	easypayGateway, err := gateways.NewEasyPayGateway(easypayClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create easypay gateway", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	dealsRepo := deals.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	purchasesRepo := purchases.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	ordersService, err := orders.NewService(orders.ServiceParams{
		OrdersRepo: ordersRepo,
		CartRepo:   cartRepo,
		DealsRepo:  dealsRepo,
		Gateways: map[string]orders.PaymentGateway{
			liqpayGateway.Name():  liqpayGateway,
			easypayGateway.Name(): easypayGateway,
		},
		Outbox:            outboxService,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	fulfillmentService, err := fulfillment.NewService(fulfillment.ServiceParams{
		PurchasesRepo:     purchasesRepo,
		DealsRepo:         dealsRepo,
		CartRepo:          cartRepo,
		Outbox:            outboxService,
		TransactionRunner: dbClient,
		Metrics:           webhookMetrics,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	reconciler, err := reconcile.NewService(reconcile.ServiceParams{
		OrdersRepo:        ordersRepo,
		Fulfillment:       fulfillmentService,
		Outbox:            outboxService,
		TransactionRunner: dbClient,
		Metrics:           webhookMetrics,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile service", err)
		os.Exit(1)
	}

	liqpayGuard, err := internalwebhooks.NewIdempotencyGuard(redisClient, cfg.Webhooks.IdempotencyTTL, "webhook:liqpay")
	if err != nil {
		logg.Error(context.Background(), "failed to create liqpay delivery guard", err)
		os.Exit(1)
	}
	easypayGuard, err := internalwebhooks.NewIdempotencyGuard(redisClient, cfg.Webhooks.IdempotencyTTL, "webhook:easypay")
	if err != nil {
		logg.Error(context.Background(), "failed to create easypay delivery guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			MetricsRegistry: registry,
			WebhookMetrics:  webhookMetrics,
			DealsRepo:       dealsRepo,
			CartRepo:        cartRepo,
			PurchasesRepo:   purchasesRepo,
			OrdersService:   ordersService,
			Reconciler:      reconciler,
			LiqPayClient:    liqpayClient,
			EasyPayClient:   easypayClient,
			LiqPayGuard:     liqpayGuard,
			EasyPayGuard:    easypayGuard,
			Readiness: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
