package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meganoshop/megano-backend/api/routes"
	"github.com/meganoshop/megano-backend/internal/banners"
	"github.com/meganoshop/megano-backend/internal/cart"
	"github.com/meganoshop/megano-backend/internal/catalog"
	checkoutsvc "github.com/meganoshop/megano-backend/internal/checkout"
	"github.com/meganoshop/megano-backend/internal/comparison"
	"github.com/meganoshop/megano-backend/internal/discounts"
	"github.com/meganoshop/megano-backend/internal/imports"
	"github.com/meganoshop/megano-backend/internal/payments"
	"github.com/meganoshop/megano-backend/internal/reviews"
	authsession "github.com/meganoshop/megano-backend/pkg/auth/session"
	"github.com/meganoshop/megano-backend/pkg/cache"
	"github.com/meganoshop/megano-backend/pkg/config"
	"github.com/meganoshop/megano-backend/pkg/db"
	"github.com/meganoshop/megano-backend/pkg/logger"
	"github.com/meganoshop/megano-backend/pkg/metrics"
	"github.com/meganoshop/megano-backend/pkg/migrate"
	"github.com/meganoshop/megano-backend/pkg/redis"
	"github.com/meganoshop/megano-backend/pkg/session"
	pkgstripe "github.com/meganoshop/megano-backend/pkg/stripe"
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

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to initialize stripe", err)
		os.Exit(1)
	}

	sessionManager, err := authsession.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	sessionStore, err := session.NewStore(redisClient, cfg.Session.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}

	cacheClient := cache.New(redisClient, cfg.Cache)

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	importMetrics := metrics.NewImportJobMetrics(registry)

	gormDB := dbClient.DB()

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:   catalog.NewRepository(gormDB),
		Cache:  cacheClient,
		Logger: logg,
	})
	exitOnError(logg, "catalog service", err)

	bannerService, err := banners.NewService(banners.ServiceParams{
		Repo:   banners.NewRepository(gormDB),
		Cache:  cacheClient,
		Logger: logg,
	})
	exitOnError(logg, "banner service", err)

	discountService, err := discounts.NewService(discounts.ServiceParams{
		Repo: discounts.NewRepository(gormDB),
	})
	exitOnError(logg, "discount service", err)

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		Repo: reviews.NewRepository(gormDB),
	})
	exitOnError(logg, "review service", err)

	comparisonService, err := comparison.NewService(comparison.ServiceParams{
		Repo: comparison.NewRepository(gormDB),
	})
	exitOnError(logg, "comparison service", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:      cart.NewRepository(gormDB),
		Discounts: discountService,
		Logger:    logg,
	})
	exitOnError(logg, "cart service", err)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Repo: checkoutsvc.NewRepository(gormDB),
		Cart: cartService,
		Tx:   dbClient,
	})
	exitOnError(logg, "checkout service", err)

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:     payments.NewRepository(gormDB),
		Stripe:   payments.NewStripeClient(stripeClient),
		Checkout: cfg.Checkout,
		Logger:   logg,
	})
	exitOnError(logg, "payment service", err)

	importService, err := imports.NewService(imports.ServiceParams{
		Repo:    imports.NewRepository(gormDB),
		Config:  cfg.Import,
		Metrics: importMetrics,
		Logger:  logg,
	})
	exitOnError(logg, "import service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionStore,
			sessionManager,
			registry,
			httpMetrics,
			routes.Services{
				Catalog:    catalogService,
				Banners:    bannerService,
				Discounts:  discountService,
				Reviews:    reviewService,
				Cart:       cartService,
				Comparison: comparisonService,
				Checkout:   checkoutService,
				Payments:   paymentService,
				Imports:    importService,
			},
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
