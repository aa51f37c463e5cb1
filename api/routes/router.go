package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meganoshop/megano-backend/api/controllers"
	"github.com/meganoshop/megano-backend/api/middleware"
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
	"github.com/meganoshop/megano-backend/pkg/config"
	"github.com/meganoshop/megano-backend/pkg/db"
	"github.com/meganoshop/megano-backend/pkg/enums"
	"github.com/meganoshop/megano-backend/pkg/logger"
	"github.com/meganoshop/megano-backend/pkg/metrics"
	"github.com/meganoshop/megano-backend/pkg/redis"
	"github.com/meganoshop/megano-backend/pkg/session"
)

// Services bundles everything the HTTP surface exposes.
type Services struct {
	Catalog    catalog.Service
	Banners    banners.Service
	Discounts  discounts.Service
	Reviews    reviews.Service
	Cart       cart.Service
	Comparison comparison.Service
	Checkout   checkoutsvc.Service
	Payments   payments.Service
	Imports    imports.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessionStore *session.Store,
	sessionChecker authsession.AccessSessionChecker,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// public storefront reads
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, sessionChecker, logg))

		r.Get("/index", controllers.IndexPage(svcs.Catalog, svcs.Banners, logg))
		r.Get("/categories", controllers.CategoryList(svcs.Catalog, logg))
		r.Get("/banners", controllers.BannerList(svcs.Banners, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(svcs.Catalog, logg))
			r.Get("/{productId}", controllers.ProductDetail(svcs.Catalog, logg))
			r.Get("/{productId}/reviews", controllers.ProductReviews(svcs.Reviews, logg))
			r.Post("/{productId}/reviews", controllers.ProductReviewCreate(svcs.Reviews, logg))
		})

		r.Route("/discounts", func(r chi.Router) {
			r.Get("/", controllers.DiscountList(svcs.Discounts, logg))
			r.Get("/{kind}/{discountId}", controllers.DiscountDetail(svcs.Discounts, logg))
		})

		// session-backed storefront state
		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session, sessionStore, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svcs.Cart, logg))
				r.Post("/", controllers.CartAdd(svcs.Cart, logg))
				r.Post("/merge", controllers.CartMerge(svcs.Cart, logg))
				r.Patch("/items/{itemId}", controllers.CartUpdateItem(svcs.Cart, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(svcs.Cart, logg))
			})

			r.Route("/comparison", func(r chi.Router) {
				r.Get("/", controllers.ComparisonTable(svcs.Comparison, logg))
				r.Post("/add/{productId}", controllers.ComparisonAdd(svcs.Comparison, logg))
				r.Post("/remove/{productId}", controllers.ComparisonRemove(svcs.Comparison, logg))
				r.Post("/clear", controllers.ComparisonClear(svcs.Comparison, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/user-data", controllers.CheckoutUserData(svcs.Checkout, logg))
				r.Post("/delivery", controllers.CheckoutDelivery(svcs.Checkout, logg))
				r.Post("/payment", controllers.CheckoutPayment(svcs.Checkout, logg))
				r.Post("/confirm", controllers.CheckoutConfirm(svcs.Checkout, logg))
			})
		})

		// browsing history, order history and the payment flow need a
		// signed-in user
		r.Group(func(r chi.Router) {
			r.Get("/profile/viewed", controllers.ProfileViewed(svcs.Catalog, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(svcs.Checkout, logg))
				r.Get("/{orderId}", controllers.OrderDetail(svcs.Checkout, logg))
			})
			r.Route("/payments", func(r chi.Router) {
				r.Post("/checkout-session", controllers.PaymentCheckoutSession(svcs.Payments, logg))
				r.Post("/confirm", controllers.PaymentConfirm(svcs.Payments, logg))
				r.Get("/canceled", controllers.PaymentCanceled(svcs.Payments, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Route("/discounts", func(r chi.Router) {
			r.Post("/product", controllers.AdminProductDiscountCreate(svcs.Discounts, logg))
			r.Post("/bundle", controllers.AdminBundleDiscountCreate(svcs.Discounts, logg))
			r.Post("/cart", controllers.AdminCartDiscountCreate(svcs.Discounts, logg))
			r.Delete("/{kind}/{discountId}", controllers.AdminDiscountDelete(svcs.Discounts, logg))
		})

		r.Route("/banners", func(r chi.Router) {
			r.Post("/", controllers.AdminBannerCreate(svcs.Banners, logg))
			r.Put("/{bannerId}", controllers.AdminBannerUpdate(svcs.Banners, logg))
			r.Delete("/{bannerId}", controllers.AdminBannerDelete(svcs.Banners, logg))
		})

		r.Post("/attributes", controllers.AdminAttributeCreate(svcs.Catalog, logg))
		r.Post("/imports", controllers.AdminImportTrigger(svcs.Imports, cfg.Import, logg))
	})

	return r
}
