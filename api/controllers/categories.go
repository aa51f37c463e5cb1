package controllers

import (
	"net/http"

	"github.com/meganoshop/megano-backend/api/responses"
	"github.com/meganoshop/megano-backend/internal/banners"
	"github.com/meganoshop/megano-backend/internal/catalog"
	"github.com/meganoshop/megano-backend/pkg/logger"
)

// CategoryList serves the cached category tree.
func CategoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tree)
	}
}

type indexPayload struct {
	PopularCategories []catalog.PopularCategory `json:"popular_categories"`
	PopularProducts   []catalog.ProductSummary  `json:"popular_products"`
	LimitedProducts   []catalog.ProductSummary  `json:"limited_products"`
	Banners           []banners.DTO             `json:"banners"`
}

// IndexPage aggregates the landing page: top categories, popular and limited
// products, and a random banner pick.
func IndexPage(catalogSvc catalog.Service, bannerSvc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		popularCategories, err := catalogSvc.PopularCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		popularProducts, err := catalogSvc.PopularProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limitedProducts, err := catalogSvc.LimitedProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		picked, err := bannerSvc.Pick(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, indexPayload{
			PopularCategories: popularCategories,
			PopularProducts:   popularProducts,
			LimitedProducts:   limitedProducts,
			Banners:           picked,
		})
	}
}
