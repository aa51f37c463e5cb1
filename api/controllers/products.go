package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meganoshop/megano-backend/api/middleware"
	"github.com/meganoshop/megano-backend/api/responses"
	"github.com/meganoshop/megano-backend/api/validators"
	"github.com/meganoshop/megano-backend/internal/catalog"
	"github.com/meganoshop/megano-backend/internal/reviews"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
	"github.com/meganoshop/megano-backend/pkg/pagination"
)

// ProductList serves the filtered catalog listing.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, params, err := parseProductQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProducts(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseProductQuery(r *http.Request) (catalog.ProductFilter, pagination.Params, error) {
	var filter catalog.ProductFilter

	categoryID, err := validators.ParseQueryUUID(r, "category")
	if err != nil {
		return filter, pagination.Params{}, err
	}
	filter.CategoryID = categoryID

	if filter.PriceMin, err = validators.ParseQueryDecimal(r, "price_min"); err != nil {
		return filter, pagination.Params{}, err
	}
	if filter.PriceMax, err = validators.ParseQueryDecimal(r, "price_max"); err != nil {
		return filter, pagination.Params{}, err
	}
	if filter.InStock, err = validators.ParseQueryBool(r, "in_stock"); err != nil {
		return filter, pagination.Params{}, err
	}
	if filter.FreeDelivery, err = validators.ParseQueryBool(r, "free_delivery"); err != nil {
		return filter, pagination.Params{}, err
	}
	if filter.Descending, err = validators.ParseQueryBool(r, "desc"); err != nil {
		return filter, pagination.Params{}, err
	}

	filter.Title = strings.TrimSpace(r.URL.Query().Get("title"))
	filter.Tag = strings.TrimSpace(r.URL.Query().Get("tag"))

	switch sort := strings.TrimSpace(r.URL.Query().Get("sort")); sort {
	case "", catalog.SortPrice, catalog.SortNewest, catalog.SortReviews, catalog.SortPopularity:
		filter.Sort = sort
	default:
		return filter, pagination.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort key").
			WithDetails(map[string]any{"field": "sort"})
	}

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 100000)
	if err != nil {
		return filter, pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return filter, pagination.Params{}, err
	}

	return filter, pagination.Params{Page: page, Limit: limit}, nil
}

// ProductDetail serves one product with its listings and attributes. When the
// caller is authenticated the view lands in their browsing history.
func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetProduct(r.Context(), id, middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ProductReviews lists a product's reviews newest first.
func ProductReviews(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByProduct(r.Context(), id, pagination.Params{Page: page, Limit: limit})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type reviewCreateRequest struct {
	AuthorName string `json:"author_name" validate:"required"`
	Body       string `json:"body" validate:"required"`
}

// ProductReviewCreate posts a review on behalf of the authenticated user.
func ProductReviewCreate(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reviewCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := reviews.CreateInput{
			ProductID:  id,
			AuthorName: req.AuthorName,
			Body:       req.Body,
		}
		if userID := middleware.UserUUIDFromContext(r.Context()); userID != nil {
			input.UserID = *userID
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
