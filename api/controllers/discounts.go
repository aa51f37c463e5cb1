package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meganoshop/megano-backend/api/responses"
	"github.com/meganoshop/megano-backend/api/validators"
	"github.com/meganoshop/megano-backend/internal/discounts"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
)

// DiscountList serves every configured discount grouped by kind.
func DiscountList(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// DiscountDetail serves one discount addressed by kind and id.
func DiscountDetail(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "discountId"), "discountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload any
		switch kind := chi.URLParam(r, "kind"); kind {
		case discounts.KindProduct:
			payload, err = svc.GetProductDiscount(r.Context(), id)
		case discounts.KindBundle:
			payload, err = svc.GetBundleDiscount(r.Context(), id)
		case discounts.KindCart:
			payload, err = svc.GetCartDiscount(r.Context(), id)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "unknown discount kind").
				WithDetails(map[string]any{"field": "kind"})
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

func AdminProductDiscountCreate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input discounts.ProductDiscountInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateProductDiscount(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func AdminBundleDiscountCreate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input discounts.BundleDiscountInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateBundleDiscount(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func AdminCartDiscountCreate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input discounts.CartDiscountInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateCartDiscount(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func AdminDiscountDelete(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "discountId"), "discountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "kind"), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
