package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meganoshop/megano-backend/api/middleware"
	"github.com/meganoshop/megano-backend/api/responses"
	"github.com/meganoshop/megano-backend/api/validators"
	"github.com/meganoshop/megano-backend/internal/cart"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
)

type cartAddRequest struct {
	SellerProductID string `json:"seller_product_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required,min=1"`
}

type cartUpdateRequest struct {
	Quantity int `json:"quantity"`
}

// CartFetch returns the caller's cart: the persisted one for signed-in users,
// the session one for guests.
func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID := middleware.UserUUIDFromContext(r.Context()); userID != nil {
			dto, err := svc.Get(r.Context(), *userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, dto)
			return
		}

		state := middleware.SessionFromContext(r.Context())
		if state == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session missing"))
			return
		}
		dto, err := svc.GetSession(r.Context(), state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CartAdd puts a listing in the cart, incrementing an existing line.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartAddRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listingID, err := validators.ParsePathUUID(req.SellerProductID, "seller_product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if userID := middleware.UserUUIDFromContext(r.Context()); userID != nil {
			err = svc.AddProduct(r.Context(), *userID, listingID, req.Quantity)
		} else {
			state := middleware.SessionFromContext(r.Context())
			if state == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session missing"))
				return
			}
			err = svc.AddSessionProduct(r.Context(), state, listingID, req.Quantity)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "added"})
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cartUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if userID := middleware.UserUUIDFromContext(r.Context()); userID != nil {
			err = svc.UpdateProduct(r.Context(), *userID, listingID, req.Quantity)
		} else {
			state := middleware.SessionFromContext(r.Context())
			if state == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session missing"))
				return
			}
			err = svc.UpdateSessionProduct(state, listingID, req.Quantity)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// CartRemoveItem drops a line from the cart.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if userID := middleware.UserUUIDFromContext(r.Context()); userID != nil {
			if err := svc.RemoveItem(r.Context(), *userID, listingID); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		} else {
			state := middleware.SessionFromContext(r.Context())
			if state == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session missing"))
				return
			}
			svc.RemoveSessionItem(state, listingID)
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// CartMerge folds the guest session cart into the signed-in user's cart.
// Called by the frontend right after login.
func CartMerge(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to merge carts"))
			return
		}
		state := middleware.SessionFromContext(r.Context())
		if state == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session missing"))
			return
		}

		if err := svc.MergeSessionCart(r.Context(), *userID, state); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), *userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
