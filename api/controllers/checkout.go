package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meganoshop/megano-backend/api/middleware"
	"github.com/meganoshop/megano-backend/api/responses"
	"github.com/meganoshop/megano-backend/api/validators"
	"github.com/meganoshop/megano-backend/internal/checkout"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
	"github.com/meganoshop/megano-backend/pkg/session"
)

func checkoutSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger) *session.State {
	state := middleware.SessionFromContext(r.Context())
	if state == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session missing"))
	}
	return state
}

// CheckoutUserData stores step one of the checkout in the session draft.
func CheckoutUserData(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := checkoutSession(w, r, logg)
		if state == nil {
			return
		}
		var input checkout.UserDataInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		draft, err := svc.SetUserData(state, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// CheckoutDelivery stores step two of the checkout in the session draft.
func CheckoutDelivery(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := checkoutSession(w, r, logg)
		if state == nil {
			return
		}
		var input checkout.DeliveryInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		draft, err := svc.SetDelivery(state, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// CheckoutPayment stores step three of the checkout in the session draft.
func CheckoutPayment(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := checkoutSession(w, r, logg)
		if state == nil {
			return
		}
		var input checkout.PaymentInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		draft, err := svc.SetPayment(state, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// CheckoutConfirm turns the cart plus draft into an order. Placing an order
// requires a signed-in user.
func CheckoutConfirm(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to place an order"))
			return
		}
		state := checkoutSession(w, r, logg)
		if state == nil {
			return
		}
		var input checkout.ConfirmInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Confirm(r.Context(), *userID, state, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderList serves the caller's order history, newest first.
func OrderList(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view orders"))
			return
		}
		orders, err := svc.ListOrders(r.Context(), *userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// OrderDetail serves one of the caller's orders.
func OrderDetail(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view orders"))
			return
		}
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), orderID, *userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
