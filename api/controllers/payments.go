package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/meganoshop/megano-backend/api/middleware"
	"github.com/meganoshop/megano-backend/api/responses"
	"github.com/meganoshop/megano-backend/api/validators"
	"github.com/meganoshop/megano-backend/internal/payments"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
)

type paymentRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

func paymentIdentity(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (userID, orderID uuid.UUID, ok bool) {
	user := middleware.UserUUIDFromContext(r.Context())
	if user == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to pay for an order"))
		return uuid.Nil, uuid.Nil, false
	}
	var req paymentRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, uuid.Nil, false
	}
	order, err := validators.ParsePathUUID(req.OrderID, "order_id")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, uuid.Nil, false
	}
	return *user, order, true
}

// PaymentCheckoutSession hands an order to Stripe's hosted checkout and
// returns the redirect URL.
func PaymentCheckoutSession(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orderID, ok := paymentIdentity(w, r, logg)
		if !ok {
			return
		}
		dto, err := svc.CreateCheckoutSession(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// PaymentConfirm marks an order paid after the success redirect. Confirming
// an already-paid order is a no-op.
func PaymentConfirm(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orderID, ok := paymentIdentity(w, r, logg)
		if !ok {
			return
		}
		status, err := svc.ConfirmPayment(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// PaymentCanceled reports the order state after a cancel redirect. Nothing
// is recorded.
func PaymentCanceled(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.UserUUIDFromContext(r.Context())
		if user == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view payment state"))
			return
		}
		orderID, err := validators.ParseQueryUUID(r, "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if orderID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order_id is required").
				WithDetails(map[string]any{"field": "order_id"}))
			return
		}

		status, err := svc.Canceled(r.Context(), *user, *orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
