package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meganoshop/megano-backend/api/middleware"
	"github.com/meganoshop/megano-backend/api/responses"
	"github.com/meganoshop/megano-backend/api/validators"
	"github.com/meganoshop/megano-backend/internal/comparison"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
)

// ComparisonTable renders the comparison table for the session's selection.
func ComparisonTable(svc comparison.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := middleware.SessionFromContext(r.Context())
		if state == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session missing"))
			return
		}
		table, err := svc.Build(r.Context(), state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, table)
	}
}

// ComparisonAdd puts a product into the selection. At capacity the oldest
// entry is evicted.
func ComparisonAdd(svc comparison.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := middleware.SessionFromContext(r.Context())
		if state == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session missing"))
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		svc.Add(state, id)
		responses.WriteSuccess(w, map[string]int{"count": svc.Count(state)})
	}
}

// ComparisonRemove drops a product from the selection.
func ComparisonRemove(svc comparison.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := middleware.SessionFromContext(r.Context())
		if state == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session missing"))
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		svc.Remove(state, id)
		responses.WriteSuccess(w, map[string]int{"count": svc.Count(state)})
	}
}

// ComparisonClear empties the selection.
func ComparisonClear(svc comparison.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := middleware.SessionFromContext(r.Context())
		if state == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session missing"))
			return
		}
		svc.Clear(state)
		responses.WriteSuccess(w, map[string]int{"count": 0})
	}
}
