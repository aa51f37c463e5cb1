package controllers

import (
	"net/http"

	"github.com/meganoshop/megano-backend/api/responses"
	"github.com/meganoshop/megano-backend/api/validators"
	"github.com/meganoshop/megano-backend/internal/catalog"
	"github.com/meganoshop/megano-backend/pkg/logger"
)

// AdminAttributeCreate defines a characteristic. Names must be unique within
// their group.
func AdminAttributeCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input catalog.AttributeInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateAttribute(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
