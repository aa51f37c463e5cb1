package controllers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/meganoshop/megano-backend/api/responses"
	"github.com/meganoshop/megano-backend/api/validators"
	"github.com/meganoshop/megano-backend/internal/imports"
	"github.com/meganoshop/megano-backend/pkg/config"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
)

type importTriggerRequest struct {
	FileName string `json:"file_name" validate:"required"`
}

// AdminImportTrigger processes one listing file from the import inbox.
func AdminImportTrigger(svc imports.Service, cfg config.ImportConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req importTriggerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name := strings.TrimSpace(req.FileName)
		// refuse anything that could escape the inbox
		if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid file name").
				WithDetails(map[string]any{"field": "file_name"}))
			return
		}

		result, err := svc.ProcessFile(r.Context(), filepath.Join(cfg.InboxDir, name))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
