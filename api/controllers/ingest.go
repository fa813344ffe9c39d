package controllers

import (
	"net/http"
	"time"

	"github.com/gajeshbhat/Verkada-API-Integration/api/responses"
	"github.com/gajeshbhat/Verkada-API-Integration/api/validators"
	"github.com/gajeshbhat/Verkada-API-Integration/internal/ingest"
	pkgerrors "github.com/gajeshbhat/Verkada-API-Integration/pkg/errors"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/logger"
)

type ingestRunRequest struct {
	WindowMinutes int `json:"window_minutes,omitempty" validate:"omitempty,min=1,max=1440"`
}

// IngestRun triggers one ingestion cycle. An optional body overrides the
// fetch window for the run.
func IngestRun(svc ingest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ingest service unavailable"))
			return
		}

		var req ingestRunRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		window := time.Duration(req.WindowMinutes) * time.Minute
		summary, err := svc.RunWithWindow(r.Context(), window)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
