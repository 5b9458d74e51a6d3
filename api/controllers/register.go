package controllers

import (
	"net/http"

	"github.com/hackfesthq/hackfest-backend/api/responses"
	"github.com/hackfesthq/hackfest-backend/api/validators"
	"github.com/hackfesthq/hackfest-backend/internal/registrations"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
	"github.com/hackfesthq/hackfest-backend/pkg/logger"
)

// Register handles participant and volunteer signup. The whole workflow
// commits in one transaction; the welcome email is sent afterwards and its
// outcome is reported in the response without affecting the registration.
func Register(svc registrations.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registration service unavailable"))
			return
		}

		var body registrations.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
