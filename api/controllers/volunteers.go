package controllers

import (
	"net/http"

	"github.com/hackfesthq/hackfest-backend/api/responses"
	"github.com/hackfesthq/hackfest-backend/internal/volunteers"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
	"github.com/hackfesthq/hackfest-backend/pkg/logger"
)

// VolunteerTaskBoard lists the task catalog with current fill levels. Public
// so applicants can pick tasks that still have open slots.
func VolunteerTaskBoard(svc *volunteers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "volunteer service unavailable"))
			return
		}

		board, err := svc.TaskBoard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, board)
	}
}

// MyVolunteerSchedule returns the caller's availability and assigned tasks.
func MyVolunteerSchedule(svc *volunteers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "volunteer service unavailable"))
			return
		}

		registrationID, err := callerRegistrationID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		schedule, err := svc.Schedule(r.Context(), registrationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, schedule)
	}
}
