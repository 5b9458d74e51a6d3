package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackfesthq/hackfest-backend/api/middleware"
	"github.com/hackfesthq/hackfest-backend/api/responses"
	"github.com/hackfesthq/hackfest-backend/api/validators"
	"github.com/hackfesthq/hackfest-backend/internal/teams"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
	"github.com/hackfesthq/hackfest-backend/pkg/logger"
)

type joinTeamRequest struct {
	Message *string `json:"message,omitempty"`
}

// TeamsListOpen returns teams that still have room. Public so applicants can
// browse before registering.
func TeamsListOpen(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "team service unavailable"))
			return
		}

		list, err := svc.ListOpen(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// MyTeam returns the caller's team, roster, and (for leaders) pending requests.
func MyTeam(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "team service unavailable"))
			return
		}

		registrationID, err := callerRegistrationID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MyTeam(r.Context(), registrationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// RequestJoinTeam files a pending join request for the caller.
func RequestJoinTeam(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "team service unavailable"))
			return
		}

		registrationID, err := callerRegistrationID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		teamID, err := parseIDParam(r, "teamID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body joinTeamRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := svc.RequestJoin(r.Context(), teamID, registrationID, body.Message)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AcceptJoinRequest resolves a pending request in the requester's favor.
func AcceptJoinRequest(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return resolveJoinRequest(svc, logg, svc.Accept)
}

// RejectJoinRequest declines a pending request.
func RejectJoinRequest(svc teams.Service, logg *logger.Logger) http.HandlerFunc {
	return resolveJoinRequest(svc, logg, svc.Reject)
}

func resolveJoinRequest(svc teams.Service, logg *logger.Logger, resolve func(ctx context.Context, requestID, actorID uuid.UUID, actorIsAdmin bool) (*teams.JoinRequestDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "team service unavailable"))
			return
		}

		actorID, err := callerRegistrationID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := parseIDParam(r, "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := resolve(r.Context(), requestID, actorID, middleware.IsAdminFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func callerRegistrationID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.RegistrationIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing registration context")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid registration context")
	}
	return id, nil
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing "+name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
