package teams

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbmodels "github.com/hackfesthq/hackfest-backend/pkg/db/models"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
	"github.com/hackfesthq/hackfest-backend/pkg/logger"
	"github.com/hackfesthq/hackfest-backend/pkg/mailer"
	"github.com/hackfesthq/hackfest-backend/pkg/metrics"
)

// MyTeamResponse describes the caller's team, roster, and, for leaders,
// the queue of pending join requests.
type MyTeamResponse struct {
	Team            *TeamDTO         `json:"team"`
	Role            enums.MemberRole `json:"role"`
	Members         []MemberDTO      `json:"members"`
	PendingRequests []JoinRequestDTO `json:"pending_requests,omitempty"`
}

// Service defines the team operations used by the controllers.
type Service interface {
	ListOpen(ctx context.Context) ([]TeamDTO, error)
	ListAll(ctx context.Context) ([]TeamDTO, error)
	MyTeam(ctx context.Context, registrationID uuid.UUID) (*MyTeamResponse, error)
	RequestJoin(ctx context.Context, teamID, registrationID uuid.UUID, message *string) (*JoinRequestDTO, error)
	Accept(ctx context.Context, requestID, actorID uuid.UUID, actorIsAdmin bool) (*JoinRequestDTO, error)
	Reject(ctx context.Context, requestID, actorID uuid.UUID, actorIsAdmin bool) (*JoinRequestDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type teamRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Team, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*dbmodels.Team, error)
	ListOpen(ctx context.Context) ([]TeamWithCount, error)
	ListWithCounts(ctx context.Context) ([]TeamWithCount, error)
}

type membershipRepository interface {
	Create(ctx context.Context, teamID, registrationID uuid.UUID, role enums.MemberRole) (*dbmodels.TeamMembership, error)
	CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
	FindByRegistration(ctx context.Context, registrationID uuid.UUID) (*dbmodels.TeamMembership, error)
	FindLeader(ctx context.Context, teamID uuid.UUID) (*dbmodels.TeamMembership, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]MemberDTO, error)
}

type joinRequestRepository interface {
	Create(ctx context.Context, teamID, registrationID uuid.UUID, message *string) (*dbmodels.TeamJoinRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*dbmodels.TeamJoinRequest, error)
	HasPending(ctx context.Context, teamID, registrationID uuid.UUID) (bool, error)
	ListPendingByTeam(ctx context.Context, teamID uuid.UUID) ([]JoinRequestDTO, error)
	Resolve(ctx context.Context, id uuid.UUID, status enums.JoinRequestStatus, resolvedBy uuid.UUID, at time.Time) error
	RejectPendingForTeam(ctx context.Context, teamID uuid.UUID, resolvedBy uuid.UUID, at time.Time) error
}

type registrationReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Registration, error)
}

// ServiceParams bundles the dependencies for the team service. Factories
// default to the GORM-backed repositories.
type ServiceParams struct {
	TxRunner               txRunner
	TeamRepoFactory        func(tx *gorm.DB) teamRepository
	MembershipRepoFactory  func(tx *gorm.DB) membershipRepository
	JoinRequestRepoFactory func(tx *gorm.DB) joinRequestRepository
	RegistrationReader     registrationReader
	Mailer                 mailer.Sender
	Metrics                *metrics.RegistrationMetrics
	Logger                 *logger.Logger
}

type service struct {
	tx             txRunner
	teamRepo       func(tx *gorm.DB) teamRepository
	membershipRepo func(tx *gorm.DB) membershipRepository
	joinRepo       func(tx *gorm.DB) joinRequestRepository
	registrations  registrationReader
	mail           mailer.Sender
	metrics        *metrics.RegistrationMetrics
	logg           *logger.Logger
}

// NewService constructs a team service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Mailer == nil {
		params.Mailer = mailer.Noop{}
	}
	if params.TeamRepoFactory == nil {
		params.TeamRepoFactory = func(tx *gorm.DB) teamRepository {
			return NewRepository(tx)
		}
	}
	if params.MembershipRepoFactory == nil {
		params.MembershipRepoFactory = func(tx *gorm.DB) membershipRepository {
			return NewMembershipRepository(tx)
		}
	}
	if params.JoinRequestRepoFactory == nil {
		params.JoinRequestRepoFactory = func(tx *gorm.DB) joinRequestRepository {
			return NewJoinRequestRepository(tx)
		}
	}
	return &service{
		tx:             params.TxRunner,
		teamRepo:       params.TeamRepoFactory,
		membershipRepo: params.MembershipRepoFactory,
		joinRepo:       params.JoinRequestRepoFactory,
		registrations:  params.RegistrationReader,
		mail:           params.Mailer,
		metrics:        params.Metrics,
		logg:           params.Logger,
	}, nil
}

func (s *service) ListOpen(ctx context.Context) ([]TeamDTO, error) {
	var rows []TeamWithCount
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var innerErr error
		rows, innerErr = s.teamRepo(tx).ListOpen(ctx)
		return innerErr
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list open teams")
	}
	return teamsFromRows(rows), nil
}

func (s *service) ListAll(ctx context.Context) ([]TeamDTO, error) {
	var rows []TeamWithCount
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var innerErr error
		rows, innerErr = s.teamRepo(tx).ListWithCounts(ctx)
		return innerErr
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list teams")
	}
	return teamsFromRows(rows), nil
}

func (s *service) MyTeam(ctx context.Context, registrationID uuid.UUID) (*MyTeamResponse, error) {
	var resp *MyTeamResponse
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		teamRepo := s.teamRepo(tx)
		membershipRepo := s.membershipRepo(tx)
		joinRepo := s.joinRepo(tx)

		membership, err := membershipRepo.FindByRegistration(ctx, registrationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "not on a team")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load membership")
		}

		team, err := teamRepo.FindByID(ctx, membership.TeamID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load team")
		}
		members, err := membershipRepo.ListByTeam(ctx, team.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list members")
		}

		resp = &MyTeamResponse{
			Team:    TeamFromModel(team, len(members)),
			Role:    membership.Role,
			Members: members,
		}

		if membership.Role == enums.MemberRoleLeader {
			pending, err := joinRepo.ListPendingByTeam(ctx, team.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending requests")
			}
			resp.PendingRequests = pending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *service) RequestJoin(ctx context.Context, teamID, registrationID uuid.UUID, message *string) (*JoinRequestDTO, error) {
	var (
		request *dbmodels.TeamJoinRequest
		team    *dbmodels.Team
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		teamRepo := s.teamRepo(tx)
		membershipRepo := s.membershipRepo(tx)
		joinRepo := s.joinRepo(tx)

		var err error
		team, err = teamRepo.FindByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load team")
		}

		if _, err := membershipRepo.FindByRegistration(ctx, registrationID); err == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "already on a team")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check membership")
		}

		pending, err := joinRepo.HasPending(ctx, teamID, registrationID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check pending request")
		}
		if pending {
			return pkgerrors.New(pkgerrors.CodeConflict, "request already pending")
		}

		count, err := membershipRepo.CountByTeam(ctx, teamID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count members")
		}
		if count >= int64(team.MaxMembers) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "team is full")
		}

		request, err = joinRepo.Create(ctx, teamID, registrationID, message)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create join request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyLeader(ctx, team, registrationID, message)
	return JoinRequestFromModel(request), nil
}

func (s *service) Accept(ctx context.Context, requestID, actorID uuid.UUID, actorIsAdmin bool) (*JoinRequestDTO, error) {
	return s.resolve(ctx, requestID, actorID, actorIsAdmin, enums.JoinRequestStatusAccepted)
}

func (s *service) Reject(ctx context.Context, requestID, actorID uuid.UUID, actorIsAdmin bool) (*JoinRequestDTO, error) {
	return s.resolve(ctx, requestID, actorID, actorIsAdmin, enums.JoinRequestStatusRejected)
}

func (s *service) resolve(ctx context.Context, requestID, actorID uuid.UUID, actorIsAdmin bool, decision enums.JoinRequestStatus) (*JoinRequestDTO, error) {
	var (
		request *dbmodels.TeamJoinRequest
		team    *dbmodels.Team
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		teamRepo := s.teamRepo(tx)
		membershipRepo := s.membershipRepo(tx)
		joinRepo := s.joinRepo(tx)

		var err error
		request, err = joinRepo.FindByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "join request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load join request")
		}
		if request.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already resolved")
		}

		if !actorIsAdmin {
			leader, err := membershipRepo.FindLeader(ctx, request.TeamID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load team leader")
			}
			if leader.RegistrationID != actorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only the team leader can resolve requests")
			}
		}

		now := time.Now().UTC()

		if decision == enums.JoinRequestStatusRejected {
			if err := joinRepo.Resolve(ctx, request.ID, decision, actorID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve request")
			}
			request.Status = decision
			request.ResolvedAt = &now
			return nil
		}

		// Lock the team row before the capacity check so concurrent
		// acceptances serialize.
		team, err = teamRepo.FindByIDForUpdate(ctx, request.TeamID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock team")
		}
		count, err := membershipRepo.CountByTeam(ctx, team.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count members")
		}
		if count >= int64(team.MaxMembers) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "team is full")
		}

		if _, err := membershipRepo.FindByRegistration(ctx, request.RegistrationID); err == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "requester already on a team")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check requester membership")
		}

		if _, err := membershipRepo.Create(ctx, team.ID, request.RegistrationID, enums.MemberRoleMember); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
		}
		if err := joinRepo.Resolve(ctx, request.ID, decision, actorID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve request")
		}
		request.Status = decision
		request.ResolvedAt = &now

		// Acceptance that fills the roster closes out the queue.
		if count+1 >= int64(team.MaxMembers) {
			if err := joinRepo.RejectPendingForTeam(ctx, team.ID, actorID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reject remaining requests")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncJoinResolved(decision.String())
	s.notifyRequester(ctx, request, decision)
	return JoinRequestFromModel(request), nil
}

// notifyLeader emails the team leader about a new join request. Best effort.
func (s *service) notifyLeader(ctx context.Context, team *dbmodels.Team, requesterID uuid.UUID, message *string) {
	if s.registrations == nil || team == nil {
		return
	}
	var leaderReg, requester *dbmodels.Registration
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		leader, err := s.membershipRepo(tx).FindLeader(ctx, team.ID)
		if err != nil {
			return err
		}
		leaderReg, err = s.registrations.FindByID(ctx, leader.RegistrationID)
		if err != nil {
			return err
		}
		requester, err = s.registrations.FindByID(ctx, requesterID)
		return err
	})
	if err != nil {
		s.logWarn(ctx, "load leader for notification: "+err.Error())
		return
	}

	msg := ""
	if message != nil {
		msg = *message
	}
	subject, body := mailer.JoinRequestEmail(team.Name, requester.FullName, msg)
	if err := s.mail.Send(ctx, leaderReg.Email, subject, body); err != nil {
		s.logWarn(ctx, "leader notification failed: "+err.Error())
	}
}

// notifyRequester emails the requester about the decision. Best effort.
func (s *service) notifyRequester(ctx context.Context, request *dbmodels.TeamJoinRequest, decision enums.JoinRequestStatus) {
	if s.registrations == nil || request == nil {
		return
	}
	requester, err := s.registrations.FindByID(ctx, request.RegistrationID)
	if err != nil {
		s.logWarn(ctx, "load requester for notification: "+err.Error())
		return
	}
	var teamName string
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		team, err := s.teamRepo(tx).FindByID(ctx, request.TeamID)
		if err != nil {
			return err
		}
		teamName = team.Name
		return nil
	})
	if err != nil {
		s.logWarn(ctx, "load team for notification: "+err.Error())
		return
	}

	subject, body := mailer.JoinResolvedEmail(teamName, decision == enums.JoinRequestStatusAccepted)
	if err := s.mail.Send(ctx, requester.Email, subject, body); err != nil {
		s.logWarn(ctx, "requester notification failed: "+err.Error())
	}
}

func (s *service) logWarn(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Warn(ctx, msg)
	}
}

func teamsFromRows(rows []TeamWithCount) []TeamDTO {
	out := make([]TeamDTO, 0, len(rows))
	for _, row := range rows {
		team := row.Team
		out = append(out, *TeamFromModel(&team, row.MemberCount))
	}
	return out
}
