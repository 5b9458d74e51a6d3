package registrations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/hackfesthq/hackfest-backend/internal/teams"
	"github.com/hackfesthq/hackfest-backend/internal/volunteers"
	"github.com/hackfesthq/hackfest-backend/pkg/config"
	"github.com/hackfesthq/hackfest-backend/pkg/db"
	dbmodels "github.com/hackfesthq/hackfest-backend/pkg/db/models"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
	"github.com/hackfesthq/hackfest-backend/pkg/logger"
	"github.com/hackfesthq/hackfest-backend/pkg/mailer"
	"github.com/hackfesthq/hackfest-backend/pkg/metrics"
	"github.com/hackfesthq/hackfest-backend/pkg/security"
)

// RegisterRequest contains the payload required for signing up an attendee.
type RegisterRequest struct {
	FullName        string                  `json:"full_name" validate:"required"`
	Email           string                  `json:"email" validate:"required,email"`
	Password        string                  `json:"password" validate:"required"`
	ConfirmPassword string                  `json:"confirm_password" validate:"required"`
	Phone           *string                 `json:"phone,omitempty"`
	Role            enums.RegistrationRole  `json:"role" validate:"required"`
	ExperienceLevel *enums.ExperienceLevel  `json:"experience_level,omitempty"`
	TShirtSize      *enums.TShirtSize       `json:"tshirt_size,omitempty"`
	DietaryNotes    *string                 `json:"dietary_notes,omitempty"`
	Skills          *string                 `json:"skills,omitempty"`
	Expectations    *string                 `json:"expectations,omitempty"`
	TeamIntent      enums.TeamIntent        `json:"team_intent,omitempty"`
	TeamName        string                  `json:"team_name,omitempty"`
	TeamDescription *string                 `json:"team_description,omitempty"`
	TeamID          *uuid.UUID              `json:"team_id,omitempty"`
	JoinMessage     *string                 `json:"join_message,omitempty"`
	Availability    []enums.AvailabilityDay `json:"availability,omitempty"`
	TaskIDs         []string                `json:"task_ids,omitempty"`
}

// RegisterResponse is returned after the transaction commits. NotificationSent
// reports whether a welcome email was queued for delivery; the send itself
// runs off the request path and never fails the registration.
type RegisterResponse struct {
	Registration     *RegistrationDTO      `json:"registration"`
	Team             *teams.TeamDTO        `json:"team,omitempty"`
	JoinRequest      *teams.JoinRequestDTO `json:"join_request,omitempty"`
	NotificationSent bool                  `json:"notification_sent"`
}

// RegisterService handles the signup transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerRegistrationRepository interface {
	FindByEmail(ctx context.Context, email string) (*dbmodels.Registration, error)
	Create(ctx context.Context, dto CreateRegistrationDTO) (*dbmodels.Registration, error)
}

type registerTeamRepository interface {
	FindByName(ctx context.Context, name string) (*dbmodels.Team, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Team, error)
	Create(ctx context.Context, dto teams.CreateTeamDTO) (*dbmodels.Team, error)
}

type registerMembershipRepository interface {
	Create(ctx context.Context, teamID, registrationID uuid.UUID, role enums.MemberRole) (*dbmodels.TeamMembership, error)
	CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
}

type registerJoinRequestRepository interface {
	Create(ctx context.Context, teamID, registrationID uuid.UUID, message *string) (*dbmodels.TeamJoinRequest, error)
}

type registerAvailabilityRepository interface {
	Create(ctx context.Context, registrationID uuid.UUID, days []enums.AvailabilityDay) ([]dbmodels.VolunteerAvailability, error)
}

type registerTaskRepository interface {
	Create(ctx context.Context, registrationID uuid.UUID, taskIDs []string) ([]dbmodels.VolunteerTaskAssignment, error)
}

type welcomeSource interface {
	Get(ctx context.Context) (*dbmodels.WelcomeMessage, error)
}

// RegisterServiceParams packages the dependencies for the signup flow.
// Repo factories default to the real GORM-backed repositories; tests swap
// them for stubs.
type RegisterServiceParams struct {
	TxRunner                txRunner
	RegistrationRepoFactory func(tx *gorm.DB) registerRegistrationRepository
	TeamRepoFactory         func(tx *gorm.DB) registerTeamRepository
	MembershipRepoFactory   func(tx *gorm.DB) registerMembershipRepository
	JoinRequestRepoFactory  func(tx *gorm.DB) registerJoinRequestRepository
	AvailabilityRepoFactory func(tx *gorm.DB) registerAvailabilityRepository
	TaskRepoFactory         func(tx *gorm.DB) registerTaskRepository
	WelcomeSource           welcomeSource
	Mailer                  mailer.Sender
	Metrics                 *metrics.RegistrationMetrics
	Logger                  *logger.Logger
	PasswordConfig          config.PasswordConfig
	EventConfig             config.EventConfig
}

type registerService struct {
	tx               txRunner
	registrationRepo func(tx *gorm.DB) registerRegistrationRepository
	teamRepo         func(tx *gorm.DB) registerTeamRepository
	membershipRepo   func(tx *gorm.DB) registerMembershipRepository
	joinRequestRepo  func(tx *gorm.DB) registerJoinRequestRepository
	availabilityRepo func(tx *gorm.DB) registerAvailabilityRepository
	taskRepo         func(tx *gorm.DB) registerTaskRepository
	welcome          welcomeSource
	mail             mailer.Sender
	metrics          *metrics.RegistrationMetrics
	logg             *logger.Logger
	passwordCfg      config.PasswordConfig
	eventCfg         config.EventConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Mailer == nil {
		params.Mailer = mailer.Noop{}
	}
	if params.RegistrationRepoFactory == nil {
		params.RegistrationRepoFactory = func(tx *gorm.DB) registerRegistrationRepository {
			return NewRepository(tx)
		}
	}
	if params.TeamRepoFactory == nil {
		params.TeamRepoFactory = func(tx *gorm.DB) registerTeamRepository {
			return teams.NewRepository(tx)
		}
	}
	if params.MembershipRepoFactory == nil {
		params.MembershipRepoFactory = func(tx *gorm.DB) registerMembershipRepository {
			return teams.NewMembershipRepository(tx)
		}
	}
	if params.JoinRequestRepoFactory == nil {
		params.JoinRequestRepoFactory = func(tx *gorm.DB) registerJoinRequestRepository {
			return teams.NewJoinRequestRepository(tx)
		}
	}
	if params.AvailabilityRepoFactory == nil {
		params.AvailabilityRepoFactory = func(tx *gorm.DB) registerAvailabilityRepository {
			return volunteers.NewAvailabilityRepository(tx)
		}
	}
	if params.TaskRepoFactory == nil {
		params.TaskRepoFactory = func(tx *gorm.DB) registerTaskRepository {
			return volunteers.NewTaskAssignmentRepository(tx)
		}
	}
	return &registerService{
		tx:               params.TxRunner,
		registrationRepo: params.RegistrationRepoFactory,
		teamRepo:         params.TeamRepoFactory,
		membershipRepo:   params.MembershipRepoFactory,
		joinRequestRepo:  params.JoinRequestRepoFactory,
		availabilityRepo: params.AvailabilityRepoFactory,
		taskRepo:         params.TaskRepoFactory,
		welcome:          params.WelcomeSource,
		mail:             params.Mailer,
		metrics:          params.Metrics,
		logg:             params.Logger,
		passwordCfg:      params.PasswordConfig,
		eventCfg:         params.EventConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	started := time.Now()

	email, err := s.validate(&req)
	if err != nil {
		s.metrics.ObserveDuration("validation_error", time.Since(started))
		return nil, err
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var (
		registration *dbmodels.Registration
		createdTeam  *dbmodels.Team
		joinRequest  *dbmodels.TeamJoinRequest
	)

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		regRepo := s.registrationRepo(tx)
		teamRepo := s.teamRepo(tx)
		membershipRepo := s.membershipRepo(tx)
		joinRepo := s.joinRequestRepo(tx)
		availabilityRepo := s.availabilityRepo(tx)
		taskRepo := s.taskRepo(tx)

		if _, err := regRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check registration email")
		}

		registration, err = regRepo.Create(ctx, CreateRegistrationDTO{
			Email:           email,
			PasswordHash:    passwordHash,
			FullName:        strings.TrimSpace(req.FullName),
			Phone:           req.Phone,
			Role:            req.Role,
			ExperienceLevel: req.ExperienceLevel,
			TShirtSize:      req.TShirtSize,
			DietaryNotes:    req.DietaryNotes,
			Skills:          req.Skills,
			Expectations:    req.Expectations,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "idx_registrations_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create registration")
		}

		switch req.TeamIntent {
		case enums.TeamIntentCreate:
			if _, err := teamRepo.FindByName(ctx, req.TeamName); err == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "team name already taken")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check team name")
			}
			createdTeam, err = teamRepo.Create(ctx, teams.CreateTeamDTO{
				Name:        strings.TrimSpace(req.TeamName),
				Description: req.TeamDescription,
				CreatedBy:   &registration.ID,
			})
			if err != nil {
				if db.IsUniqueViolation(err, "idx_teams_name") {
					return pkgerrors.New(pkgerrors.CodeConflict, "team name already taken")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create team")
			}
			if _, err := membershipRepo.Create(ctx, createdTeam.ID, registration.ID, enums.MemberRoleLeader); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create leader membership")
			}

		case enums.TeamIntentJoin:
			team, err := teamRepo.FindByID(ctx, *req.TeamID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load team")
			}
			count, err := membershipRepo.CountByTeam(ctx, team.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count team members")
			}
			if count >= int64(team.MaxMembers) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "team is full")
			}
			joinRequest, err = joinRepo.Create(ctx, team.ID, registration.ID, req.JoinMessage)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create join request")
			}
		}

		if req.Role.IsVolunteer() {
			if _, err := availabilityRepo.Create(ctx, registration.ID, req.Availability); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save availability")
			}
			if _, err := taskRepo.Create(ctx, registration.ID, req.TaskIDs); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save task signups")
			}
		}

		return nil
	})
	if txErr != nil {
		s.metrics.ObserveDuration("error", time.Since(started))
		return nil, txErr
	}

	s.metrics.ObserveDuration("success", time.Since(started))
	s.metrics.IncRegistered(registration.Role.String())

	resp := &RegisterResponse{
		Registration:     FromModel(registration),
		NotificationSent: s.queueWelcome(registration),
	}
	if createdTeam != nil {
		resp.Team = teams.TeamFromModel(createdTeam, 1)
	}
	if joinRequest != nil {
		resp.JoinRequest = teams.JoinRequestFromModel(joinRequest)
	}
	return resp, nil
}

func (s *registerService) validate(req *RegisterRequest) (string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "full_name is required")
	}
	minLength := s.passwordCfg.MinLength
	if minLength <= 0 {
		minLength = 6
	}
	if len(req.Password) < minLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "password too short").
			WithDetails(map[string]any{"min_length": minLength})
	}
	if req.Password != req.ConfirmPassword {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}
	if !req.Role.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if req.ExperienceLevel != nil && !req.ExperienceLevel.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid experience level")
	}
	if req.TShirtSize != nil && !req.TShirtSize.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid t-shirt size")
	}

	if req.TeamIntent == "" {
		req.TeamIntent = enums.TeamIntentNone
	}
	if !req.TeamIntent.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid team intent")
	}
	switch req.TeamIntent {
	case enums.TeamIntentCreate:
		if req.Role == enums.RegistrationRoleVolunteer {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "volunteers cannot create a team")
		}
		if strings.TrimSpace(req.TeamName) == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "team_name is required")
		}
	case enums.TeamIntentJoin:
		if req.Role == enums.RegistrationRoleVolunteer {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "volunteers cannot join a team")
		}
		if req.TeamID == nil || *req.TeamID == uuid.Nil {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "team_id is required")
		}
	}

	if req.Role.IsVolunteer() {
		// Both lists are optional; a volunteer may sign up first and
		// commit to days and tasks later.
		seenDays := map[enums.AvailabilityDay]bool{}
		for _, day := range req.Availability {
			if !day.IsValid() {
				return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid availability day").
					WithDetails(map[string]any{"day": day.String()})
			}
			if seenDays[day] {
				return "", pkgerrors.New(pkgerrors.CodeValidation, "duplicate availability day").
					WithDetails(map[string]any{"day": day.String()})
			}
			seenDays[day] = true
		}
		seenTasks := map[string]bool{}
		for _, taskID := range req.TaskIDs {
			if _, ok := volunteers.TaskByID(taskID); !ok {
				return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown task").
					WithDetails(map[string]any{"task_id": taskID})
			}
			if seenTasks[taskID] {
				return "", pkgerrors.New(pkgerrors.CodeValidation, "duplicate task").
					WithDetails(map[string]any{"task_id": taskID})
			}
			seenTasks[taskID] = true
		}
	} else if len(req.Availability) > 0 || len(req.TaskIDs) > 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "availability and tasks require a volunteer role")
	}

	return email, nil
}

// welcomeSendTimeout bounds the whole post-commit delivery, both attempts
// included.
const welcomeSendTimeout = 30 * time.Second

// queueWelcome hands the welcome email to its own goroutine once the
// transaction has committed. The goroutine runs on a fresh context so a slow
// relay never delays the registration response and a client disconnect never
// drops a committed registration's email.
func (s *registerService) queueWelcome(registration *dbmodels.Registration) bool {
	if _, disabled := s.mail.(mailer.Noop); disabled {
		return false
	}
	email, fullName, regID := registration.Email, registration.FullName, registration.ID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), welcomeSendTimeout)
		defer cancel()
		if s.logg != nil {
			ctx = s.logg.WithField(ctx, "registrationID", regID.String())
		}
		s.deliverWelcome(ctx, email, fullName)
	}()
	return true
}

// deliverWelcome loads the configured greeting and sends it. One retry, then
// the failure is logged and counted.
func (s *registerService) deliverWelcome(ctx context.Context, email, fullName string) {
	subject, intro := "", ""
	if s.welcome != nil {
		if msg, err := s.welcome.Get(ctx); err == nil {
			subject, intro = msg.Subject, msg.Body
		} else if !errors.Is(err, gorm.ErrRecordNotFound) && s.logg != nil {
			s.logg.Warn(ctx, "load welcome message: "+err.Error())
		}
	}
	subject, body := mailer.WelcomeEmail(s.eventCfg, subject, intro, fullName)

	var sendErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := s.mail.Send(ctx, email, subject, body); err != nil {
			sendErr = multierr.Append(sendErr, err)
			continue
		}
		s.metrics.IncEmailSent()
		return
	}

	s.metrics.IncEmailFailed()
	if s.logg != nil {
		s.logg.Error(ctx, "welcome email failed", sendErr)
	}
}
