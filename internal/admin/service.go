package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hackfesthq/hackfest-backend/internal/registrations"
	"github.com/hackfesthq/hackfest-backend/internal/teams"
	"github.com/hackfesthq/hackfest-backend/internal/volunteers"
	"github.com/hackfesthq/hackfest-backend/internal/welcome"
	dbmodels "github.com/hackfesthq/hackfest-backend/pkg/db/models"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
)

// RegistrationPage is one page of the registrations table.
type RegistrationPage struct {
	Registrations []registrations.RegistrationDTO `json:"registrations"`
	Total         int64                           `json:"total"`
	Limit         int                             `json:"limit"`
	Offset        int                             `json:"offset"`
}

// RegistrationDetail is the expanded admin view of one registration.
type RegistrationDetail struct {
	Registration *registrations.RegistrationDTO `json:"registration"`
	Team         *teams.TeamDTO                 `json:"team,omitempty"`
	MemberRole   *enums.MemberRole              `json:"member_role,omitempty"`
	Schedule     *volunteers.Schedule           `json:"schedule,omitempty"`
}

// TeamDetail is the expanded admin view of one team.
type TeamDetail struct {
	Team            *teams.TeamDTO         `json:"team"`
	Members         []teams.MemberDTO      `json:"members"`
	PendingRequests []teams.JoinRequestDTO `json:"pending_requests"`
}

// UpdateRegistrationRequest carries the fields an admin may edit.
type UpdateRegistrationRequest struct {
	FullName        *string                 `json:"full_name,omitempty"`
	Phone           *string                 `json:"phone,omitempty"`
	Role            *enums.RegistrationRole `json:"role,omitempty"`
	ExperienceLevel *enums.ExperienceLevel  `json:"experience_level,omitempty"`
	TShirtSize      *enums.TShirtSize       `json:"tshirt_size,omitempty"`
	DietaryNotes    *string                 `json:"dietary_notes,omitempty"`
	Skills          *string                 `json:"skills,omitempty"`
	Expectations    *string                 `json:"expectations,omitempty"`
}

// UpdateWelcomeRequest replaces the welcome email content.
type UpdateWelcomeRequest struct {
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// Stats summarizes the event for the dashboard.
type Stats struct {
	TotalRegistrations int64                   `json:"total_registrations"`
	ByRole             map[string]int64        `json:"by_role"`
	TotalTeams         int64                   `json:"total_teams"`
	PendingRequests    int64                   `json:"pending_requests"`
	TaskBoard          []volunteers.TaskStatus `json:"task_board"`
}

// Service defines the admin dashboard operations.
type Service interface {
	ListRegistrations(ctx context.Context, role *enums.RegistrationRole, limit, offset int) (*RegistrationPage, error)
	GetRegistration(ctx context.Context, id uuid.UUID) (*RegistrationDetail, error)
	UpdateRegistration(ctx context.Context, id uuid.UUID, req UpdateRegistrationRequest) (*registrations.RegistrationDTO, error)
	DeleteRegistration(ctx context.Context, id uuid.UUID) error
	ListTeams(ctx context.Context) ([]teams.TeamDTO, error)
	TeamDetail(ctx context.Context, id uuid.UUID) (*TeamDetail, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error
	VolunteerRoster(ctx context.Context) ([]volunteers.RosterTask, error)
	GetWelcomeMessage(ctx context.Context) (*welcome.MessageDTO, error)
	UpdateWelcomeMessage(ctx context.Context, req UpdateWelcomeRequest, updatedBy uuid.UUID) (*welcome.MessageDTO, error)
	Stats(ctx context.Context) (*Stats, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registrationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Registration, error)
	List(ctx context.Context, role *enums.RegistrationRole, limit, offset int) ([]dbmodels.Registration, error)
	Count(ctx context.Context, role *enums.RegistrationRole) (int64, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
	Update(ctx context.Context, id uuid.UUID, dto registrations.UpdateRegistrationDTO) (*dbmodels.Registration, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type teamRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Team, error)
	ListWithCounts(ctx context.Context) ([]teams.TeamWithCount, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type membershipRepository interface {
	FindByRegistration(ctx context.Context, registrationID uuid.UUID) (*dbmodels.TeamMembership, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]teams.MemberDTO, error)
	DeleteByRegistration(ctx context.Context, registrationID uuid.UUID) error
}

type joinRequestRepository interface {
	ListPendingByTeam(ctx context.Context, teamID uuid.UUID) ([]teams.JoinRequestDTO, error)
	CountPending(ctx context.Context) (int64, error)
}

type availabilityRepository interface {
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]enums.AvailabilityDay, error)
	DeleteByRegistration(ctx context.Context, registrationID uuid.UUID) error
}

type taskAssignmentRepository interface {
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]string, error)
	CountByTask(ctx context.Context) (map[string]int64, error)
	DeleteByRegistration(ctx context.Context, registrationID uuid.UUID) error
}

type welcomeRepository interface {
	Get(ctx context.Context) (*dbmodels.WelcomeMessage, error)
	Upsert(ctx context.Context, subject, body string, updatedBy uuid.UUID) (*dbmodels.WelcomeMessage, error)
}

type volunteerRoster interface {
	Roster(ctx context.Context) ([]volunteers.RosterTask, error)
	TaskBoard(ctx context.Context) ([]volunteers.TaskStatus, error)
}

// ServiceParams bundles the dependencies for the admin service. Factories
// default to the GORM-backed repositories.
type ServiceParams struct {
	TxRunner                txRunner
	RegistrationRepoFactory func(tx *gorm.DB) registrationRepository
	TeamRepoFactory         func(tx *gorm.DB) teamRepository
	MembershipRepoFactory   func(tx *gorm.DB) membershipRepository
	JoinRequestRepoFactory  func(tx *gorm.DB) joinRequestRepository
	AvailabilityRepoFactory func(tx *gorm.DB) availabilityRepository
	TaskRepoFactory         func(tx *gorm.DB) taskAssignmentRepository
	WelcomeRepoFactory      func(tx *gorm.DB) welcomeRepository
	Volunteers              volunteerRoster
}

type service struct {
	tx               txRunner
	registrationRepo func(tx *gorm.DB) registrationRepository
	teamRepo         func(tx *gorm.DB) teamRepository
	membershipRepo   func(tx *gorm.DB) membershipRepository
	joinRepo         func(tx *gorm.DB) joinRequestRepository
	availabilityRepo func(tx *gorm.DB) availabilityRepository
	taskRepo         func(tx *gorm.DB) taskAssignmentRepository
	welcomeRepo      func(tx *gorm.DB) welcomeRepository
	volunteers       volunteerRoster
}

// NewService constructs the admin service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.RegistrationRepoFactory == nil {
		params.RegistrationRepoFactory = func(tx *gorm.DB) registrationRepository {
			return registrations.NewRepository(tx)
		}
	}
	if params.TeamRepoFactory == nil {
		params.TeamRepoFactory = func(tx *gorm.DB) teamRepository {
			return teams.NewRepository(tx)
		}
	}
	if params.MembershipRepoFactory == nil {
		params.MembershipRepoFactory = func(tx *gorm.DB) membershipRepository {
			return teams.NewMembershipRepository(tx)
		}
	}
	if params.JoinRequestRepoFactory == nil {
		params.JoinRequestRepoFactory = func(tx *gorm.DB) joinRequestRepository {
			return teams.NewJoinRequestRepository(tx)
		}
	}
	if params.AvailabilityRepoFactory == nil {
		params.AvailabilityRepoFactory = func(tx *gorm.DB) availabilityRepository {
			return volunteers.NewAvailabilityRepository(tx)
		}
	}
	if params.TaskRepoFactory == nil {
		params.TaskRepoFactory = func(tx *gorm.DB) taskAssignmentRepository {
			return volunteers.NewTaskAssignmentRepository(tx)
		}
	}
	if params.WelcomeRepoFactory == nil {
		params.WelcomeRepoFactory = func(tx *gorm.DB) welcomeRepository {
			return welcome.NewRepository(tx)
		}
	}
	return &service{
		tx:               params.TxRunner,
		registrationRepo: params.RegistrationRepoFactory,
		teamRepo:         params.TeamRepoFactory,
		membershipRepo:   params.MembershipRepoFactory,
		joinRepo:         params.JoinRequestRepoFactory,
		availabilityRepo: params.AvailabilityRepoFactory,
		taskRepo:         params.TaskRepoFactory,
		welcomeRepo:      params.WelcomeRepoFactory,
		volunteers:       params.Volunteers,
	}, nil
}

func (s *service) ListRegistrations(ctx context.Context, role *enums.RegistrationRole, limit, offset int) (*RegistrationPage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var page *RegistrationPage
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.registrationRepo(tx)
		rows, err := repo.List(ctx, role, limit, offset)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list registrations")
		}
		total, err := repo.Count(ctx, role)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count registrations")
		}
		dtos := make([]registrations.RegistrationDTO, 0, len(rows))
		for i := range rows {
			dtos = append(dtos, *registrations.FromModel(&rows[i]))
		}
		page = &RegistrationPage{Registrations: dtos, Total: total, Limit: limit, Offset: offset}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *service) GetRegistration(ctx context.Context, id uuid.UUID) (*RegistrationDetail, error) {
	var detail *RegistrationDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reg, err := s.registrationRepo(tx).FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load registration")
		}
		detail = &RegistrationDetail{Registration: registrations.FromModel(reg)}

		membershipRepo := s.membershipRepo(tx)
		if membership, err := membershipRepo.FindByRegistration(ctx, id); err == nil {
			team, err := s.teamRepo(tx).FindByID(ctx, membership.TeamID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load team")
			}
			members, err := membershipRepo.ListByTeam(ctx, team.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list members")
			}
			detail.Team = teams.TeamFromModel(team, len(members))
			role := membership.Role
			detail.MemberRole = &role
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load membership")
		}

		if reg.Role.IsVolunteer() {
			days, err := s.availabilityRepo(tx).ListByRegistration(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load availability")
			}
			taskIDs, err := s.taskRepo(tx).ListByRegistration(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load task assignments")
			}
			tasks := make([]volunteers.Task, 0, len(taskIDs))
			for _, taskID := range taskIDs {
				if task, ok := volunteers.TaskByID(taskID); ok {
					tasks = append(tasks, task)
				}
			}
			detail.Schedule = &volunteers.Schedule{Availability: days, Tasks: tasks}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) UpdateRegistration(ctx context.Context, id uuid.UUID, req UpdateRegistrationRequest) (*registrations.RegistrationDTO, error) {
	if req.Role != nil && !req.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if req.ExperienceLevel != nil && !req.ExperienceLevel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid experience level")
	}
	if req.TShirtSize != nil && !req.TShirtSize.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid t-shirt size")
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be empty")
	}

	var dto *registrations.RegistrationDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.registrationRepo(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load registration")
		}
		updated, err := repo.Update(ctx, id, registrations.UpdateRegistrationDTO{
			FullName:        req.FullName,
			Phone:           req.Phone,
			Role:            req.Role,
			ExperienceLevel: req.ExperienceLevel,
			TShirtSize:      req.TShirtSize,
			DietaryNotes:    req.DietaryNotes,
			Skills:          req.Skills,
			Expectations:    req.Expectations,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update registration")
		}
		dto = registrations.FromModel(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// DeleteRegistration removes a participant and their dependent rows. Team
// leaders must hand off or delete their team first.
func (s *service) DeleteRegistration(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.registrationRepo(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load registration")
		}

		membershipRepo := s.membershipRepo(tx)
		if membership, err := membershipRepo.FindByRegistration(ctx, id); err == nil {
			if membership.Role == enums.MemberRoleLeader {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "registration leads a team; delete or reassign the team first")
			}
			if err := membershipRepo.DeleteByRegistration(ctx, id); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete membership")
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load membership")
		}

		if err := s.availabilityRepo(tx).DeleteByRegistration(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete availability")
		}
		if err := s.taskRepo(tx).DeleteByRegistration(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete task assignments")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete registration")
		}
		return nil
	})
}

func (s *service) ListTeams(ctx context.Context) ([]teams.TeamDTO, error) {
	var out []teams.TeamDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.teamRepo(tx).ListWithCounts(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list teams")
		}
		out = make([]teams.TeamDTO, 0, len(rows))
		for _, row := range rows {
			team := row.Team
			out = append(out, *teams.TeamFromModel(&team, row.MemberCount))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) TeamDetail(ctx context.Context, id uuid.UUID) (*TeamDetail, error) {
	var detail *TeamDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		team, err := s.teamRepo(tx).FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load team")
		}
		members, err := s.membershipRepo(tx).ListByTeam(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list members")
		}
		pending, err := s.joinRepo(tx).ListPendingByTeam(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending requests")
		}
		detail = &TeamDetail{
			Team:            teams.TeamFromModel(team, len(members)),
			Members:         members,
			PendingRequests: pending,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.teamRepo(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load team")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete team")
		}
		return nil
	})
}

func (s *service) VolunteerRoster(ctx context.Context) ([]volunteers.RosterTask, error) {
	if s.volunteers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "volunteer service not configured")
	}
	return s.volunteers.Roster(ctx)
}

func (s *service) GetWelcomeMessage(ctx context.Context) (*welcome.MessageDTO, error) {
	var dto *welcome.MessageDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		msg, err := s.welcomeRepo(tx).Get(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "welcome message not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load welcome message")
		}
		dto = welcome.FromModel(msg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) UpdateWelcomeMessage(ctx context.Context, req UpdateWelcomeRequest, updatedBy uuid.UUID) (*welcome.MessageDTO, error) {
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject and body are required")
	}

	var dto *welcome.MessageDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		msg, err := s.welcomeRepo(tx).Upsert(ctx, req.Subject, req.Body, updatedBy)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save welcome message")
		}
		dto = welcome.FromModel(msg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	var stats *Stats
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		regRepo := s.registrationRepo(tx)
		total, err := regRepo.Count(ctx, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count registrations")
		}
		byRole, err := regRepo.CountByRole(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count roles")
		}
		teamCount, err := s.teamRepo(tx).Count(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count teams")
		}
		pending, err := s.joinRepo(tx).CountPending(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count pending requests")
		}
		stats = &Stats{
			TotalRegistrations: total,
			ByRole:             byRole,
			TotalTeams:         teamCount,
			PendingRequests:    pending,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.volunteers != nil {
		board, err := s.volunteers.TaskBoard(ctx)
		if err != nil {
			return nil, err
		}
		stats.TaskBoard = board
	}
	return stats, nil
}
