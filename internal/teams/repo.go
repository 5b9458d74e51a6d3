package teams

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hackfesthq/hackfest-backend/pkg/db/models"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

// DefaultMaxMembers is the team size cap applied when none is requested.
const DefaultMaxMembers = 4

// TeamWithCount pairs a team row with its current member count.
type TeamWithCount struct {
	models.Team
	MemberCount int `gorm:"column:member_count"`
}

// Repository exposes team persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a teams repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new team.
func (r *Repository) Create(ctx context.Context, dto CreateTeamDTO) (*models.Team, error) {
	team := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(team).Error; err != nil {
		return nil, err
	}
	return team, nil
}

// FindByID loads a team by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).First(&team, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByIDForUpdate loads a team row under a write lock so capacity checks
// stay correct across concurrent acceptances.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&team, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByName retrieves a team by case-insensitive name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).
		Where("lower(name) = ?", strings.ToLower(name)).
		First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// ListWithCounts returns all teams with their member counts.
func (r *Repository) ListWithCounts(ctx context.Context) ([]TeamWithCount, error) {
	var rows []TeamWithCount
	if err := r.db.WithContext(ctx).
		Model(&models.Team{}).
		Select("teams.*, count(team_memberships.id) as member_count").
		Joins("LEFT JOIN team_memberships ON team_memberships.team_id = teams.id").
		Group("teams.id").
		Order("teams.created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListOpen returns teams that still have room for new members.
func (r *Repository) ListOpen(ctx context.Context) ([]TeamWithCount, error) {
	rows, err := r.ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	open := rows[:0]
	for _, row := range rows {
		if row.MemberCount < row.MaxMembers {
			open = append(open, row)
		}
	}
	return open, nil
}

// Delete removes the team row. Memberships and join requests cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Team{}, "id = ?", id).Error
}

// Count returns the total number of teams.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Team{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MembershipRepository exposes team membership persistence operations.
type MembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository constructs a memberships repo bound to the provided GORM DB.
func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create inserts a membership row.
func (r *MembershipRepository) Create(ctx context.Context, teamID, registrationID uuid.UUID, role enums.MemberRole) (*models.TeamMembership, error) {
	m := &models.TeamMembership{
		TeamID:         teamID,
		RegistrationID: registrationID,
		Role:           role,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// CountByTeam returns the number of members on a team.
func (r *MembershipRepository) CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Where("team_id = ?", teamID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByRegistration returns the membership for a registration, if any.
func (r *MembershipRepository) FindByRegistration(ctx context.Context, registrationID uuid.UUID) (*models.TeamMembership, error) {
	var m models.TeamMembership
	if err := r.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindLeader returns the leader membership of a team.
func (r *MembershipRepository) FindLeader(ctx context.Context, teamID uuid.UUID) (*models.TeamMembership, error) {
	var m models.TeamMembership
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND role = ?", teamID, enums.MemberRoleLeader).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByTeam returns roster entries joined with registration display fields.
func (r *MembershipRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]MemberDTO, error) {
	type row struct {
		RegistrationID uuid.UUID
		FullName       string
		Email          string
		Role           enums.MemberRole
		CreatedAt      time.Time
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Select("team_memberships.registration_id, registrations.full_name, registrations.email, team_memberships.role, team_memberships.created_at").
		Joins("JOIN registrations ON registrations.id = team_memberships.registration_id").
		Where("team_memberships.team_id = ?", teamID).
		Order("team_memberships.created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	members := make([]MemberDTO, 0, len(rows))
	for _, rw := range rows {
		members = append(members, MemberDTO{
			RegistrationID: rw.RegistrationID,
			FullName:       rw.FullName,
			Email:          rw.Email,
			Role:           rw.Role,
			JoinedAt:       rw.CreatedAt,
		})
	}
	return members, nil
}

// DeleteByRegistration removes a registration's membership.
func (r *MembershipRepository) DeleteByRegistration(ctx context.Context, registrationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.TeamMembership{}, "registration_id = ?", registrationID).Error
}

// JoinRequestRepository exposes join request persistence operations.
type JoinRequestRepository struct {
	db *gorm.DB
}

// NewJoinRequestRepository constructs a join request repo bound to the provided GORM DB.
func NewJoinRequestRepository(db *gorm.DB) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

// Create inserts a pending join request.
func (r *JoinRequestRepository) Create(ctx context.Context, teamID, registrationID uuid.UUID, message *string) (*models.TeamJoinRequest, error) {
	jr := &models.TeamJoinRequest{
		TeamID:         teamID,
		RegistrationID: registrationID,
		Status:         enums.JoinRequestStatusPending,
		Message:        message,
	}
	if err := r.db.WithContext(ctx).Create(jr).Error; err != nil {
		return nil, err
	}
	return jr, nil
}

// FindByID loads a join request by its UUID.
func (r *JoinRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.TeamJoinRequest, error) {
	var jr models.TeamJoinRequest
	if err := r.db.WithContext(ctx).First(&jr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &jr, nil
}

// FindByIDForUpdate loads a join request under a write lock.
func (r *JoinRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TeamJoinRequest, error) {
	var jr models.TeamJoinRequest
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&jr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &jr, nil
}

// HasPending reports whether a pending request already exists for the pair.
func (r *JoinRequestRepository) HasPending(ctx context.Context, teamID, registrationID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TeamJoinRequest{}).
		Where("team_id = ? AND registration_id = ? AND status = ?", teamID, registrationID, enums.JoinRequestStatusPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountPending returns the number of unresolved requests across all teams.
func (r *JoinRequestRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TeamJoinRequest{}).
		Where("status = ?", enums.JoinRequestStatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListPendingByTeam returns pending requests with requester names.
func (r *JoinRequestRepository) ListPendingByTeam(ctx context.Context, teamID uuid.UUID) ([]JoinRequestDTO, error) {
	type row struct {
		models.TeamJoinRequest
		FullName string
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.TeamJoinRequest{}).
		Select("team_join_requests.*, registrations.full_name").
		Joins("JOIN registrations ON registrations.id = team_join_requests.registration_id").
		Where("team_join_requests.team_id = ? AND team_join_requests.status = ?", teamID, enums.JoinRequestStatusPending).
		Order("team_join_requests.created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]JoinRequestDTO, 0, len(rows))
	for _, rw := range rows {
		dto := JoinRequestFromModel(&rw.TeamJoinRequest)
		dto.RequesterName = rw.FullName
		out = append(out, *dto)
	}
	return out, nil
}

// Resolve marks the request accepted or rejected.
func (r *JoinRequestRepository) Resolve(ctx context.Context, id uuid.UUID, status enums.JoinRequestStatus, resolvedBy uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.TeamJoinRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"resolved_by_id": resolvedBy,
			"resolved_at":    at,
		}).Error
}

// RejectPendingForTeam rejects every remaining pending request for a team.
// Used when an acceptance fills the roster.
func (r *JoinRequestRepository) RejectPendingForTeam(ctx context.Context, teamID uuid.UUID, resolvedBy uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.TeamJoinRequest{}).
		Where("team_id = ? AND status = ?", teamID, enums.JoinRequestStatusPending).
		Updates(map[string]any{
			"status":         enums.JoinRequestStatusRejected,
			"resolved_by_id": resolvedBy,
			"resolved_at":    at,
		}).Error
}
