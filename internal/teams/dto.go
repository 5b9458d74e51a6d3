package teams

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackfesthq/hackfest-backend/pkg/db/models"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

// TeamDTO is the transport shape for a team.
type TeamDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	MaxMembers  int       `json:"max_members"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemberDTO describes one roster entry including the member's display data.
type MemberDTO struct {
	RegistrationID uuid.UUID        `json:"registration_id"`
	FullName       string           `json:"full_name"`
	Email          string           `json:"email"`
	Role           enums.MemberRole `json:"role"`
	JoinedAt       time.Time        `json:"joined_at"`
}

// JoinRequestDTO is the transport shape for a join request.
type JoinRequestDTO struct {
	ID             uuid.UUID               `json:"id"`
	TeamID         uuid.UUID               `json:"team_id"`
	RegistrationID uuid.UUID               `json:"registration_id"`
	RequesterName  string                  `json:"requester_name,omitempty"`
	Status         enums.JoinRequestStatus `json:"status"`
	Message        *string                 `json:"message,omitempty"`
	ResolvedAt     *time.Time              `json:"resolved_at,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// CreateTeamDTO holds the data needed to persist a new team.
type CreateTeamDTO struct {
	Name        string
	Description *string
	MaxMembers  int
	CreatedBy   *uuid.UUID
}

func (c CreateTeamDTO) ToModel() *models.Team {
	maxMembers := c.MaxMembers
	if maxMembers <= 0 {
		maxMembers = DefaultMaxMembers
	}
	return &models.Team{
		Name:        c.Name,
		Description: c.Description,
		MaxMembers:  maxMembers,
		CreatedBy:   c.CreatedBy,
	}
}

// TeamFromModel converts a team row plus its member count.
func TeamFromModel(t *models.Team, memberCount int) *TeamDTO {
	if t == nil {
		return nil
	}
	return &TeamDTO{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		MaxMembers:  t.MaxMembers,
		MemberCount: memberCount,
		CreatedAt:   t.CreatedAt,
	}
}

// JoinRequestFromModel converts a join request row.
func JoinRequestFromModel(jr *models.TeamJoinRequest) *JoinRequestDTO {
	if jr == nil {
		return nil
	}
	return &JoinRequestDTO{
		ID:             jr.ID,
		TeamID:         jr.TeamID,
		RegistrationID: jr.RegistrationID,
		Status:         jr.Status,
		Message:        jr.Message,
		ResolvedAt:     jr.ResolvedAt,
		CreatedAt:      jr.CreatedAt,
	}
}
