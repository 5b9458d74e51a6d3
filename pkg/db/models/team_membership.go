package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

// TeamMembership links a registration with a team and captures their role.
type TeamMembership struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TeamID         uuid.UUID        `gorm:"column:team_id;type:uuid;not null;uniqueIndex:idx_team_memberships_team_registration,priority:1"`
	RegistrationID uuid.UUID        `gorm:"column:registration_id;type:uuid;not null;uniqueIndex:idx_team_memberships_team_registration,priority:2"`
	Role           enums.MemberRole `gorm:"column:role;type:member_role;not null"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
