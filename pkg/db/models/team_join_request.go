package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

// TeamJoinRequest is a pending ask from a registration to join a team.
type TeamJoinRequest struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TeamID         uuid.UUID               `gorm:"column:team_id;type:uuid;not null"`
	RegistrationID uuid.UUID               `gorm:"column:registration_id;type:uuid;not null"`
	Status         enums.JoinRequestStatus `gorm:"column:status;type:join_request_status;not null;default:'pending'"`
	Message        *string                 `gorm:"column:message"`
	ResolvedByID   *uuid.UUID              `gorm:"column:resolved_by_id;type:uuid"`
	ResolvedAt     *time.Time              `gorm:"column:resolved_at"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
