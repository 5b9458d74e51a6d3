package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

// Registration represents the canonical attendee identity entity.
type Registration struct {
	ID              uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string                 `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash    string                 `gorm:"column:password_hash;not null"`
	FullName        string                 `gorm:"column:full_name;not null"`
	Phone           *string                `gorm:"column:phone"`
	Role            enums.RegistrationRole `gorm:"column:role;type:registration_role;not null"`
	ExperienceLevel *enums.ExperienceLevel `gorm:"column:experience_level;type:experience_level"`
	TShirtSize      *enums.TShirtSize      `gorm:"column:tshirt_size;type:tshirt_size"`
	DietaryNotes    *string                `gorm:"column:dietary_notes"`
	Skills          *string                `gorm:"column:skills"`
	Expectations    *string                `gorm:"column:expectations"`
	IsAdmin         bool                   `gorm:"column:is_admin;not null;default:false"`
	LastLoginAt     *time.Time             `gorm:"column:last_login_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
