package models

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a participant team competing at the event.
type Team struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"type:text;not null;uniqueIndex"`
	Description *string    `gorm:"column:description"`
	MaxMembers  int        `gorm:"column:max_members;not null;default:4"`
	CreatedBy   *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
