package models

import (
	"time"

	"github.com/google/uuid"
)

// WelcomeMessage holds the editable copy used in post-registration emails.
// A single row is kept; admins overwrite it in place.
type WelcomeMessage struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Subject   string     `gorm:"column:subject;not null"`
	Body      string     `gorm:"column:body;not null"`
	UpdatedBy *uuid.UUID `gorm:"column:updated_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
