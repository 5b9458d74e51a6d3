package models

import (
	"time"

	"github.com/google/uuid"
)

// VolunteerTaskAssignment records one task a volunteer signed up for.
// TaskID is a key from the static task catalog, not a foreign key.
type VolunteerTaskAssignment struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegistrationID uuid.UUID `gorm:"column:registration_id;type:uuid;not null;uniqueIndex:idx_volunteer_task_assignments_registration_task,priority:1"`
	TaskID         string    `gorm:"column:task_id;type:text;not null;uniqueIndex:idx_volunteer_task_assignments_registration_task,priority:2"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
