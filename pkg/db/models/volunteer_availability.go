package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

// VolunteerAvailability records one event day a volunteer committed to.
type VolunteerAvailability struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegistrationID uuid.UUID             `gorm:"column:registration_id;type:uuid;not null;uniqueIndex:idx_volunteer_availability_registration_day,priority:1"`
	Day            enums.AvailabilityDay `gorm:"column:day;type:text;not null;uniqueIndex:idx_volunteer_availability_registration_day,priority:2"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (VolunteerAvailability) TableName() string {
	return "volunteer_availability"
}
