package registrations

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackfesthq/hackfest-backend/pkg/db/models"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

// RegistrationDTO is the transport shape that omits sensitive credentials.
type RegistrationDTO struct {
	ID              uuid.UUID              `json:"id"`
	Email           string                 `json:"email"`
	FullName        string                 `json:"full_name"`
	Phone           *string                `json:"phone,omitempty"`
	Role            enums.RegistrationRole `json:"role"`
	ExperienceLevel *enums.ExperienceLevel `json:"experience_level,omitempty"`
	TShirtSize      *enums.TShirtSize      `json:"tshirt_size,omitempty"`
	DietaryNotes    *string                `json:"dietary_notes,omitempty"`
	Skills          *string                `json:"skills,omitempty"`
	Expectations    *string                `json:"expectations,omitempty"`
	IsAdmin         bool                   `json:"is_admin,omitempty"`
	LastLoginAt     *time.Time             `json:"last_login_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// CreateRegistrationDTO holds the data required by the repo to persist a new registration.
type CreateRegistrationDTO struct {
	Email           string
	PasswordHash    string
	FullName        string
	Phone           *string
	Role            enums.RegistrationRole
	ExperienceLevel *enums.ExperienceLevel
	TShirtSize      *enums.TShirtSize
	DietaryNotes    *string
	Skills          *string
	Expectations    *string
	IsAdmin         bool
}

// UpdateRegistrationDTO carries the mutable fields for admin edits. Nil
// pointers leave the column untouched.
type UpdateRegistrationDTO struct {
	FullName        *string
	Phone           *string
	Role            *enums.RegistrationRole
	ExperienceLevel *enums.ExperienceLevel
	TShirtSize      *enums.TShirtSize
	DietaryNotes    *string
	Skills          *string
	Expectations    *string
}

func FromModel(r *models.Registration) *RegistrationDTO {
	if r == nil {
		return nil
	}

	return &RegistrationDTO{
		ID:              r.ID,
		Email:           r.Email,
		FullName:        r.FullName,
		Phone:           r.Phone,
		Role:            r.Role,
		ExperienceLevel: r.ExperienceLevel,
		TShirtSize:      r.TShirtSize,
		DietaryNotes:    r.DietaryNotes,
		Skills:          r.Skills,
		Expectations:    r.Expectations,
		IsAdmin:         r.IsAdmin,
		LastLoginAt:     r.LastLoginAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (c CreateRegistrationDTO) ToModel() *models.Registration {
	return &models.Registration{
		Email:           c.Email,
		PasswordHash:    c.PasswordHash,
		FullName:        c.FullName,
		Phone:           c.Phone,
		Role:            c.Role,
		ExperienceLevel: c.ExperienceLevel,
		TShirtSize:      c.TShirtSize,
		DietaryNotes:    c.DietaryNotes,
		Skills:          c.Skills,
		Expectations:    c.Expectations,
		IsAdmin:         c.IsAdmin,
	}
}
