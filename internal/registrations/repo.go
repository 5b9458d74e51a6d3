package registrations

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hackfesthq/hackfest-backend/pkg/db/models"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

// Repository exposes registration-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a registrations repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new registration and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateRegistrationDTO) (*models.Registration, error) {
	reg := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		return nil, err
	}
	return reg, nil
}

// FindByEmail retrieves the registration matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Registration, error) {
	var reg models.Registration
	if err := r.db.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(email)).
		First(&reg).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindByID loads a registration by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var reg models.Registration
	if err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// List returns registrations ordered by creation time, newest first. A
// non-nil role narrows the result to that role.
func (r *Repository) List(ctx context.Context, role *enums.RegistrationRole, limit, offset int) ([]models.Registration, error) {
	var regs []models.Registration
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if role != nil {
		q = q.Where("role = ?", *role)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

// Count returns the total number of registrations, optionally for one role.
func (r *Repository) Count(ctx context.Context, role *enums.RegistrationRole) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Registration{})
	if role != nil {
		q = q.Where("role = ?", *role)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByRole returns totals keyed by registration role.
func (r *Repository) CountByRole(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Role  string
		Total int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Select("role, count(*) as total").
		Group("role").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.Role] = rw.Total
	}
	return out, nil
}

// Update applies the non-nil fields from the DTO.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, dto UpdateRegistrationDTO) (*models.Registration, error) {
	updates := map[string]any{}
	if dto.FullName != nil {
		updates["full_name"] = *dto.FullName
	}
	if dto.Phone != nil {
		updates["phone"] = *dto.Phone
	}
	if dto.Role != nil {
		updates["role"] = *dto.Role
	}
	if dto.ExperienceLevel != nil {
		updates["experience_level"] = *dto.ExperienceLevel
	}
	if dto.TShirtSize != nil {
		updates["tshirt_size"] = *dto.TShirtSize
	}
	if dto.DietaryNotes != nil {
		updates["dietary_notes"] = *dto.DietaryNotes
	}
	if dto.Skills != nil {
		updates["skills"] = *dto.Skills
	}
	if dto.Expectations != nil {
		updates["expectations"] = *dto.Expectations
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).
			Model(&models.Registration{}).
			Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes the registration row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Registration{}, "id = ?", id).Error
}

// UpdateLastLogin refreshes the registration's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdatePasswordHash replaces the stored credential after a reset.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}
