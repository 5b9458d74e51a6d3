package welcome

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hackfesthq/hackfest-backend/pkg/db/models"
)

// MessageDTO is the transport shape for the editable welcome message.
type MessageDTO struct {
	ID        uuid.UUID `json:"id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository reads and edits the single welcome message row.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a welcome message repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the current welcome message, oldest row wins.
func (r *Repository) Get(ctx context.Context) (*models.WelcomeMessage, error) {
	var msg models.WelcomeMessage
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// Upsert overwrites the welcome message, creating the row if missing.
func (r *Repository) Upsert(ctx context.Context, subject, body string, updatedBy uuid.UUID) (*models.WelcomeMessage, error) {
	existing, err := r.Get(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		msg := &models.WelcomeMessage{
			Subject:   subject,
			Body:      body,
			UpdatedBy: &updatedBy,
		}
		if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
			return nil, err
		}
		return msg, nil
	}

	if err := r.db.WithContext(ctx).
		Model(&models.WelcomeMessage{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{
			"subject":    subject,
			"body":       body,
			"updated_by": updatedBy,
		}).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx)
}

// FromModel converts the row to its transport shape.
func FromModel(m *models.WelcomeMessage) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		ID:        m.ID,
		Subject:   m.Subject,
		Body:      m.Body,
		UpdatedAt: m.UpdatedAt,
	}
}
