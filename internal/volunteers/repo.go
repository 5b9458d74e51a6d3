package volunteers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hackfesthq/hackfest-backend/pkg/db/models"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

// AvailabilityRepository persists the event days a volunteer committed to.
type AvailabilityRepository struct {
	db *gorm.DB
}

// NewAvailabilityRepository constructs an availability repo bound to the provided GORM DB.
func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// Create inserts one availability row per day.
func (r *AvailabilityRepository) Create(ctx context.Context, registrationID uuid.UUID, days []enums.AvailabilityDay) ([]models.VolunteerAvailability, error) {
	rows := make([]models.VolunteerAvailability, 0, len(days))
	for _, day := range days {
		rows = append(rows, models.VolunteerAvailability{
			RegistrationID: registrationID,
			Day:            day,
		})
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByRegistration returns the days a volunteer signed up for, in schedule
// order.
func (r *AvailabilityRepository) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]enums.AvailabilityDay, error) {
	var rows []models.VolunteerAvailability
	if err := r.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	signed := make(map[enums.AvailabilityDay]bool, len(rows))
	for _, row := range rows {
		signed[row.Day] = true
	}
	days := make([]enums.AvailabilityDay, 0, len(rows))
	for _, day := range enums.AvailabilityDays() {
		if signed[day] {
			days = append(days, day)
		}
	}
	return days, nil
}

// DeleteByRegistration removes a volunteer's availability rows.
func (r *AvailabilityRepository) DeleteByRegistration(ctx context.Context, registrationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.VolunteerAvailability{}, "registration_id = ?", registrationID).Error
}

// TaskAssignmentRepository persists the tasks volunteers signed up for.
type TaskAssignmentRepository struct {
	db *gorm.DB
}

// NewTaskAssignmentRepository constructs a task assignment repo bound to the provided GORM DB.
func NewTaskAssignmentRepository(db *gorm.DB) *TaskAssignmentRepository {
	return &TaskAssignmentRepository{db: db}
}

// Create inserts one assignment row per task.
func (r *TaskAssignmentRepository) Create(ctx context.Context, registrationID uuid.UUID, taskIDs []string) ([]models.VolunteerTaskAssignment, error) {
	rows := make([]models.VolunteerTaskAssignment, 0, len(taskIDs))
	for _, taskID := range taskIDs {
		rows = append(rows, models.VolunteerTaskAssignment{
			RegistrationID: registrationID,
			TaskID:         taskID,
		})
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByRegistration returns the task IDs a volunteer signed up for.
func (r *TaskAssignmentRepository) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]string, error) {
	var rows []models.VolunteerTaskAssignment
	if err := r.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TaskID)
	}
	return ids, nil
}

// CountByTask returns signup totals keyed by task ID.
func (r *TaskAssignmentRepository) CountByTask(ctx context.Context) (map[string]int64, error) {
	type row struct {
		TaskID string
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.VolunteerTaskAssignment{}).
		Select("task_id, count(*) as total").
		Group("task_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.TaskID] = rw.Total
	}
	return out, nil
}

// RosterEntry pairs a task assignment with the volunteer's display data.
type RosterEntry struct {
	TaskID         string    `json:"task_id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
}

// Roster returns every task assignment joined with volunteer names.
func (r *TaskAssignmentRepository) Roster(ctx context.Context) ([]RosterEntry, error) {
	var rows []RosterEntry
	if err := r.db.WithContext(ctx).
		Model(&models.VolunteerTaskAssignment{}).
		Select("volunteer_task_assignments.task_id, volunteer_task_assignments.registration_id, registrations.full_name, registrations.email").
		Joins("JOIN registrations ON registrations.id = volunteer_task_assignments.registration_id").
		Order("volunteer_task_assignments.task_id ASC, volunteer_task_assignments.created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteByRegistration removes a volunteer's task assignments.
func (r *TaskAssignmentRepository) DeleteByRegistration(ctx context.Context, registrationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.VolunteerTaskAssignment{}, "registration_id = ?", registrationID).Error
}
