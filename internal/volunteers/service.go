package volunteers

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackfesthq/hackfest-backend/pkg/enums"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
)

// TaskStatus pairs a catalog task with its current signup level.
type TaskStatus struct {
	Task
	SignedUp  int64 `json:"signed_up"`
	SlotsLeft int   `json:"slots_left"`
}

// RosterTask groups the volunteers signed up for one catalog task.
type RosterTask struct {
	Task
	Volunteers []RosterEntry `json:"volunteers"`
}

// Schedule describes one volunteer's commitments.
type Schedule struct {
	Availability []enums.AvailabilityDay `json:"availability"`
	Tasks        []Task                  `json:"tasks"`
}

type availabilityReader interface {
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]enums.AvailabilityDay, error)
}

type taskAssignmentReader interface {
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]string, error)
	CountByTask(ctx context.Context) (map[string]int64, error)
	Roster(ctx context.Context) ([]RosterEntry, error)
}

// Service exposes read views over volunteer signups.
type Service struct {
	availability availabilityReader
	assignments  taskAssignmentReader
}

// NewService constructs a volunteer service over the given repositories.
func NewService(availability availabilityReader, assignments taskAssignmentReader) *Service {
	return &Service{availability: availability, assignments: assignments}
}

// TaskBoard returns the catalog with signup counts and remaining slots.
func (s *Service) TaskBoard(ctx context.Context) ([]TaskStatus, error) {
	counts, err := s.assignments.CountByTask(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count task signups")
	}
	board := make([]TaskStatus, 0, len(Catalog()))
	for _, task := range Catalog() {
		signedUp := counts[task.ID]
		left := task.Slots - int(signedUp)
		if left < 0 {
			left = 0
		}
		board = append(board, TaskStatus{Task: task, SignedUp: signedUp, SlotsLeft: left})
	}
	return board, nil
}

// Roster returns every catalog task with the volunteers signed up for it.
// Tasks with no signups are included with an empty volunteer list.
func (s *Service) Roster(ctx context.Context) ([]RosterTask, error) {
	entries, err := s.assignments.Roster(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load volunteer roster")
	}
	byTask := make(map[string][]RosterEntry, len(Catalog()))
	for _, entry := range entries {
		byTask[entry.TaskID] = append(byTask[entry.TaskID], entry)
	}
	roster := make([]RosterTask, 0, len(Catalog()))
	for _, task := range Catalog() {
		volunteers := byTask[task.ID]
		if volunteers == nil {
			volunteers = []RosterEntry{}
		}
		roster = append(roster, RosterTask{Task: task, Volunteers: volunteers})
	}
	return roster, nil
}

// Schedule returns one volunteer's availability and task details.
func (s *Service) Schedule(ctx context.Context, registrationID uuid.UUID) (*Schedule, error) {
	days, err := s.availability.ListByRegistration(ctx, registrationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load availability")
	}
	taskIDs, err := s.assignments.ListByRegistration(ctx, registrationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load task assignments")
	}
	tasks := make([]Task, 0, len(taskIDs))
	for _, id := range taskIDs {
		if task, ok := TaskByID(id); ok {
			tasks = append(tasks, task)
		}
	}
	return &Schedule{Availability: days, Tasks: tasks}, nil
}
