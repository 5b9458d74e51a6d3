package volunteers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

type stubAvailabilityReader struct {
	days map[uuid.UUID][]enums.AvailabilityDay
}

func (s *stubAvailabilityReader) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]enums.AvailabilityDay, error) {
	return s.days[registrationID], nil
}

type stubAssignmentReader struct {
	byRegistration map[uuid.UUID][]string
	counts         map[string]int64
	roster         []RosterEntry
}

func (s *stubAssignmentReader) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]string, error) {
	return s.byRegistration[registrationID], nil
}

func (s *stubAssignmentReader) CountByTask(ctx context.Context) (map[string]int64, error) {
	return s.counts, nil
}

func (s *stubAssignmentReader) Roster(ctx context.Context) ([]RosterEntry, error) {
	return s.roster, nil
}

func TestTaskBoardReportsFillLevels(t *testing.T) {
	svc := NewService(
		&stubAvailabilityReader{},
		&stubAssignmentReader{counts: map[string]int64{"1": 2, "2": 99}},
	)

	board, err := svc.TaskBoard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, len(Catalog()))

	byID := map[string]TaskStatus{}
	for _, status := range board {
		byID[status.ID] = status
	}

	first := byID["1"]
	assert.EqualValues(t, 2, first.SignedUp)
	assert.Equal(t, first.Slots-2, first.SlotsLeft)

	// Oversubscribed tasks report zero, never negative.
	assert.Equal(t, 0, byID["2"].SlotsLeft)

	// Untouched tasks keep their full capacity.
	third := byID["3"]
	assert.EqualValues(t, 0, third.SignedUp)
	assert.Equal(t, third.Slots, third.SlotsLeft)
}

func TestRosterGroupsByCatalogTask(t *testing.T) {
	regID := uuid.New()
	svc := NewService(
		&stubAvailabilityReader{},
		&stubAssignmentReader{roster: []RosterEntry{
			{TaskID: "5", RegistrationID: regID, FullName: "Sam Kato", Email: "sam@example.com"},
		}},
	)

	roster, err := svc.Roster(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, len(Catalog()))

	for _, group := range roster {
		require.NotNil(t, group.Volunteers)
		if group.ID == "5" {
			require.Len(t, group.Volunteers, 1)
			assert.Equal(t, "Sam Kato", group.Volunteers[0].FullName)
		} else {
			assert.Empty(t, group.Volunteers)
		}
	}
}

func TestScheduleResolvesTaskDetails(t *testing.T) {
	regID := uuid.New()
	svc := NewService(
		&stubAvailabilityReader{days: map[uuid.UUID][]enums.AvailabilityDay{
			regID: {enums.AvailabilityDaySetup, enums.AvailabilityDayOne},
		}},
		&stubAssignmentReader{byRegistration: map[uuid.UUID][]string{
			regID: {"1", "12"},
		}},
	)

	schedule, err := svc.Schedule(context.Background(), regID)
	require.NoError(t, err)
	assert.Len(t, schedule.Availability, 2)
	require.Len(t, schedule.Tasks, 2)
	assert.Equal(t, "1", schedule.Tasks[0].ID)
	assert.NotEmpty(t, schedule.Tasks[0].Name)
	assert.NotEmpty(t, schedule.Tasks[1].Category)
}

func TestScheduleEmptyForNonVolunteer(t *testing.T) {
	svc := NewService(
		&stubAvailabilityReader{},
		&stubAssignmentReader{},
	)

	schedule, err := svc.Schedule(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, schedule.Availability)
	assert.Empty(t, schedule.Tasks)
}
