package teams

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbmodels "github.com/hackfesthq/hackfest-backend/pkg/db/models"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

func setupTeamsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS registrations (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL,
  experience_level TEXT,
  tshirt_size TEXT,
  dietary_notes TEXT,
  skills TEXT,
  expectations TEXT,
  is_admin INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS teams (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  max_members INTEGER NOT NULL DEFAULT 4,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_teams_name ON teams (lower(name));`, `
CREATE TABLE IF NOT EXISTS team_memberships (
  id TEXT PRIMARY KEY,
  team_id TEXT NOT NULL,
  registration_id TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_team_memberships_registration ON team_memberships (registration_id);`, `
CREATE TABLE IF NOT EXISTS team_join_requests (
  id TEXT PRIMARY KEY,
  team_id TEXT NOT NULL,
  registration_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  message TEXT,
  resolved_by_id TEXT,
  resolved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedRegistration(t *testing.T, conn *gorm.DB, email, fullName string) *dbmodels.Registration {
	t.Helper()
	reg := &dbmodels.Registration{
		Email:        email,
		PasswordHash: "hash",
		FullName:     fullName,
		Role:         enums.RegistrationRoleParticipant,
	}
	require.NoError(t, conn.Create(reg).Error)
	return reg
}

func TestTeamRepositoryFindByNameCaseInsensitive(t *testing.T) {
	conn := setupTeamsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateTeamDTO{Name: "Bit Crushers"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxMembers, created.MaxMembers)

	found, err := repo.FindByName(ctx, "bit crushers")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.Create(ctx, CreateTeamDTO{Name: "BIT CRUSHERS"})
	require.Error(t, err)
}

func TestTeamRepositoryListOpenFiltersFull(t *testing.T) {
	conn := setupTeamsTestDB(t)
	repo := NewRepository(conn)
	members := NewMembershipRepository(conn)
	ctx := context.Background()

	full, err := repo.Create(ctx, CreateTeamDTO{Name: "Full House", MaxMembers: 2})
	require.NoError(t, err)
	open, err := repo.Create(ctx, CreateTeamDTO{Name: "Open Seats", MaxMembers: 4})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		reg := seedRegistration(t, conn, fmt.Sprintf("full%d@example.com", i), "Full Member")
		_, err := members.Create(ctx, full.ID, reg.ID, enums.MemberRoleMember)
		require.NoError(t, err)
	}
	reg := seedRegistration(t, conn, "open@example.com", "Open Member")
	_, err = members.Create(ctx, open.ID, reg.ID, enums.MemberRoleLeader)
	require.NoError(t, err)

	all, err := repo.ListWithCounts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	openTeams, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, openTeams, 1)
	assert.Equal(t, open.ID, openTeams[0].ID)
	assert.Equal(t, 1, openTeams[0].MemberCount)
}

func TestMembershipRepositoryRoster(t *testing.T) {
	conn := setupTeamsTestDB(t)
	repo := NewRepository(conn)
	members := NewMembershipRepository(conn)
	ctx := context.Background()

	team, err := repo.Create(ctx, CreateTeamDTO{Name: "Bit Crushers"})
	require.NoError(t, err)

	leaderReg := seedRegistration(t, conn, "lena@example.com", "Lena Ortiz")
	memberReg := seedRegistration(t, conn, "sam@example.com", "Sam Kato")

	_, err = members.Create(ctx, team.ID, leaderReg.ID, enums.MemberRoleLeader)
	require.NoError(t, err)
	_, err = members.Create(ctx, team.ID, memberReg.ID, enums.MemberRoleMember)
	require.NoError(t, err)

	// One team per registration.
	_, err = members.Create(ctx, team.ID, memberReg.ID, enums.MemberRoleMember)
	require.Error(t, err)

	leader, err := members.FindLeader(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, leaderReg.ID, leader.RegistrationID)

	roster, err := members.ListByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Lena Ortiz", roster[0].FullName)
	assert.Equal(t, enums.MemberRoleLeader, roster[0].Role)
	assert.Equal(t, "sam@example.com", roster[1].Email)

	count, err := members.CountByTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, members.DeleteByRegistration(ctx, memberReg.ID))
	count, err = members.CountByTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestJoinRequestRepositoryLifecycle(t *testing.T) {
	conn := setupTeamsTestDB(t)
	repo := NewRepository(conn)
	requests := NewJoinRequestRepository(conn)
	ctx := context.Background()

	team, err := repo.Create(ctx, CreateTeamDTO{Name: "Bit Crushers"})
	require.NoError(t, err)
	requester := seedRegistration(t, conn, "sam@example.com", "Sam Kato")
	resolver := seedRegistration(t, conn, "lena@example.com", "Lena Ortiz")

	msg := "I know Go!"
	created, err := requests.Create(ctx, team.ID, requester.ID, &msg)
	require.NoError(t, err)
	assert.Equal(t, enums.JoinRequestStatusPending, created.Status)

	pending, err := requests.HasPending(ctx, team.ID, requester.ID)
	require.NoError(t, err)
	assert.True(t, pending)

	queue, err := requests.ListPendingByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "Sam Kato", queue[0].RequesterName)
	require.NotNil(t, queue[0].Message)
	assert.Equal(t, msg, *queue[0].Message)

	resolvedAt := time.Now().UTC()
	require.NoError(t, requests.Resolve(ctx, created.ID, enums.JoinRequestStatusAccepted, resolver.ID, resolvedAt))

	reloaded, err := requests.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.JoinRequestStatusAccepted, reloaded.Status)
	require.NotNil(t, reloaded.ResolvedAt)

	pending, err = requests.HasPending(ctx, team.ID, requester.ID)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestJoinRequestRejectPendingForTeam(t *testing.T) {
	conn := setupTeamsTestDB(t)
	repo := NewRepository(conn)
	requests := NewJoinRequestRepository(conn)
	ctx := context.Background()

	team, err := repo.Create(ctx, CreateTeamDTO{Name: "Bit Crushers"})
	require.NoError(t, err)
	resolver := seedRegistration(t, conn, "lena@example.com", "Lena Ortiz")

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		reg := seedRegistration(t, conn, fmt.Sprintf("waiting%d@example.com", i), "Waiting")
		jr, err := requests.Create(ctx, team.ID, reg.ID, nil)
		require.NoError(t, err)
		ids = append(ids, jr.ID)
	}
	// Already-resolved rows stay untouched.
	require.NoError(t, requests.Resolve(ctx, ids[0], enums.JoinRequestStatusAccepted, resolver.ID, time.Now().UTC()))

	require.NoError(t, requests.RejectPendingForTeam(ctx, team.ID, resolver.ID, time.Now().UTC()))

	accepted, err := requests.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, enums.JoinRequestStatusAccepted, accepted.Status)

	for _, id := range ids[1:] {
		jr, err := requests.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, enums.JoinRequestStatusRejected, jr.Status)
	}

	queue, err := requests.ListPendingByTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Empty(t, queue)
}
