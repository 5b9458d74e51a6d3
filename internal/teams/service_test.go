package teams

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbmodels "github.com/hackfesthq/hackfest-backend/pkg/db/models"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubTeamRepo struct {
	byID      map[uuid.UUID]*dbmodels.Team
	open      []TeamWithCount
	all       []TeamWithCount
	lockCalls int
}

func newStubTeamRepo() *stubTeamRepo {
	return &stubTeamRepo{byID: map[uuid.UUID]*dbmodels.Team{}}
}

func (s *stubTeamRepo) FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Team, error) {
	if team, ok := s.byID[id]; ok {
		return team, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTeamRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*dbmodels.Team, error) {
	s.lockCalls++
	return s.FindByID(ctx, id)
}

func (s *stubTeamRepo) ListOpen(ctx context.Context) ([]TeamWithCount, error) {
	return s.open, nil
}

func (s *stubTeamRepo) ListWithCounts(ctx context.Context) ([]TeamWithCount, error) {
	return s.all, nil
}

type stubMembershipRepo struct {
	byRegistration map[uuid.UUID]*dbmodels.TeamMembership
	leaders        map[uuid.UUID]*dbmodels.TeamMembership
	counts         map[uuid.UUID]int64
	rosters        map[uuid.UUID][]MemberDTO
	created        []dbmodels.TeamMembership
}

func newStubMembershipRepo() *stubMembershipRepo {
	return &stubMembershipRepo{
		byRegistration: map[uuid.UUID]*dbmodels.TeamMembership{},
		leaders:        map[uuid.UUID]*dbmodels.TeamMembership{},
		counts:         map[uuid.UUID]int64{},
		rosters:        map[uuid.UUID][]MemberDTO{},
	}
}

func (s *stubMembershipRepo) Create(ctx context.Context, teamID, registrationID uuid.UUID, role enums.MemberRole) (*dbmodels.TeamMembership, error) {
	m := dbmodels.TeamMembership{TeamID: teamID, RegistrationID: registrationID, Role: role}
	s.created = append(s.created, m)
	return &m, nil
}

func (s *stubMembershipRepo) CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	return s.counts[teamID], nil
}

func (s *stubMembershipRepo) FindByRegistration(ctx context.Context, registrationID uuid.UUID) (*dbmodels.TeamMembership, error) {
	if m, ok := s.byRegistration[registrationID]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMembershipRepo) FindLeader(ctx context.Context, teamID uuid.UUID) (*dbmodels.TeamMembership, error) {
	if m, ok := s.leaders[teamID]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMembershipRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]MemberDTO, error) {
	return s.rosters[teamID], nil
}

type resolvedCall struct {
	id     uuid.UUID
	status enums.JoinRequestStatus
}

type stubJoinRequestRepo struct {
	byID          map[uuid.UUID]*dbmodels.TeamJoinRequest
	pending       map[uuid.UUID]bool
	pendingByTeam map[uuid.UUID][]JoinRequestDTO
	resolved      []resolvedCall
	rejectedTeams []uuid.UUID
}

func newStubJoinRequestRepo() *stubJoinRequestRepo {
	return &stubJoinRequestRepo{
		byID:          map[uuid.UUID]*dbmodels.TeamJoinRequest{},
		pending:       map[uuid.UUID]bool{},
		pendingByTeam: map[uuid.UUID][]JoinRequestDTO{},
	}
}

func (s *stubJoinRequestRepo) Create(ctx context.Context, teamID, registrationID uuid.UUID, message *string) (*dbmodels.TeamJoinRequest, error) {
	jr := &dbmodels.TeamJoinRequest{
		ID:             uuid.New(),
		TeamID:         teamID,
		RegistrationID: registrationID,
		Status:         enums.JoinRequestStatusPending,
		Message:        message,
	}
	s.byID[jr.ID] = jr
	return jr, nil
}

func (s *stubJoinRequestRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*dbmodels.TeamJoinRequest, error) {
	if jr, ok := s.byID[id]; ok {
		return jr, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubJoinRequestRepo) HasPending(ctx context.Context, teamID, registrationID uuid.UUID) (bool, error) {
	return s.pending[registrationID], nil
}

func (s *stubJoinRequestRepo) ListPendingByTeam(ctx context.Context, teamID uuid.UUID) ([]JoinRequestDTO, error) {
	return s.pendingByTeam[teamID], nil
}

func (s *stubJoinRequestRepo) Resolve(ctx context.Context, id uuid.UUID, status enums.JoinRequestStatus, resolvedBy uuid.UUID, at time.Time) error {
	s.resolved = append(s.resolved, resolvedCall{id: id, status: status})
	return nil
}

func (s *stubJoinRequestRepo) RejectPendingForTeam(ctx context.Context, teamID uuid.UUID, resolvedBy uuid.UUID, at time.Time) error {
	s.rejectedTeams = append(s.rejectedTeams, teamID)
	return nil
}

type stubRegistrationReader struct {
	byID map[uuid.UUID]*dbmodels.Registration
}

func (s *stubRegistrationReader) FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Registration, error) {
	if reg, ok := s.byID[id]; ok {
		return reg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type stubMailer struct {
	sent []sentMail
}

func (s *stubMailer) Send(ctx context.Context, to, subject, body string) error {
	s.sent = append(s.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type teamTestSetup struct {
	service    Service
	teamRepo   *stubTeamRepo
	memberRepo *stubMembershipRepo
	joinRepo   *stubJoinRequestRepo
	regs       *stubRegistrationReader
	mail       *stubMailer
}

func newTeamTestSetup(t *testing.T) *teamTestSetup {
	t.Helper()
	teamRepo := newStubTeamRepo()
	memberRepo := newStubMembershipRepo()
	joinRepo := newStubJoinRequestRepo()
	regs := &stubRegistrationReader{byID: map[uuid.UUID]*dbmodels.Registration{}}
	mail := &stubMailer{}

	svc, err := NewService(ServiceParams{
		TxRunner: stubTxRunner{},
		TeamRepoFactory: func(tx *gorm.DB) teamRepository {
			return teamRepo
		},
		MembershipRepoFactory: func(tx *gorm.DB) membershipRepository {
			return memberRepo
		},
		JoinRequestRepoFactory: func(tx *gorm.DB) joinRequestRepository {
			return joinRepo
		},
		RegistrationReader: regs,
		Mailer:             mail,
	})
	if err != nil {
		t.Fatalf("new team service: %v", err)
	}
	return &teamTestSetup{
		service:    svc,
		teamRepo:   teamRepo,
		memberRepo: memberRepo,
		joinRepo:   joinRepo,
		regs:       regs,
		mail:       mail,
	}
}

// seedTeam creates a team with a leader and the given member count.
func (s *teamTestSetup) seedTeam(name string, maxMembers int, memberCount int64) (*dbmodels.Team, *dbmodels.Registration) {
	team := &dbmodels.Team{ID: uuid.New(), Name: name, MaxMembers: maxMembers}
	s.teamRepo.byID[team.ID] = team

	leader := &dbmodels.Registration{ID: uuid.New(), Email: "leader@example.com", FullName: "Lena Ortiz"}
	s.regs.byID[leader.ID] = leader
	membership := &dbmodels.TeamMembership{TeamID: team.ID, RegistrationID: leader.ID, Role: enums.MemberRoleLeader}
	s.memberRepo.byRegistration[leader.ID] = membership
	s.memberRepo.leaders[team.ID] = membership
	s.memberRepo.counts[team.ID] = memberCount
	return team, leader
}

func (s *teamTestSetup) seedRequester(email string) *dbmodels.Registration {
	reg := &dbmodels.Registration{ID: uuid.New(), Email: email, FullName: "Sam Kato"}
	s.regs.byID[reg.ID] = reg
	return reg
}

func assertErrorCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestRequestJoinCreatesPendingAndNotifiesLeader(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, leader := setup.seedTeam("Bit Crushers", 4, 2)
	requester := setup.seedRequester("sam@example.com")
	msg := "I know Go!"

	dto, err := setup.service.RequestJoin(context.Background(), team.ID, requester.ID, &msg)
	if err != nil {
		t.Fatalf("request join failed: %v", err)
	}
	if dto.Status != enums.JoinRequestStatusPending {
		t.Fatalf("expected pending status, got %s", dto.Status)
	}
	if len(setup.mail.sent) != 1 {
		t.Fatalf("expected one leader notification, got %d", len(setup.mail.sent))
	}
	if setup.mail.sent[0].to != leader.Email {
		t.Fatalf("notification sent to %s, want %s", setup.mail.sent[0].to, leader.Email)
	}
	if !strings.Contains(setup.mail.sent[0].body, "Sam Kato") {
		t.Fatal("notification body should name the requester")
	}
}

func TestRequestJoinAlreadyOnTeam(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, leader := setup.seedTeam("Bit Crushers", 4, 2)

	_, err := setup.service.RequestJoin(context.Background(), team.ID, leader.ID, nil)
	assertErrorCode(t, err, pkgerrors.CodeStateConflict)
}

func TestRequestJoinDuplicatePending(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, _ := setup.seedTeam("Bit Crushers", 4, 2)
	requester := setup.seedRequester("sam@example.com")
	setup.joinRepo.pending[requester.ID] = true

	_, err := setup.service.RequestJoin(context.Background(), team.ID, requester.ID, nil)
	assertErrorCode(t, err, pkgerrors.CodeConflict)
}

func TestRequestJoinFullTeam(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, _ := setup.seedTeam("Bit Crushers", 4, 4)
	requester := setup.seedRequester("sam@example.com")

	_, err := setup.service.RequestJoin(context.Background(), team.ID, requester.ID, nil)
	assertErrorCode(t, err, pkgerrors.CodeStateConflict)
}

func TestRequestJoinMissingTeam(t *testing.T) {
	setup := newTeamTestSetup(t)
	requester := setup.seedRequester("sam@example.com")

	_, err := setup.service.RequestJoin(context.Background(), uuid.New(), requester.ID, nil)
	assertErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestAcceptCreatesMembership(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, leader := setup.seedTeam("Bit Crushers", 4, 2)
	requester := setup.seedRequester("sam@example.com")
	request, _ := setup.joinRepo.Create(context.Background(), team.ID, requester.ID, nil)

	dto, err := setup.service.Accept(context.Background(), request.ID, leader.ID, false)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if dto.Status != enums.JoinRequestStatusAccepted {
		t.Fatalf("expected accepted status, got %s", dto.Status)
	}
	if setup.teamRepo.lockCalls != 1 {
		t.Fatalf("expected team row lock, got %d lock calls", setup.teamRepo.lockCalls)
	}
	if len(setup.memberRepo.created) != 1 {
		t.Fatalf("expected one membership, got %d", len(setup.memberRepo.created))
	}
	m := setup.memberRepo.created[0]
	if m.RegistrationID != requester.ID || m.Role != enums.MemberRoleMember {
		t.Fatalf("unexpected membership %+v", m)
	}
	if len(setup.joinRepo.rejectedTeams) != 0 {
		t.Fatal("team not full, pending queue should be untouched")
	}
	if len(setup.mail.sent) != 1 || setup.mail.sent[0].to != requester.Email {
		t.Fatalf("expected decision email to requester, got %+v", setup.mail.sent)
	}
}

func TestAcceptFillingTeamRejectsRemaining(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, leader := setup.seedTeam("Bit Crushers", 4, 3)
	requester := setup.seedRequester("sam@example.com")
	request, _ := setup.joinRepo.Create(context.Background(), team.ID, requester.ID, nil)

	_, err := setup.service.Accept(context.Background(), request.ID, leader.ID, false)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if len(setup.joinRepo.rejectedTeams) != 1 || setup.joinRepo.rejectedTeams[0] != team.ID {
		t.Fatalf("expected remaining pending requests to be rejected, got %v", setup.joinRepo.rejectedTeams)
	}
}

func TestAcceptFullTeam(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, leader := setup.seedTeam("Bit Crushers", 4, 4)
	requester := setup.seedRequester("sam@example.com")
	request, _ := setup.joinRepo.Create(context.Background(), team.ID, requester.ID, nil)

	_, err := setup.service.Accept(context.Background(), request.ID, leader.ID, false)
	assertErrorCode(t, err, pkgerrors.CodeStateConflict)
	if len(setup.memberRepo.created) != 0 {
		t.Fatal("no membership should be created when the team is full")
	}
}

func TestAcceptAlreadyResolved(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, leader := setup.seedTeam("Bit Crushers", 4, 2)
	requester := setup.seedRequester("sam@example.com")
	request, _ := setup.joinRepo.Create(context.Background(), team.ID, requester.ID, nil)
	request.Status = enums.JoinRequestStatusRejected

	_, err := setup.service.Accept(context.Background(), request.ID, leader.ID, false)
	assertErrorCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAcceptRequiresLeader(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, _ := setup.seedTeam("Bit Crushers", 4, 2)
	requester := setup.seedRequester("sam@example.com")
	outsider := setup.seedRequester("mallory@example.com")
	request, _ := setup.joinRepo.Create(context.Background(), team.ID, requester.ID, nil)

	_, err := setup.service.Accept(context.Background(), request.ID, outsider.ID, false)
	assertErrorCode(t, err, pkgerrors.CodeForbidden)
}

func TestAcceptAdminBypassesLeaderCheck(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, _ := setup.seedTeam("Bit Crushers", 4, 2)
	requester := setup.seedRequester("sam@example.com")
	admin := setup.seedRequester("admin@example.com")
	request, _ := setup.joinRepo.Create(context.Background(), team.ID, requester.ID, nil)

	_, err := setup.service.Accept(context.Background(), request.ID, admin.ID, true)
	if err != nil {
		t.Fatalf("admin accept failed: %v", err)
	}
}

func TestRejectResolvesWithoutMembership(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, leader := setup.seedTeam("Bit Crushers", 4, 2)
	requester := setup.seedRequester("sam@example.com")
	request, _ := setup.joinRepo.Create(context.Background(), team.ID, requester.ID, nil)

	dto, err := setup.service.Reject(context.Background(), request.ID, leader.ID, false)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if dto.Status != enums.JoinRequestStatusRejected {
		t.Fatalf("expected rejected status, got %s", dto.Status)
	}
	if len(setup.memberRepo.created) != 0 {
		t.Fatal("rejection must not create a membership")
	}
	if setup.teamRepo.lockCalls != 0 {
		t.Fatal("rejection should not lock the team row")
	}
	if len(setup.mail.sent) != 1 || setup.mail.sent[0].to != requester.Email {
		t.Fatalf("expected decision email to requester, got %+v", setup.mail.sent)
	}
}

func TestMyTeamLeaderSeesPendingRequests(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, leader := setup.seedTeam("Bit Crushers", 4, 2)
	setup.memberRepo.rosters[team.ID] = []MemberDTO{
		{RegistrationID: leader.ID, FullName: leader.FullName, Role: enums.MemberRoleLeader},
	}
	setup.joinRepo.pendingByTeam[team.ID] = []JoinRequestDTO{
		{ID: uuid.New(), TeamID: team.ID, Status: enums.JoinRequestStatusPending, RequesterName: "Sam Kato"},
	}

	resp, err := setup.service.MyTeam(context.Background(), leader.ID)
	if err != nil {
		t.Fatalf("my team failed: %v", err)
	}
	if resp.Role != enums.MemberRoleLeader {
		t.Fatalf("expected leader role, got %s", resp.Role)
	}
	if len(resp.PendingRequests) != 1 {
		t.Fatalf("expected pending requests for leader, got %d", len(resp.PendingRequests))
	}
}

func TestMyTeamMemberHidesPendingRequests(t *testing.T) {
	setup := newTeamTestSetup(t)
	team, _ := setup.seedTeam("Bit Crushers", 4, 2)
	member := setup.seedRequester("sam@example.com")
	setup.memberRepo.byRegistration[member.ID] = &dbmodels.TeamMembership{
		TeamID: team.ID, RegistrationID: member.ID, Role: enums.MemberRoleMember,
	}
	setup.joinRepo.pendingByTeam[team.ID] = []JoinRequestDTO{
		{ID: uuid.New(), TeamID: team.ID, Status: enums.JoinRequestStatusPending},
	}

	resp, err := setup.service.MyTeam(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("my team failed: %v", err)
	}
	if len(resp.PendingRequests) != 0 {
		t.Fatal("members should not see the pending queue")
	}
}

func TestMyTeamNotOnTeam(t *testing.T) {
	setup := newTeamTestSetup(t)
	loner := setup.seedRequester("solo@example.com")

	_, err := setup.service.MyTeam(context.Background(), loner.ID)
	assertErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestListOpenTeams(t *testing.T) {
	setup := newTeamTestSetup(t)
	setup.teamRepo.open = []TeamWithCount{
		{Team: dbmodels.Team{ID: uuid.New(), Name: "Bit Crushers", MaxMembers: 4}, MemberCount: 2},
	}

	out, err := setup.service.ListOpen(context.Background())
	if err != nil {
		t.Fatalf("list open failed: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Bit Crushers" || out[0].MemberCount != 2 {
		t.Fatalf("unexpected teams %+v", out)
	}
}
