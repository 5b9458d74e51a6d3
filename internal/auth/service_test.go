package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	pkgAuth "github.com/hackfesthq/hackfest-backend/pkg/auth"
	"github.com/hackfesthq/hackfest-backend/pkg/auth/session"
	"github.com/hackfesthq/hackfest-backend/pkg/config"
	"github.com/hackfesthq/hackfest-backend/pkg/db/models"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
	"github.com/hackfesthq/hackfest-backend/pkg/security"
)

type stubRegistrationRepo struct {
	reg          *models.Registration
	passwordHash string
}

func (s *stubRegistrationRepo) FindByEmail(ctx context.Context, email string) (*models.Registration, error) {
	if s.reg != nil && s.reg.Email == email {
		return s.reg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRegistrationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	if s.reg != nil && s.reg.ID == id {
		return s.reg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRegistrationRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.reg != nil && s.reg.ID == id {
		s.reg.LastLoginAt = &at
	}
	return nil
}

func (s *stubRegistrationRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.passwordHash = hash
	return nil
}

type stubSessionManager struct {
	refreshToken string
	rotateErr    error
	generated    []string
	revoked      []string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return session.NewAccessID(), "rotated-refresh", nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubResetStore struct {
	values map[string]string
}

func newStubResetStore() *stubResetStore {
	return &stubResetStore{values: map[string]string{}}
}

func (s *stubResetStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubResetStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (s *stubResetStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubResetStore) ResetTokenKey(token string) string {
	return "hf:reset:" + token
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

type authTestSetup struct {
	service Service
	repo    *stubRegistrationRepo
	session *stubSessionManager
	reset   *stubResetStore
	mail    *stubMailer
	jwtCfg  config.JWTConfig
}

func newAuthTestSetup(t *testing.T, reg *models.Registration) *authTestSetup {
	t.Helper()
	repo := &stubRegistrationRepo{reg: reg}
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	reset := newStubResetStore()
	mail := &stubMailer{}
	jwtCfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "hackfest",
		ExpirationMinutes: 30,
	}

	svc, err := NewService(ServiceParams{
		RegistrationRepo: repo,
		SessionManager:   sessionMgr,
		ResetStore:       reset,
		Mailer:           mail,
		JWTConfig:        jwtCfg,
		PasswordConfig:   config.PasswordConfig{MinLength: 6},
		ResetConfig:      config.PasswordResetConfig{TokenTTL: 30 * time.Minute},
		EventConfig:      config.EventConfig{Name: "BUILD THE FUTURE Hackathon"},
	})
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return &authTestSetup{
		service: svc,
		repo:    repo,
		session: sessionMgr,
		reset:   reset,
		mail:    mail,
		jwtCfg:  jwtCfg,
	}
}

func sampleRegistration(t *testing.T, password string, isAdmin bool) *models.Registration {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.Registration{
		ID:           uuid.New(),
		Email:        "casey@example.com",
		PasswordHash: hash,
		FullName:     "Casey Park",
		Role:         enums.RegistrationRoleParticipant,
		IsAdmin:      isAdmin,
	}
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

func TestLoginIssuesTokenPair(t *testing.T) {
	reg := sampleRegistration(t, "Secret123!", false)
	setup := newAuthTestSetup(t, reg)

	resp, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    reg.Email,
		Password: "Secret123!",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(setup.jwtCfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.RegistrationID != reg.ID {
		t.Fatalf("unexpected registration id in claims")
	}
	if claims.Role != enums.RegistrationRoleParticipant {
		t.Fatalf("expected participant role claim, got %s", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
	if len(setup.session.generated) != 1 || setup.session.generated[0] != claims.ID {
		t.Fatal("refresh session should be keyed by the jti")
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
	if reg.LastLoginAt == nil {
		t.Fatal("expected last login to be recorded")
	}
}

func TestLoginNormalizesEmail(t *testing.T) {
	reg := sampleRegistration(t, "Secret123!", false)
	setup := newAuthTestSetup(t, reg)

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "  CASEY@example.com ",
		Password: "Secret123!",
	})
	if err != nil {
		t.Fatalf("login with unnormalized email: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	reg := sampleRegistration(t, "Secret123!", false)
	setup := newAuthTestSetup(t, reg)

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    reg.Email,
		Password: "wrong",
	})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	setup := newAuthTestSetup(t, nil)

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestAdminLoginRejectsNonAdmin(t *testing.T) {
	reg := sampleRegistration(t, "Secret123!", false)
	setup := newAuthTestSetup(t, reg)

	_, err := setup.service.AdminLogin(context.Background(), LoginRequest{
		Email:    reg.Email,
		Password: "Secret123!",
	})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestAdminLoginSucceedsForAdmin(t *testing.T) {
	reg := sampleRegistration(t, "Secret123!", true)
	setup := newAuthTestSetup(t, reg)

	resp, err := setup.service.AdminLogin(context.Background(), LoginRequest{
		Email:    reg.Email,
		Password: "Secret123!",
	})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(setup.jwtCfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if !claims.IsAdmin {
		t.Fatal("expected is_admin claim")
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	reg := sampleRegistration(t, "Secret123!", false)
	setup := newAuthTestSetup(t, reg)

	login, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    reg.Email,
		Password: "Secret123!",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := setup.service.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.RefreshToken != "rotated-refresh" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
	claims, err := pkgAuth.ParseAccessToken(setup.jwtCfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}
	if claims.RegistrationID != reg.ID {
		t.Fatal("refreshed token should carry the same registration")
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	reg := sampleRegistration(t, "Secret123!", false)
	setup := newAuthTestSetup(t, reg)
	setup.session.rotateErr = session.ErrInvalidRefreshToken

	login, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    reg.Email,
		Password: "Secret123!",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = setup.service.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "forged",
	})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	reg := sampleRegistration(t, "Secret123!", false)
	setup := newAuthTestSetup(t, reg)

	if err := setup.service.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(setup.session.revoked) != 1 || setup.session.revoked[0] != "access-id" {
		t.Fatalf("expected session revocation, got %v", setup.session.revoked)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	reg := sampleRegistration(t, "Secret123!", false)
	setup := newAuthTestSetup(t, reg)

	err := setup.service.RequestPasswordReset(context.Background(), ResetRequest{Email: reg.Email})
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(setup.mail.sent) != 1 || setup.mail.sent[0].to != reg.Email {
		t.Fatalf("expected reset email, got %+v", setup.mail.sent)
	}
	if len(setup.reset.values) != 1 {
		t.Fatalf("expected one stored token, got %d", len(setup.reset.values))
	}

	var token string
	for key := range setup.reset.values {
		token = key[len("hf:reset:"):]
	}

	err = setup.service.ConfirmPasswordReset(context.Background(), ResetConfirmRequest{
		Token:           token,
		Password:        "NewSecret1!",
		ConfirmPassword: "NewSecret1!",
	})
	if err != nil {
		t.Fatalf("confirm reset: %v", err)
	}
	if setup.repo.passwordHash == "" {
		t.Fatal("expected password hash to be updated")
	}
	if len(setup.reset.values) != 0 {
		t.Fatal("expected reset token to be single use")
	}

	// Replaying the token fails.
	err = setup.service.ConfirmPasswordReset(context.Background(), ResetConfirmRequest{
		Token:           token,
		Password:        "NewSecret1!",
		ConfirmPassword: "NewSecret1!",
	})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestPasswordResetUnknownEmailSucceeds(t *testing.T) {
	setup := newAuthTestSetup(t, nil)

	err := setup.service.RequestPasswordReset(context.Background(), ResetRequest{Email: "ghost@example.com"})
	if err != nil {
		t.Fatalf("request reset should not reveal unknown emails: %v", err)
	}
	if len(setup.mail.sent) != 0 {
		t.Fatal("no email should be sent for unknown addresses")
	}
}

func TestConfirmPasswordResetValidation(t *testing.T) {
	reg := sampleRegistration(t, "Secret123!", false)
	setup := newAuthTestSetup(t, reg)

	err := setup.service.ConfirmPasswordReset(context.Background(), ResetConfirmRequest{
		Token:           "anything",
		Password:        "abc",
		ConfirmPassword: "abc",
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)

	err = setup.service.ConfirmPasswordReset(context.Background(), ResetConfirmRequest{
		Token:           "anything",
		Password:        "NewSecret1!",
		ConfirmPassword: "Different1!",
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}
