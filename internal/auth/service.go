package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hackfesthq/hackfest-backend/internal/registrations"
	pkgAuth "github.com/hackfesthq/hackfest-backend/pkg/auth"
	"github.com/hackfesthq/hackfest-backend/pkg/auth/session"
	"github.com/hackfesthq/hackfest-backend/pkg/config"
	"github.com/hackfesthq/hackfest-backend/pkg/db/models"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
	"github.com/hackfesthq/hackfest-backend/pkg/logger"
	"github.com/hackfesthq/hackfest-backend/pkg/mailer"
	"github.com/hackfesthq/hackfest-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

const resetTokenBytes = 32

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
	RequestPasswordReset(ctx context.Context, req ResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req ResetConfirmRequest) error
}

type registrationRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Registration, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type resetStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	ResetTokenKey(token string) string
}

type service struct {
	registrations registrationRepository
	session       sessionManager
	reset         resetStore
	mail          mailer.Sender
	jwtCfg        config.JWTConfig
	passwordCfg   config.PasswordConfig
	resetCfg      config.PasswordResetConfig
	eventCfg      config.EventConfig
	logg          *logger.Logger
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	RegistrationRepo registrationRepository
	SessionManager   sessionManager
	ResetStore       resetStore
	Mailer           mailer.Sender
	JWTConfig        config.JWTConfig
	PasswordConfig   config.PasswordConfig
	ResetConfig      config.PasswordResetConfig
	EventConfig      config.EventConfig
	Logger           *logger.Logger
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.RegistrationRepo == nil {
		return nil, fmt.Errorf("registration repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Mailer == nil {
		params.Mailer = mailer.Noop{}
	}
	return &service{
		registrations: params.RegistrationRepo,
		session:       params.SessionManager,
		reset:         params.ResetStore,
		mail:          params.Mailer,
		jwtCfg:        params.JWTConfig,
		passwordCfg:   params.PasswordConfig,
		resetCfg:      params.ResetConfig,
		eventCfg:      params.EventConfig,
		logg:          params.Logger,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	reg, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, reg)
}

func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	reg, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if !reg.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return s.issueTokens(ctx, reg)
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, refreshToken, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	// Rebuild the payload from the registration row so role and admin
	// changes take effect on refresh.
	reg, err := s.registrations.FindByID(ctx, claims.RegistrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup registration")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		RegistrationID: reg.ID,
		Role:           reg.Role,
		IsAdmin:        reg.IsAdmin,
		JTI:            newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtCfg.ExpirationMinutes) * 60,
		Registration: registrations.FromModel(reg),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

// RequestPasswordReset always succeeds for well-formed input so the endpoint
// does not reveal which addresses are registered.
func (s *service) RequestPasswordReset(ctx context.Context, req ResetRequest) error {
	if s.reset == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "reset store not configured")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	reg, err := s.registrations.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup registration")
	}

	token, err := security.GenerateToken(resetTokenBytes)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}
	if err := s.reset.Set(ctx, s.reset.ResetTokenKey(token), reg.ID.String(), s.resetCfg.TokenTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}

	ttlMinutes := int(s.resetCfg.TokenTTL / time.Minute)
	subject, body := mailer.PasswordResetEmail(s.eventCfg.Name, token, ttlMinutes)
	if err := s.mail.Send(ctx, reg.Email, subject, body); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "password reset email failed", err)
		}
	}
	return nil
}

func (s *service) ConfirmPasswordReset(ctx context.Context, req ResetConfirmRequest) error {
	if s.reset == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "reset store not configured")
	}
	if len(req.Password) < s.passwordCfg.MinLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "password too short").
			WithDetails(map[string]any{"min_length": s.passwordCfg.MinLength})
	}
	if req.Password != req.ConfirmPassword {
		return pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}

	key := s.reset.ResetTokenKey(req.Token)
	stored, err := s.reset.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired reset token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reset token")
	}
	registrationID, err := uuid.Parse(stored)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired reset token")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.registrations.UpdatePasswordHash(ctx, registrationID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}

	// Tokens are single use.
	if err := s.reset.Del(ctx, key); err != nil && s.logg != nil {
		s.logg.Error(ctx, "delete reset token failed", err)
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.Registration, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	reg, err := s.registrations.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup registration")
	}

	valid, err := security.VerifyPassword(password, reg.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return reg, nil
}

func (s *service) issueTokens(ctx context.Context, reg *models.Registration) (*LoginResponse, error) {
	now := time.Now().UTC()
	if err := s.registrations.UpdateLastLogin(ctx, reg.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	reg.LastLoginAt = &now

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		RegistrationID: reg.ID,
		Role:           reg.Role,
		IsAdmin:        reg.IsAdmin,
		JTI:            accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtCfg.ExpirationMinutes) * 60,
		Registration: registrations.FromModel(reg),
	}, nil
}
