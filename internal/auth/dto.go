package auth

import (
	"github.com/hackfesthq/hackfest-backend/internal/registrations"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the expired access token plus its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ResetRequest starts a password reset for the given account.
type ResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetConfirmRequest completes a password reset with the emailed token.
type ResetConfirmRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// LoginResponse contains the token pair and profile produced by a successful login.
type LoginResponse struct {
	AccessToken  string                         `json:"access_token"`
	RefreshToken string                         `json:"refresh_token"`
	ExpiresIn    int64                          `json:"expires_in"`
	Registration *registrations.RegistrationDTO `json:"registration"`
}
