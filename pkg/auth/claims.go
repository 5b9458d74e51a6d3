package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hackfesthq/hackfest-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	RegistrationID uuid.UUID
	Role           enums.RegistrationRole
	IsAdmin        bool
	JTI            string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	RegistrationID uuid.UUID              `json:"registration_id"`
	Role           enums.RegistrationRole `json:"role"`
	IsAdmin        bool                   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}
