package registrations

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hackfesthq/hackfest-backend/pkg/config"
	"github.com/hackfesthq/hackfest-backend/pkg/enums"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
	"github.com/hackfesthq/hackfest-backend/pkg/logger"
	"github.com/hackfesthq/hackfest-backend/pkg/security"
)

// EnsureAdmin creates the bootstrap admin account when the seed config is set
// and no registration with that email exists yet. Runs once at startup;
// credentials come from the environment.
func EnsureAdmin(ctx context.Context, db *gorm.DB, seed config.AdminSeedConfig, pw config.PasswordConfig, logg *logger.Logger) error {
	if !seed.Enabled() {
		return nil
	}

	repo := NewRepository(db)
	email := strings.ToLower(strings.TrimSpace(seed.Email))

	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up admin seed account")
	}

	hash, err := security.HashPassword(seed.Password, pw)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin seed password")
	}

	reg, err := repo.Create(ctx, CreateRegistrationDTO{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Event Admin",
		Role:         enums.RegistrationRoleParticipant,
		IsAdmin:      true,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin seed account")
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"registration_id": reg.ID.String()}), "admin account seeded")
	}
	return nil
}
