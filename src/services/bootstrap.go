package services

import (
	"context"
	"fmt"

	"github.com/khabaroff/staff-accounts/src/logging"
	"github.com/khabaroff/staff-accounts/src/models"
	"github.com/khabaroff/staff-accounts/src/repositories"
	"github.com/rs/zerolog"
)

// BootstrapAccount describes the administrator created on first start
type BootstrapAccount struct {
	Name     string
	Initials string
	Password string
}

// Bootstrapper guarantees that an active administrator exists before the
// service accepts requests
type Bootstrapper struct {
	repo     repositories.AccountRepository
	accounts *AccountService
	logger   zerolog.Logger
}

// NewBootstrapper creates a bootstrapper sharing the account service's invariants
func NewBootstrapper(repo repositories.AccountRepository, accounts *AccountService) *Bootstrapper {
	return &Bootstrapper{
		repo:     repo,
		accounts: accounts,
		logger:   logging.NewLogger("bootstrap"),
	}
}

// EnsureAdmin creates the bootstrap administrator when no active administrator
// exists. It reports whether an account was created and is a no-op on every
// later start. A conflict on the configured initials is returned as an error
// wrapping ErrConflict; callers treat it as fatal.
func (b *Bootstrapper) EnsureAdmin(ctx context.Context, seed BootstrapAccount) (bool, error) {
	count, err := b.repo.CountActiveAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("bootstrap: %w", b.accounts.storeError("count active admins", err))
	}
	if count > 0 {
		b.logger.Debug().Int("active_admins", count).Msg("active administrator present, nothing to do")
		return false, nil
	}

	isAdmin, isActive := true, true
	account, err := b.accounts.createAccount(ctx, models.CreateAccountRequest{
		Name:     seed.Name,
		Initials: seed.Initials,
		IsAdmin:  &isAdmin,
		IsActive: &isActive,
		Password: seed.Password,
	})
	if err != nil {
		return false, fmt.Errorf("bootstrap administrator %q: %w", seed.Initials, err)
	}

	b.logger.Info().
		Str("account_id", account.ID.String()).
		Str("initials", account.Initials).
		Msg("bootstrap administrator created")
	return true, nil
}
