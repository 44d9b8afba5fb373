package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/khabaroff/staff-accounts/src/auth"
	"github.com/khabaroff/staff-accounts/src/logging"
	"github.com/khabaroff/staff-accounts/src/models"
	"github.com/khabaroff/staff-accounts/src/repositories"
	"github.com/rs/zerolog"
)

// AccountService mediates every account read and mutation. Each operation
// takes the caller's identity explicitly and applies the authorization gate
// before touching the store.
type AccountService struct {
	repo   repositories.AccountRepository
	hasher PasswordHasher
	logger zerolog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(repo repositories.AccountRepository, hasher PasswordHasher) *AccountService {
	return &AccountService{
		repo:   repo,
		hasher: hasher,
		logger: logging.NewLogger("accounts"),
	}
}

// storeError maps repository failures onto the service taxonomy. Unknown
// failures are logged here and surface as ErrStoreUnavailable.
func (s *AccountService) storeError(op string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repositories.ErrDuplicateInitials):
		return ErrDuplicateInitials
	case errors.Is(err, repositories.ErrLastActiveAdmin):
		return ErrLastActiveAdmin
	case errors.Is(err, repositories.ErrImmutable):
		return ErrForbidden
	case errors.Is(err, repositories.ErrStale):
		return ErrConcurrentUpdate
	case errors.Is(err, repositories.ErrInvalidValue):
		return fmt.Errorf("%s: %w", op, ErrValidation)
	}

	s.logger.Error().Err(err).Str("op", op).Msg("account store failure")
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// List returns every account ordered by initials. Requires the Admin role.
func (s *AccountService) List(ctx context.Context, caller auth.Identity) ([]models.AccountView, error) {
	if err := auth.Check(caller, auth.RequireAdmin); err != nil {
		return nil, err
	}

	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storeError("list accounts", err)
	}

	views := make([]models.AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, a.View())
	}
	return views, nil
}

// Get returns a single account. Any authenticated caller may read.
func (s *AccountService) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.AccountView, error) {
	if err := auth.Check(caller, auth.RequireAuthenticated); err != nil {
		return nil, err
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError("find account", err)
	}

	view := account.View()
	return &view, nil
}

// Create adds a new account. Requires the Admin role.
func (s *AccountService) Create(ctx context.Context, caller auth.Identity, req models.CreateAccountRequest) (*models.AccountView, error) {
	if err := auth.Check(caller, auth.RequireAdmin); err != nil {
		return nil, err
	}

	account, err := s.createAccount(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("account_id", account.ID.String()).
		Str("initials", account.Initials).
		Str("caller", caller.Subject).
		Msg("account created")

	view := account.View()
	return &view, nil
}

// createAccount applies the create invariants without the authorization gate.
// Bootstrap shares it because no caller exists at startup.
func (s *AccountService) createAccount(ctx context.Context, req models.CreateAccountRequest) (*models.Account, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	// Friendly pre-check; the unique constraint still decides under concurrency.
	if err := s.ensureInitialsFree(ctx, req.Initials, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		DisplayName:  req.Name,
		Initials:     req.Initials,
		IsAdmin:      *req.IsAdmin,
		IsActive:     *req.IsActive,
		PasswordHash: hash,
		Email:        req.Email,
	}

	if err := s.repo.Insert(ctx, account); err != nil {
		return nil, s.storeError("insert account", err)
	}

	return account, nil
}

// ensureInitialsFree fails with ErrDuplicateInitials when an account other than owner uses initials
func (s *AccountService) ensureInitialsFree(ctx context.Context, initials string, owner uuid.UUID) error {
	existing, err := s.repo.FindByInitials(ctx, initials)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	case err != nil:
		return s.storeError("find account by initials", err)
	case existing.ID != owner:
		return ErrDuplicateInitials
	}
	return nil
}

// Update applies a partial update. Requires the Admin role.
//
// Name, initials, email and password are replaced only when present.
// IsAdmin and IsActive are mandatory and always overwrite. The superadmin
// account is immutable through this path for every caller.
func (s *AccountService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, req models.UpdateAccountRequest) (*models.AccountView, error) {
	if err := auth.Check(caller, auth.RequireAdmin); err != nil {
		return nil, err
	}
	if err := validateUpdateRequest(req); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError("find account", err)
	}

	if current.Initials == models.SuperadminInitials {
		return nil, ErrForbidden
	}

	if req.Initials != nil && *req.Initials != current.Initials {
		if err := s.ensureInitialsFree(ctx, *req.Initials, current.ID); err != nil {
			return nil, err
		}
	}

	updated := current.Clone()
	if req.Name != nil {
		updated.DisplayName = *req.Name
	}
	if req.Initials != nil {
		updated.Initials = *req.Initials
	}
	if req.Email != nil {
		updated.Email = *req.Email
	}
	updated.IsAdmin = *req.IsAdmin
	updated.IsActive = *req.IsActive

	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = hash
	}

	// The store rechecks the superadmin and last-admin rules under lock and
	// rejects the write if the account changed since it was read.
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, s.storeError("update account", err)
	}

	s.logger.Info().
		Str("account_id", updated.ID.String()).
		Str("caller", caller.Subject).
		Bool("password_changed", req.Password != nil).
		Msg("account updated")

	view := updated.View()
	return &view, nil
}
