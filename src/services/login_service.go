package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/khabaroff/staff-accounts/src/logging"
	"github.com/khabaroff/staff-accounts/src/models"
	"github.com/khabaroff/staff-accounts/src/repositories"
	"github.com/rs/zerolog"
)

// TokenIssuer signs bearer tokens for authenticated accounts
type TokenIssuer interface {
	Issue(account *models.Account) (string, time.Time, error)
}

// LoginResult is returned on successful authentication
type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresAt int64              `json:"expires_at"`
	Account   models.AccountView `json:"account"`
}

// LoginService exchanges initials and password for a bearer token
type LoginService struct {
	repo   repositories.AccountRepository
	hasher PasswordHasher
	issuer TokenIssuer
	logger zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewLoginService creates a new login service
func NewLoginService(repo repositories.AccountRepository, hasher PasswordHasher, issuer TokenIssuer) *LoginService {
	return &LoginService{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		logger: logging.NewLogger("login"),
	}
}

// burnVerify spends one verification on a throwaway hash so unknown initials
// take as long as a wrong password
func (ls *LoginService) burnVerify(password string) {
	ls.dummyOnce.Do(func() {
		hash, err := ls.hasher.Hash("staff-accounts-unknown-user")
		if err != nil {
			ls.logger.Error().Err(err).Msg("failed to prepare dummy password hash, unknown initials will answer faster than wrong passwords")
			return
		}
		ls.dummyHash = hash
	})
	ls.hasher.Verify(password, ls.dummyHash)
}

// Login authenticates an active account. Unknown initials, a wrong password
// and an inactive account all yield ErrInvalidCredentials.
func (ls *LoginService) Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error) {
	if err := validateLoginRequest(req); err != nil {
		return nil, err
	}

	account, err := ls.repo.FindByInitials(ctx, req.Initials)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			ls.burnVerify(req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w: %w", ErrStoreUnavailable, err)
	}

	if !ls.hasher.Verify(req.Password, account.PasswordHash) || !account.IsActive {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := ls.issuer.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		Account:   account.View(),
	}, nil
}
