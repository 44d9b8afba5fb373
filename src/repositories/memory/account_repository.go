// Package memory provides an in-process AccountRepository. It enforces the
// same unique index on initials and the same column limits as the PostgreSQL
// schema.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/khabaroff/staff-accounts/src/models"
	"github.com/khabaroff/staff-accounts/src/repositories"
)

// AccountRepository stores accounts in memory
type AccountRepository struct {
	mu         sync.RWMutex
	accounts   map[uuid.UUID]*models.Account
	byInitials map[string]uuid.UUID
	now        func() time.Time
}

// NewAccountRepository creates an empty in-memory repository
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts:   make(map[uuid.UUID]*models.Account),
		byInitials: make(map[string]uuid.UUID),
		now:        time.Now,
	}
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return account.Clone(), nil
}

func (r *AccountRepository) FindByInitials(ctx context.Context, initials string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byInitials[initials]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.accounts[id].Clone(), nil
}

// List returns accounts ordered by initials
func (r *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		out = append(out, account.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Initials != out[j].Initials {
			return out[i].Initials < out[j].Initials
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// checkColumns rejects values the accounts table would refuse
func checkColumns(a *models.Account) error {
	limits := []struct {
		value string
		max   int
	}{
		{a.DisplayName, models.MaxDisplayNameLength},
		{a.Initials, models.MaxInitialsLength},
		{a.Email, models.MaxEmailLength},
		{a.PasswordHash, models.MaxPasswordHash},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max || strings.ContainsRune(l.value, 0) {
			return repositories.ErrInvalidValue
		}
	}
	return nil
}

func (r *AccountRepository) Insert(ctx context.Context, account *models.Account) error {
	if err := checkColumns(account); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byInitials[account.Initials]; taken {
		return repositories.ErrDuplicateInitials
	}

	now := r.now()
	account.ID = uuid.New()
	account.CreatedAt = now
	account.UpdatedAt = now

	r.accounts[account.ID] = account.Clone()
	r.byInitials[account.Initials] = account.ID
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	if err := checkColumns(account); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.accounts[account.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if current.Initials == models.SuperadminInitials {
		return repositories.ErrImmutable
	}
	if !current.UpdatedAt.Equal(account.UpdatedAt) {
		return repositories.ErrStale
	}
	if owner, taken := r.byInitials[account.Initials]; taken && owner != account.ID {
		return repositories.ErrDuplicateInitials
	}
	if current.IsAdmin && current.IsActive && !(account.IsAdmin && account.IsActive) && r.activeAdmins() <= 1 {
		return repositories.ErrLastActiveAdmin
	}

	account.CreatedAt = current.CreatedAt
	account.UpdatedAt = r.now()

	delete(r.byInitials, current.Initials)
	r.accounts[account.ID] = account.Clone()
	r.byInitials[account.Initials] = account.ID
	return nil
}

func (r *AccountRepository) CountActiveAdmins(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.activeAdmins(), nil
}

// activeAdmins requires r.mu to be held
func (r *AccountRepository) activeAdmins() int {
	count := 0
	for _, account := range r.accounts {
		if account.IsAdmin && account.IsActive {
			count++
		}
	}
	return count
}

// Ensure AccountRepository implements the interface
var _ repositories.AccountRepository = (*AccountRepository)(nil)
