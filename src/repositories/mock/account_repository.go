package mock

import (
	"context"

	"github.com/google/uuid"
	"github.com/khabaroff/staff-accounts/src/models"
	"github.com/khabaroff/staff-accounts/src/repositories"
)

// AccountRepository is a mock implementation of repositories.AccountRepository
type AccountRepository struct {
	// Function stubs that can be overridden in tests
	FindByIDFunc          func(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByInitialsFunc    func(ctx context.Context, initials string) (*models.Account, error)
	ListFunc              func(ctx context.Context) ([]*models.Account, error)
	InsertFunc            func(ctx context.Context, account *models.Account) error
	UpdateFunc            func(ctx context.Context, account *models.Account) error
	CountActiveAdminsFunc func(ctx context.Context) (int, error)

	// Call tracking
	Calls map[string][]interface{}
}

// NewAccountRepository creates a new mock account repository.
// Lookups default to repositories.ErrNotFound.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		Calls: make(map[string][]interface{}),
	}
}

func (m *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	m.Calls["FindByID"] = append(m.Calls["FindByID"], id)
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, repositories.ErrNotFound
}

func (m *AccountRepository) FindByInitials(ctx context.Context, initials string) (*models.Account, error) {
	m.Calls["FindByInitials"] = append(m.Calls["FindByInitials"], initials)
	if m.FindByInitialsFunc != nil {
		return m.FindByInitialsFunc(ctx, initials)
	}
	return nil, repositories.ErrNotFound
}

func (m *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	m.Calls["List"] = append(m.Calls["List"], nil)
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *AccountRepository) Insert(ctx context.Context, account *models.Account) error {
	m.Calls["Insert"] = append(m.Calls["Insert"], account)
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, account)
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	return nil
}

func (m *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	m.Calls["Update"] = append(m.Calls["Update"], account)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, account)
	}
	return nil
}

func (m *AccountRepository) CountActiveAdmins(ctx context.Context) (int, error) {
	m.Calls["CountActiveAdmins"] = append(m.Calls["CountActiveAdmins"], nil)
	if m.CountActiveAdminsFunc != nil {
		return m.CountActiveAdminsFunc(ctx)
	}
	return 0, nil
}

// Ensure AccountRepository implements the interface
var _ repositories.AccountRepository = (*AccountRepository)(nil)
