package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/khabaroff/staff-accounts/src/models"
)

// Sentinel errors returned by every AccountRepository implementation
var (
	// ErrNotFound indicates no account matched the lookup
	ErrNotFound = errors.New("account not found")

	// ErrDuplicateInitials indicates the store's unique constraint on initials rejected the write
	ErrDuplicateInitials = errors.New("duplicate initials")

	// ErrUnavailable indicates the store could not be reached
	ErrUnavailable = errors.New("account store unavailable")

	// ErrLastActiveAdmin indicates the update would leave no active administrator
	ErrLastActiveAdmin = errors.New("last active administrator")

	// ErrImmutable indicates the stored account carries the superadmin initials
	ErrImmutable = errors.New("account is immutable")

	// ErrStale indicates the account changed after the caller read it
	ErrStale = errors.New("account modified concurrently")

	// ErrInvalidValue indicates the store rejected a field value
	ErrInvalidValue = errors.New("invalid field value")
)

// AccountRepository defines the interface for account data access.
// Implementations must enforce initials uniqueness themselves; callers treat
// ErrDuplicateInitials as the authoritative conflict signal.
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByInitials(ctx context.Context, initials string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)

	// Insert assigns the account ID and timestamps
	Insert(ctx context.Context, account *models.Account) error

	// Update replaces the stored row. account.UpdatedAt must match the stored
	// value (ErrStale otherwise). The store refuses to change the superadmin
	// row (ErrImmutable) and to leave no active administrator
	// (ErrLastActiveAdmin); both checks run atomically with the write.
	Update(ctx context.Context, account *models.Account) error

	CountActiveAdmins(ctx context.Context) (int, error)
}
