package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/khabaroff/staff-accounts/src/models"
	"github.com/khabaroff/staff-accounts/src/repositories"
)

const (
	// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
	uniqueViolation = "23505"

	// dataExceptionClass covers oversized values, NUL bytes and bad encodings
	dataExceptionClass = "22"

	// adminGuardLock is the advisory lock key held while an update removes an active administrator
	adminGuardLock int64 = 0x5354_4146_4631
)

// DBTX is the subset of pgxpool.Pool (and pgx.Tx) used by the repository
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository persists accounts in PostgreSQL
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository creates a PostgreSQL-backed repository
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, display_name, initials, is_admin, is_active, password_hash, email, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(
		&a.ID, &a.DisplayName, &a.Initials, &a.IsAdmin, &a.IsActive,
		&a.PasswordHash, &a.Email, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// translateError maps driver errors onto the repository sentinels
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repositories.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation:
			return fmt.Errorf("%w: %s", repositories.ErrDuplicateInitials, pgErr.ConstraintName)
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == dataExceptionClass:
			return fmt.Errorf("%w: %w", repositories.ErrInvalidValue, err)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return fmt.Errorf("%w: %w", repositories.ErrUnavailable, err)
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return account, nil
}

func (r *AccountRepository) FindByInitials(ctx context.Context, initials string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE initials = $1`

	account, err := scanAccount(r.db.QueryRow(ctx, query, initials))
	if err != nil {
		return nil, translateError(err)
	}
	return account, nil
}

// List returns accounts ordered by initials. COLLATE "C" keeps the ordering
// byte-wise, matching the case-sensitive uniqueness rule.
func (r *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY initials COLLATE "C", id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, translateError(err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return accounts, nil
}

func (r *AccountRepository) Insert(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (display_name, initials, is_admin, is_active, password_hash, email)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		account.DisplayName, account.Initials, account.IsAdmin, account.IsActive,
		account.PasswordHash, account.Email,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	return translateError(err)
}

// Update writes the account inside a transaction that first locks the stored
// row. Demoting or deactivating an active administrator also takes
// adminGuardLock, so concurrent demotions count admins one at a time.
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return translateError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		initials          string
		isAdmin, isActive bool
		updatedAt         time.Time
	)
	err = tx.QueryRow(ctx,
		`SELECT initials, is_admin, is_active, updated_at FROM accounts WHERE id = $1 FOR UPDATE`,
		account.ID,
	).Scan(&initials, &isAdmin, &isActive, &updatedAt)
	if err != nil {
		return translateError(err)
	}

	if initials == models.SuperadminInitials {
		return repositories.ErrImmutable
	}
	if !updatedAt.Equal(account.UpdatedAt) {
		return repositories.ErrStale
	}

	if isAdmin && isActive && !(account.IsAdmin && account.IsActive) {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, adminGuardLock); err != nil {
			return translateError(err)
		}
		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE is_admin AND is_active`).Scan(&count); err != nil {
			return translateError(err)
		}
		if count <= 1 {
			return repositories.ErrLastActiveAdmin
		}
	}

	query := `
		UPDATE accounts
		SET display_name = $2, initials = $3, is_admin = $4, is_active = $5,
		    password_hash = $6, email = $7, updated_at = clock_timestamp()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		account.ID, account.DisplayName, account.Initials, account.IsAdmin, account.IsActive,
		account.PasswordHash, account.Email,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return translateError(err)
	}

	return translateError(tx.Commit(ctx))
}

func (r *AccountRepository) CountActiveAdmins(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE is_admin AND is_active`).Scan(&count)
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// Ensure AccountRepository implements the interface
var _ repositories.AccountRepository = (*AccountRepository)(nil)
