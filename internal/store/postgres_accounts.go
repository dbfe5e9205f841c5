package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortify/internal/account"
)

// PostgresAccountStore is a PostgreSQL implementation of account.Repository.
type PostgresAccountStore struct {
	pool *pgxpool.Pool
}

func NewPostgresAccountStore(pool *pgxpool.Pool) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool}
}

func (p *PostgresAccountStore) Create(ctx context.Context, acct *account.Account) error {
	query := `
		INSERT INTO accounts (username, display_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query,
		acct.Username,
		acct.DisplayName,
		acct.PasswordHash,
		acct.CreatedAt,
	).Scan(&acct.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return account.ErrDuplicateAccount
		}

		return err
	}

	return nil
}

func (p *PostgresAccountStore) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	return p.getOne(ctx, `
		SELECT id, username, display_name, password_hash, created_at
		FROM accounts
		WHERE id = $1
	`, id)
}

func (p *PostgresAccountStore) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	return p.getOne(ctx, `
		SELECT id, username, display_name, password_hash, created_at
		FROM accounts
		WHERE username = $1
	`, username)
}

// Update rewrites the display name and password hash.
func (p *PostgresAccountStore) Update(ctx context.Context, acct *account.Account) error {
	query := `
		UPDATE accounts SET display_name = $2, password_hash = $3
		WHERE id = $1
	`

	tag, err := p.pool.Exec(ctx, query, acct.ID, acct.DisplayName, acct.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return account.ErrDuplicateAccount
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}

	return nil
}

func (p *PostgresAccountStore) Count(ctx context.Context) (int64, error) {
	var n int64

	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)

	return n, err
}

func (p *PostgresAccountStore) getOne(ctx context.Context, query string, arg any) (*account.Account, error) {
	var acct account.Account

	err := p.pool.QueryRow(ctx, query, arg).Scan(
		&acct.ID,
		&acct.Username,
		&acct.DisplayName,
		&acct.PasswordHash,
		&acct.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, err
	}

	return &acct, nil
}

var _ account.Repository = (*PostgresAccountStore)(nil)
