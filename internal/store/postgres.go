package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortify/internal/shortener"
)

// PostgresLinkStore is a PostgreSQL implementation of shortener.Repository.
type PostgresLinkStore struct {
	pool *pgxpool.Pool
}

// NewPostgresLinkStore creates a new PostgreSQL-backed link store.
func NewPostgresLinkStore(pool *pgxpool.Pool) *PostgresLinkStore {
	return &PostgresLinkStore{pool: pool}
}

const linkColumns = `id, long_url, COALESCE(code, ''), owner_id, created_at`

func (p *PostgresLinkStore) Create(ctx context.Context, link *shortener.ShortLink) error {
	query := `
		INSERT INTO short_links (long_url, owner_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query, link.LongURL, link.OwnerID, link.CreatedAt).Scan(&link.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return shortener.ErrDuplicateURL
		}

		return err
	}

	return nil
}

// AssignCode writes the code once; later calls leave the stored code untouched.
func (p *PostgresLinkStore) AssignCode(ctx context.Context, id int64, code shortener.Code) error {
	query := `
		UPDATE short_links SET code = $2
		WHERE id = $1 AND code IS NULL
	`

	tag, err := p.pool.Exec(ctx, query, id, string(code))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM short_links WHERE id = $1)`, id).
			Scan(&exists); err != nil {
			return err
		}

		if !exists {
			return shortener.ErrNotFound
		}
	}

	return nil
}

func (p *PostgresLinkStore) GetByID(ctx context.Context, id int64) (*shortener.ShortLink, error) {
	return p.getOne(ctx, `SELECT `+linkColumns+` FROM short_links WHERE id = $1`, id)
}

func (p *PostgresLinkStore) GetByLongURL(ctx context.Context, longURL string) (*shortener.ShortLink, error) {
	return p.getOne(ctx, `SELECT `+linkColumns+` FROM short_links WHERE long_url = $1`, longURL)
}

func (p *PostgresLinkStore) ExistsByLongURL(ctx context.Context, longURL string) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM short_links WHERE long_url = $1)`, longURL,
	).Scan(&exists)

	return exists, err
}

func (p *PostgresLinkStore) ListByOwner(ctx context.Context, ownerID int64) ([]*shortener.ShortLink, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+linkColumns+` FROM short_links WHERE owner_id = $1 ORDER BY id DESC`, ownerID,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*shortener.ShortLink, error) {
		return scanLink(row)
	})
}

func (p *PostgresLinkStore) Count(ctx context.Context) (int64, error) {
	var n int64

	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM short_links`).Scan(&n)

	return n, err
}

func (p *PostgresLinkStore) getOne(ctx context.Context, query string, arg any) (*shortener.ShortLink, error) {
	link, err := scanLink(p.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return link, nil
}

func scanLink(row pgx.Row) (*shortener.ShortLink, error) {
	var (
		link shortener.ShortLink
		code string
	)

	if err := row.Scan(&link.ID, &link.LongURL, &code, &link.OwnerID, &link.CreatedAt); err != nil {
		return nil, err
	}

	link.Code = shortener.Code(code)

	return &link, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

var _ shortener.Repository = (*PostgresLinkStore)(nil)
