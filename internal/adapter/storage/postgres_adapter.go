package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

const pgUniqueViolation = "23505"

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS items (
		id           BIGSERIAL PRIMARY KEY,
		name         VARCHAR(200) NOT NULL UNIQUE,
		brand        VARCHAR(200) NOT NULL,
		max_capacity INTEGER NOT NULL,
		quantity     INTEGER NOT NULL,
		type         VARCHAR(32) NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`

const postgresItemColumns = `id, name, brand, max_capacity, quantity, type, created_at, updated_at`

type PostgresAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresAdapter(pool *pgxpool.Pool) *PostgresAdapter {
	return &PostgresAdapter{pool: pool}
}

// EnsureSchema creates the items table if it does not exist.
func (p *PostgresAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create items table: %w", err)
	}
	return nil
}

func (p *PostgresAdapter) Save(ctx context.Context, item domain.Item) (*domain.Item, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO items (name, brand, max_capacity, quantity, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING `+postgresItemColumns,
		item.Name, item.Brand, item.MaxCapacity, item.Quantity, string(item.Type), time.Now().UTC(),
	)
	saved, err := scanPgItem(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w: name %q", domain.ErrItemAlreadyExists, item.Name)
		}
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return saved, nil
}

func (p *PostgresAdapter) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+postgresItemColumns+` FROM items WHERE id = $1`, id)
	return scanPgItem(row)
}

func (p *PostgresAdapter) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+postgresItemColumns+` FROM items WHERE name = $1`, name)
	return scanPgItem(row)
}

func (p *PostgresAdapter) FindAll(ctx context.Context) ([]domain.Item, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+postgresItemColumns+` FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanPgItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (p *PostgresAdapter) DeleteByID(ctx context.Context, id int64) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (p *PostgresAdapter) IncrementQuantity(ctx context.Context, id int64, amount int) (bool, error) {
	tag, err := p.pool.Exec(ctx, `
		UPDATE items
		SET quantity = quantity + $1::bigint, updated_at = $2
		WHERE id = $3 AND $1::bigint <= max_capacity - quantity`,
		amount, time.Now().UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("increment quantity: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanPgItem(row pgx.Row) (*domain.Item, error) {
	var item domain.Item
	var typ string
	err := row.Scan(
		&item.ID, &item.Name, &item.Brand, &item.MaxCapacity, &item.Quantity, &typ,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}
	item.Type = domain.Type(typ)
	return &item, nil
}
