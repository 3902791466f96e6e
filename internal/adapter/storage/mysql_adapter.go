package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

const mysqlDuplicateEntry = 1062

const mysqlSchema = `
	CREATE TABLE IF NOT EXISTS items (
		id           BIGINT AUTO_INCREMENT PRIMARY KEY,
		name         VARCHAR(200) NOT NULL,
		brand        VARCHAR(200) NOT NULL,
		max_capacity INT NOT NULL,
		quantity     INT NOT NULL,
		type         VARCHAR(32) NOT NULL,
		created_at   DATETIME(6) NOT NULL,
		updated_at   DATETIME(6) NOT NULL,
		UNIQUE KEY uq_items_name (name)
	)`

const mysqlItemColumns = `id, name, brand, max_capacity, quantity, type, created_at, updated_at`

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// EnsureSchema creates the items table if it does not exist.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("create items table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Save(ctx context.Context, item domain.Item) (*domain.Item, error) {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := m.db.ExecContext(ctx, `
		INSERT INTO items (name, brand, max_capacity, quantity, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Brand, item.MaxCapacity, item.Quantity, item.Type,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return nil, fmt.Errorf("%w: name %q", domain.ErrItemAlreadyExists, item.Name)
		}
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	item.ID = id
	return &item, nil
}

func (m *MySQLAdapter) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+mysqlItemColumns+` FROM items WHERE id = ?`, id)
	return scanItem(row)
}

func (m *MySQLAdapter) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+mysqlItemColumns+` FROM items WHERE name = ?`, name)
	return scanItem(row)
}

func (m *MySQLAdapter) FindAll(ctx context.Context) ([]domain.Item, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT `+mysqlItemColumns+` FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
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

func (m *MySQLAdapter) DeleteByID(ctx context.Context, id int64) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) IncrementQuantity(ctx context.Context, id int64, amount int) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE items
		SET quantity = quantity + ?, updated_at = ?
		WHERE id = ? AND ? <= max_capacity - quantity`,
		amount, time.Now().UTC(), id, amount,
	)
	if err != nil {
		return false, fmt.Errorf("increment quantity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var item domain.Item
	err := row.Scan(
		&item.ID, &item.Name, &item.Brand, &item.MaxCapacity, &item.Quantity, &item.Type,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return &item, nil
}
