package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/beerstock?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func newCleanMySQLAdapter(t *testing.T) *MySQLAdapter {
	db := getMySQLDB(t)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	if err := adapter.EnsureSchema(ctx); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM items`); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	return adapter
}

func TestMySQLAdapter_Contract(t *testing.T) {
	runRepositoryContract(t, newCleanMySQLAdapter(t))
}

func TestMySQLAdapter_DuplicateName(t *testing.T) {
	adapter := newCleanMySQLAdapter(t)
	ctx := context.Background()

	if _, err := adapter.Save(ctx, testItem("Brahma")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err := adapter.Save(ctx, testItem("Brahma"))
	if !errors.Is(err, domain.ErrItemAlreadyExists) {
		t.Errorf("expected ErrItemAlreadyExists, got: %v", err)
	}
}
