package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Zee-create-614/papertrader/ledger"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// SQLite stores each account as a JSON blob in a single-table database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if necessary creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, unavailable("sqlite: open", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, unavailable("sqlite: schema", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context, accountID string) (*ledger.Account, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM accounts WHERE id = ?`, accountID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: load: %w: %q", ErrAccountNotFound, accountID)
	}
	if err != nil {
		return nil, unavailable("sqlite: load", err)
	}
	return decode([]byte(data))
}

func (s *SQLite) Save(ctx context.Context, acct *ledger.Account) error {
	data, err := encode(acct)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		acct.ID, string(data), time.Now().UTC(),
	)
	if err != nil {
		return unavailable("sqlite: save", err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, accountID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, accountID)
	if err != nil {
		return unavailable("sqlite: delete", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("sqlite: delete: %w: %q", ErrAccountNotFound, accountID)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
