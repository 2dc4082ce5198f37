// Package sqlitestore implements rowstore.Store on a local SQLite database so the
// ledger can run without a spreadsheet. Each table row is stored as a JSON array
// of cells keyed by (sheet, position); positions stay contiguous from 1.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TalShar783/Taskmaster/internal/ledgererror"
	"github.com/TalShar783/Taskmaster/internal/logging"
	"github.com/TalShar783/Taskmaster/internal/models"
	"github.com/TalShar783/Taskmaster/internal/rowstore"

	_ "modernc.org/sqlite"
)

const serviceName = "sqlite"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sheets (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS rows (
	sheet    TEXT    NOT NULL REFERENCES sheets(name) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	cells    TEXT    NOT NULL,
	PRIMARY KEY (sheet, position)
);
`

// Store is a SQLite-backed row store.
type Store struct {
	db  *sql.DB
	log logging.Logger
}

var _ rowstore.Store = (*Store)(nil)

// Open creates or opens the database at path and makes sure every named
// table exists. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, tables []string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ledgererror.NewExternal(serviceName, "open", err)
	}
	// One connection: a single writer, and ":memory:" stays one database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, ledgererror.NewExternal(serviceName, "connect", err)
	}
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, ledgererror.NewExternal(serviceName, pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, ledgererror.NewExternal(serviceName, "apply schema", err)
	}

	s := &Store{db: db, log: logger.WithField(logging.FieldBackend, serviceName)}
	for _, table := range tables {
		if err := s.CreateTable(ctx, table); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	s.log.Info("Opened SQLite store", logging.F("path", path), logging.F(logging.FieldCount, len(tables)))
	return s, nil
}

// CreateTable registers an empty table; existing tables are left untouched.
func (s *Store) CreateTable(ctx context.Context, table string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO sheets(name) VALUES (?)`, table); err != nil {
		return ledgererror.NewExternal(serviceName, "create table "+table, err)
	}
	return nil
}

// ReplaceTable overwrites a table's rows, creating the table if needed.
func (s *Store) ReplaceTable(ctx context.Context, table string, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledgererror.NewExternal(serviceName, "begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO sheets(name) VALUES (?)`, table); err != nil {
		return ledgererror.NewExternal(serviceName, "create table "+table, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rows WHERE sheet = ?`, table); err != nil {
		return ledgererror.NewExternal(serviceName, "clear table "+table, err)
	}
	for i, row := range rows {
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("error encoding row %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rows(sheet, position, cells) VALUES (?, ?, ?)`, table, i+1, string(cells)); err != nil {
			return ledgererror.NewExternal(serviceName, "insert row into "+table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return ledgererror.NewExternal(serviceName, "commit", err)
	}
	return nil
}

func (s *Store) tableExists(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, table string) error {
	var name string
	err := q.QueryRowContext(ctx, `SELECT name FROM sheets WHERE name = ?`, table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", rowstore.ErrTableNotFound, table)
	}
	if err != nil {
		return ledgererror.NewExternal(serviceName, "lookup table "+table, err)
	}
	return nil
}

// GetRows implements rowstore.Store.
func (s *Store) GetRows(ctx context.Context, table string) ([][]string, error) {
	if err := s.tableExists(ctx, s.db, table); err != nil {
		return nil, err
	}
	rs, err := s.db.QueryContext(ctx, `SELECT cells FROM rows WHERE sheet = ? ORDER BY position`, table)
	if err != nil {
		return nil, ledgererror.NewExternal(serviceName, "get rows of "+table, err)
	}
	defer rs.Close()

	var rows [][]string
	for rs.Next() {
		var raw string
		if err := rs.Scan(&raw); err != nil {
			return nil, ledgererror.NewExternal(serviceName, "scan row", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("corrupt row in %s: %w", table, err)
		}
		rows = append(rows, cells)
	}
	if err := rs.Err(); err != nil {
		return nil, ledgererror.NewExternal(serviceName, "get rows of "+table, err)
	}
	return rowstore.TrimRows(rows), nil
}

// AppendRow implements rowstore.Store.
func (s *Store) AppendRow(ctx context.Context, table string, values []string) error {
	cells, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("error encoding row: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledgererror.NewExternal(serviceName, "begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.tableExists(ctx, tx, table); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rows(sheet, position, cells)
		SELECT ?, COALESCE(MAX(position), 0) + 1, ? FROM rows WHERE sheet = ?`,
		table, string(cells), table); err != nil {
		return ledgererror.NewExternal(serviceName, "append row to "+table, err)
	}
	if err := tx.Commit(); err != nil {
		return ledgererror.NewExternal(serviceName, "commit", err)
	}
	s.log.Debug("Appended row", logging.F(logging.FieldTable, table))
	return nil
}

// FindCell implements rowstore.Store.
func (s *Store) FindCell(ctx context.Context, table, value string) (rowstore.Cell, error) {
	rows, err := s.GetRows(ctx, table)
	if err != nil {
		return rowstore.Cell{}, err
	}
	cell, ok := rowstore.FindInRows(rows, value)
	if !ok {
		return rowstore.Cell{}, fmt.Errorf("%w: %q in %s", rowstore.ErrCellNotFound, value, table)
	}
	return cell, nil
}

// DeleteRow implements rowstore.Store. Rows below the deleted one move up.
func (s *Store) DeleteRow(ctx context.Context, table string, row int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledgererror.NewExternal(serviceName, "begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.tableExists(ctx, tx, table); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM rows WHERE sheet = ? AND position = ?`, table, row)
	if err != nil {
		return ledgererror.NewExternal(serviceName, "delete row of "+table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("row %d out of range for %s", row, table)
	}
	// Two steps so the primary key never sees a transient duplicate.
	if _, err := tx.ExecContext(ctx,
		`UPDATE rows SET position = -(position - 1) WHERE sheet = ? AND position > ?`, table, row); err != nil {
		return ledgererror.NewExternal(serviceName, "renumber rows of "+table, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE rows SET position = -position WHERE sheet = ? AND position < 0`, table); err != nil {
		return ledgererror.NewExternal(serviceName, "renumber rows of "+table, err)
	}
	if err := tx.Commit(); err != nil {
		return ledgererror.NewExternal(serviceName, "commit", err)
	}
	s.log.Debug("Deleted row", logging.F(logging.FieldTable, table), logging.F(logging.FieldRow, row))
	return nil
}

// Close implements rowstore.Store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
