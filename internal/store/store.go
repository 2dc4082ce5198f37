// Package store provides an in-memory row store that can be seeded from, and
// saved back to, a YAML fixture file. It backs the "memory" store backend and is
// the fake used by the ledger, catalog and bot tests.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/TalShar783/Taskmaster/internal/logging"
	"github.com/TalShar783/Taskmaster/internal/models"
	"github.com/TalShar783/Taskmaster/internal/rowstore"

	"gopkg.in/yaml.v3"
)

// Operation names used for call counting and failure injection.
const (
	OpGetRows   = "get_rows"
	OpAppendRow = "append_row"
	OpFindCell  = "find_cell"
	OpDeleteRow = "delete_row"
)

// Fixture is the on-disk YAML layout: sheet name to rows of cells.
type Fixture struct {
	Tables map[string][][]string `yaml:"tables"`
}

// MemoryStore keeps tables in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu          sync.Mutex
	tables      map[string][][]string
	calls       map[string]int
	failures    map[string]error
	fixtureFile string
	persist     bool
	log         logging.Logger
}

var _ rowstore.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(logger logging.Logger) *MemoryStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &MemoryStore{
		tables:   make(map[string][][]string),
		calls:    make(map[string]int),
		failures: make(map[string]error),
		log:      logger,
	}
}

// NewMemoryStoreFromFixture loads tables from a YAML fixture. With persist set,
// every successful append or delete writes the tables back to the same file.
// A missing fixture file yields an empty store that will be created on first save.
func NewMemoryStoreFromFixture(path string, persist bool, logger logging.Logger) (*MemoryStore, error) {
	s := NewMemoryStore(logger)
	s.persist = persist

	resolved, err := FindConfigFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Warn("Fixture file not found, starting with empty tables", logging.F("file", path))
			s.fixtureFile = path
			return s, nil
		}
		return nil, fmt.Errorf("error resolving fixture file: %w", err)
	}
	s.fixtureFile = resolved

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("error reading fixture file: %w", err)
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("error parsing fixture file: %w", err)
	}
	for name, rows := range fx.Tables {
		s.tables[name] = rowstore.TrimRows(rows)
	}
	s.log.Debug("Loaded fixture", logging.F("file", resolved), logging.F(logging.FieldCount, len(fx.Tables)))
	return s, nil
}

// FindConfigFile looks for a file as given, then under ./config and
// ~/.config/taskmaster.
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".config", "taskmaster", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// SetTable replaces a table's rows.
func (s *MemoryStore) SetTable(name string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = copyRows(rows)
}

// CreateTable adds an empty table unless it already exists.
func (s *MemoryStore) CreateTable(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[name]; !ok {
		s.tables[name] = [][]string{}
	}
	return nil
}

// Table returns a copy of a table's rows.
func (s *MemoryStore) Table(name string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRows(s.tables[name])
}

// FailOn makes every subsequent call of op return err. A nil err clears it.
func (s *MemoryStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// CallCount reports how many times op was invoked, failed calls included.
func (s *MemoryStore) CallCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// GetRows implements rowstore.Store.
func (s *MemoryStore) GetRows(ctx context.Context, table string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpGetRows); err != nil {
		return nil, err
	}
	rows, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", rowstore.ErrTableNotFound, table)
	}
	return copyRows(rows), nil
}

// AppendRow implements rowstore.Store.
func (s *MemoryStore) AppendRow(ctx context.Context, table string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpAppendRow); err != nil {
		return err
	}
	rows, ok := s.tables[table]
	if !ok {
		return fmt.Errorf("%w: %s", rowstore.ErrTableNotFound, table)
	}
	s.tables[table] = append(rows, append([]string(nil), values...))
	return s.saveLocked()
}

// FindCell implements rowstore.Store.
func (s *MemoryStore) FindCell(ctx context.Context, table, value string) (rowstore.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpFindCell); err != nil {
		return rowstore.Cell{}, err
	}
	rows, ok := s.tables[table]
	if !ok {
		return rowstore.Cell{}, fmt.Errorf("%w: %s", rowstore.ErrTableNotFound, table)
	}
	cell, found := rowstore.FindInRows(rows, value)
	if !found {
		return rowstore.Cell{}, fmt.Errorf("%w: %q in %s", rowstore.ErrCellNotFound, value, table)
	}
	return cell, nil
}

// DeleteRow implements rowstore.Store.
func (s *MemoryStore) DeleteRow(ctx context.Context, table string, row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, OpDeleteRow); err != nil {
		return err
	}
	rows, ok := s.tables[table]
	if !ok {
		return fmt.Errorf("%w: %s", rowstore.ErrTableNotFound, table)
	}
	if row < 1 || row > len(rows) {
		return fmt.Errorf("row %d out of range for %s (%d rows)", row, table, len(rows))
	}
	s.tables[table] = append(rows[:row-1:row-1], rows[row:]...)
	return s.saveLocked()
}

// Close implements rowstore.Store.
func (s *MemoryStore) Close() error {
	return nil
}

// Save writes the tables to the fixture file.
func (s *MemoryStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFixture()
}

func (s *MemoryStore) begin(ctx context.Context, op string) error {
	s.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.failures[op]
}

func (s *MemoryStore) saveLocked() error {
	if !s.persist {
		return nil
	}
	return s.writeFixture()
}

func (s *MemoryStore) writeFixture() error {
	if s.fixtureFile == "" {
		return fmt.Errorf("memory store has no fixture file to save to")
	}
	if err := os.MkdirAll(filepath.Dir(s.fixtureFile), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	data, err := yaml.Marshal(Fixture{Tables: s.tables})
	if err != nil {
		return fmt.Errorf("error marshaling fixture: %w", err)
	}
	if err := os.WriteFile(s.fixtureFile, data, models.PermissionFile); err != nil {
		return fmt.Errorf("error writing fixture: %w", err)
	}
	s.log.Debug("Saved fixture", logging.F("file", s.fixtureFile), logging.F(logging.FieldCount, len(s.tables)))
	return nil
}

func copyRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
