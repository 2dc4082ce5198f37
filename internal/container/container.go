// Package container provides dependency injection for the taskmaster application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/TalShar783/Taskmaster/internal/catalog"
	"github.com/TalShar783/Taskmaster/internal/config"
	"github.com/TalShar783/Taskmaster/internal/dateutils"
	"github.com/TalShar783/Taskmaster/internal/dice"
	"github.com/TalShar783/Taskmaster/internal/export"
	"github.com/TalShar783/Taskmaster/internal/ledger"
	"github.com/TalShar783/Taskmaster/internal/logging"
	"github.com/TalShar783/Taskmaster/internal/models"
	"github.com/TalShar783/Taskmaster/internal/rowstore"
	"github.com/TalShar783/Taskmaster/internal/sheets"
	"github.com/TalShar783/Taskmaster/internal/sqlitestore"
	"github.com/TalShar783/Taskmaster/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	store    rowstore.Store
	catalog  *catalog.Catalog
	resolver *dice.Resolver
	recorder *ledger.Recorder
	exporter *export.Writer
}

// NewContainer creates and wires all application dependencies, opening the
// row store selected by cfg.Store.Backend.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))

	rows, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c, err := NewContainerWithStore(cfg, rows, logger)
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithStore wires the application around an already open row store.
func NewContainerWithStore(cfg *config.Config, rows rowstore.Store, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if rows == nil {
		return nil, fmt.Errorf("row store cannot be nil")
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	loc, err := dateutils.LoadLocation(cfg.Ledger.Timezone)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(rows, cfg.Tables, logger,
		catalog.WithBroadcastName(cfg.Ledger.BroadcastName),
		catalog.WithDefaultBountyReward(cfg.Ledger.DefaultBountyReward))
	resolver := dice.NewResolver(nil)
	recorder := ledger.NewRecorder(rows, cat, logger,
		ledger.WithClock(dateutils.ClockIn(loc)),
		ledger.WithResolver(resolver),
		ledger.WithTables(cfg.Tables),
		ledger.WithNotesSuffix(cfg.Ledger.NotesSuffix))

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldBackend, cfg.Store.Backend),
		logging.F("timezone", loc.String()))

	return &Container{
		logger:   logger,
		config:   cfg,
		store:    rows,
		catalog:  cat,
		resolver: resolver,
		recorder: recorder,
		exporter: export.NewWriter(export.DefaultDelimiter, logger),
	}, nil
}

// tableCreator is implemented by the local backends, which can create tables.
type tableCreator interface {
	CreateTable(ctx context.Context, name string) error
}

// headerRows are the first rows of a freshly created local ledger.
func headerRows(tables models.Tables) map[string][]string {
	return map[string][]string{
		tables.Transactions: {"Date", "Name", "Reason", "Amount", "Notes"},
		tables.Tasks:        {models.TaskHeader, "Reward", "Average", "Notes"},
		tables.Bounties:     {models.BountyHeader, "Reward"},
		tables.Totals:       {"", "Total"},
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (rowstore.Store, error) {
	var (
		rows rowstore.Store
		err  error
	)
	switch cfg.Store.Backend {
	case config.BackendSheets:
		client, err := sheets.New(ctx, sheets.Options{
			SpreadsheetID:     cfg.Sheets.SpreadsheetID,
			CredentialsFile:   cfg.Sheets.CredentialsFile,
			RequestsPerMinute: cfg.Sheets.RequestsPerMinute,
		}, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.BackendSQLite:
		rows, err = sqlitestore.Open(ctx, cfg.SQLite.Path, nil, logger)
	case config.BackendMemory:
		if cfg.Memory.FixtureFile == "" {
			rows = store.NewMemoryStore(logger)
		} else {
			rows, err = store.NewMemoryStoreFromFixture(cfg.Memory.FixtureFile, cfg.Memory.Persist, logger)
		}
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}
	if err := seedLocalTables(ctx, rows, cfg.Tables, logger); err != nil {
		_ = rows.Close()
		return nil, err
	}
	return rows, nil
}

// seedLocalTables gives every empty or missing table of a local backend its
// header row, so a new ledger can be refreshed straight away.
func seedLocalTables(ctx context.Context, rows rowstore.Store, tables models.Tables, logger logging.Logger) error {
	creator, ok := rows.(tableCreator)
	if !ok {
		return nil
	}
	for table, header := range headerRows(tables) {
		existing, err := rows.GetRows(ctx, table)
		if err != nil && !errors.Is(err, rowstore.ErrTableNotFound) {
			return fmt.Errorf("error reading table %s: %w", table, err)
		}
		if len(existing) > 0 {
			continue
		}
		if err := creator.CreateTable(ctx, table); err != nil {
			return err
		}
		if err := rows.AppendRow(ctx, table, header); err != nil {
			return fmt.Errorf("error seeding table %s: %w", table, err)
		}
		logger.Debug("Seeded empty table", logging.F(logging.FieldTable, table))
	}
	return nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the row store the ledger lives in.
func (c *Container) GetStore() rowstore.Store {
	return c.store
}

// GetCatalog returns the shared catalog.
func (c *Container) GetCatalog() *catalog.Catalog {
	return c.catalog
}

// GetResolver returns the reward resolver.
func (c *Container) GetResolver() *dice.Resolver {
	return c.resolver
}

// GetRecorder returns the ledger recorder.
func (c *Container) GetRecorder() *ledger.Recorder {
	return c.recorder
}

// GetExporter returns the CSV export writer.
func (c *Container) GetExporter() *export.Writer {
	return c.exporter
}

// Close releases the row store.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("error closing row store: %w", err)
	}
	c.logger.Debug("Container closed")
	return nil
}
