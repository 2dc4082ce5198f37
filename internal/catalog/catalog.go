// Package catalog keeps name-indexed snapshots of the task, bounty and user
// tables. Each kind is Stale until a refresh succeeds, and a refresh replaces the
// whole snapshot at once so readers never observe a half-built map.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/TalShar783/Taskmaster/internal/ledgererror"
	"github.com/TalShar783/Taskmaster/internal/logging"
	"github.com/TalShar783/Taskmaster/internal/models"
	"github.com/TalShar783/Taskmaster/internal/rowstore"

	"golang.org/x/sync/errgroup"
)

// State is the freshness of one kind's snapshot.
type State int

const (
	// Stale means the kind must be refreshed before use.
	Stale State = iota
	// Fresh means the last refresh succeeded.
	Fresh
)

func (s State) String() string {
	if s == Fresh {
		return "fresh"
	}
	return "stale"
}

// MaxSuggestions is the most choices Discord accepts in an autocomplete reply.
const MaxSuggestions = 25

type snapshot struct {
	entries map[string]models.CatalogEntry
	// names keeps table order; for users it ends with the broadcast name.
	names  []string
	state  State
	loaded bool
}

// Catalog caches the catalog tables of a row store.
type Catalog struct {
	store               rowstore.Store
	tables              models.Tables
	broadcastName       string
	defaultBountyReward string
	log                 logging.Logger

	mu    sync.RWMutex
	snaps map[models.CatalogKind]*snapshot
}

// Option customizes a Catalog.
type Option func(*Catalog)

// WithBroadcastName overrides the reserved "Everyone" user name.
func WithBroadcastName(name string) Option {
	return func(c *Catalog) {
		if name != "" {
			c.broadcastName = name
		}
	}
}

// WithDefaultBountyReward sets the reward used for bounties with an empty reward cell.
func WithDefaultBountyReward(expr string) Option {
	return func(c *Catalog) {
		if expr != "" {
			c.defaultBountyReward = expr
		}
	}
}

// New returns a Catalog with every kind Stale.
func New(store rowstore.Store, tables models.Tables, logger logging.Logger, opts ...Option) *Catalog {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	c := &Catalog{
		store:               store,
		tables:              tables,
		broadcastName:       models.BroadcastName,
		defaultBountyReward: models.DefaultBountyReward,
		log:                 logger,
		snaps:               make(map[models.CatalogKind]*snapshot, len(models.Kinds)),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, kind := range models.Kinds {
		c.snaps[kind] = &snapshot{entries: map[string]models.CatalogEntry{}}
	}
	return c
}

// BroadcastName returns the reserved name meaning "no single recipient".
func (c *Catalog) BroadcastName() string {
	return c.broadcastName
}

// IsBroadcast reports whether name is the reserved broadcast name.
func (c *Catalog) IsBroadcast(name string) bool {
	return name == c.broadcastName
}

// State reports the freshness of kind.
func (c *Catalog) State(kind models.CatalogKind) State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.snaps[kind]; ok {
		return s.state
	}
	return Stale
}

func (c *Catalog) tableFor(kind models.CatalogKind) (string, error) {
	switch kind {
	case models.KindTask:
		return c.tables.Tasks, nil
	case models.KindBounty:
		return c.tables.Bounties, nil
	case models.KindUser:
		return c.tables.Totals, nil
	}
	return "", fmt.Errorf("unknown catalog kind: %s", kind)
}

// Refresh reloads kind from the row store. On failure the previous snapshot is
// kept and the kind stays in its prior state.
func (c *Catalog) Refresh(ctx context.Context, kind models.CatalogKind) error {
	table, err := c.tableFor(kind)
	if err != nil {
		return err
	}
	log := c.log.WithFields(logging.F(logging.FieldKind, string(kind)), logging.F(logging.FieldTable, table))

	rows, err := c.store.GetRows(ctx, table)
	if err != nil {
		err = ledgererror.NewExternal("row store", "refresh "+string(kind)+" catalog", err)
		log.WithError(err).Warn("Catalog refresh failed, keeping previous snapshot")
		return err
	}

	var next *snapshot
	switch kind {
	case models.KindUser:
		next, err = c.parseUsers(rows, table)
	case models.KindBounty:
		next, err = c.parseEntries(rows, models.BountyHeader, c.defaultBountyReward, log)
	default:
		next, err = c.parseEntries(rows, models.TaskHeader, models.MissingReward, log)
	}
	if err != nil {
		log.WithError(err).Warn("Catalog refresh failed, keeping previous snapshot")
		return fmt.Errorf("refresh %s catalog: %w", kind, err)
	}
	next.state = Fresh
	next.loaded = true

	c.mu.Lock()
	c.snaps[kind] = next
	c.mu.Unlock()

	log.Debug("Catalog refreshed", logging.F(logging.FieldCount, len(next.names)))
	return nil
}

// parseEntries builds a task or bounty snapshot. Rows are keyed by their name
// cell; the header row is then removed by its literal key.
func (c *Catalog) parseEntries(rows [][]string, header, defaultReward string, log logging.Logger) (*snapshot, error) {
	snap := &snapshot{entries: make(map[string]models.CatalogEntry, len(rows))}
	for i, row := range rows {
		raw := cell(row, 0)
		entry := models.CatalogEntry{
			Name:             strings.TrimSpace(raw),
			RewardExpression: strings.TrimSpace(cell(row, 1)),
			Cell:             raw,
		}
		if entry.Name == "" {
			entry.Name = models.ErrorSentinel
			entry.Cell = ""
		}
		if entry.RewardExpression == "" {
			entry.RewardExpression = defaultReward
		}
		if header == models.TaskHeader {
			entry.AverageHint = cell(row, 2)
			if entry.AverageHint == "" {
				entry.AverageHint = models.MissingReward
			}
			entry.Notes = cell(row, 3)
		}

		if _, dup := snap.entries[entry.Name]; dup {
			log.Warn("Duplicate catalog name, later row wins",
				logging.F("name", entry.Name), logging.F(logging.FieldRow, i+1))
		} else {
			snap.names = append(snap.names, entry.Name)
		}
		snap.entries[entry.Name] = entry
	}

	if _, ok := snap.entries[header]; !ok {
		return nil, ledgererror.NewNotFound("header row", header)
	}
	delete(snap.entries, header)
	snap.names = removeName(snap.names, header)
	return snap, nil
}

// parseUsers reads user names from the totals header row and appends the
// broadcast name to the listing. The broadcast name is not an entry, and
// neither is the grand total column.
func (c *Catalog) parseUsers(rows [][]string, table string) (*snapshot, error) {
	if len(rows) == 0 {
		return nil, ledgererror.NewNotFound("header row", table)
	}
	snap := &snapshot{entries: make(map[string]models.CatalogEntry)}
	for _, raw := range rows[0] {
		name := strings.TrimSpace(raw)
		if name == "" || name == c.broadcastName || name == models.TotalsColumn {
			continue
		}
		if _, dup := snap.entries[name]; dup {
			continue
		}
		snap.entries[name] = models.CatalogEntry{Name: name, Cell: raw}
		snap.names = append(snap.names, name)
	}
	snap.names = append(snap.names, c.broadcastName)
	return snap, nil
}

// RefreshAll refreshes every kind concurrently. Each kind succeeds or fails on
// its own; the returned error joins the failures.
func (c *Catalog) RefreshAll(ctx context.Context) error {
	errs := make([]error, len(models.Kinds))
	var g errgroup.Group
	for i, kind := range models.Kinds {
		g.Go(func() error {
			errs[i] = c.Refresh(ctx, kind)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// EnsureFresh refreshes kind if it is Stale. A failed refresh is tolerated,
// with a warning, when an earlier snapshot can still be served.
func (c *Catalog) EnsureFresh(ctx context.Context, kind models.CatalogKind) error {
	c.mu.RLock()
	snap, ok := c.snaps[kind]
	fresh := ok && snap.state == Fresh
	loaded := ok && snap.loaded
	c.mu.RUnlock()
	if fresh {
		return nil
	}
	if err := c.Refresh(ctx, kind); err != nil {
		if loaded {
			c.log.WithError(err).Warn("Serving previous catalog snapshot",
				logging.F(logging.FieldKind, string(kind)))
			return nil
		}
		return err
	}
	return nil
}

// Invalidate marks every kind Stale without dropping the snapshots.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for kind, snap := range c.snaps {
		cp := *snap
		cp.state = Stale
		c.snaps[kind] = &cp
	}
}

// Lookup returns the entry named name. Matching is exact and case-sensitive.
func (c *Catalog) Lookup(kind models.CatalogKind, name string) (models.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if snap, ok := c.snaps[kind]; ok {
		if entry, ok := snap.entries[name]; ok {
			return entry, nil
		}
	}
	return models.CatalogEntry{}, ledgererror.NewNotFound(string(kind), name)
}

// ListNames returns the names of kind in table order as of the last successful refresh.
func (c *Catalog) ListNames(kind models.CatalogKind) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snaps[kind]
	if !ok {
		return nil
	}
	return append([]string(nil), snap.names...)
}

// Contains reports whether name is listed for kind, broadcast name included.
func (c *Catalog) Contains(kind models.CatalogKind, name string) bool {
	for _, n := range c.ListNames(kind) {
		if n == name {
			return true
		}
	}
	return false
}

// Entries returns the entries of kind in table order.
func (c *Catalog) Entries(kind models.CatalogKind) []models.CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snaps[kind]
	if !ok {
		return nil
	}
	out := make([]models.CatalogEntry, 0, len(snap.entries))
	for _, name := range snap.names {
		if entry, ok := snap.entries[name]; ok {
			out = append(out, entry)
		}
	}
	return out
}

// Suggest returns up to limit names of kind containing query, case-insensitively.
// Names starting with the query sort first. A limit <= 0 means MaxSuggestions.
func (c *Catalog) Suggest(kind models.CatalogKind, query string, limit int) []string {
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}
	q := strings.ToLower(strings.TrimSpace(query))

	var matches []string
	for _, name := range c.ListNames(kind) {
		if strings.Contains(strings.ToLower(name), q) {
			matches = append(matches, name)
		}
	}
	if q != "" {
		sort.SliceStable(matches, func(i, j int) bool {
			return strings.HasPrefix(strings.ToLower(matches[i]), q) &&
				!strings.HasPrefix(strings.ToLower(matches[j]), q)
		})
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Remove drops name from kind's snapshot, replacing the snapshot rather than
// mutating it. It reports whether the name was present.
func (c *Catalog) Remove(kind models.CatalogKind, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snaps[kind]
	if !ok {
		return false
	}
	if _, ok := snap.entries[name]; !ok {
		return false
	}
	next := &snapshot{
		entries: make(map[string]models.CatalogEntry, len(snap.entries)-1),
		names:   removeName(snap.names, name),
		state:   snap.state,
		loaded:  snap.loaded,
	}
	for k, v := range snap.entries {
		if k != name {
			next.entries[k] = v
		}
	}
	c.snaps[kind] = next
	return true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func removeName(names []string, name string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
