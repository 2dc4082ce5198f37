// Package ledger records task completions, bounty payouts and direct
// earn/spend entries in the transaction table, and reads balances back from the
// totals table.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/TalShar783/Taskmaster/internal/catalog"
	"github.com/TalShar783/Taskmaster/internal/dateutils"
	"github.com/TalShar783/Taskmaster/internal/dice"
	"github.com/TalShar783/Taskmaster/internal/ledgererror"
	"github.com/TalShar783/Taskmaster/internal/logging"
	"github.com/TalShar783/Taskmaster/internal/models"
	"github.com/TalShar783/Taskmaster/internal/rowstore"

	"github.com/shopspring/decimal"
)

// Operation names, used in results and log fields.
const (
	OpRecordTask     = "record_task"
	OpCompleteBounty = "complete_bounty"
	OpEarn           = "earn"
	OpSpend          = "spend"
	OpCheckBalance   = "check_balance"
	OpReset          = "reset"
)

// Result describes a completed ledger operation.
type Result struct {
	Operation string
	// Record is the appended row; zero for balance checks and resets.
	Record models.TransactionRecord
	// Balance is the actor's balance after the operation, when it could be read.
	Balance string
	Message string
}

// Recorder is the only writer of the transaction table. Mutating operations
// are serialized so two completions of one bounty cannot both pay out.
type Recorder struct {
	store       rowstore.Store
	catalog     *catalog.Catalog
	resolver    *dice.Resolver
	clock       dateutils.Clock
	tables      models.Tables
	notesSuffix string
	log         logging.Logger

	mu sync.Mutex
}

// Option customizes a Recorder.
type Option func(*Recorder)

// WithClock sets the clock used to stamp transactions.
func WithClock(clock dateutils.Clock) Option {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithResolver sets the reward resolver, typically a seeded one in tests.
func WithResolver(resolver *dice.Resolver) Option {
	return func(r *Recorder) {
		if resolver != nil {
			r.resolver = resolver
		}
	}
}

// WithTables overrides the default table names.
func WithTables(tables models.Tables) Option {
	return func(r *Recorder) {
		r.tables = tables
	}
}

// WithNotesSuffix overrides the provenance tag appended to every note.
func WithNotesSuffix(suffix string) Option {
	return func(r *Recorder) {
		r.notesSuffix = suffix
	}
}

// NewRecorder creates a Recorder writing to store and resolving names through cat.
func NewRecorder(store rowstore.Store, cat *catalog.Catalog, logger logging.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	r := &Recorder{
		store:       store,
		catalog:     cat,
		resolver:    dice.NewResolver(nil),
		clock:       dateutils.ClockIn(time.Local),
		tables:      models.DefaultTables(),
		notesSuffix: models.NotesSuffix,
		log:         logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the catalog the recorder looks names up in.
func (r *Recorder) Catalog() *catalog.Catalog {
	return r.catalog
}

func (r *Recorder) validateActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return &ledgererror.ValidationError{Field: "name", Value: actor, Reason: "a name is required"}
	}
	if r.catalog.IsBroadcast(actor) {
		return &ledgererror.ValidationError{Field: "name", Value: actor, Reason: "pick a single person"}
	}
	return nil
}

// CheckMember reports a ValidationError unless name is one of the people in
// the totals table. The broadcast name counts as a member here.
func (r *Recorder) CheckMember(ctx context.Context, name string) error {
	if err := r.catalog.EnsureFresh(ctx, models.KindUser); err != nil {
		return err
	}
	if !r.catalog.Contains(models.KindUser, name) {
		return &ledgererror.ValidationError{Field: "name", Value: name, Reason: "not a known member"}
	}
	return nil
}

// RecordTask pays actor the resolved reward of a task. Tasks are repeatable.
func (r *Recorder) RecordTask(ctx context.Context, task, actor, notes string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.log.WithFields(
		logging.F(logging.FieldOperation, OpRecordTask),
		logging.F(logging.FieldActor, actor),
		logging.F(logging.FieldTask, task))

	_, amount, err := r.resolveEntry(ctx, models.KindTask, task, actor)
	if err != nil {
		log.WithError(err).Warn("Task not recorded")
		return Result{Operation: OpRecordTask}, err
	}
	rec, err := r.append(ctx, actor, task, amount, notes)
	if err != nil {
		log.WithError(err).Error("Failed to append task transaction")
		return Result{Operation: OpRecordTask}, err
	}

	res := Result{
		Operation: OpRecordTask,
		Record:    rec,
		Message: fmt.Sprintf("Task completion recorded for %s! You earned $%s for %s!",
			actor, models.FormatAmount(amount), task),
	}
	r.attachBalance(ctx, &res, actor, log)
	log.Info("Task recorded", logging.F(logging.FieldAmount, rec.Amount.String()))
	return res, nil
}

// CompleteBounty pays actor a bounty's reward and removes the bounty from the
// board and the catalog. When the payout is appended but the removal fails,
// the result is returned together with a PartialCompletionError and the
// bounty stays listed.
func (r *Recorder) CompleteBounty(ctx context.Context, bounty, actor, notes string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.log.WithFields(
		logging.F(logging.FieldOperation, OpCompleteBounty),
		logging.F(logging.FieldActor, actor),
		logging.F(logging.FieldBounty, bounty))

	entry, amount, err := r.resolveEntry(ctx, models.KindBounty, bounty, actor)
	if err != nil {
		log.WithError(err).Warn("Bounty not completed")
		return Result{Operation: OpCompleteBounty}, err
	}
	rec, err := r.append(ctx, actor, bounty, amount, notes)
	if err != nil {
		log.WithError(err).Error("Failed to append bounty transaction")
		return Result{Operation: OpCompleteBounty}, err
	}

	res := Result{
		Operation: OpCompleteBounty,
		Record:    rec,
		Message: fmt.Sprintf("Bounty completion rewarded for %s! You earned $%s for %s!",
			actor, models.FormatAmount(amount), bounty),
	}
	r.attachBalance(ctx, &res, actor, log)

	if err := r.removeBounty(ctx, entry); err != nil {
		log.WithError(err).Error("Bounty paid out but not removed from the board")
		return res, &ledgererror.PartialCompletionError{Bounty: bounty, Err: err}
	}
	r.catalog.Remove(models.KindBounty, bounty)
	log.Info("Bounty completed", logging.F(logging.FieldAmount, rec.Amount.String()))
	return res, nil
}

// removeBounty deletes the board row holding entry, matched on the untrimmed
// cell text.
func (r *Recorder) removeBounty(ctx context.Context, entry models.CatalogEntry) error {
	cell, err := r.store.FindCell(ctx, r.tables.Bounties, cellText(entry))
	if err != nil {
		return err
	}
	return r.store.DeleteRow(ctx, r.tables.Bounties, cell.Row)
}

// Earn credits actor with a literal amount or a rolled dice expression.
// The credited amount is always positive.
func (r *Recorder) Earn(ctx context.Context, amountOrExpression, reason, actor, notes string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.log.WithFields(
		logging.F(logging.FieldOperation, OpEarn),
		logging.F(logging.FieldActor, actor),
		logging.F(logging.FieldReason, reason),
		logging.F(logging.FieldExpression, amountOrExpression))

	if err := r.validateActor(actor); err != nil {
		return Result{Operation: OpEarn}, err
	}
	amount, err := r.resolver.Resolve(amountOrExpression)
	if err != nil {
		log.WithError(err).Warn("Earn not recorded")
		return Result{Operation: OpEarn}, err
	}
	return r.directEntry(ctx, OpEarn, actor, reason, amount.Abs(), notes, log)
}

// Spend debits actor by a literal amount. The debited amount is always negative.
func (r *Recorder) Spend(ctx context.Context, amount decimal.Decimal, reason, actor, notes string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.log.WithFields(
		logging.F(logging.FieldOperation, OpSpend),
		logging.F(logging.FieldActor, actor),
		logging.F(logging.FieldReason, reason))

	if err := r.validateActor(actor); err != nil {
		return Result{Operation: OpSpend}, err
	}
	return r.directEntry(ctx, OpSpend, actor, reason, amount.Abs().Neg(), notes, log)
}

func (r *Recorder) directEntry(ctx context.Context, op, actor, reason string, amount decimal.Decimal, notes string, log logging.Logger) (Result, error) {
	rec, err := r.append(ctx, actor, reason, amount, notes)
	if err != nil {
		log.WithError(err).Error("Failed to append transaction")
		return Result{Operation: op}, err
	}
	log.Info("Transaction recorded", logging.F(logging.FieldAmount, rec.Amount.String()))
	return Result{
		Operation: op,
		Record:    rec,
		Message: fmt.Sprintf("Transaction recorded for %s at %s for %s: $%s. Notes: %s",
			actor, rec.Timestamp, reason, models.FormatAmount(amount.Abs()), rec.Notes),
	}, nil
}

// CheckBalance reads actor's running total: the cell directly below the
// actor's name in the totals table. The broadcast name always yields "N/A".
func (r *Recorder) CheckBalance(ctx context.Context, actor string) (models.Balance, error) {
	if r.catalog.IsBroadcast(actor) {
		return models.Balance{User: actor, Value: models.BalanceUnavailable}, nil
	}
	value, err := r.balance(ctx, actor)
	if err != nil {
		r.log.WithError(err).Warn("Balance lookup failed",
			logging.F(logging.FieldOperation, OpCheckBalance),
			logging.F(logging.FieldActor, actor))
		return models.Balance{User: actor}, err
	}
	return models.Balance{User: actor, Value: value}, nil
}

func (r *Recorder) balance(ctx context.Context, actor string) (string, error) {
	target := actor
	if r.catalog.EnsureFresh(ctx, models.KindUser) == nil {
		if entry, err := r.catalog.Lookup(models.KindUser, actor); err == nil {
			target = cellText(entry)
		}
	}
	cell, err := r.store.FindCell(ctx, r.tables.Totals, target)
	if errors.Is(err, rowstore.ErrCellNotFound) {
		return "", ledgererror.NewNotFound("user", actor)
	}
	if err != nil {
		return "", ledgererror.NewExternal("row store", "find user in "+r.tables.Totals, err)
	}
	rows, err := r.store.GetRows(ctx, r.tables.Totals)
	if err != nil {
		return "", ledgererror.NewExternal("row store", "read "+r.tables.Totals, err)
	}
	value := strings.TrimSpace(rowstore.CellValue(rows, cell.Row+1, cell.Col))
	if value == "" {
		return "", ledgererror.NewNotFound("balance", actor)
	}
	return value, nil
}

// BalanceMessage renders a balance the way the chat layer replies with it.
func BalanceMessage(b models.Balance) string {
	return fmt.Sprintf("Balance for %s: %s.", b.User, b.Value)
}

// Reset marks every catalog Stale and reloads it. Kinds that fail to reload
// keep serving their previous snapshot.
func (r *Recorder) Reset(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalog.Invalidate()
	if err := r.catalog.RefreshAll(ctx); err != nil {
		r.log.WithError(err).Warn("Reset incomplete, previous catalog snapshots kept",
			logging.F(logging.FieldOperation, OpReset))
		return Result{Operation: OpReset}, err
	}
	r.log.Info("Catalogs reloaded", logging.F(logging.FieldOperation, OpReset))
	return Result{Operation: OpReset, Message: "Bot reset."}, nil
}

// Transactions reads the transaction table back, skipping the header row and
// any row that does not parse.
func (r *Recorder) Transactions(ctx context.Context) ([]models.TransactionRecord, error) {
	rows, err := r.store.GetRows(ctx, r.tables.Transactions)
	if err != nil {
		return nil, ledgererror.NewExternal("row store", "read "+r.tables.Transactions, err)
	}
	records := make([]models.TransactionRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := models.ParseTransactionRow(row)
		if err != nil {
			if i > 0 {
				r.log.WithError(err).Debug("Skipping unparseable transaction row", logging.F(logging.FieldRow, i+1))
			}
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// resolveEntry validates the actor, then looks the entry up and rolls its reward.
func (r *Recorder) resolveEntry(ctx context.Context, kind models.CatalogKind, name, actor string) (models.CatalogEntry, decimal.Decimal, error) {
	if err := r.validateActor(actor); err != nil {
		return models.CatalogEntry{}, decimal.Zero, err
	}
	if err := r.catalog.EnsureFresh(ctx, kind); err != nil {
		return models.CatalogEntry{}, decimal.Zero, err
	}
	entry, err := r.catalog.Lookup(kind, name)
	if err != nil {
		return models.CatalogEntry{}, decimal.Zero, err
	}
	amount, err := r.resolver.Resolve(entry.RewardExpression)
	return entry, amount, err
}

func cellText(entry models.CatalogEntry) string {
	if entry.Cell == "" {
		return entry.Name
	}
	return entry.Cell
}

func (r *Recorder) append(ctx context.Context, actor, label string, amount decimal.Decimal, notes string) (models.TransactionRecord, error) {
	rec := models.NewTransactionRecord(r.clock(), actor, label, amount, notes+r.notesSuffix)
	if err := r.store.AppendRow(ctx, r.tables.Transactions, rec.Row()); err != nil {
		return models.TransactionRecord{}, ledgererror.NewExternal("row store", "append to "+r.tables.Transactions, err)
	}
	return rec, nil
}

func (r *Recorder) attachBalance(ctx context.Context, res *Result, actor string, log logging.Logger) {
	value, err := r.balance(ctx, actor)
	if err != nil {
		log.WithError(err).Debug("Balance unavailable for confirmation")
		return
	}
	res.Balance = value
	res.Message += fmt.Sprintf(" Your balance is now %s.", value)
}
