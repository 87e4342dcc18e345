// Package importer drives a statement upload through parsing, sanitizing,
// duplicate detection, user confirmation and persistence.
//
// The flow is a state machine:
//
//	Idle -> Parsing -> CheckingDuplicates -> AwaitingConfirmation -> Persisting -> Done
//
// Failed is reachable from every state. Declining the confirmation ends in Done
// with the cancelled outcome; it is not a failure.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"fjacquet/finance-dashboard/internal/csvparser"
	"fjacquet/finance-dashboard/internal/dedup"
	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
	"fjacquet/finance-dashboard/internal/parsererror"
	"fjacquet/finance-dashboard/internal/sanitizer"
	"fjacquet/finance-dashboard/internal/store"
	"fjacquet/finance-dashboard/internal/validation"
)

// State is a step of the import state machine.
type State string

// Import states.
const (
	StateIdle                 State = "idle"
	StateParsing              State = "parsing"
	StateCheckingDuplicates   State = "checking_duplicates"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StatePersisting           State = "persisting"
	StateDone                 State = "done"
	StateFailed               State = "failed"
)

// Outcome is how a finished import ended.
type Outcome string

// Import outcomes.
const (
	OutcomeImported        Outcome = "imported"
	OutcomeNothingToImport Outcome = "nothing_to_import"
	OutcomeCancelled       Outcome = "cancelled"
	OutcomeFailed          Outcome = "failed"
)

// File is an uploaded statement.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Plan is what an import would do, shown to the user before confirmation.
type Plan struct {
	FileName  string          `json:"fileName"`
	Parsed    int             `json:"parsed"`
	Skipped   int             `json:"skipped"`
	Dropped   int             `json:"dropped"`
	Partition dedup.Partition `json:"partition"`
}

// NewCount is the number of transactions that would be inserted.
func (p *Plan) NewCount() int { return len(p.Partition.New) }

// DuplicateCount is the number of transactions already known.
func (p *Plan) DuplicateCount() int { return len(p.Partition.Duplicates) }

// Confirmer is the confirmation gate between duplicate checking and persistence.
type Confirmer interface {
	Confirm(ctx context.Context, plan *Plan) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, plan *Plan) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, plan *Plan) (bool, error) {
	return f(ctx, plan)
}

// AutoConfirm approves every plan.
var AutoConfirm Confirmer = ConfirmFunc(func(context.Context, *Plan) (bool, error) { return true, nil })

// Transition records one state change.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Result describes a finished or previewed import.
type Result struct {
	State       State        `json:"state"`
	Outcome     Outcome      `json:"outcome,omitempty"`
	Transitions []Transition `json:"transitions"`
	Plan        *Plan        `json:"plan,omitempty"`
	Inserted    int          `json:"inserted"`
	Message     string       `json:"message"`
	Err         error        `json:"-"`
}

// NewCount is the number of new transactions found, 0 before duplicate checking.
func (r *Result) NewCount() int {
	if r.Plan == nil {
		return 0
	}
	return r.Plan.NewCount()
}

// DuplicateCount is the number of duplicates found, 0 before duplicate checking.
func (r *Result) DuplicateCount() int {
	if r.Plan == nil {
		return 0
	}
	return r.Plan.DuplicateCount()
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Parser    *csvparser.Parser
	Sanitizer *sanitizer.Sanitizer
	Dedup     *dedup.Engine
	Store     store.TransactionStore
	Logger    logging.Logger
	Clock     func() time.Time
}

// Orchestrator runs imports one at a time.
type Orchestrator struct {
	deps Deps
	mu   sync.Mutex
}

// New creates an Orchestrator. Missing parser, sanitizer, dedup engine,
// logger and clock get defaults; Store is required for Import.
func New(deps Deps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = logging.NewDiscardLogger()
	}
	if deps.Parser == nil {
		deps.Parser = csvparser.New(deps.Logger, ',')
	}
	if deps.Sanitizer == nil {
		deps.Sanitizer = sanitizer.New(nil, deps.Logger)
	}
	if deps.Dedup == nil {
		deps.Dedup = dedup.New(nil)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Orchestrator{deps: deps}
}

// Import runs the full flow. existing is the snapshot to deduplicate against;
// when nil it is fetched from the store. A nil confirmer approves the plan.
// The returned error is non-nil exactly when the result is Failed.
func (o *Orchestrator) Import(ctx context.Context, f File, existing []models.Transaction, c Confirmer) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if c == nil {
		c = AutoConfirm
	}

	run := o.newRun(f.Name)
	if !run.plan(ctx, f, existing) {
		return run.result, run.result.Err
	}
	if run.result.State == StateDone {
		return run.result, nil
	}

	ok, err := c.Confirm(ctx, run.result.Plan)
	if err != nil {
		run.fail(fmt.Errorf("confirmation failed: %w", err))
		return run.result, run.result.Err
	}
	if !ok {
		run.finish(OutcomeCancelled, "Import cancelled; nothing was saved")
		return run.result, nil
	}

	run.persist(ctx)
	return run.result, run.result.Err
}

// Plan runs up to AwaitingConfirmation without persisting, for previews.
func (o *Orchestrator) Plan(ctx context.Context, f File, existing []models.Transaction) (*Result, error) {
	run := o.newRun(f.Name)
	run.plan(ctx, f, existing)
	return run.result, run.result.Err
}

// run is the state of one import.
type run struct {
	o      *Orchestrator
	logger logging.Logger
	result *Result
}

func (o *Orchestrator) newRun(name string) *run {
	return &run{
		o:      o,
		logger: o.deps.Logger.WithField(logging.FieldFile, name),
		result: &Result{State: StateIdle},
	}
}

func (r *run) transition(to State) {
	r.result.Transitions = append(r.result.Transitions, Transition{From: r.result.State, To: to, At: r.o.deps.Clock()})
	r.logger.Debug("Import state change",
		logging.F(logging.FieldState, string(to)),
		logging.F("from", string(r.result.State)))
	r.result.State = to
}

func (r *run) fail(err error) {
	r.transition(StateFailed)
	r.result.Outcome = OutcomeFailed
	r.result.Err = err
	r.result.Message = err.Error()
	r.logger.WithError(err).Error("Import failed", logging.F(logging.FieldOutcome, string(OutcomeFailed)))
}

func (r *run) finish(outcome Outcome, msg string) {
	r.transition(StateDone)
	r.result.Outcome = outcome
	r.result.Message = msg
	r.logger.Info("Import finished",
		logging.F(logging.FieldOutcome, string(outcome)),
		logging.F(logging.FieldNewCount, r.result.NewCount()),
		logging.F(logging.FieldDuplicates, r.result.DuplicateCount()))
}

// plan walks Idle -> AwaitingConfirmation, or to Done when nothing is new.
// It returns false when the run failed.
func (r *run) plan(ctx context.Context, f File, existing []models.Transaction) bool {
	deps := r.o.deps

	if !validation.IsCSVFile(f.Name, f.ContentType) {
		r.fail(&parsererror.InvalidFileError{FileName: f.Name, ContentType: f.ContentType})
		return false
	}
	if f.Content == nil {
		r.fail(&parsererror.EmptyInputError{FileName: f.Name})
		return false
	}

	r.transition(StateParsing)
	records, stats, err := deps.Parser.ParseWithStats(f.Content)
	if err != nil {
		var empty *parsererror.EmptyInputError
		if errors.As(err, &empty) {
			empty.FileName = f.Name
		}
		r.fail(err)
		return false
	}
	clean := deps.Sanitizer.Sanitize(records)
	if len(clean) == 0 {
		r.fail(&parsererror.NoValidRecordsError{FileName: f.Name, Parsed: len(records)})
		return false
	}
	incoming := models.TransactionsFromRecords(clean)

	r.transition(StateCheckingDuplicates)
	if err := ctx.Err(); err != nil {
		r.fail(err)
		return false
	}
	if existing == nil {
		if deps.Store == nil {
			r.fail(errors.New("no store configured"))
			return false
		}
		existing, err = deps.Store.ListTransactions(ctx)
		if err != nil {
			r.fail(err)
			return false
		}
	}

	r.result.Plan = &Plan{
		FileName:  f.Name,
		Parsed:    len(records),
		Skipped:   stats.Skipped,
		Dropped:   len(records) - len(clean),
		Partition: deps.Dedup.Partition(incoming, existing),
	}
	r.logger.Info("Import plan ready",
		logging.F(logging.FieldCount, len(incoming)),
		logging.F(logging.FieldNewCount, r.result.Plan.NewCount()),
		logging.F(logging.FieldDuplicates, r.result.Plan.DuplicateCount()),
		logging.F(logging.FieldSkipped, stats.Skipped))

	if r.result.Plan.NewCount() == 0 {
		r.finish(OutcomeNothingToImport,
			fmt.Sprintf("No new transactions to import (%d duplicates)", r.result.Plan.DuplicateCount()))
		return true
	}

	r.transition(StateAwaitingConfirmation)
	r.result.Message = fmt.Sprintf("%d new transactions, %d duplicates", r.result.Plan.NewCount(), r.result.Plan.DuplicateCount())
	return true
}

func (r *run) persist(ctx context.Context) {
	r.transition(StatePersisting)
	if err := ctx.Err(); err != nil {
		r.fail(err)
		return
	}
	if r.o.deps.Store == nil {
		r.fail(errors.New("no store configured"))
		return
	}

	rows := make([]models.Transaction, len(r.result.Plan.Partition.New))
	for i, tx := range r.result.Plan.Partition.New {
		tx.Line = 0
		rows[i] = tx
	}

	n, err := r.o.deps.Store.InsertTransactions(ctx, rows)
	if err != nil {
		r.fail(err)
		return
	}
	r.result.Inserted = n
	r.finish(OutcomeImported,
		fmt.Sprintf("Imported %d new transactions (%d duplicates skipped)", n, r.result.Plan.DuplicateCount()))
}
