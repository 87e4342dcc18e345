package importer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/finance-dashboard/internal/dedup"
	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
	"fjacquet/finance-dashboard/internal/parsererror"
	"fjacquet/finance-dashboard/internal/store"
)

const header = "Type,Product,Started Date,Completed Date,Description,Amount,Fee,Currency,State,Balance"

var statement = strings.Join([]string{
	header,
	"CARD_PAYMENT,Current,2024-01-15 10:30:00,2024-01-16 09:00:00,Coffee Shop,-4.50,0.00,EUR,COMPLETED,995.50",
	"TOPUP,Current,2024-01-14 08:00:00,2024-01-14 08:00:05,Top-Up,1000.00,0.00,EUR,COMPLETED,1000.00",
	"CARD_PAYMENT,Current,2024-01-17 12:00:00",
	`TRANSFER,Savings,2024-01-18 18:00:00,,"Rent, January",-950.00,0.00,EUR,COMPLETED,45.50`,
}, "\n")

func csvFile(content string) File {
	return File{Name: "statement.csv", ContentType: "text/csv", Content: strings.NewReader(content)}
}

func newOrchestrator(s store.TransactionStore, logger logging.Logger) *Orchestrator {
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return New(Deps{Store: s, Logger: logger, Clock: func() time.Time { return fixed }})
}

func states(r *Result) []State {
	out := []State{StateIdle}
	for _, t := range r.Transitions {
		out = append(out, t.To)
	}
	return out
}

func TestImport_EndToEnd(t *testing.T) {
	ctx := context.Background()
	s := store.NewMockStore()
	mock := logging.NewMockLogger()
	o := newOrchestrator(s, mock)

	result, err := o.Import(ctx, csvFile(statement), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, OutcomeImported, result.Outcome)
	assert.Equal(t, 3, result.NewCount())
	assert.Equal(t, 0, result.DuplicateCount())
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 1, result.Plan.Skipped)
	assert.Equal(t, []State{
		StateIdle, StateParsing, StateCheckingDuplicates, StateAwaitingConfirmation, StatePersisting, StateDone,
	}, states(result))
	assert.Equal(t, "Imported 3 new transactions (0 duplicates skipped)", result.Message)

	stored, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "Coffee Shop", stored[0].Description)
	assert.Equal(t, "-4.5", stored[0].Amount.String())
	assert.Equal(t, "Rent, January", stored[2].Description)
	assert.Nil(t, stored[2].CompletedDate)
	assert.Zero(t, stored[0].Line)

	assert.True(t, mock.HasEntry("WARN", "Skipping malformed row"))
	assert.True(t, mock.HasEntry("INFO", "Import finished"))
}

func TestImport_SecondRunFindsOnlyDuplicates(t *testing.T) {
	ctx := context.Background()
	s := store.NewMockStore()
	o := newOrchestrator(s, nil)

	_, err := o.Import(ctx, csvFile(statement), nil, nil)
	require.NoError(t, err)

	result, err := o.Import(ctx, csvFile(statement), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, OutcomeNothingToImport, result.Outcome)
	assert.Equal(t, 3, result.DuplicateCount())
	assert.Equal(t, 1, s.InsertCalls)
}

func TestImport_InvalidFile(t *testing.T) {
	o := newOrchestrator(store.NewMockStore(), nil)

	result, err := o.Import(context.Background(), File{Name: "statement.pdf", ContentType: "application/pdf", Content: strings.NewReader(statement)}, nil, nil)

	var invalid *parsererror.InvalidFileError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, []State{StateIdle, StateFailed}, states(result))
	assert.Equal(t, err.Error(), result.Message)
}

func TestImport_CSVContentTypeWithoutExtension(t *testing.T) {
	o := newOrchestrator(store.NewMockStore(), nil)
	result, err := o.Import(context.Background(), File{Name: "upload", ContentType: "text/csv", Content: strings.NewReader(statement)}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeImported, result.Outcome)
}

func TestImport_EmptyInput(t *testing.T) {
	o := newOrchestrator(store.NewMockStore(), nil)

	result, err := o.Import(context.Background(), csvFile(header+"\n"), nil, nil)

	var empty *parsererror.EmptyInputError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "statement.csv", empty.FileName)
	assert.Equal(t, []State{StateIdle, StateParsing, StateFailed}, states(result))
}

func TestImport_NoValidRecords(t *testing.T) {
	o := newOrchestrator(store.NewMockStore(), nil)
	content := header + "\n,Current,2024-01-15,,x,1,0,EUR,COMPLETED,1\nTOPUP,,2024-01-15,,x,1,0,EUR,COMPLETED,1\n"

	result, err := o.Import(context.Background(), csvFile(content), nil, nil)

	var none *parsererror.NoValidRecordsError
	require.ErrorAs(t, err, &none)
	assert.Equal(t, 2, none.Parsed)
	assert.Equal(t, StateFailed, result.State)
}

func TestImport_UserCancels(t *testing.T) {
	s := store.NewMockStore()
	o := newOrchestrator(s, nil)

	var seen *Plan
	decline := ConfirmFunc(func(_ context.Context, p *Plan) (bool, error) {
		seen = p
		return false, nil
	})

	result, err := o.Import(context.Background(), csvFile(statement), nil, decline)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, 3, seen.NewCount())
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, OutcomeCancelled, result.Outcome)
	assert.Equal(t, 0, s.InsertCalls)
	assert.Equal(t, StateAwaitingConfirmation, result.Transitions[len(result.Transitions)-1].From)
}

func TestImport_ConfirmerError(t *testing.T) {
	s := store.NewMockStore()
	o := newOrchestrator(s, nil)
	broken := ConfirmFunc(func(context.Context, *Plan) (bool, error) { return false, errors.New("stdin closed") })

	result, err := o.Import(context.Background(), csvFile(statement), nil, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin closed")
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 0, s.InsertCalls)
}

func TestImport_StoreFailures(t *testing.T) {
	t.Run("insert", func(t *testing.T) {
		s := store.NewMockStore()
		s.InsertTransactionsError = errors.New(`null value in column "type" violates not-null constraint`)
		o := newOrchestrator(s, nil)

		result, err := o.Import(context.Background(), csvFile(statement), nil, nil)

		var se *store.StoreError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, StateFailed, result.State)
		assert.Contains(t, result.Message, `null value in column "type" violates not-null constraint`)
		assert.Equal(t, StatePersisting, result.Transitions[len(result.Transitions)-1].From)
	})

	t.Run("list existing", func(t *testing.T) {
		s := store.NewMockStore()
		s.ListTransactionsError = errors.New("connection refused")
		o := newOrchestrator(s, nil)

		result, err := o.Import(context.Background(), csvFile(statement), nil, nil)

		var se *store.StoreError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, StateCheckingDuplicates, result.Transitions[len(result.Transitions)-1].From)
		assert.Equal(t, 0, s.InsertCalls)
	})
}

func TestImport_ExplicitExistingSnapshot(t *testing.T) {
	s := store.NewMockStore()
	s.ListTransactionsError = errors.New("must not be called")
	o := newOrchestrator(s, nil)

	existing := models.TransactionsFromRecords([]models.Record{{
		models.FieldStartedDate: "2024-01-15T10:30:00+01:00",
		models.FieldAmount:      "-4.5",
		models.FieldType:        "card_payment",
	}})

	result, err := o.Import(context.Background(), csvFile(statement), existing, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.NewCount())
	assert.Equal(t, 1, result.DuplicateCount())
	assert.Equal(t, "Coffee Shop", result.Plan.Partition.Duplicates[0].Description)
}

func TestImport_CustomKeyFunction(t *testing.T) {
	content := header + "\n" +
		"CARD_PAYMENT,Current,2024-01-15 10:30:00,,Shop A,-5,0,EUR,COMPLETED,1\n" +
		"CARD_PAYMENT,Current,2024-01-15 10:30:00,,Shop B,-5,0,EUR,COMPLETED,1\n"

	loose := New(Deps{Store: store.NewMockStore()})
	r, err := loose.Plan(context.Background(), csvFile(content), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, r.NewCount())

	strict := New(Deps{Store: store.NewMockStore(), Dedup: dedup.New(dedup.KeyWithDescription)})
	r, err = strict.Plan(context.Background(), csvFile(content), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, r.NewCount())
}

func TestPlan_DoesNotPersist(t *testing.T) {
	s := store.NewMockStore()
	o := newOrchestrator(s, nil)

	result, err := o.Plan(context.Background(), csvFile(statement), nil)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingConfirmation, result.State)
	assert.Empty(t, result.Outcome)
	assert.Equal(t, 3, result.NewCount())
	assert.Equal(t, 0, s.InsertCalls)
}

func TestImport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := store.NewMockStore()
	o := newOrchestrator(s, nil)

	result, err := o.Import(ctx, csvFile(statement), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 0, s.InsertCalls)
}

func TestImport_ConcurrentImportsAreSerialized(t *testing.T) {
	s := store.NewMemory()
	o := newOrchestrator(s, nil)

	var wg sync.WaitGroup
	results := make([]*Result, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := o.Import(context.Background(), csvFile(statement), nil, nil)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	imported := 0
	for _, r := range results {
		if r.Outcome == OutcomeImported {
			imported++
		}
	}
	assert.Equal(t, 1, imported)

	stored, err := s.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}
