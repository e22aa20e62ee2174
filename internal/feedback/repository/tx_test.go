package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"lead_feedback_backend/internal/feedback/domain"
	"lead_feedback_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type scriptedRow struct {
	values []any
	err    error
}

func (r scriptedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type queryCall struct {
	sql  string
	args []any
}

// fakeTx answers QueryRow from a callback and counts savepoint outcomes.
type fakeTx struct {
	pgx.Tx
	respond    func(sql string, args []any) pgx.Row
	calls      []queryCall
	savepoints int
	released   int
	rolledBack int
}

func (f *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, queryCall{sql: sql, args: args})
	return f.respond(sql, args)
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	f.savepoints++
	return &savepointTx{parent: f}, nil
}

func (f *fakeTx) count(sql string) int {
	n := 0
	for _, c := range f.calls {
		if c.sql == sql {
			n++
		}
	}
	return n
}

type savepointTx struct {
	pgx.Tx
	parent *fakeTx
}

func (s *savepointTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.parent.QueryRow(ctx, sql, args...)
}

func (s *savepointTx) Commit(context.Context) error {
	s.parent.released++
	return nil
}

func (s *savepointTx) Rollback(context.Context) error {
	s.parent.rolledBack++
	return nil
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

var (
	leadID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	brokerID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func leadRow(name string) scriptedRow {
	return scriptedRow{values: []any{leadID, "L1", name, 0, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}}
}

func brokerRow(email string) scriptedRow {
	return scriptedRow{values: []any{brokerID, "B1", domain.PlaceholderBrokerName, email, true, 0, 0.0}}
}

func noRows() scriptedRow {
	return scriptedRow{err: pgx.ErrNoRows}
}

func TestResolveLeadReturnsExistingRow(t *testing.T) {
	tx := &fakeTx{respond: func(sql string, _ []any) pgx.Row {
		if sql == selectLeadByExternalIDQuery {
			return leadRow("Jane")
		}
		return scriptedRow{err: errors.New("unexpected query")}
	}}

	lead, created, err := (&txStore{tx: tx}).ResolveOrCreateLead(context.Background(), "L1")
	if err != nil || created || lead.Name != "Jane" {
		t.Fatalf("expected existing lead, got %+v created=%v err=%v", lead, created, err)
	}
	if tx.count(insertPlaceholderLeadQuery) != 0 {
		t.Fatalf("expected no insert for a known lead")
	}
}

func TestResolveLeadCreatesPlaceholder(t *testing.T) {
	tx := &fakeTx{respond: func(sql string, args []any) pgx.Row {
		if sql == insertPlaceholderLeadQuery {
			return leadRow(args[1].(string))
		}
		return noRows()
	}}

	lead, created, err := (&txStore{tx: tx}).ResolveOrCreateLead(context.Background(), "L1")
	if err != nil || !created || lead.Name != domain.PlaceholderLeadName {
		t.Fatalf("expected placeholder, got %+v created=%v err=%v", lead, created, err)
	}
}

func TestResolveLeadRereadsAfterConcurrentInsert(t *testing.T) {
	selects := 0
	tx := &fakeTx{respond: func(sql string, _ []any) pgx.Row {
		if sql == selectLeadByExternalIDQuery {
			selects++
			if selects == 1 {
				return noRows()
			}
			return leadRow("Winner")
		}
		return noRows()
	}}

	lead, created, err := (&txStore{tx: tx}).ResolveOrCreateLead(context.Background(), "L1")
	if err != nil || created || lead.Name != "Winner" {
		t.Fatalf("expected concurrent row, got %+v created=%v err=%v", lead, created, err)
	}
}

func TestResolveLeadGivesUpAfterRepeatedConflicts(t *testing.T) {
	tx := &fakeTx{respond: func(string, []any) pgx.Row { return noRows() }}

	_, _, err := (&txStore{tx: tx}).ResolveOrCreateLead(context.Background(), "L1")
	if !apperr.HasCode(err, apperr.CodeIntegrityFailure) {
		t.Fatalf("expected integrity failure, got %v", err)
	}
	if tx.count(insertPlaceholderLeadQuery) != resolveAttempts {
		t.Fatalf("expected %d inserts, got %d", resolveAttempts, tx.count(insertPlaceholderLeadQuery))
	}
}

func TestResolveLeadClassifiesSelectErrors(t *testing.T) {
	tx := &fakeTx{respond: func(string, []any) pgx.Row { return scriptedRow{err: pgError("40001")} }}
	if _, _, err := (&txStore{tx: tx}).ResolveOrCreateLead(context.Background(), "L1"); !apperr.HasCode(err, apperr.CodeTransientFailure) {
		t.Fatalf("expected transient failure, got %v", err)
	}

	tx = &fakeTx{respond: func(string, []any) pgx.Row { return scriptedRow{err: errors.New("corrupt")} }}
	if _, _, err := (&txStore{tx: tx}).ResolveOrCreateLead(context.Background(), "L1"); !apperr.HasCode(err, apperr.CodeIntegrityFailure) {
		t.Fatalf("expected integrity failure, got %v", err)
	}
}

func TestResolveBrokerCreatesPlaceholderUnderSavepoint(t *testing.T) {
	tx := &fakeTx{respond: func(sql string, args []any) pgx.Row {
		if sql == insertPlaceholderBrokerQuery {
			return brokerRow(args[2].(string))
		}
		return noRows()
	}}

	broker, created, err := (&txStore{tx: tx}).ResolveOrCreateBroker(context.Background(), "B1")
	if err != nil || !created {
		t.Fatalf("expected placeholder, got created=%v err=%v", created, err)
	}
	if broker.Email != domain.PlaceholderBrokerEmail("B1") {
		t.Fatalf("unexpected email %q", broker.Email)
	}
	if tx.savepoints != 1 || tx.released != 1 || tx.rolledBack != 0 {
		t.Fatalf("unexpected savepoint use: begin=%d release=%d rollback=%d", tx.savepoints, tx.released, tx.rolledBack)
	}
}

func TestResolveBrokerRetriesWhenEmailIsTaken(t *testing.T) {
	owned := domain.PlaceholderBrokerEmail("B1")
	tx := &fakeTx{respond: func(sql string, args []any) pgx.Row {
		if sql != insertPlaceholderBrokerQuery {
			return noRows()
		}
		email := args[2].(string)
		if email == owned {
			return scriptedRow{err: pgError("23505")}
		}
		return brokerRow(email)
	}}

	broker, created, err := (&txStore{tx: tx}).ResolveOrCreateBroker(context.Background(), "B1")
	if err != nil || !created {
		t.Fatalf("expected placeholder after email retry, got created=%v err=%v", created, err)
	}
	if broker.Email == owned || !strings.HasPrefix(broker.Email, "B1+") || !strings.HasSuffix(broker.Email, "@example.com") {
		t.Fatalf("expected suffixed email, got %q", broker.Email)
	}
	if tx.count(insertPlaceholderBrokerQuery) != 2 {
		t.Fatalf("expected 2 inserts, got %d", tx.count(insertPlaceholderBrokerQuery))
	}
	if tx.rolledBack != 1 || tx.released != 1 {
		t.Fatalf("expected one rolled back and one released savepoint, got rollback=%d release=%d", tx.rolledBack, tx.released)
	}
}

func TestResolveBrokerRereadsAfterConcurrentInsert(t *testing.T) {
	selects := 0
	tx := &fakeTx{respond: func(sql string, _ []any) pgx.Row {
		if sql == selectBrokerByExternalIDQuery {
			selects++
			if selects == 2 {
				return brokerRow("alex@broker.test")
			}
		}
		return noRows()
	}}

	broker, created, err := (&txStore{tx: tx}).ResolveOrCreateBroker(context.Background(), "B1")
	if err != nil || created || broker.Email != "alex@broker.test" {
		t.Fatalf("expected concurrent row, got %+v created=%v err=%v", broker, created, err)
	}
}

func TestResolveBrokerWrapsUnexpectedInsertError(t *testing.T) {
	tx := &fakeTx{respond: func(sql string, _ []any) pgx.Row {
		if sql == insertPlaceholderBrokerQuery {
			return scriptedRow{err: pgError("23514")}
		}
		return noRows()
	}}

	_, _, err := (&txStore{tx: tx}).ResolveOrCreateBroker(context.Background(), "B1")
	if !apperr.HasCode(err, apperr.CodeIntegrityFailure) {
		t.Fatalf("expected integrity failure, got %v", err)
	}
}

func insertParams() InsertParams {
	return InsertParams{LeadID: leadID, BrokerID: brokerID, Rating: 4, Status: "contacted"}
}

func feedbackRow() scriptedRow {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	return scriptedRow{values: []any{
		uuid.New(), leadID, brokerID, 4, "contacted", []string{}, "", nil,
		nil, nil, nil, false, now, now,
	}}
}

func TestInsertFeedbackSuccess(t *testing.T) {
	tx := &fakeTx{respond: func(string, []any) pgx.Row { return feedbackRow() }}

	fb, err := (&txStore{tx: tx}).InsertFeedback(context.Background(), insertParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Rating != 4 || fb.BrokerID != brokerID {
		t.Fatalf("unexpected feedback %+v", fb)
	}
	if issues, ok := tx.calls[0].args[4].([]string); !ok || issues == nil {
		t.Fatalf("expected nil issues to be sent as an empty array, got %#v", tx.calls[0].args[4])
	}
}

func TestInsertFeedbackClassifiesFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"pair conflict", pgx.ErrNoRows, domain.CodeDuplicateFeedback},
		{"unique violation", pgError("23505"), domain.CodeDuplicateFeedback},
		{"foreign key", pgError("23503"), domain.CodeInvalidReference},
		{"check", pgError("23514"), apperr.CodeValidation},
		{"serialization", pgError("40001"), apperr.CodeTransientFailure},
		{"other", errors.New("boom"), apperr.CodeIntegrityFailure},
	}
	for _, tc := range cases {
		tx := &fakeTx{respond: func(string, []any) pgx.Row { return scriptedRow{err: tc.err} }}
		_, err := (&txStore{tx: tx}).InsertFeedback(context.Background(), insertParams())
		if !apperr.HasCode(err, tc.code) {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestInsertFeedbackRejectsInvalidRatingBeforeQuery(t *testing.T) {
	tx := &fakeTx{respond: func(string, []any) pgx.Row { return feedbackRow() }}
	p := insertParams()
	p.Rating = 6

	if _, err := (&txStore{tx: tx}).InsertFeedback(context.Background(), p); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(tx.calls) != 0 {
		t.Fatalf("expected no query")
	}
}

func TestRefreshBrokerStats(t *testing.T) {
	tx := &fakeTx{respond: func(sql string, _ []any) pgx.Row {
		if sql == lockBrokerQuery {
			return scriptedRow{values: []any{brokerID}}
		}
		return scriptedRow{values: []any{3, 4.5}}
	}}

	stats, err := (&txStore{tx: tx}).RefreshBrokerStats(context.Background(), brokerID)
	if err != nil || stats.TotalFeedbackCount != 3 || stats.AverageRating != 4.5 {
		t.Fatalf("unexpected stats %+v err=%v", stats, err)
	}
	if tx.calls[0].sql != lockBrokerQuery || tx.calls[1].sql != refreshBrokerStatsQuery {
		t.Fatalf("expected lock before refresh")
	}
}

func TestRefreshBrokerStatsMissingBroker(t *testing.T) {
	tx := &fakeTx{respond: func(string, []any) pgx.Row { return noRows() }}

	_, err := (&txStore{tx: tx}).RefreshBrokerStats(context.Background(), brokerID)
	if !apperr.HasCode(err, domain.CodeInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
	if len(tx.calls) != 1 {
		t.Fatalf("expected refresh to be skipped")
	}
}

func TestRefreshBrokerStatsWrapsLockTimeout(t *testing.T) {
	tx := &fakeTx{respond: func(string, []any) pgx.Row { return scriptedRow{err: pgError("55P03")} }}

	if _, err := (&txStore{tx: tx}).RefreshBrokerStats(context.Background(), brokerID); !apperr.HasCode(err, apperr.CodeTransientFailure) {
		t.Fatalf("expected transient failure, got %v", err)
	}
}
