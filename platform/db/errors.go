package db

import (
	"context"
	"errors"
	"strings"

	"lead_feedback_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories react to.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
	codeLockNotAvailable    = "55P03"
	codeQueryCanceled       = "57014"
	classConnection         = "08"
)

// PgCode returns the SQLSTATE of err, or "" when err is not a Postgres error.
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return PgCode(err) == CodeUniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return PgCode(err) == CodeForeignKeyViolation
}

// IsCheckViolation reports whether err is a check constraint violation.
func IsCheckViolation(err error) bool {
	return PgCode(err) == CodeCheckViolation
}

// IsTransient reports whether err is worth retrying: lock and serialization
// conflicts, cancelled statements, broken connections and expired deadlines.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	switch code := PgCode(err); {
	case code == codeSerialization, code == codeDeadlock, code == codeLockNotAvailable, code == codeQueryCanceled:
		return true
	case strings.HasPrefix(code, classConnection):
		return true
	}

	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}

// WrapError converts a storage error into an *apperr.Error. Typed errors pass
// through, transient failures become Unavailable and anything else is an
// integrity failure.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if IsTransient(err) {
		return apperr.Wrap(apperr.KindUnavailable, "storage temporarily unavailable", err).
			WithOp(op).
			WithCode(apperr.CodeTransientFailure)
	}
	return apperr.Wrap(apperr.KindInternal, "storage operation failed", err).
		WithOp(op).
		WithCode(apperr.CodeIntegrityFailure)
}
