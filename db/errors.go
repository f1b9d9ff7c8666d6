// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"errors"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/pollboard/apperr"
)

// TranslateError classifies a driver error. Constraint violations become
// conflicts or validation failures; anything else is internal and
// reported to clients as message.
func TranslateError(err error, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return wrap(apperr.KindConflict, "duplicate value violates "+pqErr.Constraint, err)
		case "foreign_key_violation":
			return wrap(apperr.KindValidationFailed, "referenced record does not exist", err)
		case "check_violation", "not_null_violation", "string_data_right_truncation":
			return wrap(apperr.KindValidationFailed, "value violates "+pqErr.Constraint, err)
		case "serialization_failure":
			return wrap(apperr.KindConflict, "concurrent update, please retry", err)
		}
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return wrap(apperr.KindConflict, "duplicate value", err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return wrap(apperr.KindValidationFailed, "referenced record does not exist", err)
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return wrap(apperr.KindValidationFailed, "value violates a constraint", err)
		}
	}

	return apperr.Internal(message, err)
}

func wrap(kind apperr.Kind, message string, err error) error {
	e := &apperr.Error{Kind: kind, Message: message, Err: err}
	if kind == apperr.KindConflict {
		e.Reason = message
	}
	return e
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "serialization_failure"
}
