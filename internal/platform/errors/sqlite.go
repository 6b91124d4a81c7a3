//go:build cgo

package errors

import (
	stderrs "errors"

	"github.com/mattn/go-sqlite3"
)

// FromSQLite wraps a sqlite3 driver error with a mapped ErrorCode. nil in, nil out
func FromSQLite(err error, msg string) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if !stderrs.As(err, &se) {
		return Wrap(err, ErrorCodeDB, msg)
	}
	switch se.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrReadonly, sqlite3.ErrCantOpen, sqlite3.ErrFull, sqlite3.ErrIoErr:
		return Wrap(err, ErrorCodeUnavailable, msg)
	case sqlite3.ErrConstraint:
		if se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return Wrap(err, ErrorCodeConflict, msg)
		}
		return Wrap(err, ErrorCodeValidation, msg)
	case sqlite3.ErrMismatch, sqlite3.ErrRange, sqlite3.ErrTooBig:
		return Wrap(err, ErrorCodeInvalidArgument, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}
