//go:build !cgo

package errors

// FromSQLite wraps err as a DB error; the sqlite3 driver is not linked without cgo
func FromSQLite(err error, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, ErrorCodeDB, msg)
}
