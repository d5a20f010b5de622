// Package repository implements the data access layer over MySQL.  This
// file defines sentinel errors shared across repositories so that
// handlers can distinguish failure scenarios with errors.Is.  Business
// outcomes of a booking (flight full, day full) are not errors; they
// are returned through the BookingResult enumeration instead.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrSerializationConflict is returned when MySQL aborts a transaction
// because a concurrent transaction touched the same rows (deadlock or
// lock wait timeout under serializable isolation).  The booking was not
// applied; the caller must retry the whole operation from the top.
var ErrSerializationConflict = errors.New("serialization conflict, retry the operation")

// ErrHandleExists is returned when registration collides with an
// existing user handle.
var ErrHandleExists = errors.New("handle already exists")

// ErrRefreshInvalid is returned when a refresh token is unknown,
// revoked or expired.  The three cases are indistinguishable to the
// caller, so responses cannot be used to probe which tokens exist.
var ErrRefreshInvalid = errors.New("refresh token is invalid")

// isSerializationFailure reports whether err is MySQL telling us a
// concurrent transaction won: 1213 is ER_LOCK_DEADLOCK, 1205 is
// ER_LOCK_WAIT_TIMEOUT.  Under SERIALIZABLE these are the engine's way
// of refusing an interleaving that would break repeatable reads.  The
// check unwraps to the driver's typed error and compares its numeric
// code, so a data value containing "1213" never misclassifies.
func isSerializationFailure(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
}

// isDuplicateEntry reports whether err is MySQL's 1062 unique-key
// violation.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == 1062
}
