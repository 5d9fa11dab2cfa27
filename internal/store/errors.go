package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint,
// e.g. registering an email that is already an admin or subscriber.
var ErrDuplicate = errors.New("already exists")

// mapUniqueViolation translates driver-specific unique-constraint errors into
// ErrDuplicate. Each supported engine reports the violation differently.
func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"), // sqlite, postgres
		strings.Contains(msg, "duplicate key"),   // postgres
		strings.Contains(msg, "duplicate entry"): // mysql
		return ErrDuplicate
	}
	return err
}
