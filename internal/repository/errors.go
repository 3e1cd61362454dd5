// Package repository defines error values shared across repositories.  These
// sentinels let handlers distinguish failure scenarios: ErrConflict signals
// that an operation cannot proceed because of existing dependent records
// (e.g. deleting a performance that already has tickets), while per-entity
// not-found sentinels live next to their repositories.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a write cannot be performed because of
// conflicting state.  Handlers translate this into 409.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether err is a MySQL duplicate-entry error (1062).
// The driver does not expose a typed error for this, so match on the code.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
