// Package repository holds the MySQL persistence of the booking service:
// the transactional booking store, the public catalogue, inventory
// administration and the auth tables.  Sentinel errors below let the
// handlers pick an HTTP status without inspecting driver errors.
package repository

import "errors"

// ErrForbidden is returned when the caller acts on a hotel they do not
// administer.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with existing state,
// such as a duplicate room number or an overlapping tariff.  Handlers
// translate it into HTTP 409.
var ErrConflict = errors.New("conflict")
