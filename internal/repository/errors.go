// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific error strings. For example, ErrConflict
// signals that an operation cannot proceed due to existing dependent
// records (e.g. deleting a venue that still has games), while
// ErrTokenInvalid deliberately collapses "not found", "already used"
// and "expired" into one value so callers cannot leak which of the
// three occurred.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update would duplicate a
// user's email address. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert or update would duplicate a
// username. Handlers translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrNotFound is returned when a referenced row does not exist. Handlers
// translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deleting a game that still has
// signups. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrTokenInvalid is returned for any reset token that is missing, already
// used or expired. The three cases are indistinguishable on purpose.
var ErrTokenInvalid = errors.New("invalid or expired token")
