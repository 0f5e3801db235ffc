// Package repository contains data access logic separated from HTTP
// handlers.  Sentinel errors defined here let handlers translate failure
// scenarios to HTTP codes without string matching.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.  Handlers
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("record not found")

// ErrUsernameExists / ErrEmailExists are returned on registration when
// the unique constraint would be violated.
var (
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)

// ErrDuplicateDescription signals a case-insensitive item description
// collision.  It is detected before insert so callers see a validation
// error instead of a constraint-violation crash.
var ErrDuplicateDescription = errors.New("an item with this description already exists")

// ErrDuplicateItemNumber signals a collision on the item number's unique
// key, the only unique constraint the database itself enforces on items.
var ErrDuplicateItemNumber = errors.New("an item with this item number already exists")

// ErrDuplicateReceivingNo signals a receiving number collision.
var ErrDuplicateReceivingNo = errors.New("receiving number already exists")

// ErrInvalidRole is returned when a role name does not exist.
var ErrInvalidRole = errors.New("invalid role")
