// Package repository contains data access logic separated from HTTP
// handlers.  Sentinel errors defined here let handlers translate storage
// failures into status codes without inspecting driver details.
package repository

import "errors"

// ErrEmailExists is returned when an insert violates the unique email
// constraint.  Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user row matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrAdNotFound is returned when an ad cannot be found.
var ErrAdNotFound = errors.New("ad not found")

// ErrReviewNotFound is returned when a review cannot be found.
var ErrReviewNotFound = errors.New("review not found")
