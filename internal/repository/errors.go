// Package repository implements MySQL persistence for seats, shows,
// users and tickets.  The sentinel values below let the service layer
// distinguish between failure scenarios without inspecting driver
// errors.  For example, ErrConflict signals that a write lost a race
// with a concurrent transaction and the whole unit of work should be
// rolled back.
package repository

import "errors"

// ErrConflict is returned when a compare-and-swap update matched no row
// or MySQL aborted the transaction because of a deadlock or lock wait
// timeout.  Callers may retry the entire transaction.
var ErrConflict = errors.New("conflict")

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrUserNotFound indicates that a user id or email did not resolve.
var ErrUserNotFound = errors.New("user not found")

// ErrTicketNotFound indicates that a ticket id did not resolve.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrEmailExists is returned by UserRepo.Create on a duplicate email.
var ErrEmailExists = errors.New("email already exists")
