// Package repository implements the data access layer over MySQL.  This file
// defines sentinel errors shared by the repositories so handlers can map
// failure cases to HTTP statuses without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registration collides with an existing
// account email.  Emails are compared case-insensitively.
var ErrEmailExists = errors.New("email already exists")
