// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
// Lookups that match nothing return sql.ErrNoRows; services translate it.
package repository

import "errors"

// ErrNumeroConflict is returned when two pieces of one conclusion would share a numero.
var ErrNumeroConflict = errors.New("piece numero conflict")
