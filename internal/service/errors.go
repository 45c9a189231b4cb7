package service

import "errors"

var (
	// ErrNotFound covers lookups scoped to the caller's SHG: a record that
	// exists under another group is reported as missing, never as forbidden.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyPaid rejects a repeat payment against a paid installment.
	ErrAlreadyPaid = errors.New("installment already paid")

	// ErrConflict covers duplicate one-time setup, e.g. a second SHG profile.
	ErrConflict = errors.New("record already exists")

	// ErrValidation covers malformed request payloads.
	ErrValidation = errors.New("invalid request")
)
