package models

import "errors"

// Error taxonomy shared by the dao and logic layers. The dao translates every
// storage failure into one of these before it leaves the layer; controllers
// map them onto the response envelope.
var (
	// ErrValidation covers bad or missing caller input; nothing was written.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means a referenced record does not exist (or is inactive).
	ErrNotFound = errors.New("not found")

	// ErrConflict means a state precondition failed, e.g. settling a
	// withdrawal that is no longer pending. Callers must not blindly retry.
	ErrConflict = errors.New("conflict")

	// ErrTxConflict is a storage-level serialization conflict. Safe to retry
	// for view crediting; never retried for settlements.
	ErrTxConflict = errors.New("transaction conflict")

	// ErrUnauthorized means the acting principal lacks the required role.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsufficientBalance means a debit would take the wallet negative.
	ErrInsufficientBalance = errors.New("insufficient funds")
)
