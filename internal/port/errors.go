package port

import "errors"

// Errors adapters translate store-level failures into so services can react
// without knowing the storage engine.
var (
	// ErrDuplicateKey reports a uniqueness-constraint violation. Call sites
	// decide what it means: the cart upsert never sees it, favorites map it
	// to "already exists".
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrConflict reports a transaction-level race (deadlock, lock wait
	// timeout). Safe to retry.
	ErrConflict = errors.New("storage conflict")
)
