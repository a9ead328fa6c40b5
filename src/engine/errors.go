package engine

import "errors"

var (
	// ErrInvalidOrder rejects a submission at the boundary; the order is
	// never created.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInvalidFill marks a malformed fill reaching the ledger. The
	// engine never produces one, so seeing it means an internal bug.
	ErrInvalidFill = errors.New("invalid fill")
)
