package tenant

import "errors"

var (
	// ErrNotFound indicates that no configuration record exists for the
	// tenant. Mutating operations never create a record implicitly.
	ErrNotFound = errors.New("tenant not registered")

	// ErrAlreadyRegistered indicates that Create was called for a tenant
	// that already has a configuration record.
	ErrAlreadyRegistered = errors.New("tenant already registered")

	// ErrFilterNotFound indicates a removal of a filter rule that does
	// not exist.
	ErrFilterNotFound = errors.New("filter not found")
)
