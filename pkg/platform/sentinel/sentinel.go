package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into pkg/domain-errors codes:
//   - ErrNotFound: no record matches the id (or slug)
//   - ErrAlreadyUsed: a unique attribute (domain slug, consultation offer) is taken
//   - ErrInvalidReference: a foreign key points at a missing parent record
//   - ErrUnavailable: the backing store or session store cannot be reached
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyUsed      = errors.New("already used")
	ErrInvalidReference = errors.New("invalid reference")
	ErrUnavailable      = errors.New("unavailable")
)
