// Package lifecycle implements the coordinator that owns every catalog item,
// loan, and reservation status transition, and the per-item serialization
// discipline that keeps the three entities consistent under concurrency.
package lifecycle

import "errors"

// Precondition violations: the caller attempted an operation that is illegal
// in the current state. Surfaced synchronously, never retried automatically.
var (
	ErrItemUnavailable            = errors.New("item is not available for checkout")
	ErrItemReservedForAnotherUser = errors.New("item is reserved for another borrower")
	ErrMemberSuspended            = errors.New("member is suspended")
)

// Data-integrity errors: the referenced entity does not exist.
var (
	ErrItemNotFound   = errors.New("catalog item not found")
	ErrMemberNotFound = errors.New("member not found")
)

// ErrBusy is returned when the per-item lock could not be acquired within the
// configured wait. Transient; the caller may retry with backoff.
var ErrBusy = errors.New("item is busy, retry later")
