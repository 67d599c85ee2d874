package transfer

import "github.com/hrsaas/hrcore/pkg/serrors"

var (
	// ErrNotFound is returned when no transfer request matches the id within
	// the caller's tenant (source or target side).
	ErrNotFound = serrors.NewError("TRANSFER_NOT_FOUND", "transfer request not found", "")

	// ErrInvalidState is returned when a transition is attempted from a state
	// that does not allow it. Never retried automatically.
	ErrInvalidState = serrors.NewError("TRANSFER_INVALID_STATE", "transfer request state does not allow this operation", "")

	// ErrStaleVersion is returned when a state-changing save loses an
	// optimistic concurrency race with another transition on the same request.
	ErrStaleVersion = serrors.NewError("TRANSFER_STALE_VERSION", "transfer request was modified concurrently", "")

	// ErrSameTenant is returned on creation when source and target tenant are
	// identical.
	ErrSameTenant = serrors.NewError("TRANSFER_SAME_TENANT", "source and target tenant must differ", "")

	// ErrIntegrityHazard flags a completion attempt that failed after the
	// mirrored employee was created. All writes roll back together, but the
	// condition is surfaced loudly because it means the two-tenant hand-off
	// could not be confirmed end to end.
	ErrIntegrityHazard = serrors.NewError("TRANSFER_INTEGRITY_HAZARD", "cross-tenant completion could not be confirmed", "")
)
