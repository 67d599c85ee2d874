package numberingrule

import (
	"context"

	"github.com/google/uuid"

	"github.com/hrsaas/hrcore/pkg/serrors"
)

// ErrNoActiveRule signals that the tenant has no active numbering rule.
// Callers treat this as a defined fallback condition, not a failure.
var ErrNoActiveRule = serrors.NewError("NUMBERING_RULE_NOT_CONFIGURED", "no active numbering rule for tenant", "")

type Repository interface {
	// GetActiveForUpdate loads the tenant's active rule under its row lock,
	// serializing concurrent allocations for that tenant only.
	GetActiveForUpdate(ctx context.Context, tenantID uuid.UUID) (*NumberingRule, error)
	GetActive(ctx context.Context, tenantID uuid.UUID) (*NumberingRule, error)
	// Save persists currentSequence/currentYear; it must be called while the
	// lock taken by GetActiveForUpdate is still held.
	Save(ctx context.Context, rule *NumberingRule) error
}
