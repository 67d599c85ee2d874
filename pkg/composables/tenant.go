package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hrsaas/hrcore/pkg/constants"
)

var ErrNoTenantID = errors.New("no tenant id found in context")

// WithTenantID returns a new context carrying the calling actor's tenant.
// This identifies who is acting, not which tenant's rows an operation may
// touch: repositories take explicit tenant id parameters for that.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, tenantID)
}

func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	v := ctx.Value(constants.TenantIDKey)
	if v == nil {
		return uuid.Nil, ErrNoTenantID
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoTenantID
	}
	return id, nil
}
