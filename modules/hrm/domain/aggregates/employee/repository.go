package employee

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the employee directory. Every method takes the tenant id
// explicitly; there is no ambient tenant state to switch or restore.
type Repository interface {
	GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*Employee, error)
	Create(ctx context.Context, entity *Employee) (*Employee, error)
	Save(ctx context.Context, entity *Employee) error
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
