package transfer

import (
	"context"

	"github.com/google/uuid"
)

// Direction selects which side of a transfer a tenant is on.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	// DirectionRelated matches the tenant on either side.
	DirectionRelated Direction = "related"
)

type FindParams struct {
	TenantID uuid.UUID
	Status   Status
	Limit    int
	Offset   int
}

type Repository interface {
	// GetByID returns the request if tenantID is its source or target tenant.
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*TransferRequest, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]*TransferRequest, error)
	Create(ctx context.Context, entity *TransferRequest) (*TransferRequest, error)
	// Save persists the aggregate with an optimistic version check and
	// returns ErrStaleVersion when the stored version moved on.
	Save(ctx context.Context, entity *TransferRequest) (*TransferRequest, error)
	Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	CountByStatus(ctx context.Context, tenantID uuid.UUID, direction Direction, status Status) (int64, error)
}
