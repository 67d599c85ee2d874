package persistence

import (
	"context"
	"errors"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hrsaas/hrcore/modules/hrm/domain/aggregates/transfer"
	"github.com/hrsaas/hrcore/pkg/composables"
	"github.com/hrsaas/hrcore/pkg/repo"
)

const transferColumns = `id, employee_id, employee_name, employee_number,
	source_tenant_id, source_tenant_name, target_tenant_id, target_tenant_name,
	target_department_id, target_position_id, target_grade_id,
	transfer_date, reason, status,
	source_approver_id, source_approver_name, source_approved_at,
	target_approver_id, target_approver_name, target_approved_at,
	reject_reason, completed_at, version, created_at, updated_at`

type PgTransferRepository struct{}

func NewTransferRepository() transfer.Repository {
	return &PgTransferRepository{}
}

func (r *PgTransferRepository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*transfer.TransferRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		`SELECT %s FROM hrm_transfer_requests
		  WHERE id = $1 AND (source_tenant_id = $2 OR target_tenant_id = $2)`,
		transferColumns,
	)
	entity, err := scanTransfer(tx.QueryRow(ctx, q, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %s", transfer.ErrNotFound, id)
	}
	return entity, err
}

func (r *PgTransferRepository) GetPaginated(ctx context.Context, params *transfer.FindParams) ([]*transfer.TransferRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &transfer.FindParams{}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	where := `(source_tenant_id = $1 OR target_tenant_id = $1)`
	args := []any{params.TenantID}
	if params.Status != "" {
		args = append(args, params.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	args = append(args, limit, offset)

	q := fmt.Sprintf(
		`SELECT %s FROM hrm_transfer_requests
		  WHERE %s
		  ORDER BY created_at DESC, id
		  LIMIT $%d OFFSET $%d`,
		transferColumns, where, len(args)-1, len(args),
	)
	rows, err := tx.Query(ctx, q, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to list transfer requests")
	}
	defer rows.Close()

	var entities []*transfer.TransferRequest
	for rows.Next() {
		entity, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func (r *PgTransferRepository) Create(ctx context.Context, entity *transfer.TransferRequest) (*transfer.TransferRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		`INSERT INTO hrm_transfer_requests (
			employee_id, employee_name, employee_number,
			source_tenant_id, source_tenant_name, target_tenant_id, target_tenant_name,
			target_department_id, target_position_id, target_grade_id,
			transfer_date, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING %s`,
		transferColumns,
	)
	created, err := scanTransfer(tx.QueryRow(ctx, q,
		entity.EmployeeID(),
		pgTextOrNull(entity.EmployeeName()),
		pgTextOrNull(entity.EmployeeNumber()),
		entity.SourceTenantID(),
		pgTextOrNull(entity.SourceTenantName()),
		entity.TargetTenantID(),
		pgTextOrNull(entity.TargetTenantName()),
		pgUUIDOrNull(entity.TargetDepartmentID()),
		pgUUIDOrNull(entity.TargetPositionID()),
		pgUUIDOrNull(entity.TargetGradeID()),
		entity.TransferDate(),
		pgTextOrNull(entity.Reason()),
		entity.Status(),
	))
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create transfer request")
	}
	return created, nil
}

// Save writes the aggregate back under an optimistic version check. A zero
// row count means another writer moved the version first.
func (r *PgTransferRepository) Save(ctx context.Context, entity *transfer.TransferRequest) (*transfer.TransferRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		`UPDATE hrm_transfer_requests SET
			target_department_id = $3,
			target_position_id = $4,
			target_grade_id = $5,
			transfer_date = $6,
			reason = $7,
			status = $8,
			source_approver_id = $9,
			source_approver_name = $10,
			source_approved_at = $11,
			target_approver_id = $12,
			target_approver_name = $13,
			target_approved_at = $14,
			reject_reason = $15,
			completed_at = $16,
			version = version + 1,
			updated_at = now()
		  WHERE id = $1 AND version = $2
		RETURNING %s`,
		transferColumns,
	)
	saved, err := scanTransfer(tx.QueryRow(ctx, q,
		entity.ID(),
		entity.Version(),
		pgUUIDOrNull(entity.TargetDepartmentID()),
		pgUUIDOrNull(entity.TargetPositionID()),
		pgUUIDOrNull(entity.TargetGradeID()),
		entity.TransferDate(),
		pgTextOrNull(entity.Reason()),
		entity.Status(),
		pgUUIDOrNull(entity.SourceApproverID()),
		pgTextOrNull(entity.SourceApproverName()),
		pgTimePtr(entity.SourceApprovedAt()),
		pgUUIDOrNull(entity.TargetApproverID()),
		pgTextOrNull(entity.TargetApproverName()),
		pgTimePtr(entity.TargetApprovedAt()),
		pgTextOrNull(entity.RejectReason()),
		pgTimePtr(entity.CompletedAt()),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %s version %d", transfer.ErrStaleVersion, entity.ID(), entity.Version())
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to save transfer request")
	}
	return saved, nil
}

func (r *PgTransferRepository) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM hrm_transfer_requests WHERE id = $1 AND source_tenant_id = $2`,
		id, tenantID,
	)
	if err != nil {
		return gerrors.Wrap(err, "failed to delete transfer request")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %s", transfer.ErrNotFound, id)
	}
	return nil
}

func (r *PgTransferRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, direction transfer.Direction, status transfer.Status) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	predicate := "source_tenant_id = $1"
	switch direction {
	case transfer.DirectionIncoming:
		predicate = "target_tenant_id = $1"
	case transfer.DirectionRelated:
		predicate = "(source_tenant_id = $1 OR target_tenant_id = $1)"
	}
	q := fmt.Sprintf(`SELECT COUNT(*) FROM hrm_transfer_requests WHERE %s AND status = $2`, predicate)

	var count int64
	if err := tx.QueryRow(ctx, q, tenantID, status).Scan(&count); err != nil {
		return 0, gerrors.Wrap(err, "failed to count transfer requests")
	}
	return count, nil
}

func scanTransfer(row repo.Row) (*transfer.TransferRequest, error) {
	var (
		id                 pgtype.UUID
		employeeID         pgtype.UUID
		employeeName       pgtype.Text
		employeeNumber     pgtype.Text
		sourceTenantID     pgtype.UUID
		sourceTenantName   pgtype.Text
		targetTenantID     pgtype.UUID
		targetTenantName   pgtype.Text
		targetDepartmentID pgtype.UUID
		targetPositionID   pgtype.UUID
		targetGradeID      pgtype.UUID
		transferDate       pgtype.Date
		reason             pgtype.Text
		status             string
		sourceApproverID   pgtype.UUID
		sourceApproverName pgtype.Text
		sourceApprovedAt   pgtype.Timestamptz
		targetApproverID   pgtype.UUID
		targetApproverName pgtype.Text
		targetApprovedAt   pgtype.Timestamptz
		rejectReason       pgtype.Text
		completedAt        pgtype.Timestamptz
		version            int64
		createdAt          pgtype.Timestamptz
		updatedAt          pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &employeeID, &employeeName, &employeeNumber,
		&sourceTenantID, &sourceTenantName, &targetTenantID, &targetTenantName,
		&targetDepartmentID, &targetPositionID, &targetGradeID,
		&transferDate, &reason, &status,
		&sourceApproverID, &sourceApproverName, &sourceApprovedAt,
		&targetApproverID, &targetApproverName, &targetApprovedAt,
		&rejectReason, &completedAt, &version, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	return transfer.Hydrate(
		asUUID(id),
		asUUID(employeeID),
		asString(employeeName),
		asString(employeeNumber),
		asUUID(sourceTenantID),
		asString(sourceTenantName),
		asUUID(targetTenantID),
		asString(targetTenantName),
		asUUID(targetDepartmentID),
		asUUID(targetPositionID),
		asUUID(targetGradeID),
		transferDate.Time,
		asString(reason),
		transfer.Status(status),
		asUUID(sourceApproverID),
		asString(sourceApproverName),
		asTimePtr(sourceApprovedAt),
		asUUID(targetApproverID),
		asString(targetApproverName),
		asTimePtr(targetApprovedAt),
		asString(rejectReason),
		asTimePtr(completedAt),
		version,
		asTime(createdAt),
		asTime(updatedAt),
	), nil
}
