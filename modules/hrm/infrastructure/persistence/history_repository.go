package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hrsaas/hrcore/modules/hrm/domain/entities/history"
	"github.com/hrsaas/hrcore/pkg/composables"
)

type PgHistoryRepository struct{}

func NewHistoryRepository() history.Repository {
	return &PgHistoryRepository{}
}

func (r *PgHistoryRepository) Create(ctx context.Context, entry *history.Entry) (*history.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO hrm_employee_history (
			tenant_id, employee_id, employee_number, employee_name, change_type,
			effective_date, from_department_id, to_department_id,
			from_position_code, to_position_code, from_grade_code, to_grade_code, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`,
		entry.TenantID,
		entry.EmployeeID,
		pgTextOrNull(entry.EmployeeNumber),
		pgTextOrNull(entry.EmployeeName),
		entry.ChangeType,
		entry.EffectiveDate,
		pgUUIDPtr(entry.FromDepartmentID),
		pgUUIDPtr(entry.ToDepartmentID),
		pgTextPtr(entry.FromPositionCode),
		pgTextPtr(entry.ToPositionCode),
		pgTextPtr(entry.FromGradeCode),
		pgTextPtr(entry.ToGradeCode),
		pgTextOrNull(entry.Reason),
	)

	var id pgtype.UUID
	var createdAt pgtype.Timestamptz
	if err := row.Scan(&id, &createdAt); err != nil {
		return nil, gerrors.Wrap(err, "failed to create history entry")
	}

	created := *entry
	created.ID = asUUID(id)
	created.CreatedAt = asTime(createdAt)
	return &created, nil
}
