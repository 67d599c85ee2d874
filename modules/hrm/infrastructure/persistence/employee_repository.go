package persistence

import (
	"context"
	"errors"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hrsaas/hrcore/modules/hrm/domain/aggregates/employee"
	"github.com/hrsaas/hrcore/pkg/composables"
	"github.com/hrsaas/hrcore/pkg/repo"
)

const employeeColumns = `id, tenant_id, employee_number, name, name_en, email, phone, mobile,
	department_id, position_code, job_title_code, employment_type,
	status, hire_date, resign_date, created_at, updated_at`

type PgEmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &PgEmployeeRepository{}
}

func (r *PgEmployeeRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT %s FROM hrm_employees WHERE tenant_id = $1 AND id = $2`, employeeColumns)
	entity, err := scanEmployee(tx.QueryRow(ctx, q, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %s", employee.ErrNotFound, id)
	}
	return entity, err
}

func (r *PgEmployeeRepository) Create(ctx context.Context, entity *employee.Employee) (*employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		`INSERT INTO hrm_employees (
			tenant_id, employee_number, name, name_en, email, phone, mobile,
			department_id, position_code, job_title_code, employment_type,
			status, hire_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING %s`,
		employeeColumns,
	)
	created, err := scanEmployee(tx.QueryRow(ctx, q,
		entity.TenantID(),
		entity.EmployeeNumber(),
		entity.Name(),
		pgTextOrNull(entity.NameEn()),
		pgTextOrNull(entity.Email()),
		pgTextOrNull(entity.Phone()),
		pgTextOrNull(entity.Mobile()),
		pgUUIDOrNull(entity.DepartmentID()),
		pgTextOrNull(entity.PositionCode()),
		pgTextOrNull(entity.JobTitleCode()),
		pgTextOrNull(entity.EmploymentType()),
		entity.Status(),
		entity.HireDate(),
	))
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create employee")
	}
	return created, nil
}

func (r *PgEmployeeRepository) Save(ctx context.Context, entity *employee.Employee) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE hrm_employees SET
			name = $3,
			name_en = $4,
			email = $5,
			phone = $6,
			mobile = $7,
			department_id = $8,
			position_code = $9,
			job_title_code = $10,
			employment_type = $11,
			status = $12,
			resign_date = $13,
			updated_at = now()
		  WHERE tenant_id = $1 AND id = $2`,
		entity.TenantID(),
		entity.ID(),
		entity.Name(),
		pgTextOrNull(entity.NameEn()),
		pgTextOrNull(entity.Email()),
		pgTextOrNull(entity.Phone()),
		pgTextOrNull(entity.Mobile()),
		pgUUIDOrNull(entity.DepartmentID()),
		pgTextOrNull(entity.PositionCode()),
		pgTextOrNull(entity.JobTitleCode()),
		pgTextOrNull(entity.EmploymentType()),
		entity.Status(),
		pgDatePtr(entity.ResignDate()),
	)
	if err != nil {
		return gerrors.Wrap(err, "failed to save employee")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %s", employee.ErrNotFound, entity.ID())
	}
	return nil
}

func (r *PgEmployeeRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM hrm_employees WHERE tenant_id = $1`, tenantID).Scan(&count); err != nil {
		return 0, gerrors.Wrap(err, "failed to count employees")
	}
	return count, nil
}

func scanEmployee(row repo.Row) (*employee.Employee, error) {
	var (
		id             pgtype.UUID
		tenantID       pgtype.UUID
		employeeNumber string
		name           string
		nameEn         pgtype.Text
		email          pgtype.Text
		phone          pgtype.Text
		mobile         pgtype.Text
		departmentID   pgtype.UUID
		positionCode   pgtype.Text
		jobTitleCode   pgtype.Text
		employmentType pgtype.Text
		status         string
		hireDate       pgtype.Date
		resignDate     pgtype.Date
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &tenantID, &employeeNumber, &name, &nameEn, &email, &phone, &mobile,
		&departmentID, &positionCode, &jobTitleCode, &employmentType,
		&status, &hireDate, &resignDate, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	return employee.Hydrate(
		asUUID(id),
		asUUID(tenantID),
		employeeNumber,
		name,
		asString(nameEn),
		asString(email),
		asString(phone),
		asString(mobile),
		asUUID(departmentID),
		asString(positionCode),
		asString(jobTitleCode),
		asString(employmentType),
		employee.Status(status),
		hireDate.Time,
		asDatePtr(resignDate),
		asTime(createdAt),
		asTime(updatedAt),
	), nil
}
