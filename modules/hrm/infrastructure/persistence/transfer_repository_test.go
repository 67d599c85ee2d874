package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/hrsaas/hrcore/modules/hrm/domain/aggregates/transfer"
	"github.com/hrsaas/hrcore/pkg/composables"
)

var transferRowColumns = []string{
	"id", "employee_id", "employee_name", "employee_number",
	"source_tenant_id", "source_tenant_name", "target_tenant_id", "target_tenant_name",
	"target_department_id", "target_position_id", "target_grade_id",
	"transfer_date", "reason", "status",
	"source_approver_id", "source_approver_name", "source_approved_at",
	"target_approver_id", "target_approver_name", "target_approved_at",
	"reject_reason", "completed_at", "version", "created_at", "updated_at",
}

func mockCtx(t *testing.T) (context.Context, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return composables.WithQuerier(context.Background(), mock), mock
}

func TestTransferRepository_GetByID_MapsRow(t *testing.T) {
	ctx, mock := mockCtx(t)
	repo := NewTransferRepository()

	id := uuid.New()
	employeeID := uuid.New()
	sourceID := uuid.New()
	targetID := uuid.New()
	transferDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM hrm_transfer_requests`).
		WithArgs(id, sourceID).
		WillReturnRows(pgxmock.NewRows(transferRowColumns).AddRow(
			id.String(), employeeID.String(), "Kim Jiwoo", "HR-2024-0007",
			sourceID.String(), "Alpha Holdings", targetID.String(), "Beta Subsidiary",
			nil, nil, nil,
			transferDate, "group reassignment", "PENDING",
			nil, nil, nil,
			nil, nil, nil,
			nil, nil, int64(3), now, now,
		))

	entity, err := repo.GetByID(ctx, id, sourceID)
	require.NoError(t, err)
	require.Equal(t, id, entity.ID())
	require.Equal(t, employeeID, entity.EmployeeID())
	require.Equal(t, "Kim Jiwoo", entity.EmployeeName())
	require.Equal(t, transfer.StatusPending, entity.Status())
	require.Equal(t, uuid.Nil, entity.TargetDepartmentID())
	require.Nil(t, entity.SourceApprovedAt())
	require.Equal(t, int64(3), entity.Version())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_GetByID_NotFound(t *testing.T) {
	ctx, mock := mockCtx(t)
	repo := NewTransferRepository()

	id := uuid.New()
	tenantID := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM hrm_transfer_requests`).
		WithArgs(id, tenantID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(ctx, id, tenantID)
	require.ErrorIs(t, err, transfer.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_Save_StaleVersion(t *testing.T) {
	ctx, mock := mockCtx(t)
	repo := NewTransferRepository()

	now := time.Now().UTC()
	entity := transfer.Hydrate(
		uuid.New(), uuid.New(), "Kim Jiwoo", "HR-2024-0007",
		uuid.New(), "", uuid.New(), "",
		uuid.Nil, uuid.Nil, uuid.Nil,
		now, "", transfer.StatusPending,
		uuid.Nil, "", nil,
		uuid.Nil, "", nil,
		"", nil, 3, now, now,
	)

	// The version predicate matches no row: someone else committed first.
	mock.ExpectQuery(`UPDATE hrm_transfer_requests SET`).
		WithArgs(
			entity.ID(), entity.Version(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Save(ctx, entity)
	require.ErrorIs(t, err, transfer.ErrStaleVersion)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_CountByStatus_DirectionSelectsColumn(t *testing.T) {
	ctx, mock := mockCtx(t)
	repo := NewTransferRepository()
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM hrm_transfer_requests WHERE source_tenant_id`).
		WithArgs(tenantID, transfer.StatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4)))

	count, err := repo.CountByStatus(ctx, tenantID, transfer.DirectionOutgoing, transfer.StatusPending)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM hrm_transfer_requests WHERE target_tenant_id`).
		WithArgs(tenantID, transfer.StatusSourceApproved).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	count, err = repo.CountByStatus(ctx, tenantID, transfer.DirectionIncoming, transfer.StatusSourceApproved)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM hrm_transfer_requests WHERE \(source_tenant_id = \$1 OR target_tenant_id = \$1\)`).
		WithArgs(tenantID, transfer.StatusCompleted).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err = repo.CountByStatus(ctx, tenantID, transfer.DirectionRelated, transfer.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, int64(7), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepository_Delete_OnlySourceTenant(t *testing.T) {
	ctx, mock := mockCtx(t)
	repo := NewTransferRepository()

	id := uuid.New()
	tenantID := uuid.New()
	mock.ExpectExec(`DELETE FROM hrm_transfer_requests`).
		WithArgs(id, tenantID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(ctx, id, tenantID)
	require.ErrorIs(t, err, transfer.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
