package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hrsaas/hrcore/modules/hrm/domain/aggregates/employee"
	"github.com/hrsaas/hrcore/modules/hrm/domain/entities/history"
)

func newHiredEmployee(tenantID uuid.UUID) *employee.Employee {
	e := employee.Hydrate(
		uuid.New(), tenantID, "HR-2026-0001", "Kim Jiwoo", "Jiwoo Kim",
		"jiwoo@example.com", "", "010-1234-5678",
		uuid.New(), "P3", "G5", "FULL_TIME",
		employee.StatusActive, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), nil,
		time.Time{}, time.Time{},
	)
	return e
}

func TestRecordHire(t *testing.T) {
	repo := &memHistoryRepo{}
	rec := NewHistoryRecorder(repo)
	e := newHiredEmployee(uuid.New())

	require.NoError(t, rec.RecordHire(context.Background(), e, "group transfer in - Alpha Holdings"))
	require.Len(t, repo.entries, 1)

	entry := repo.entries[0]
	require.Equal(t, history.ChangeHire, entry.ChangeType)
	require.Equal(t, e.TenantID(), entry.TenantID)
	require.Equal(t, e.ID(), entry.EmployeeID)
	require.Equal(t, "HR-2026-0001", entry.EmployeeNumber)
	require.Equal(t, e.HireDate(), entry.EffectiveDate)
	require.Equal(t, "group transfer in - Alpha Holdings", entry.Reason)
	require.Nil(t, entry.FromDepartmentID)
	require.Equal(t, e.DepartmentID(), *entry.ToDepartmentID)
	require.Equal(t, "P3", *entry.ToPositionCode)
	require.Equal(t, "G5", *entry.ToGradeCode)
}

func TestRecordResign_UsesResignDate(t *testing.T) {
	repo := &memHistoryRepo{}
	rec := NewHistoryRecorder(repo)
	e := newHiredEmployee(uuid.New())
	resignDate := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, e.Resign(resignDate))

	require.NoError(t, rec.RecordResign(context.Background(), e, "group transfer out - Beta Subsidiary"))
	require.Len(t, repo.entries, 1)

	entry := repo.entries[0]
	require.Equal(t, history.ChangeResign, entry.ChangeType)
	require.Equal(t, resignDate, entry.EffectiveDate)
	require.Equal(t, e.DepartmentID(), *entry.FromDepartmentID)
	require.Equal(t, "P3", *entry.FromPositionCode)
	require.Nil(t, entry.ToDepartmentID)
}

func TestRecordDepartmentChange(t *testing.T) {
	repo := &memHistoryRepo{}
	rec := NewHistoryRecorder(repo)
	e := newHiredEmployee(uuid.New())
	from, to := uuid.New(), uuid.New()

	require.NoError(t, rec.RecordDepartmentChange(context.Background(), e, from, to, "reorg"))
	require.Len(t, repo.entries, 1)

	entry := repo.entries[0]
	require.Equal(t, history.ChangeTransfer, entry.ChangeType)
	require.Equal(t, from, *entry.FromDepartmentID)
	require.Equal(t, to, *entry.ToDepartmentID)
}

func TestRecordPositionAndGradeChange(t *testing.T) {
	repo := &memHistoryRepo{}
	rec := NewHistoryRecorder(repo)
	e := newHiredEmployee(uuid.New())

	require.NoError(t, rec.RecordPositionChange(context.Background(), e, "P3", "P4", "promotion"))
	require.NoError(t, rec.RecordGradeChange(context.Background(), e, "G5", "G6", "promotion"))
	require.Len(t, repo.entries, 2)

	require.Equal(t, history.ChangePosition, repo.entries[0].ChangeType)
	require.Equal(t, "P4", *repo.entries[0].ToPositionCode)
	require.Equal(t, history.ChangeGrade, repo.entries[1].ChangeType)
	require.Equal(t, "G6", *repo.entries[1].ToGradeCode)
}
