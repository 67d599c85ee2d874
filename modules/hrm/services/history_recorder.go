package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hrsaas/hrcore/modules/hrm/domain/aggregates/employee"
	"github.com/hrsaas/hrcore/modules/hrm/domain/entities/history"
)

type HistoryRecorder struct {
	repo history.Repository
}

func NewHistoryRecorder(repo history.Repository) *HistoryRecorder {
	return &HistoryRecorder{repo: repo}
}

var _ history.Recorder = (*HistoryRecorder)(nil)

func (r *HistoryRecorder) RecordHire(ctx context.Context, e *employee.Employee, reason string) error {
	deptID := e.DepartmentID()
	posCode := e.PositionCode()
	gradeCode := e.JobTitleCode()
	entry := r.baseEntry(e, history.ChangeHire, reason, e.HireDate())
	entry.ToDepartmentID = nilableUUID(deptID)
	entry.ToPositionCode = nilableString(posCode)
	entry.ToGradeCode = nilableString(gradeCode)
	_, err := r.repo.Create(ctx, entry)
	return err
}

func (r *HistoryRecorder) RecordResign(ctx context.Context, e *employee.Employee, reason string) error {
	effective := time.Now()
	if e.ResignDate() != nil {
		effective = *e.ResignDate()
	}
	deptID := e.DepartmentID()
	posCode := e.PositionCode()
	gradeCode := e.JobTitleCode()
	entry := r.baseEntry(e, history.ChangeResign, reason, effective)
	entry.FromDepartmentID = nilableUUID(deptID)
	entry.FromPositionCode = nilableString(posCode)
	entry.FromGradeCode = nilableString(gradeCode)
	_, err := r.repo.Create(ctx, entry)
	return err
}

func (r *HistoryRecorder) RecordDepartmentChange(ctx context.Context, e *employee.Employee, fromDepartmentID, toDepartmentID uuid.UUID, reason string) error {
	entry := r.baseEntry(e, history.ChangeTransfer, reason, time.Now())
	entry.FromDepartmentID = nilableUUID(fromDepartmentID)
	entry.ToDepartmentID = nilableUUID(toDepartmentID)
	_, err := r.repo.Create(ctx, entry)
	return err
}

func (r *HistoryRecorder) RecordPositionChange(ctx context.Context, e *employee.Employee, fromCode, toCode string, reason string) error {
	entry := r.baseEntry(e, history.ChangePosition, reason, time.Now())
	entry.FromPositionCode = nilableString(fromCode)
	entry.ToPositionCode = nilableString(toCode)
	_, err := r.repo.Create(ctx, entry)
	return err
}

func (r *HistoryRecorder) RecordGradeChange(ctx context.Context, e *employee.Employee, fromCode, toCode string, reason string) error {
	entry := r.baseEntry(e, history.ChangeGrade, reason, time.Now())
	entry.FromGradeCode = nilableString(fromCode)
	entry.ToGradeCode = nilableString(toCode)
	_, err := r.repo.Create(ctx, entry)
	return err
}

func (r *HistoryRecorder) baseEntry(e *employee.Employee, changeType history.ChangeType, reason string, effective time.Time) *history.Entry {
	return &history.Entry{
		TenantID:       e.TenantID(),
		EmployeeID:     e.ID(),
		EmployeeNumber: e.EmployeeNumber(),
		EmployeeName:   e.Name(),
		ChangeType:     changeType,
		EffectiveDate:  effective,
		Reason:         reason,
	}
}

func nilableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func nilableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
