package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hrsaas/hrcore/modules/hrm/domain/aggregates/employee"
)

type ChangeType string

const (
	ChangeHire     ChangeType = "HIRE"
	ChangeResign   ChangeType = "RESIGN"
	ChangeTransfer ChangeType = "TRANSFER"
	ChangePosition ChangeType = "POSITION_CHANGE"
	ChangeGrade    ChangeType = "GRADE_CHANGE"
)

// Entry is an immutable audit fact about one employee's organizational state
// change. Entries are only ever inserted.
type Entry struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	EmployeeID       uuid.UUID
	EmployeeNumber   string
	EmployeeName     string
	ChangeType       ChangeType
	FromDepartmentID *uuid.UUID
	ToDepartmentID   *uuid.UUID
	FromPositionCode *string
	ToPositionCode   *string
	FromGradeCode    *string
	ToGradeCode      *string
	EffectiveDate    time.Time
	Reason           string
	CreatedAt        time.Time
}

type Repository interface {
	Create(ctx context.Context, entry *Entry) (*Entry, error)
}

// Recorder writes one entry per change type. Each call either fully records
// the fact or returns an error; there are no partial writes.
type Recorder interface {
	RecordHire(ctx context.Context, e *employee.Employee, reason string) error
	RecordResign(ctx context.Context, e *employee.Employee, reason string) error
	RecordDepartmentChange(ctx context.Context, e *employee.Employee, fromDepartmentID, toDepartmentID uuid.UUID, reason string) error
	RecordPositionChange(ctx context.Context, e *employee.Employee, fromCode, toCode string, reason string) error
	RecordGradeChange(ctx context.Context, e *employee.Employee, fromCode, toCode string, reason string) error
}
