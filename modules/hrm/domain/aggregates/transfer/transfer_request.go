package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft          Status = "DRAFT"
	StatusPending        Status = "PENDING"
	StatusSourceApproved Status = "SOURCE_APPROVED"
	StatusApproved       Status = "APPROVED"
	StatusCompleting     Status = "COMPLETING"
	StatusCompleted      Status = "COMPLETED"
	StatusRejected       Status = "REJECTED"
	StatusCancelled      Status = "CANCELLED"
)

// TransferRequest moves one employee's active record from a source tenant to
// a target tenant. It is owned by the source tenant; the target tenant only
// contributes its approval slot.
type TransferRequest struct {
	id             uuid.UUID
	employeeID     uuid.UUID
	employeeName   string
	employeeNumber string

	sourceTenantID   uuid.UUID
	sourceTenantName string

	targetTenantID     uuid.UUID
	targetTenantName   string
	targetDepartmentID uuid.UUID
	targetPositionID   uuid.UUID
	targetGradeID      uuid.UUID

	transferDate time.Time
	reason       string
	status       Status

	sourceApproverID   uuid.UUID
	sourceApproverName string
	sourceApprovedAt   *time.Time

	targetApproverID   uuid.UUID
	targetApproverName string
	targetApprovedAt   *time.Time

	rejectReason string
	completedAt  *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

func New(
	employeeID uuid.UUID,
	sourceTenantID uuid.UUID,
	targetTenantID uuid.UUID,
	transferDate time.Time,
) (*TransferRequest, error) {
	if sourceTenantID == targetTenantID {
		return nil, fmt.Errorf("%w: tenant %s", ErrSameTenant, sourceTenantID)
	}
	return &TransferRequest{
		employeeID:     employeeID,
		sourceTenantID: sourceTenantID,
		targetTenantID: targetTenantID,
		transferDate:   transferDate,
		status:         StatusDraft,
	}, nil
}

func Hydrate(
	id uuid.UUID,
	employeeID uuid.UUID,
	employeeName string,
	employeeNumber string,
	sourceTenantID uuid.UUID,
	sourceTenantName string,
	targetTenantID uuid.UUID,
	targetTenantName string,
	targetDepartmentID uuid.UUID,
	targetPositionID uuid.UUID,
	targetGradeID uuid.UUID,
	transferDate time.Time,
	reason string,
	status Status,
	sourceApproverID uuid.UUID,
	sourceApproverName string,
	sourceApprovedAt *time.Time,
	targetApproverID uuid.UUID,
	targetApproverName string,
	targetApprovedAt *time.Time,
	rejectReason string,
	completedAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *TransferRequest {
	return &TransferRequest{
		id:                 id,
		employeeID:         employeeID,
		employeeName:       strings.TrimSpace(employeeName),
		employeeNumber:     employeeNumber,
		sourceTenantID:     sourceTenantID,
		sourceTenantName:   sourceTenantName,
		targetTenantID:     targetTenantID,
		targetTenantName:   targetTenantName,
		targetDepartmentID: targetDepartmentID,
		targetPositionID:   targetPositionID,
		targetGradeID:      targetGradeID,
		transferDate:       transferDate,
		reason:             reason,
		status:             status,
		sourceApproverID:   sourceApproverID,
		sourceApproverName: sourceApproverName,
		sourceApprovedAt:   sourceApprovedAt,
		targetApproverID:   targetApproverID,
		targetApproverName: targetApproverName,
		targetApprovedAt:   targetApprovedAt,
		rejectReason:       rejectReason,
		completedAt:        completedAt,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

func (r *TransferRequest) ID() uuid.UUID                 { return r.id }
func (r *TransferRequest) EmployeeID() uuid.UUID         { return r.employeeID }
func (r *TransferRequest) EmployeeName() string          { return r.employeeName }
func (r *TransferRequest) EmployeeNumber() string        { return r.employeeNumber }
func (r *TransferRequest) SourceTenantID() uuid.UUID     { return r.sourceTenantID }
func (r *TransferRequest) SourceTenantName() string      { return r.sourceTenantName }
func (r *TransferRequest) TargetTenantID() uuid.UUID     { return r.targetTenantID }
func (r *TransferRequest) TargetTenantName() string      { return r.targetTenantName }
func (r *TransferRequest) TargetDepartmentID() uuid.UUID { return r.targetDepartmentID }
func (r *TransferRequest) TargetPositionID() uuid.UUID   { return r.targetPositionID }
func (r *TransferRequest) TargetGradeID() uuid.UUID      { return r.targetGradeID }
func (r *TransferRequest) TransferDate() time.Time       { return r.transferDate }
func (r *TransferRequest) Reason() string                { return r.reason }
func (r *TransferRequest) Status() Status                { return r.status }
func (r *TransferRequest) SourceApproverID() uuid.UUID   { return r.sourceApproverID }
func (r *TransferRequest) SourceApproverName() string    { return r.sourceApproverName }
func (r *TransferRequest) SourceApprovedAt() *time.Time  { return r.sourceApprovedAt }
func (r *TransferRequest) TargetApproverID() uuid.UUID   { return r.targetApproverID }
func (r *TransferRequest) TargetApproverName() string    { return r.targetApproverName }
func (r *TransferRequest) TargetApprovedAt() *time.Time  { return r.targetApprovedAt }
func (r *TransferRequest) RejectReason() string          { return r.rejectReason }
func (r *TransferRequest) CompletedAt() *time.Time       { return r.completedAt }
func (r *TransferRequest) Version() int64                { return r.version }
func (r *TransferRequest) CreatedAt() time.Time          { return r.createdAt }
func (r *TransferRequest) UpdatedAt() time.Time          { return r.updatedAt }

func (r *TransferRequest) IsDraft() bool          { return r.status == StatusDraft }
func (r *TransferRequest) IsPending() bool        { return r.status == StatusPending }
func (r *TransferRequest) IsSourceApproved() bool { return r.status == StatusSourceApproved }
func (r *TransferRequest) IsApproved() bool       { return r.status == StatusApproved }
func (r *TransferRequest) IsCompleted() bool      { return r.status == StatusCompleted }

func (r *TransferRequest) IsTerminal() bool {
	switch r.status {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func (r *TransferRequest) CanBeModified() bool {
	return r.status == StatusDraft
}

func (r *TransferRequest) CanBeSubmitted() bool {
	return r.status == StatusDraft
}

// CanBeDeleted allows hard deletion only before any approval signature has
// been collected. Anything later is rejected or cancelled instead, keeping
// the audit trail.
func (r *TransferRequest) CanBeDeleted() bool {
	return r.status == StatusDraft || r.status == StatusPending
}

// UpdateAttrs carries a partial update; nil fields keep the previous value.
type UpdateAttrs struct {
	TargetDepartmentID *uuid.UUID
	TargetPositionID   *uuid.UUID
	TargetGradeID      *uuid.UUID
	TransferDate       *time.Time
	Reason             *string
}

func (r *TransferRequest) Update(attrs UpdateAttrs) error {
	if !r.CanBeModified() {
		return fmt.Errorf("%w: cannot modify a request in status %s", ErrInvalidState, r.status)
	}
	if attrs.TargetDepartmentID != nil {
		r.targetDepartmentID = *attrs.TargetDepartmentID
	}
	if attrs.TargetPositionID != nil {
		r.targetPositionID = *attrs.TargetPositionID
	}
	if attrs.TargetGradeID != nil {
		r.targetGradeID = *attrs.TargetGradeID
	}
	if attrs.TransferDate != nil {
		r.transferDate = *attrs.TransferDate
	}
	if attrs.Reason != nil {
		r.reason = *attrs.Reason
	}
	return nil
}

func (r *TransferRequest) Submit() error {
	if !r.CanBeSubmitted() {
		return fmt.Errorf("%w: cannot submit a request in status %s", ErrInvalidState, r.status)
	}
	r.status = StatusPending
	return nil
}

func (r *TransferRequest) ApproveSource(approverID uuid.UUID, approverName string) error {
	if !r.IsPending() {
		return fmt.Errorf("%w: only pending requests can be source-approved (status %s)", ErrInvalidState, r.status)
	}
	now := time.Now()
	r.sourceApproverID = approverID
	r.sourceApproverName = approverName
	r.sourceApprovedAt = &now
	r.status = StatusSourceApproved
	return nil
}

// ApproveTarget is gated by source approval: the receiving tenant may not
// approve before the releasing tenant has signed off.
func (r *TransferRequest) ApproveTarget(approverID uuid.UUID, approverName string) error {
	if !r.IsSourceApproved() {
		return fmt.Errorf("%w: target approval requires source approval first (status %s)", ErrInvalidState, r.status)
	}
	now := time.Now()
	r.targetApproverID = approverID
	r.targetApproverName = approverName
	r.targetApprovedAt = &now
	r.status = StatusApproved
	return nil
}

// Reject is counterparty-initiated and legal from any non-terminal state.
// It never touches employee records on either side.
func (r *TransferRequest) Reject(reason string) error {
	if r.IsTerminal() {
		return fmt.Errorf("%w: cannot reject a request in status %s", ErrInvalidState, r.status)
	}
	r.status = StatusRejected
	r.rejectReason = reason
	return nil
}

// Cancel is self-initiated and legal from any state except a completed or
// already-closed one.
func (r *TransferRequest) Cancel(reason string) error {
	if r.IsTerminal() {
		return fmt.Errorf("%w: cannot cancel a request in status %s", ErrInvalidState, r.status)
	}
	r.status = StatusCancelled
	r.rejectReason = reason
	return nil
}

// BeginCompletion moves an approved request into the transient COMPLETING
// state. The version-checked save of this transition is what linearizes a
// complete() racing a reject() on the same request.
func (r *TransferRequest) BeginCompletion() error {
	if !r.IsApproved() {
		return fmt.Errorf("%w: only approved requests can be completed (status %s)", ErrInvalidState, r.status)
	}
	r.status = StatusCompleting
	return nil
}

func (r *TransferRequest) Complete() error {
	if r.status != StatusCompleting {
		return fmt.Errorf("%w: completion was not begun (status %s)", ErrInvalidState, r.status)
	}
	now := time.Now()
	r.status = StatusCompleted
	r.completedAt = &now
	return nil
}

func (r *TransferRequest) SetEmployeeSnapshot(name, number string) {
	r.employeeName = strings.TrimSpace(name)
	r.employeeNumber = number
}

func (r *TransferRequest) SetTenantNames(sourceName, targetName string) {
	r.sourceTenantName = sourceName
	r.targetTenantName = targetName
}
