package transfer

import (
	"time"

	"github.com/google/uuid"
)

type CreateDTO struct {
	EmployeeID         uuid.UUID
	EmployeeName       string
	EmployeeNumber     string
	SourceTenantName   string
	TargetTenantID     uuid.UUID
	TargetTenantName   string
	TargetDepartmentID uuid.UUID
	TargetPositionID   uuid.UUID
	TargetGradeID      uuid.UUID
	TransferDate       time.Time
	Reason             string
}

// ToEntity builds a DRAFT request owned by sourceTenantID.
func (d *CreateDTO) ToEntity(sourceTenantID uuid.UUID) (*TransferRequest, error) {
	entity, err := New(d.EmployeeID, sourceTenantID, d.TargetTenantID, d.TransferDate)
	if err != nil {
		return nil, err
	}
	entity.SetEmployeeSnapshot(d.EmployeeName, d.EmployeeNumber)
	entity.SetTenantNames(d.SourceTenantName, d.TargetTenantName)
	entity.targetDepartmentID = d.TargetDepartmentID
	entity.targetPositionID = d.TargetPositionID
	entity.targetGradeID = d.TargetGradeID
	entity.reason = d.Reason
	return entity, nil
}

type UpdateDTO struct {
	TargetDepartmentID *uuid.UUID
	TargetPositionID   *uuid.UUID
	TargetGradeID      *uuid.UUID
	TransferDate       *time.Time
	Reason             *string
}

func (d *UpdateDTO) ToAttrs() UpdateAttrs {
	return UpdateAttrs{
		TargetDepartmentID: d.TargetDepartmentID,
		TargetPositionID:   d.TargetPositionID,
		TargetGradeID:      d.TargetGradeID,
		TransferDate:       d.TransferDate,
		Reason:             d.Reason,
	}
}
