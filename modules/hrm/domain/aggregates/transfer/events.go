package transfer

import "github.com/google/uuid"

// CompletedTopic is the outbox topic for completed transfers.
const CompletedTopic = "hrm.transfer.completed"

// CompletedEvent is the fact published after a transfer has been completed:
// the employee is resigned in the source tenant and active in the target
// tenant. Consumers include payroll and access provisioning.
type CompletedEvent struct {
	TransferRequestID uuid.UUID `json:"transferRequestId"`
	SourceEmployeeID  uuid.UUID `json:"sourceEmployeeId"`
	TargetEmployeeID  uuid.UUID `json:"targetEmployeeId"`
	SourceTenantID    uuid.UUID `json:"sourceTenantId"`
	TargetTenantID    uuid.UUID `json:"targetTenantId"`
}
