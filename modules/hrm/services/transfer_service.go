package services

import (
	"context"
	"encoding/json"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/hrsaas/hrcore/modules/hrm/domain/aggregates/employee"
	"github.com/hrsaas/hrcore/modules/hrm/domain/aggregates/transfer"
	"github.com/hrsaas/hrcore/modules/hrm/domain/entities/history"
	"github.com/hrsaas/hrcore/pkg/composables"
	"github.com/hrsaas/hrcore/pkg/eventbus"
	"github.com/hrsaas/hrcore/pkg/outbox"
)

// TransferService drives a transfer request through its dual-approval state
// machine and, on completion, performs the cross-tenant hand-off: mirror the
// employee in the target tenant, resign them in the source tenant, record
// history on both sides, all in one transaction.
type TransferService struct {
	transfers transfer.Repository
	employees employee.Repository
	numbers   *EmployeeNumberGenerator
	history   history.Recorder

	outboxPub   outbox.Publisher
	outboxTable pgx.Identifier
	publisher   eventbus.EventBus
	log         *logrus.Logger
}

func NewTransferService(
	transfers transfer.Repository,
	employees employee.Repository,
	numbers *EmployeeNumberGenerator,
	recorder history.Recorder,
	outboxPub outbox.Publisher,
	outboxTable pgx.Identifier,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *TransferService {
	return &TransferService{
		transfers:   transfers,
		employees:   employees,
		numbers:     numbers,
		history:     recorder,
		outboxPub:   outboxPub,
		outboxTable: outboxTable,
		publisher:   publisher,
		log:         log,
	}
}

// Create registers a DRAFT request owned by the caller's tenant. No
// cross-entity validation happens here: creation must never fail because a
// collaborating service is temporarily unavailable.
func (s *TransferService) Create(ctx context.Context, data *transfer.CreateDTO) (*transfer.TransferRequest, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*transfer.TransferRequest, error) {
		entity, err := data.ToEntity(tenantID)
		if err != nil {
			return nil, err
		}
		return s.transfers.Create(txCtx, entity)
	})
}

func (s *TransferService) GetByID(ctx context.Context, id uuid.UUID) (*transfer.TransferRequest, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*transfer.TransferRequest, error) {
		return s.transfers.GetByID(txCtx, id, tenantID)
	})
}

func (s *TransferService) GetPaginated(ctx context.Context, params *transfer.FindParams) ([]*transfer.TransferRequest, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &transfer.FindParams{}
	}
	params.TenantID = tenantID
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*transfer.TransferRequest, error) {
		return s.transfers.GetPaginated(txCtx, params)
	})
}

func (s *TransferService) Update(ctx context.Context, id uuid.UUID, data *transfer.UpdateDTO) (*transfer.TransferRequest, error) {
	return s.transition(ctx, id, func(req *transfer.TransferRequest) error {
		return req.Update(data.ToAttrs())
	})
}

func (s *TransferService) Submit(ctx context.Context, id uuid.UUID) (*transfer.TransferRequest, error) {
	return s.transition(ctx, id, func(req *transfer.TransferRequest) error {
		return req.Submit()
	})
}

func (s *TransferService) ApproveSource(ctx context.Context, id, approverID uuid.UUID, approverName string) (*transfer.TransferRequest, error) {
	return s.transition(ctx, id, func(req *transfer.TransferRequest) error {
		return req.ApproveSource(approverID, approverName)
	})
}

func (s *TransferService) ApproveTarget(ctx context.Context, id, approverID uuid.UUID, approverName string) (*transfer.TransferRequest, error) {
	return s.transition(ctx, id, func(req *transfer.TransferRequest) error {
		return req.ApproveTarget(approverID, approverName)
	})
}

// Reject closes the request from the counterparty's side. Employee records
// in both tenants stay untouched.
func (s *TransferService) Reject(ctx context.Context, id uuid.UUID, reason string) (*transfer.TransferRequest, error) {
	return s.transition(ctx, id, func(req *transfer.TransferRequest) error {
		return req.Reject(reason)
	})
}

func (s *TransferService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*transfer.TransferRequest, error) {
	return s.transition(ctx, id, func(req *transfer.TransferRequest) error {
		return req.Cancel(reason)
	})
}

// Delete hard-deletes a request that has not collected any approval
// signature yet. Anything later must be rejected or cancelled instead.
func (s *TransferService) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		req, err := s.transfers.GetByID(txCtx, id, tenantID)
		if err != nil {
			return err
		}
		if !req.CanBeDeleted() {
			return fmt.Errorf("%w: cannot delete a request in status %s", transfer.ErrInvalidState, req.Status())
		}
		return s.transfers.Delete(txCtx, id, tenantID)
	})
}

// Complete runs the cross-tenant hand-off for an approved request. The whole
// protocol executes inside one transaction: either the target employee
// exists, the source employee is resigned, both history entries are written
// and the request is COMPLETED, or none of it happened. Any failure after
// the mirrored employee was created is wrapped as an integrity hazard and
// logged loudly before the rollback, because it means the hand-off could not
// be confirmed end to end.
//
// Tenant ids are threaded explicitly into every repository call; there is no
// ambient tenant context to switch and restore.
func (s *TransferService) Complete(ctx context.Context, id uuid.UUID) (*transfer.TransferRequest, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	var completed *transfer.TransferRequest
	var fact *transfer.CompletedEvent

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		req, err := s.transfers.GetByID(txCtx, id, tenantID)
		if err != nil {
			return err
		}
		if err := req.BeginCompletion(); err != nil {
			return err
		}
		// The version check here is the linearization point: a racing
		// reject/cancel/complete on the same request makes exactly one
		// writer win and the rest observe a stale version.
		req, err = s.transfers.Save(txCtx, req)
		if err != nil {
			return err
		}

		source, err := s.employees.GetByID(txCtx, req.SourceTenantID(), req.EmployeeID())
		if err != nil {
			return err
		}

		number, err := s.numbers.Generate(txCtx, req.TargetTenantID(), req.TransferDate())
		if err != nil {
			return err
		}

		mirrored := employee.New(req.TargetTenantID(), number, source.Name(), req.TransferDate())
		mirrored.SetPersonalInfo(source.NameEn(), source.Email(), source.Phone(), source.Mobile(), source.EmploymentType())
		mirrored.SetPlacement(
			req.TargetDepartmentID(),
			orDefault(uuidString(req.TargetPositionID()), source.PositionCode()),
			orDefault(uuidString(req.TargetGradeID()), source.JobTitleCode()),
		)

		target, err := s.employees.Create(txCtx, mirrored)
		if err != nil {
			return err
		}

		sourceName := orDefault(req.SourceTenantName(), "source tenant")
		if err := s.history.RecordHire(txCtx, target, "group transfer in - "+sourceName); err != nil {
			return s.integrityHazard(req, err, "record hire in target tenant")
		}

		if err := source.Resign(req.TransferDate()); err != nil {
			return s.integrityHazard(req, err, "resign source employee")
		}
		if err := s.employees.Save(txCtx, source); err != nil {
			return s.integrityHazard(req, err, "save resigned source employee")
		}

		targetName := orDefault(req.TargetTenantName(), "target tenant")
		if err := s.history.RecordResign(txCtx, source, "group transfer out - "+targetName); err != nil {
			return s.integrityHazard(req, err, "record resign in source tenant")
		}

		if err := req.Complete(); err != nil {
			return err
		}
		saved, err := s.transfers.Save(txCtx, req)
		if err != nil {
			return s.integrityHazard(req, err, "mark request completed")
		}
		req = saved

		fact = &transfer.CompletedEvent{
			TransferRequestID: req.ID(),
			SourceEmployeeID:  source.ID(),
			TargetEmployeeID:  target.ID(),
			SourceTenantID:    req.SourceTenantID(),
			TargetTenantID:    req.TargetTenantID(),
		}
		if err := s.enqueueCompleted(txCtx, fact); err != nil {
			return s.integrityHazard(req, err, "enqueue completion fact")
		}

		completed = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort in-process fan-out after the commit. A broken subscriber
	// is logged by the bus and never fails the completed transfer.
	s.publisher.Publish(fact)

	s.log.WithFields(logrus.Fields{
		"transfer_request_id": fact.TransferRequestID,
		"source_tenant_id":    fact.SourceTenantID,
		"target_tenant_id":    fact.TargetTenantID,
		"source_employee_id":  fact.SourceEmployeeID,
		"target_employee_id":  fact.TargetEmployeeID,
	}).Info("transfer completed")

	return completed, nil
}

// Summary reports the tenant's transfer workload in both directions.
type Summary struct {
	PendingOutgoing  int64
	PendingIncoming  int64
	AwaitingIncoming int64
	// Completed counts transfers the tenant took part in on either side.
	Completed int64
}

func (s *TransferService) Summary(ctx context.Context) (*Summary, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*Summary, error) {
		pendingOut, err := s.transfers.CountByStatus(txCtx, tenantID, transfer.DirectionOutgoing, transfer.StatusPending)
		if err != nil {
			return nil, err
		}
		pendingIn, err := s.transfers.CountByStatus(txCtx, tenantID, transfer.DirectionIncoming, transfer.StatusPending)
		if err != nil {
			return nil, err
		}
		awaitingIn, err := s.transfers.CountByStatus(txCtx, tenantID, transfer.DirectionIncoming, transfer.StatusSourceApproved)
		if err != nil {
			return nil, err
		}
		completed, err := s.transfers.CountByStatus(txCtx, tenantID, transfer.DirectionRelated, transfer.StatusCompleted)
		if err != nil {
			return nil, err
		}
		return &Summary{
			PendingOutgoing:  pendingOut,
			PendingIncoming:  pendingIn,
			AwaitingIncoming: awaitingIn,
			Completed:        completed,
		}, nil
	})
}

func (s *TransferService) transition(ctx context.Context, id uuid.UUID, fn func(*transfer.TransferRequest) error) (*transfer.TransferRequest, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*transfer.TransferRequest, error) {
		req, err := s.transfers.GetByID(txCtx, id, tenantID)
		if err != nil {
			return nil, err
		}
		if err := fn(req); err != nil {
			return nil, err
		}
		return s.transfers.Save(txCtx, req)
	})
}

func (s *TransferService) enqueueCompleted(ctx context.Context, fact *transfer.CompletedEvent) error {
	payload, err := json.Marshal(fact)
	if err != nil {
		return gerrors.Wrap(err, "marshal completion fact")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = s.outboxPub.Enqueue(ctx, tx, s.outboxTable, outbox.Message{
		TenantID: fact.SourceTenantID,
		Topic:    transfer.CompletedTopic,
		EventID:  fact.TransferRequestID,
		Payload:  payload,
	})
	return err
}

func (s *TransferService) integrityHazard(req *transfer.TransferRequest, cause error, step string) error {
	s.log.WithError(cause).WithFields(logrus.Fields{
		"transfer_request_id": req.ID(),
		"source_tenant_id":    req.SourceTenantID(),
		"target_tenant_id":    req.TargetTenantID(),
		"step":                step,
	}).Error("transfer completion aborted; all changes rolled back")
	return fmt.Errorf("%w: %s: %v", transfer.ErrIntegrityHazard, step, cause)
}

func uuidString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
