package transfer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newDraft(t *testing.T) *TransferRequest {
	t.Helper()
	req, err := New(uuid.New(), uuid.New(), uuid.New(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return req
}

func TestNew_RejectsSameTenant(t *testing.T) {
	tenantID := uuid.New()
	_, err := New(uuid.New(), tenantID, tenantID, time.Now())
	require.ErrorIs(t, err, ErrSameTenant)
}

func TestNew_StartsAsDraft(t *testing.T) {
	req := newDraft(t)
	require.Equal(t, StatusDraft, req.Status())
	require.True(t, req.CanBeModified())
	require.True(t, req.CanBeSubmitted())
	require.True(t, req.CanBeDeleted())
}

func TestSubmit(t *testing.T) {
	req := newDraft(t)
	require.NoError(t, req.Submit())
	require.Equal(t, StatusPending, req.Status())
	require.False(t, req.CanBeModified())

	require.ErrorIs(t, req.Submit(), ErrInvalidState)
}

func TestApprovalOrder(t *testing.T) {
	req := newDraft(t)
	require.NoError(t, req.Submit())

	// The target tenant cannot sign off before the source tenant has.
	require.ErrorIs(t, req.ApproveTarget(uuid.New(), "target admin"), ErrInvalidState)

	approverID := uuid.New()
	require.NoError(t, req.ApproveSource(approverID, "source admin"))
	require.Equal(t, StatusSourceApproved, req.Status())
	require.Equal(t, approverID, req.SourceApproverID())
	require.NotNil(t, req.SourceApprovedAt())

	require.ErrorIs(t, req.ApproveSource(uuid.New(), "again"), ErrInvalidState)

	require.NoError(t, req.ApproveTarget(uuid.New(), "target admin"))
	require.Equal(t, StatusApproved, req.Status())
	require.NotNil(t, req.TargetApprovedAt())
}

func TestReject_FromAnyNonTerminalState(t *testing.T) {
	for _, setup := range []func(*TransferRequest){
		func(r *TransferRequest) {},
		func(r *TransferRequest) { _ = r.Submit() },
		func(r *TransferRequest) {
			_ = r.Submit()
			_ = r.ApproveSource(uuid.New(), "a")
		},
		func(r *TransferRequest) {
			_ = r.Submit()
			_ = r.ApproveSource(uuid.New(), "a")
			_ = r.ApproveTarget(uuid.New(), "b")
		},
	} {
		req := newDraft(t)
		setup(req)
		require.NoError(t, req.Reject("headcount freeze"))
		require.Equal(t, StatusRejected, req.Status())
		require.Equal(t, "headcount freeze", req.RejectReason())
	}
}

func TestReject_TerminalStatesRefuse(t *testing.T) {
	req := newDraft(t)
	require.NoError(t, req.Cancel("changed plans"))
	require.ErrorIs(t, req.Reject("too late"), ErrInvalidState)
	require.ErrorIs(t, req.Cancel("too late"), ErrInvalidState)
}

func TestCompletionLifecycle(t *testing.T) {
	req := newDraft(t)
	require.ErrorIs(t, req.BeginCompletion(), ErrInvalidState)

	require.NoError(t, req.Submit())
	require.NoError(t, req.ApproveSource(uuid.New(), "a"))
	require.ErrorIs(t, req.BeginCompletion(), ErrInvalidState)

	require.NoError(t, req.ApproveTarget(uuid.New(), "b"))
	require.NoError(t, req.BeginCompletion())
	require.Equal(t, StatusCompleting, req.Status())

	require.NoError(t, req.Complete())
	require.Equal(t, StatusCompleted, req.Status())
	require.NotNil(t, req.CompletedAt())
	require.True(t, req.IsTerminal())

	require.ErrorIs(t, req.Complete(), ErrInvalidState)
}

func TestUpdate_OnlyWhileDraft(t *testing.T) {
	req := newDraft(t)
	deptID := uuid.New()
	reason := "org restructure"
	require.NoError(t, req.Update(UpdateAttrs{
		TargetDepartmentID: &deptID,
		Reason:             &reason,
	}))
	require.Equal(t, deptID, req.TargetDepartmentID())
	require.Equal(t, "org restructure", req.Reason())

	require.NoError(t, req.Submit())
	require.ErrorIs(t, req.Update(UpdateAttrs{Reason: &reason}), ErrInvalidState)
}

func TestCanBeDeleted(t *testing.T) {
	req := newDraft(t)
	require.True(t, req.CanBeDeleted())

	require.NoError(t, req.Submit())
	require.True(t, req.CanBeDeleted())

	require.NoError(t, req.ApproveSource(uuid.New(), "a"))
	require.False(t, req.CanBeDeleted(), "an approval signature must block hard deletion")
}
