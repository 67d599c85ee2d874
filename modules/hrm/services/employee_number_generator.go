package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hrsaas/hrcore/modules/hrm/domain/aggregates/employee"
	"github.com/hrsaas/hrcore/modules/hrm/domain/entities/numberingrule"
	"github.com/hrsaas/hrcore/pkg/composables"
)

// ArchiveLookup resolves a former employee's original number for rehire.
// Q: where archived numbers live is still undecided, so the generator only
// depends on this capability.
type ArchiveLookup interface {
	FindNumber(ctx context.Context, tenantID uuid.UUID, name string, birthDate time.Time) (string, error)
}

type noopArchiveLookup struct{}

func (noopArchiveLookup) FindNumber(ctx context.Context, tenantID uuid.UUID, name string, birthDate time.Time) (string, error) {
	return "", nil
}

const fallbackSequenceDigits = 4

type EmployeeNumberGenerator struct {
	rules     numberingrule.Repository
	employees employee.Repository
	archive   ArchiveLookup
}

func NewEmployeeNumberGenerator(
	rules numberingrule.Repository,
	employees employee.Repository,
	archive ArchiveLookup,
) *EmployeeNumberGenerator {
	if archive == nil {
		archive = noopArchiveLookup{}
	}
	return &EmployeeNumberGenerator{
		rules:     rules,
		employees: employees,
		archive:   archive,
	}
}

// Generate allocates the next employee number for tenantID. Year-based
// segments derive from effectiveDate, not from the wall clock, so numbers
// allocated for a dated event (hire, transfer) reflect that event's year.
//
// Concurrent calls for one tenant serialize on the rule's row lock; calls
// for different tenants never contend.
func (g *EmployeeNumberGenerator) Generate(ctx context.Context, tenantID uuid.UUID, effectiveDate time.Time) (string, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (string, error) {
		rule, err := g.rules.GetActiveForUpdate(txCtx, tenantID)
		if errors.Is(err, numberingrule.ErrNoActiveRule) {
			return g.fallbackNumber(txCtx, tenantID, effectiveDate)
		}
		if err != nil {
			return "", err
		}

		number := rule.Next(effectiveDate)
		if err := g.rules.Save(txCtx, rule); err != nil {
			return "", err
		}
		return number, nil
	})
}

// fallbackNumber covers tenants without a configured rule: year plus the
// zero-padded employee count. Nothing is persisted, so no lock is taken.
func (g *EmployeeNumberGenerator) fallbackNumber(ctx context.Context, tenantID uuid.UUID, effectiveDate time.Time) (string, error) {
	count, err := g.employees.Count(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%0*d", effectiveDate.Year(), fallbackSequenceDigits, count+1), nil
}

// FindExistingNumber returns a rehired employee's original number, or ""
// when reuse is disabled, unconfigured, or no archived number is found.
// It never touches the rule's mutable state.
func (g *EmployeeNumberGenerator) FindExistingNumber(ctx context.Context, tenantID uuid.UUID, name string, birthDate time.Time) (string, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (string, error) {
		rule, err := g.rules.GetActive(txCtx, tenantID)
		if errors.Is(err, numberingrule.ErrNoActiveRule) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		if !rule.AllowReuse() {
			return "", nil
		}
		return g.archive.FindNumber(txCtx, tenantID, name, birthDate)
	})
}
