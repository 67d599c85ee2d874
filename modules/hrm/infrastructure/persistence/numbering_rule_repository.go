package persistence

import (
	"context"
	"errors"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hrsaas/hrcore/modules/hrm/domain/entities/numberingrule"
	"github.com/hrsaas/hrcore/pkg/composables"
	"github.com/hrsaas/hrcore/pkg/repo"
)

const numberingRuleColumns = `id, tenant_id, prefix, include_year, year_format, sequence_digits,
	reset_policy, current_sequence, current_year, separator, allow_reuse, active,
	created_at, updated_at`

type PgNumberingRuleRepository struct{}

func NewNumberingRuleRepository() numberingrule.Repository {
	return &PgNumberingRuleRepository{}
}

// GetActiveForUpdate takes the rule's row lock; callers hold it until their
// transaction ends, which serializes number allocation per tenant.
func (r *PgNumberingRuleRepository) GetActiveForUpdate(ctx context.Context, tenantID uuid.UUID) (*numberingrule.NumberingRule, error) {
	return r.getActive(ctx, tenantID, true)
}

func (r *PgNumberingRuleRepository) GetActive(ctx context.Context, tenantID uuid.UUID) (*numberingrule.NumberingRule, error) {
	return r.getActive(ctx, tenantID, false)
}

func (r *PgNumberingRuleRepository) getActive(ctx context.Context, tenantID uuid.UUID, forUpdate bool) (*numberingrule.NumberingRule, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT %s FROM hrm_employee_number_rules WHERE tenant_id = $1 AND active`, numberingRuleColumns)
	if forUpdate {
		q += ` FOR UPDATE`
	}
	rule, err := scanNumberingRule(tx.QueryRow(ctx, q, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: tenant %s", numberingrule.ErrNoActiveRule, tenantID)
	}
	return rule, err
}

func (r *PgNumberingRuleRepository) Save(ctx context.Context, rule *numberingrule.NumberingRule) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE hrm_employee_number_rules SET
			current_sequence = $2,
			current_year = $3,
			updated_at = now()
		  WHERE id = $1`,
		rule.ID(),
		rule.CurrentSequence(),
		pgIntPtr(rule.CurrentYear()),
	)
	if err != nil {
		return gerrors.Wrap(err, "failed to save numbering rule")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %s", numberingrule.ErrNoActiveRule, rule.ID())
	}
	return nil
}

func scanNumberingRule(row repo.Row) (*numberingrule.NumberingRule, error) {
	var (
		id              pgtype.UUID
		tenantID        pgtype.UUID
		prefix          string
		includeYear     bool
		yearFormat      string
		sequenceDigits  int
		resetPolicy     string
		currentSequence int
		currentYear     pgtype.Int4
		separator       string
		allowReuse      bool
		active          bool
		createdAt       pgtype.Timestamptz
		updatedAt       pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &tenantID, &prefix, &includeYear, &yearFormat, &sequenceDigits,
		&resetPolicy, &currentSequence, &currentYear, &separator, &allowReuse, &active,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	return numberingrule.Hydrate(
		asUUID(id),
		asUUID(tenantID),
		prefix,
		includeYear,
		numberingrule.YearFormat(yearFormat),
		sequenceDigits,
		numberingrule.ResetPolicy(resetPolicy),
		currentSequence,
		asIntPtr(currentYear),
		separator,
		allowReuse,
		active,
		asTime(createdAt),
		asTime(updatedAt),
	), nil
}
