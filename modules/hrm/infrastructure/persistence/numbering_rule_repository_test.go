package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/hrsaas/hrcore/modules/hrm/domain/entities/numberingrule"
)

var ruleRowColumns = []string{
	"id", "tenant_id", "prefix", "include_year", "year_format", "sequence_digits",
	"reset_policy", "current_sequence", "current_year", "separator", "allow_reuse", "active",
	"created_at", "updated_at",
}

func TestNumberingRuleRepository_GetActiveForUpdate_TakesRowLock(t *testing.T) {
	ctx, mock := mockCtx(t)
	repo := NewNumberingRuleRepository()

	id := uuid.New()
	tenantID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM hrm_employee_number_rules WHERE tenant_id = \$1 AND active FOR UPDATE`).
		WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows(ruleRowColumns).AddRow(
			id.String(), tenantID.String(), "HR", true, "YYYY", 4,
			"YEARLY", 42, int64(2025), "-", false, true,
			now, now,
		))

	rule, err := repo.GetActiveForUpdate(ctx, tenantID)
	require.NoError(t, err)
	require.Equal(t, id, rule.ID())
	require.Equal(t, "HR", rule.Prefix())
	require.Equal(t, 42, rule.CurrentSequence())
	require.NotNil(t, rule.CurrentYear())
	require.Equal(t, 2025, *rule.CurrentYear())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNumberingRuleRepository_GetActive_NoRule(t *testing.T) {
	ctx, mock := mockCtx(t)
	repo := NewNumberingRuleRepository()

	tenantID := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM hrm_employee_number_rules`).
		WithArgs(tenantID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetActive(ctx, tenantID)
	require.ErrorIs(t, err, numberingrule.ErrNoActiveRule)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNumberingRuleRepository_Save_PersistsSequenceState(t *testing.T) {
	ctx, mock := mockCtx(t)
	repo := NewNumberingRuleRepository()

	year := 2026
	rule := numberingrule.Hydrate(
		uuid.New(), uuid.New(), "HR", true, numberingrule.YearFormatYYYY, 4,
		numberingrule.ResetYearly, 43, &year, "-", false, true,
		time.Time{}, time.Time{},
	)

	mock.ExpectExec(`UPDATE hrm_employee_number_rules SET`).
		WithArgs(rule.ID(), 43, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Save(ctx, rule))
	require.NoError(t, mock.ExpectationsWereMet())
}
