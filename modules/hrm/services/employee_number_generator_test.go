package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hrsaas/hrcore/modules/hrm/domain/aggregates/employee"
	"github.com/hrsaas/hrcore/modules/hrm/domain/entities/numberingrule"
	"github.com/hrsaas/hrcore/pkg/composables"
)

func seedTenantEmployee(tenantID uuid.UUID, n int) *employee.Employee {
	return employee.New(tenantID, fmt.Sprintf("2025-%04d", n+1), fmt.Sprintf("Employee %d", n+1), march(2025))
}

type recordingArchive struct {
	number string
	calls  int
}

func (a *recordingArchive) FindNumber(ctx context.Context, tenantID uuid.UUID, name string, birthDate time.Time) (string, error) {
	a.calls++
	return a.number, nil
}

func genCtx() context.Context {
	return composables.WithQuerier(context.Background(), nopTx{})
}

func march(year int) time.Time {
	return time.Date(year, 3, 1, 0, 0, 0, 0, time.UTC)
}

func TestGenerate_SequentialNumbers(t *testing.T) {
	rules := newMemRuleRepo()
	tenantID := uuid.New()
	rules.rules[tenantID] = numberingrule.New(tenantID, "HR", 4)
	gen := NewEmployeeNumberGenerator(rules, newMemEmployeeRepo(), nil)

	first, err := gen.Generate(genCtx(), tenantID, march(2026))
	require.NoError(t, err)
	require.Equal(t, "HR-2026-0001", first)

	second, err := gen.Generate(genCtx(), tenantID, march(2026))
	require.NoError(t, err)
	require.Equal(t, "HR-2026-0002", second)
}

func TestGenerate_YearlyResetOnNewYear(t *testing.T) {
	rules := newMemRuleRepo()
	tenantID := uuid.New()
	prevYear := 2025
	rules.rules[tenantID] = numberingrule.Hydrate(
		uuid.New(), tenantID, "EMP", true, numberingrule.YearFormatYYYY, 4,
		numberingrule.ResetYearly, 87, &prevYear, "-", false, true,
		time.Time{}, time.Time{},
	)
	gen := NewEmployeeNumberGenerator(rules, newMemEmployeeRepo(), nil)

	number, err := gen.Generate(genCtx(), tenantID, march(2026))
	require.NoError(t, err)
	require.Equal(t, "EMP-2026-0001", number)
}

func TestGenerate_NeverResetContinuesAcrossYears(t *testing.T) {
	rules := newMemRuleRepo()
	tenantID := uuid.New()
	prevYear := 2025
	rules.rules[tenantID] = numberingrule.Hydrate(
		uuid.New(), tenantID, "S", true, numberingrule.YearFormatYYYY, 4,
		numberingrule.ResetNever, 42, &prevYear, "-", false, true,
		time.Time{}, time.Time{},
	)
	gen := NewEmployeeNumberGenerator(rules, newMemEmployeeRepo(), nil)

	number, err := gen.Generate(genCtx(), tenantID, march(2026))
	require.NoError(t, err)
	require.Equal(t, "S-2026-0043", number)
}

func TestGenerate_FallbackWithoutRule(t *testing.T) {
	tenantID := uuid.New()
	employees := newMemEmployeeRepo()
	for i := 0; i < 5; i++ {
		_, err := employees.Create(context.Background(), seedTenantEmployee(tenantID, i))
		require.NoError(t, err)
	}
	gen := NewEmployeeNumberGenerator(newMemRuleRepo(), employees, nil)

	number, err := gen.Generate(genCtx(), tenantID, march(2026))
	require.NoError(t, err)
	require.Equal(t, "2026-0006", number)
}

func TestGenerate_DistinctAcrossManyCalls(t *testing.T) {
	rules := newMemRuleRepo()
	tenantID := uuid.New()
	rules.rules[tenantID] = numberingrule.New(tenantID, "HR", 4)
	gen := NewEmployeeNumberGenerator(rules, newMemEmployeeRepo(), nil)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		number, err := gen.Generate(genCtx(), tenantID, march(2026))
		require.NoError(t, err)
		require.False(t, seen[number], "number %s allocated twice", number)
		seen[number] = true
	}
}

func TestFindExistingNumber_ReuseDisabled(t *testing.T) {
	rules := newMemRuleRepo()
	tenantID := uuid.New()
	rules.rules[tenantID] = numberingrule.New(tenantID, "HR", 4)
	archive := &recordingArchive{number: "HR-2020-0099"}
	gen := NewEmployeeNumberGenerator(rules, newMemEmployeeRepo(), archive)

	number, err := gen.FindExistingNumber(genCtx(), tenantID, "Kim Jiwoo", march(1990))
	require.NoError(t, err)
	require.Empty(t, number)
	require.Zero(t, archive.calls, "the archive must not be consulted when reuse is off")
}

func TestFindExistingNumber_ReuseEnabled(t *testing.T) {
	rules := newMemRuleRepo()
	tenantID := uuid.New()
	rules.rules[tenantID] = numberingrule.Hydrate(
		uuid.New(), tenantID, "HR", true, numberingrule.YearFormatYYYY, 4,
		numberingrule.ResetYearly, 0, nil, "-", true, true,
		time.Time{}, time.Time{},
	)
	archive := &recordingArchive{number: "HR-2020-0099"}
	gen := NewEmployeeNumberGenerator(rules, newMemEmployeeRepo(), archive)

	number, err := gen.FindExistingNumber(genCtx(), tenantID, "Kim Jiwoo", march(1990))
	require.NoError(t, err)
	require.Equal(t, "HR-2020-0099", number)
	require.Equal(t, 1, archive.calls)
}

func TestFindExistingNumber_NoRuleConfigured(t *testing.T) {
	gen := NewEmployeeNumberGenerator(newMemRuleRepo(), newMemEmployeeRepo(), &recordingArchive{})

	number, err := gen.FindExistingNumber(genCtx(), uuid.New(), "Kim Jiwoo", march(1990))
	require.NoError(t, err)
	require.Empty(t, number)
}
