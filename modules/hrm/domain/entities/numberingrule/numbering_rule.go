package numberingrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type YearFormat string

const (
	YearFormatYYYY YearFormat = "YYYY"
	YearFormatYY   YearFormat = "YY"
)

type ResetPolicy string

const (
	ResetYearly ResetPolicy = "YEARLY"
	ResetNever  ResetPolicy = "NEVER"
)

// NumberingRule is a tenant's employee number format and its reserved
// sequence. currentSequence only moves forward within a reset epoch; a
// YEARLY policy starts a new epoch whenever the generation year changes.
type NumberingRule struct {
	id              uuid.UUID
	tenantID        uuid.UUID
	prefix          string
	includeYear     bool
	yearFormat      YearFormat
	sequenceDigits  int
	resetPolicy     ResetPolicy
	currentSequence int
	currentYear     *int
	separator       string
	allowReuse      bool
	active          bool
	createdAt       time.Time
	updatedAt       time.Time
}

func New(tenantID uuid.UUID, prefix string, sequenceDigits int) *NumberingRule {
	return &NumberingRule{
		tenantID:       tenantID,
		prefix:         strings.TrimSpace(prefix),
		includeYear:    true,
		yearFormat:     YearFormatYYYY,
		sequenceDigits: sequenceDigits,
		resetPolicy:    ResetYearly,
		separator:      "-",
		active:         true,
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	prefix string,
	includeYear bool,
	yearFormat YearFormat,
	sequenceDigits int,
	resetPolicy ResetPolicy,
	currentSequence int,
	currentYear *int,
	separator string,
	allowReuse bool,
	active bool,
	createdAt time.Time,
	updatedAt time.Time,
) *NumberingRule {
	return &NumberingRule{
		id:              id,
		tenantID:        tenantID,
		prefix:          prefix,
		includeYear:     includeYear,
		yearFormat:      yearFormat,
		sequenceDigits:  sequenceDigits,
		resetPolicy:     resetPolicy,
		currentSequence: currentSequence,
		currentYear:     currentYear,
		separator:       separator,
		allowReuse:      allowReuse,
		active:          active,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (r *NumberingRule) ID() uuid.UUID            { return r.id }
func (r *NumberingRule) TenantID() uuid.UUID      { return r.tenantID }
func (r *NumberingRule) Prefix() string           { return r.prefix }
func (r *NumberingRule) IncludeYear() bool        { return r.includeYear }
func (r *NumberingRule) YearFormat() YearFormat   { return r.yearFormat }
func (r *NumberingRule) SequenceDigits() int      { return r.sequenceDigits }
func (r *NumberingRule) ResetPolicy() ResetPolicy { return r.resetPolicy }
func (r *NumberingRule) CurrentSequence() int     { return r.currentSequence }
func (r *NumberingRule) CurrentYear() *int        { return r.currentYear }
func (r *NumberingRule) Separator() string        { return r.separator }
func (r *NumberingRule) AllowReuse() bool         { return r.allowReuse }
func (r *NumberingRule) IsActive() bool           { return r.active }
func (r *NumberingRule) CreatedAt() time.Time     { return r.createdAt }
func (r *NumberingRule) UpdatedAt() time.Time     { return r.updatedAt }

// Next advances the sequence for effectiveDate's year and returns the
// formatted number. The caller must hold the rule's row lock and persist
// the mutated state before releasing it.
func (r *NumberingRule) Next(effectiveDate time.Time) string {
	year := effectiveDate.Year()

	if r.resetPolicy == ResetYearly && (r.currentYear == nil || *r.currentYear != year) {
		r.currentSequence = 0
	}
	r.currentYear = &year
	r.currentSequence++

	return r.format(year, r.currentSequence)
}

func (r *NumberingRule) format(year, sequence int) string {
	var b strings.Builder
	if r.prefix != "" {
		b.WriteString(r.prefix)
		b.WriteString(r.separator)
	}
	if r.includeYear {
		if r.yearFormat == YearFormatYY {
			b.WriteString(fmt.Sprintf("%02d", year%100))
		} else {
			b.WriteString(fmt.Sprintf("%04d", year))
		}
		b.WriteString(r.separator)
	}
	b.WriteString(fmt.Sprintf("%0*d", r.sequenceDigits, sequence))
	return b.String()
}
