package employee

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hrsaas/hrcore/pkg/serrors"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusOnLeave  Status = "ON_LEAVE"
	StatusResigned Status = "RESIGNED"
)

var (
	ErrNotFound        = serrors.NewError("EMPLOYEE_NOT_FOUND", "employee not found", "")
	ErrAlreadyResigned = serrors.NewError("EMPLOYEE_ALREADY_RESIGNED", "employee is already resigned", "")
)

// Employee is one person's record inside a single tenant. A cross-tenant
// transfer closes the record in the source tenant and opens a fresh one in
// the target tenant; the two records share personal fields but nothing else.
type Employee struct {
	id             uuid.UUID
	tenantID       uuid.UUID
	employeeNumber string
	name           string
	nameEn         string
	email          string
	phone          string
	mobile         string
	departmentID   uuid.UUID
	positionCode   string
	jobTitleCode   string
	employmentType string
	status         Status
	hireDate       time.Time
	resignDate     *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func New(
	tenantID uuid.UUID,
	employeeNumber string,
	name string,
	hireDate time.Time,
) *Employee {
	return &Employee{
		tenantID:       tenantID,
		employeeNumber: employeeNumber,
		name:           strings.TrimSpace(name),
		status:         StatusActive,
		hireDate:       hireDate,
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	employeeNumber string,
	name string,
	nameEn string,
	email string,
	phone string,
	mobile string,
	departmentID uuid.UUID,
	positionCode string,
	jobTitleCode string,
	employmentType string,
	status Status,
	hireDate time.Time,
	resignDate *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) *Employee {
	return &Employee{
		id:             id,
		tenantID:       tenantID,
		employeeNumber: employeeNumber,
		name:           strings.TrimSpace(name),
		nameEn:         nameEn,
		email:          email,
		phone:          phone,
		mobile:         mobile,
		departmentID:   departmentID,
		positionCode:   positionCode,
		jobTitleCode:   jobTitleCode,
		employmentType: employmentType,
		status:         status,
		hireDate:       hireDate,
		resignDate:     resignDate,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (e *Employee) ID() uuid.UUID           { return e.id }
func (e *Employee) TenantID() uuid.UUID     { return e.tenantID }
func (e *Employee) EmployeeNumber() string  { return e.employeeNumber }
func (e *Employee) Name() string            { return e.name }
func (e *Employee) NameEn() string          { return e.nameEn }
func (e *Employee) Email() string           { return e.email }
func (e *Employee) Phone() string           { return e.phone }
func (e *Employee) Mobile() string          { return e.mobile }
func (e *Employee) DepartmentID() uuid.UUID { return e.departmentID }
func (e *Employee) PositionCode() string    { return e.positionCode }
func (e *Employee) JobTitleCode() string    { return e.jobTitleCode }
func (e *Employee) EmploymentType() string  { return e.employmentType }
func (e *Employee) Status() Status          { return e.status }
func (e *Employee) HireDate() time.Time     { return e.hireDate }
func (e *Employee) ResignDate() *time.Time  { return e.resignDate }
func (e *Employee) CreatedAt() time.Time    { return e.createdAt }
func (e *Employee) UpdatedAt() time.Time    { return e.updatedAt }

func (e *Employee) IsActive() bool { return e.status == StatusActive }

func (e *Employee) SetPersonalInfo(nameEn, email, phone, mobile, employmentType string) {
	e.nameEn = nameEn
	e.email = email
	e.phone = phone
	e.mobile = mobile
	e.employmentType = employmentType
}

func (e *Employee) SetPlacement(departmentID uuid.UUID, positionCode, jobTitleCode string) {
	e.departmentID = departmentID
	e.positionCode = positionCode
	e.jobTitleCode = jobTitleCode
}

// Resign closes the record as of date.
func (e *Employee) Resign(date time.Time) error {
	if e.status == StatusResigned {
		return fmt.Errorf("%w: employee %s", ErrAlreadyResigned, e.id)
	}
	e.status = StatusResigned
	e.resignDate = &date
	return nil
}
