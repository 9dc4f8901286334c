/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures the browser UI reads and writes. Field names
  are camelCase except the instructor firstname/lastname keys. Domain
  types in package studio carry no JSON tags except ScheduleEntry, which
  is embedded in class bodies as-is.

NAMING CONVENTION:
  - *DTO:      Response types returned to clients
  - *Request:  Request body types from clients
  - *Response: Response wrappers with a message

TYPES:
  Attendance:
    AttendanceDTO, AttendanceRecordDTO, CustomerHistoryDTO,
    ClassAttendanceDTO, CheckinRequest, UpdateStatusRequest,
    CancelCheckinRequest, StatsDTO

  Catalog:
    CustomerDTO, ClassDTO, InstructorDTO, PackageDTO and their
    *Request / *IDDTO variants

VALIDATION:
  Business rules live in package studio. Request structs only carry
  validator tags for format checks the domain does not own (email).

SEE ALSO:
  - handlers.go: Attendance handlers
  - entities.go: Catalog handlers
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/yogitrack/studio/studio"
)

// =============================================================================
// SHARED
// =============================================================================

// MessageResponse is the plain {message} body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries {message} and/or {error}. Routes differ in which
// key the UI reads, so both are optional.
type ErrorResponse struct {
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Allowed []string `json:"allowed,omitempty"`
}

// CheckinIDParam accepts a checkinId sent as a JSON number or a numeric
// string.
type CheckinIDParam int64

func (p *CheckinIDParam) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*p = 0
			return nil
		}
		b = []byte(s)
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("checkinId must be an integer: %w", err)
	}
	*p = CheckinIDParam(n)
	return nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceDTO struct {
	CheckinID  int64  `json:"checkinId"`
	CustomerID string `json:"customerId"`
	ClassID    string `json:"classId"`
	Datetime   string `json:"datetime"`
	Status     string `json:"status"`
}

// AttendanceRecordDTO is one row of getAttendanceRecords.
type AttendanceRecordDTO struct {
	AttendanceDTO
	CustomerName    string `json:"customerName"`
	CustomerBalance int    `json:"customerBalance"`
	ClassName       string `json:"className"`
	InstructorName  string `json:"instructorName"`
}

// CustomerHistoryDTO is one row of getCustomerHistory.
type CustomerHistoryDTO struct {
	AttendanceDTO
	ClassName      string `json:"className"`
	InstructorName string `json:"instructorName"`
}

// ClassAttendanceDTO is one row of getClassAttendance.
type ClassAttendanceDTO struct {
	AttendanceDTO
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail"`
}

type CheckinRequest struct {
	CustomerID string `json:"customerId"`
	ClassID    string `json:"classId"`
	Datetime   string `json:"datetime"`
}

type CheckinResponse struct {
	Message          string        `json:"message"`
	Attendance       AttendanceDTO `json:"attendance"`
	RemainingBalance int           `json:"remainingBalance"`
}

type UpdateStatusRequest struct {
	CheckinID CheckinIDParam `json:"checkinId"`
	Status    string         `json:"status"`
}

type UpdateStatusResponse struct {
	Message    string        `json:"message"`
	Attendance AttendanceDTO `json:"attendance"`
}

type CancelCheckinRequest struct {
	CheckinID CheckinIDParam `json:"checkinId"`
}

type CancelCheckinResponse struct {
	Message         string        `json:"message"`
	BalanceRestored bool          `json:"balanceRestored"`
	Attendance      AttendanceDTO `json:"attendance"`
}

type PopularClassDTO struct {
	ClassID         string `json:"classId"`
	ClassName       string `json:"className"`
	AttendanceCount int    `json:"attendanceCount"`
}

type StatsDTO struct {
	TotalCheckins      int               `json:"totalCheckins"`
	TotalCancellations int               `json:"totalCancellations"`
	TotalNoShows       int               `json:"totalNoShows"`
	PopularClasses     []PopularClassDTO `json:"popularClasses"`
}

func toAttendanceDTO(a studio.Attendance) AttendanceDTO {
	return AttendanceDTO{
		CheckinID:  int64(a.CheckinID),
		CustomerID: a.CustomerID,
		ClassID:    a.ClassID,
		Datetime:   a.Datetime,
		Status:     string(a.Status),
	}
}

func toStatsDTO(s *studio.Stats) StatsDTO {
	dto := StatsDTO{
		TotalCheckins:      s.TotalCheckins,
		TotalCancellations: s.TotalCancellations,
		TotalNoShows:       s.TotalNoShows,
		PopularClasses:     make([]PopularClassDTO, len(s.PopularClasses)),
	}
	for i, p := range s.PopularClasses {
		dto.PopularClasses[i] = PopularClassDTO(p)
	}
	return dto
}

// =============================================================================
// CUSTOMERS
// =============================================================================

type CustomerDTO struct {
	CustomerID       string `json:"customerId"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Senior           bool   `json:"senior"`
	Address          string `json:"address"`
	PreferredContact string `json:"preferredContact"`
	ClassBalance     int    `json:"classBalance"`
}

// CustomerRequest is the body of add and update. Nil fields are left
// unchanged on update.
type CustomerRequest struct {
	CustomerID       string  `json:"customerId"`
	FirstName        *string `json:"firstName"`
	LastName         *string `json:"lastName"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone"`
	Senior           *bool   `json:"senior"`
	Address          *string `json:"address"`
	PreferredContact *string `json:"preferredContact"`
	ClassBalance     *int    `json:"classBalance"`
}

func (r CustomerRequest) apply(c *studio.Customer) {
	setString(&c.FirstName, r.FirstName)
	setString(&c.LastName, r.LastName)
	setString(&c.Email, r.Email)
	setString(&c.Phone, r.Phone)
	setString(&c.Address, r.Address)
	setString(&c.PreferredContact, r.PreferredContact)
	if r.Senior != nil {
		c.Senior = *r.Senior
	}
	if r.ClassBalance != nil {
		c.ClassBalance = *r.ClassBalance
	}
}

type CustomerIDDTO struct {
	CustomerID   string `json:"customerId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	ClassBalance int    `json:"classBalance"`
}

type UpdateClassBalanceRequest struct {
	CustomerID string `json:"customerId"`
	NewBalance *int   `json:"newBalance"`
}

func toCustomerDTO(c studio.Customer) CustomerDTO {
	return CustomerDTO(c)
}

// =============================================================================
// INSTRUCTORS
// =============================================================================

// InstructorDTO keeps the lowercase firstname/lastname keys the UI reads.
type InstructorDTO struct {
	InstructorID     string `json:"instructorId"`
	FirstName        string `json:"firstname"`
	LastName         string `json:"lastname"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	PreferredContact string `json:"preferredContact"`
}

type InstructorRequest struct {
	InstructorID     string  `json:"instructorId"`
	FirstName        *string `json:"firstname"`
	LastName         *string `json:"lastname"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	PreferredContact *string `json:"preferredContact"`
}

func (r InstructorRequest) apply(in *studio.Instructor) {
	setString(&in.FirstName, r.FirstName)
	setString(&in.LastName, r.LastName)
	setString(&in.Email, r.Email)
	setString(&in.Phone, r.Phone)
	setString(&in.Address, r.Address)
	setString(&in.PreferredContact, r.PreferredContact)
}

type InstructorIDDTO struct {
	InstructorID string `json:"instructorId"`
	FirstName    string `json:"firstname"`
	LastName     string `json:"lastname"`
}

// =============================================================================
// PACKAGES
// =============================================================================

type PackageDTO struct {
	PackageID   string  `json:"packageId"`
	PackageName string  `json:"packageName"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type PackageRequest struct {
	PackageID   string           `json:"packageId"`
	PackageName *string          `json:"packageName"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

func (r PackageRequest) apply(p *studio.Package) {
	setString(&p.PackageName, r.PackageName)
	setString(&p.Description, r.Description)
	if r.Price != nil {
		p.Price = *r.Price
	}
}

type PackageIDDTO struct {
	PackageID   string  `json:"packageId"`
	PackageName string  `json:"packageName"`
	Price       float64 `json:"price"`
}

func toPackageDTO(p studio.Package) PackageDTO {
	return PackageDTO{
		PackageID:   p.PackageID,
		PackageName: p.PackageName,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
	}
}

// =============================================================================
// CLASSES
// =============================================================================

type ClassDTO struct {
	ClassID      string                 `json:"classId"`
	ClassName    string                 `json:"className"`
	InstructorID string                 `json:"instructorId"`
	ClassType    string                 `json:"classType"`
	Description  string                 `json:"description"`
	Daytime      []studio.ScheduleEntry `json:"daytime"`
}

type ClassRequest struct {
	ClassID      string                  `json:"classId"`
	ClassName    *string                 `json:"className"`
	InstructorID *string                 `json:"instructorId"`
	ClassType    *string                 `json:"classType"`
	Description  *string                 `json:"description"`
	Daytime      *[]studio.ScheduleEntry `json:"daytime"`
}

func (r ClassRequest) apply(c *studio.Class) {
	setString(&c.ClassName, r.ClassName)
	setString(&c.InstructorID, r.InstructorID)
	setString(&c.ClassType, r.ClassType)
	setString(&c.Description, r.Description)
	if r.Daytime != nil {
		c.Daytime = *r.Daytime
	}
}

type ClassIDDTO struct {
	ClassID        string `json:"classId"`
	ClassName      string `json:"className"`
	InstructorID   string `json:"instructorId"`
	InstructorName string `json:"instructorName"`
}

// ScheduledClassDTO is one slot of getWeeklySchedule.
type ScheduledClassDTO struct {
	ClassID     string `json:"classId"`
	ClassName   string `json:"className"`
	Instructor  string `json:"instructor"`
	Time        string `json:"time"`
	Duration    int    `json:"duration"`
	ClassType   string `json:"classType"`
	Description string `json:"description"`
}

func toClassDTO(c studio.Class) ClassDTO {
	daytime := c.Daytime
	if daytime == nil {
		daytime = []studio.ScheduleEntry{}
	}
	return ClassDTO{
		ClassID:      c.ClassID,
		ClassName:    c.ClassName,
		InstructorID: c.InstructorID,
		ClassType:    c.ClassType,
		Description:  c.Description,
		Daytime:      daytime,
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
