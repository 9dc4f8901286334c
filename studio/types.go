/*
Package studio provides the studio-management domain: instructors, class
packages, customers, scheduled classes and the attendance ledger.

PURPOSE:
  Customers buy prepaid class credits (their class balance). Checking a
  customer into a class consumes one credit and appends an attendance
  record to the ledger. Cancelling a check-in restores the credit, but
  only when the record was a real check-in (a no-show forfeits it).

KEY CONCEPTS IN THIS FILE (types.go):
  - Business keys: human-readable identifiers (Y001, A001, I001, P001)
  - Customer, Class, Instructor, Package: passive records
  - Attendance: a ledger entry with a three-state Status
  - CheckinID: process-wide monotonically increasing ledger identifier

DATES:
  Attendance dates are plain "YYYY-MM-DD" strings. Range queries compare
  them lexicographically, which is only correct because the format is
  fixed-width and zero-padded. ParseDate enforces that format.

SEE ALSO:
  - ledger.go: Attendance ledger (identifier sequence, status updates)
  - checkin.go: Check-in and cancellation workflows
  - stats.go: Reporting over the ledger
*/
package studio

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted attendance date format.
const DateLayout = "2006-01-02"

// Unknown is the display placeholder for a dangling reference.
const Unknown = "Unknown"

// =============================================================================
// ATTENDANCE STATUS
// =============================================================================

// Status is the state of an attendance record.
type Status string

const (
	StatusCheckedIn Status = "checked-in"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

// Statuses lists every allowed status value.
var Statuses = []Status{StatusCheckedIn, StatusCancelled, StatusNoShow}

// Valid reports whether s is one of the three allowed values.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// =============================================================================
// RECORDS
// =============================================================================

// CheckinID identifies an attendance record. Assigned as max+1 at creation.
type CheckinID int64

// Attendance is a ledger entry: one customer at one class occurrence.
type Attendance struct {
	CheckinID  CheckinID `validate:"gt=0"`
	CustomerID string    `validate:"required"`
	ClassID    string    `validate:"required"`
	Datetime   string    `validate:"required,datetime=2006-01-02"`
	Status     Status    `validate:"required,oneof=checked-in cancelled no-show"`
}

// Customer holds contact details and the remaining prepaid class credits.
type Customer struct {
	CustomerID       string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Senior           bool
	Address          string
	PreferredContact string
	ClassBalance     int
}

// FullName returns "First Last".
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Instructor teaches classes. Referenced weakly by Class.InstructorID.
type Instructor struct {
	InstructorID     string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Address          string
	PreferredContact string
}

func (i Instructor) FullName() string {
	return i.FirstName + " " + i.LastName
}

// Package is a purchasable bundle of class credits.
type Package struct {
	PackageID   string
	PackageName string
	Description string
	Price       decimal.Decimal
}

// ScheduleEntry is one weekly slot of a class.
type ScheduleEntry struct {
	Day      string `json:"day"`      // Mon..Sun
	Time     string `json:"time"`     // HH:MM:SS
	Duration int    `json:"duration"` // minutes
}

// Class is a recurring class offering.
type Class struct {
	ClassID      string
	ClassName    string
	InstructorID string
	ClassType    string
	Description  string
	Daytime      []ScheduleEntry
}

// =============================================================================
// DATES
// =============================================================================

// ParseDate validates a "YYYY-MM-DD" date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders t as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
