/*
ledger.go - Attendance ledger

PURPOSE:
  Owns attendance records and the checkinId sequence, and enforces the
  status vocabulary. The ledger is append-mostly: records are created by
  check-in and afterwards only their status changes. Nothing deletes them.

IDENTIFIER SEQUENCE:
  NextCheckinID returns max(checkinId)+1, or 1 for an empty ledger. The
  read and the insert that uses it must happen inside the same store
  transaction (see Service.CheckIn); the store's unique index on
  checkin_id turns any remaining collision into ErrDuplicateCheckinID.

SEE ALSO:
  - store.go: AttendanceStore
  - checkin.go: the workflows that drive the ledger
*/
package studio

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Ledger wraps an AttendanceStore with validation and the id sequence.
type Ledger struct {
	store AttendanceStore
}

func NewLedger(store AttendanceStore) *Ledger {
	return &Ledger{store: store}
}

// NextCheckinID returns the identifier the next appended record must use.
func (l *Ledger) NextCheckinID(ctx context.Context) (CheckinID, error) {
	last, err := l.store.MaxCheckinID(ctx)
	if err != nil {
		return 0, fmt.Errorf("read max checkin id: %w", err)
	}
	return last + 1, nil
}

// Append validates and inserts a fully populated record.
func (l *Ledger) Append(ctx context.Context, a Attendance) error {
	if err := ValidateAttendance(a); err != nil {
		return err
	}
	return l.store.InsertAttendance(ctx, a)
}

// Get returns the record or a NotFoundError.
func (l *Ledger) Get(ctx context.Context, id CheckinID) (*Attendance, error) {
	a, err := l.store.GetAttendance(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, attendanceNotFound(id)
	}
	return a, nil
}

// Find returns the records matching f, ordered by f.OrderBy.
func (l *Ledger) Find(ctx context.Context, f AttendanceFilter) ([]Attendance, error) {
	return l.store.FindAttendance(ctx, f)
}

// UpdateStatus sets the status of a record and returns the updated record.
func (l *Ledger) UpdateStatus(ctx context.Context, id CheckinID, status Status) (*Attendance, error) {
	if !status.Valid() {
		return nil, &ValidationError{Message: MsgInvalidStatus, Field: "status"}
	}
	ok, err := l.store.SetAttendanceStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, attendanceNotFound(id)
	}
	return l.Get(ctx, id)
}

// ValidateAttendance checks required fields, the date format and the status.
func ValidateAttendance(a Attendance) error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "oneof":
		return &ValidationError{Message: MsgInvalidStatus, Field: fe.Field()}
	case "datetime":
		return &ValidationError{Message: MsgInvalidDate, Field: fe.Field()}
	default:
		return missingFields(fe.Field())
	}
}
