/*
checkin.go - Check-in and cancellation workflows

CHECK-IN (fail-fast, in order):
  1. customerId and classId are required          -> ValidationError
  2. customer must exist                          -> NotFoundError
  3. customer.classBalance must be > 0            -> InsufficientBalanceError
  4. class must exist                             -> NotFoundError
  5. checkinId = max(checkinId) + 1
  6. append {checkinId, customerId, classId, date, checked-in}
  7. customer.classBalance -= 1
  8. return the record and the balance after the decrement

  Steps 2-7 run in one store transaction: the ledger entry and the balance
  decrement commit together, and the id read cannot interleave with another
  writer's insert. A collision that still gets through (two processes on one
  database file) surfaces as ErrDuplicateCheckinID and the whole
  transaction is retried.

CANCELLATION:
  1. record must exist                            -> NotFoundError
  2. record must not already be cancelled         -> AlreadyCancelledError
  3. status := cancelled
  4. balance += 1 only if the previous status was checked-in. A no-show
     already forfeited its credit.

UpdateStatus is the administrative escape hatch. It changes the status
and nothing else; in particular it never touches balances.
*/
package studio

import (
	"context"
	"fmt"

	"github.com/failsafe-go/failsafe-go"
	"github.com/sirupsen/logrus"
)

// CheckinInput is a check-in request. Datetime defaults to today.
type CheckinInput struct {
	CustomerID string
	ClassID    string
	Datetime   string
}

// CheckinResult is the created record and the customer's new balance.
type CheckinResult struct {
	Attendance       Attendance
	RemainingBalance int
}

// CancelResult reports what a cancellation did.
type CancelResult struct {
	Attendance      Attendance
	PreviousStatus  Status
	BalanceRestored bool
}

// CheckIn checks a customer into a class, consuming one class credit.
func (s *Service) CheckIn(ctx context.Context, in CheckinInput) (*CheckinResult, error) {
	res, err := s.checkIn(ctx, in)
	if s.hooks.OnCheckIn != nil {
		s.hooks.OnCheckIn(err)
	}
	return res, err
}

func (s *Service) checkIn(ctx context.Context, in CheckinInput) (*CheckinResult, error) {
	if in.CustomerID == "" {
		return nil, missingFields("customerId")
	}
	if in.ClassID == "" {
		return nil, missingFields("classId")
	}

	date := in.Datetime
	if date == "" {
		date = FormatDate(s.now())
	} else if _, err := ParseDate(date); err != nil {
		return nil, &ValidationError{Message: MsgInvalidDate, Field: "datetime"}
	}

	var result *CheckinResult
	_, err := failsafe.With[any](s.retry).WithContext(ctx).Get(func() (any, error) {
		r, err := s.checkInOnce(ctx, in.CustomerID, in.ClassID, date)
		if err != nil && IsRetryable(err) {
			s.log.WithError(err).WithField("customer_id", in.CustomerID).Warn("check-in conflict, retrying")
		}
		result = r
		return nil, err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"checkin_id":        result.Attendance.CheckinID,
		"customer_id":       in.CustomerID,
		"class_id":          in.ClassID,
		"date":              date,
		"remaining_balance": result.RemainingBalance,
	}).Info("check-in recorded")

	return result, nil
}

func (s *Service) checkInOnce(ctx context.Context, customerID, classID, date string) (*CheckinResult, error) {
	var result *CheckinResult

	err := s.store.WithTx(ctx, func(tx Store) error {
		customer, err := tx.GetCustomer(ctx, customerID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		if customer == nil {
			return customerNotFound(customerID)
		}
		if customer.ClassBalance <= 0 {
			return &InsufficientBalanceError{CustomerID: customerID, Balance: customer.ClassBalance}
		}

		class, err := tx.GetClass(ctx, classID)
		if err != nil {
			return fmt.Errorf("load class: %w", err)
		}
		if class == nil {
			return classNotFound(classID)
		}

		ledger := NewLedger(tx)
		id, err := ledger.NextCheckinID(ctx)
		if err != nil {
			return err
		}

		attendance := Attendance{
			CheckinID:  id,
			CustomerID: customerID,
			ClassID:    classID,
			Datetime:   date,
			Status:     StatusCheckedIn,
		}
		if err := ledger.Append(ctx, attendance); err != nil {
			return err
		}

		ok, err := tx.AdjustClassBalance(ctx, customerID, -1)
		if err != nil {
			return fmt.Errorf("decrement class balance: %w", err)
		}
		if !ok {
			return customerNotFound(customerID)
		}

		result = &CheckinResult{
			Attendance:       attendance,
			RemainingBalance: customer.ClassBalance - 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel cancels a check-in, restoring the credit if it was checked-in.
func (s *Service) Cancel(ctx context.Context, id CheckinID) (*CancelResult, error) {
	res, err := s.cancel(ctx, id)
	if s.hooks.OnCancel != nil {
		s.hooks.OnCancel(res != nil && res.BalanceRestored, err)
	}
	return res, err
}

func (s *Service) cancel(ctx context.Context, id CheckinID) (*CancelResult, error) {
	if id <= 0 {
		return nil, missingFields("checkinId")
	}

	var result *CancelResult
	err := s.store.WithTx(ctx, func(tx Store) error {
		ledger := NewLedger(tx)
		record, err := ledger.Get(ctx, id)
		if err != nil {
			return err
		}
		if record.Status == StatusCancelled {
			return &AlreadyCancelledError{CheckinID: id}
		}

		previous := record.Status
		if _, err := tx.SetAttendanceStatus(ctx, id, StatusCancelled); err != nil {
			return fmt.Errorf("set status: %w", err)
		}

		restored := false
		if previous == StatusCheckedIn {
			// A dangling customerId leaves nothing to restore.
			restored, err = tx.AdjustClassBalance(ctx, record.CustomerID, 1)
			if err != nil {
				return fmt.Errorf("restore class balance: %w", err)
			}
		}

		cancelled := *record
		cancelled.Status = StatusCancelled
		result = &CancelResult{
			Attendance:      cancelled,
			PreviousStatus:  previous,
			BalanceRestored: restored,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"checkin_id":       id,
		"customer_id":      result.Attendance.CustomerID,
		"previous_status":  result.PreviousStatus,
		"balance_restored": result.BalanceRestored,
	}).Info("check-in cancelled")

	return result, nil
}

// UpdateStatus sets a record's status without any balance side effects.
func (s *Service) UpdateStatus(ctx context.Context, id CheckinID, status Status) (*Attendance, error) {
	if id <= 0 {
		return nil, missingFields("checkinId")
	}
	updated, err := s.Ledger().UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"checkin_id": id, "status": status}).Info("attendance status updated")
	return updated, nil
}

// GetAttendance returns a single record.
func (s *Service) GetAttendance(ctx context.Context, id CheckinID) (*Attendance, error) {
	return s.Ledger().Get(ctx, id)
}
