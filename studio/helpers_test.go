package studio_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yogitrack/studio/studio"
	"github.com/yogitrack/studio/studio/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var fixedNow = time.Date(2025, time.May, 20, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, ts studio.TxStore, opts ...studio.Option) *studio.Service {
	t.Helper()
	opts = append([]studio.Option{
		studio.WithClock(func() time.Time { return fixedNow }),
		studio.WithRetry(3, time.Millisecond, 2*time.Millisecond),
	}, opts...)
	return studio.NewService(ts, opts...)
}

// seedStudio loads a small studio: two instructors, two classes, three
// customers (Y003 has no credits left).
func seedStudio(t *testing.T, s studio.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.SaveInstructor(ctx, studio.Instructor{InstructorID: "I001", FirstName: "Alice", LastName: "Smith"}))
	require.NoError(t, s.SaveInstructor(ctx, studio.Instructor{InstructorID: "I002", FirstName: "Brian", LastName: "Lee"}))

	require.NoError(t, s.SaveClass(ctx, studio.Class{
		ClassID: "A001", ClassName: "Morning Flow", InstructorID: "I001", ClassType: "General",
		Daytime: []studio.ScheduleEntry{{Day: "Mon", Time: "09:00:00", Duration: 60}, {Day: "Wed", Time: "09:00:00", Duration: 60}},
	}))
	require.NoError(t, s.SaveClass(ctx, studio.Class{
		ClassID: "A002", ClassName: "Power Yoga", InstructorID: "I002", ClassType: "Special",
		Daytime: []studio.ScheduleEntry{{Day: "Mon", Time: "07:00:00", Duration: 45}},
	}))

	require.NoError(t, s.SaveCustomer(ctx, studio.Customer{CustomerID: "Y001", FirstName: "Emma", LastName: "Johnson", Email: "emma@example.com", Phone: "555-0101", ClassBalance: 2}))
	require.NoError(t, s.SaveCustomer(ctx, studio.Customer{CustomerID: "Y002", FirstName: "Liam", LastName: "Brown", Email: "liam@example.com", Phone: "555-0102", ClassBalance: 9}))
	require.NoError(t, s.SaveCustomer(ctx, studio.Customer{CustomerID: "Y003", FirstName: "Noah", LastName: "Davis", Email: "noah@example.com", Phone: "555-0103", ClassBalance: 0}))

	require.NoError(t, s.SavePackage(ctx, studio.Package{PackageID: "P001", PackageName: "Single Class", Price: decimal.NewFromInt(70)}))
}

func newSeededService(t *testing.T, opts ...studio.Option) (*studio.Service, *store.TxMemory) {
	t.Helper()
	mem := store.NewTxMemory()
	seedStudio(t, mem)
	return newTestService(t, mem, opts...), mem
}

func balanceOf(t *testing.T, s studio.Store, customerID string) int {
	t.Helper()
	c, err := s.GetCustomer(context.Background(), customerID)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c.ClassBalance
}

func ledgerSize(t *testing.T, s studio.Store) int {
	t.Helper()
	all, err := s.FindAttendance(context.Background(), studio.AttendanceFilter{})
	require.NoError(t, err)
	return len(all)
}

func appendRecord(t *testing.T, s studio.Store, id studio.CheckinID, customerID, classID, date string, status studio.Status) {
	t.Helper()
	require.NoError(t, s.InsertAttendance(context.Background(), studio.Attendance{
		CheckinID: id, CustomerID: customerID, ClassID: classID, Datetime: date, Status: status,
	}))
}

// =============================================================================
// FAULT INJECTION
// =============================================================================

// faultyStore lets a test replace individual Store methods inside WithTx.
type faultyStore struct {
	*store.TxMemory
	wrap func(studio.Store) studio.Store
}

func (f *faultyStore) WithTx(ctx context.Context, fn func(studio.Store) error) error {
	return f.TxMemory.WithTx(ctx, func(tx studio.Store) error {
		return fn(f.wrap(tx))
	})
}

// failingBalance fails every balance adjustment.
type failingBalance struct {
	studio.Store
}

func (failingBalance) AdjustClassBalance(context.Context, string, int) (bool, error) {
	return false, errors.New("disk full")
}

// collidingInsert reports a checkinId collision for the first n inserts.
type collidingInsert struct {
	studio.Store
	remaining *atomic.Int32
}

func (c collidingInsert) InsertAttendance(ctx context.Context, a studio.Attendance) error {
	if c.remaining.Add(-1) >= 0 {
		return studio.ErrDuplicateCheckinID
	}
	return c.Store.InsertAttendance(ctx, a)
}
