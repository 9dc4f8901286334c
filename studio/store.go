/*
store.go - Persistence interfaces for the studio domain

KEY INTERFACES:
  CustomerStore, ClassStore, InstructorStore, PackageStore:
      passive record collections keyed by business key
  AttendanceStore: the attendance ledger's persistence
  Store:   all of the above
  TxStore: Store + WithTx for atomic multi-entity writes

LOOKUP CONVENTION:
  Get* returns (nil, nil) when the business key does not exist. Missing
  references are normal here (soft foreign keys) and callers decide
  whether absence is an error.

ATOMICITY:
  A check-in writes the ledger and the customer's balance. Both writes run
  inside one WithTx call so they commit together or not at all.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite (production)
  - studio/store/memory.go: in-memory (tests, dev)
*/
package studio

import "context"

// CustomerStore persists customers.
type CustomerStore interface {
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	// SaveCustomer inserts or replaces the customer with the same key.
	SaveCustomer(ctx context.Context, c Customer) error
	DeleteCustomer(ctx context.Context, customerID string) (bool, error)
	// AdjustClassBalance atomically adds delta to the balance.
	// Returns false if the customer does not exist.
	AdjustClassBalance(ctx context.Context, customerID string, delta int) (bool, error)
}

// ClassStore persists classes.
type ClassStore interface {
	GetClass(ctx context.Context, classID string) (*Class, error)
	ListClasses(ctx context.Context) ([]Class, error)
	ListClassesByInstructor(ctx context.Context, instructorID string) ([]Class, error)
	SaveClass(ctx context.Context, c Class) error
	DeleteClass(ctx context.Context, classID string) (bool, error)
}

// InstructorStore persists instructors.
type InstructorStore interface {
	GetInstructor(ctx context.Context, instructorID string) (*Instructor, error)
	ListInstructors(ctx context.Context) ([]Instructor, error)
	SaveInstructor(ctx context.Context, i Instructor) error
	DeleteInstructor(ctx context.Context, instructorID string) (bool, error)
}

// PackageStore persists class packages.
type PackageStore interface {
	GetPackage(ctx context.Context, packageID string) (*Package, error)
	ListPackages(ctx context.Context) ([]Package, error)
	SavePackage(ctx context.Context, p Package) error
	DeletePackage(ctx context.Context, packageID string) (bool, error)
}

// AttendanceStore persists attendance records.
type AttendanceStore interface {
	// MaxCheckinID returns the highest checkinId, or 0 for an empty ledger.
	MaxCheckinID(ctx context.Context) (CheckinID, error)
	// InsertAttendance fails with ErrDuplicateCheckinID if the id is taken.
	InsertAttendance(ctx context.Context, a Attendance) error
	GetAttendance(ctx context.Context, id CheckinID) (*Attendance, error)
	FindAttendance(ctx context.Context, f AttendanceFilter) ([]Attendance, error)
	// SetAttendanceStatus returns false if no record has the id.
	SetAttendanceStatus(ctx context.Context, id CheckinID, status Status) (bool, error)
	// DeleteAllAttendance clears the ledger. Only the seeder uses it.
	DeleteAllAttendance(ctx context.Context) error
}

// Store is every record collection.
type Store interface {
	CustomerStore
	ClassStore
	InstructorStore
	PackageStore
	AttendanceStore
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, every write made through the Store is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// QUERIES
// =============================================================================

// Ordering selects how FindAttendance sorts its result.
type Ordering int

const (
	// OrderByCheckinDesc sorts newest checkinId first (general listings).
	OrderByCheckinDesc Ordering = iota
	// OrderByDateDesc sorts latest date first, then newest checkinId.
	OrderByDateDesc
)

// AttendanceFilter selects ledger entries. Zero fields match everything.
type AttendanceFilter struct {
	CustomerID string
	ClassID    string
	Date       string // exact YYYY-MM-DD
	Status     Status
	From       string // inclusive lower bound, YYYY-MM-DD
	To         string // inclusive upper bound, YYYY-MM-DD
	OrderBy    Ordering
}

// Matches reports whether a satisfies every non-zero field of f.
// Stores that cannot push filters down to a query engine use it directly.
func (f AttendanceFilter) Matches(a Attendance) bool {
	if f.CustomerID != "" && a.CustomerID != f.CustomerID {
		return false
	}
	if f.ClassID != "" && a.ClassID != f.ClassID {
		return false
	}
	if f.Date != "" && a.Datetime != f.Date {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.From != "" && a.Datetime < f.From {
		return false
	}
	if f.To != "" && a.Datetime > f.To {
		return false
	}
	return true
}

// Less orders a before b according to f.OrderBy.
func (f AttendanceFilter) Less(a, b Attendance) bool {
	if f.OrderBy == OrderByDateDesc && a.Datetime != b.Datetime {
		return a.Datetime > b.Datetime
	}
	return a.CheckinID > b.CheckinID
}
