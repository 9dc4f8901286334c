package studio

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// EnrichedAttendance is a ledger entry with display fields resolved from
// its soft references. Missing entities degrade to Unknown / zero values.
type EnrichedAttendance struct {
	Attendance

	CustomerName    string
	CustomerBalance int
	CustomerPhone   string
	CustomerEmail   string
	ClassName       string
	InstructorName  string
}

// Enricher resolves customer, class and instructor references for display.
// Lookups are memoised for the lifetime of the Enricher and never fail the
// caller: a lookup error is treated as a missing entity.
type Enricher struct {
	store Store
	limit int

	mu          sync.Mutex
	customers   map[string]*Customer
	classes     map[string]*Class
	instructors map[string]*Instructor
}

func NewEnricher(store Store, concurrency int) *Enricher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Enricher{
		store:       store,
		limit:       concurrency,
		customers:   make(map[string]*Customer),
		classes:     make(map[string]*Class),
		instructors: make(map[string]*Instructor),
	}
}

// Enrich resolves every record concurrently, preserving input order.
func (e *Enricher) Enrich(ctx context.Context, records []Attendance) []EnrichedAttendance {
	out := make([]EnrichedAttendance, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i := range records {
		g.Go(func() error {
			out[i] = e.enrichOne(gctx, records[i])
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (e *Enricher) enrichOne(ctx context.Context, a Attendance) EnrichedAttendance {
	r := EnrichedAttendance{
		Attendance:     a,
		CustomerName:   Unknown,
		ClassName:      Unknown,
		InstructorName: Unknown,
	}

	if c := e.customer(ctx, a.CustomerID); c != nil {
		r.CustomerName = c.FullName()
		r.CustomerBalance = c.ClassBalance
		r.CustomerPhone = c.Phone
		r.CustomerEmail = c.Email
	}
	if cls := e.class(ctx, a.ClassID); cls != nil {
		r.ClassName = cls.ClassName
		if in := e.instructor(ctx, cls.InstructorID); in != nil {
			r.InstructorName = in.FullName()
		}
	}
	return r
}

// ClassName resolves a class display name, or Unknown.
func (e *Enricher) ClassName(ctx context.Context, classID string) string {
	if c := e.class(ctx, classID); c != nil {
		return c.ClassName
	}
	return Unknown
}

// InstructorName resolves an instructor display name, or Unknown.
func (e *Enricher) InstructorName(ctx context.Context, instructorID string) string {
	if in := e.instructor(ctx, instructorID); in != nil {
		return in.FullName()
	}
	return Unknown
}

func (e *Enricher) customer(ctx context.Context, id string) *Customer {
	return resolve(&e.mu, e.customers, id, func() (*Customer, error) {
		return e.store.GetCustomer(ctx, id)
	})
}

func (e *Enricher) class(ctx context.Context, id string) *Class {
	return resolve(&e.mu, e.classes, id, func() (*Class, error) {
		return e.store.GetClass(ctx, id)
	})
}

func (e *Enricher) instructor(ctx context.Context, id string) *Instructor {
	return resolve(&e.mu, e.instructors, id, func() (*Instructor, error) {
		return e.store.GetInstructor(ctx, id)
	})
}

// resolve memoises a lookup. Two goroutines may race to load the same key;
// both results are equivalent so the last write wins.
func resolve[T any](mu *sync.Mutex, cache map[string]*T, id string, load func() (*T, error)) *T {
	if id == "" {
		return nil
	}
	mu.Lock()
	v, ok := cache[id]
	mu.Unlock()
	if ok {
		return v
	}

	v, err := load()
	if err != nil {
		v = nil
	}

	mu.Lock()
	cache[id] = v
	mu.Unlock()
	return v
}

// =============================================================================
// ENRICHED VIEWS
// =============================================================================

// Records lists ledger entries matching f (newest checkinId first), enriched.
func (s *Service) Records(ctx context.Context, f AttendanceFilter) ([]EnrichedAttendance, error) {
	f.OrderBy = OrderByCheckinDesc
	records, err := s.Ledger().Find(ctx, f)
	if err != nil {
		return nil, err
	}
	return NewEnricher(s.store, s.enrichConcurrency).Enrich(ctx, records), nil
}

// CustomerHistory lists a customer's records, latest date first.
func (s *Service) CustomerHistory(ctx context.Context, customerID string) ([]EnrichedAttendance, error) {
	if customerID == "" {
		return nil, missingFields("customerId")
	}
	records, err := s.Ledger().Find(ctx, AttendanceFilter{CustomerID: customerID, OrderBy: OrderByDateDesc})
	if err != nil {
		return nil, err
	}
	return NewEnricher(s.store, s.enrichConcurrency).Enrich(ctx, records), nil
}

// ClassAttendance lists a class's records, optionally for one date,
// latest date first.
func (s *Service) ClassAttendance(ctx context.Context, classID, date string) ([]EnrichedAttendance, error) {
	if classID == "" {
		return nil, missingFields("classId")
	}
	records, err := s.Ledger().Find(ctx, AttendanceFilter{ClassID: classID, Date: date, OrderBy: OrderByDateDesc})
	if err != nil {
		return nil, err
	}
	return NewEnricher(s.store, s.enrichConcurrency).Enrich(ctx, records), nil
}
