// Package store provides in-memory Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/yogitrack/studio/studio"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// tables holds the collections. Its methods assume the caller holds the
// owning Memory's lock.
type tables struct {
	customers   map[string]studio.Customer
	classes     map[string]studio.Class
	instructors map[string]studio.Instructor
	packages    map[string]studio.Package
	attendance  map[studio.CheckinID]studio.Attendance
}

func newTables() *tables {
	return &tables{
		customers:   make(map[string]studio.Customer),
		classes:     make(map[string]studio.Class),
		instructors: make(map[string]studio.Instructor),
		packages:    make(map[string]studio.Package),
		attendance:  make(map[studio.CheckinID]studio.Attendance),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.customers {
		c.customers[k] = v
	}
	for k, v := range t.classes {
		c.classes[k] = cloneClass(v)
	}
	for k, v := range t.instructors {
		c.instructors[k] = v
	}
	for k, v := range t.packages {
		c.packages[k] = v
	}
	for k, v := range t.attendance {
		c.attendance[k] = v
	}
	return c
}

func cloneClass(c studio.Class) studio.Class {
	c.Daytime = append([]studio.ScheduleEntry{}, c.Daytime...)
	return c
}

// Memory is a Store backed by maps.
type Memory struct {
	mu sync.RWMutex
	t  *tables
}

func NewMemory() *Memory {
	return &Memory{t: newTables()}
}

func (m *Memory) GetCustomer(ctx context.Context, id string) (*studio.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.GetCustomer(ctx, id)
}

func (m *Memory) ListCustomers(ctx context.Context) ([]studio.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.ListCustomers(ctx)
}

func (m *Memory) SaveCustomer(ctx context.Context, c studio.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.SaveCustomer(ctx, c)
}

func (m *Memory) DeleteCustomer(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DeleteCustomer(ctx, id)
}

func (m *Memory) AdjustClassBalance(ctx context.Context, id string, delta int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.AdjustClassBalance(ctx, id, delta)
}

func (m *Memory) GetClass(ctx context.Context, id string) (*studio.Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.GetClass(ctx, id)
}

func (m *Memory) ListClasses(ctx context.Context) ([]studio.Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.ListClasses(ctx)
}

func (m *Memory) ListClassesByInstructor(ctx context.Context, instructorID string) ([]studio.Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.ListClassesByInstructor(ctx, instructorID)
}

func (m *Memory) SaveClass(ctx context.Context, c studio.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.SaveClass(ctx, c)
}

func (m *Memory) DeleteClass(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DeleteClass(ctx, id)
}

func (m *Memory) GetInstructor(ctx context.Context, id string) (*studio.Instructor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.GetInstructor(ctx, id)
}

func (m *Memory) ListInstructors(ctx context.Context) ([]studio.Instructor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.ListInstructors(ctx)
}

func (m *Memory) SaveInstructor(ctx context.Context, i studio.Instructor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.SaveInstructor(ctx, i)
}

func (m *Memory) DeleteInstructor(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DeleteInstructor(ctx, id)
}

func (m *Memory) GetPackage(ctx context.Context, id string) (*studio.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.GetPackage(ctx, id)
}

func (m *Memory) ListPackages(ctx context.Context) ([]studio.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.ListPackages(ctx)
}

func (m *Memory) SavePackage(ctx context.Context, p studio.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.SavePackage(ctx, p)
}

func (m *Memory) DeletePackage(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DeletePackage(ctx, id)
}

func (m *Memory) MaxCheckinID(ctx context.Context) (studio.CheckinID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.MaxCheckinID(ctx)
}

func (m *Memory) InsertAttendance(ctx context.Context, a studio.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.InsertAttendance(ctx, a)
}

func (m *Memory) GetAttendance(ctx context.Context, id studio.CheckinID) (*studio.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.GetAttendance(ctx, id)
}

func (m *Memory) FindAttendance(ctx context.Context, f studio.AttendanceFilter) ([]studio.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.FindAttendance(ctx, f)
}

func (m *Memory) SetAttendanceStatus(ctx context.Context, id studio.CheckinID, status studio.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.SetAttendanceStatus(ctx, id, status)
}

func (m *Memory) DeleteAllAttendance(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DeleteAllAttendance(ctx)
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
// The write lock is held for the whole of fn, so transactions are serial.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(studio.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.t.clone()
	if err := fn(tm.t); err != nil {
		tm.t = snapshot
		return err
	}
	return nil
}

// =============================================================================
// UNLOCKED COLLECTION OPERATIONS
// =============================================================================

func (t *tables) GetCustomer(_ context.Context, id string) (*studio.Customer, error) {
	c, ok := t.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *tables) ListCustomers(_ context.Context) ([]studio.Customer, error) {
	out := make([]studio.Customer, 0, len(t.customers))
	for _, c := range t.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

func (t *tables) SaveCustomer(_ context.Context, c studio.Customer) error {
	t.customers[c.CustomerID] = c
	return nil
}

func (t *tables) DeleteCustomer(_ context.Context, id string) (bool, error) {
	_, ok := t.customers[id]
	delete(t.customers, id)
	return ok, nil
}

func (t *tables) AdjustClassBalance(_ context.Context, id string, delta int) (bool, error) {
	c, ok := t.customers[id]
	if !ok {
		return false, nil
	}
	c.ClassBalance += delta
	t.customers[id] = c
	return true, nil
}

func (t *tables) GetClass(_ context.Context, id string) (*studio.Class, error) {
	c, ok := t.classes[id]
	if !ok {
		return nil, nil
	}
	c = cloneClass(c)
	return &c, nil
}

func (t *tables) ListClasses(_ context.Context) ([]studio.Class, error) {
	out := make([]studio.Class, 0, len(t.classes))
	for _, c := range t.classes {
		out = append(out, cloneClass(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassID < out[j].ClassID })
	return out, nil
}

func (t *tables) ListClassesByInstructor(ctx context.Context, instructorID string) ([]studio.Class, error) {
	all, _ := t.ListClasses(ctx)
	out := make([]studio.Class, 0)
	for _, c := range all {
		if c.InstructorID == instructorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (t *tables) SaveClass(_ context.Context, c studio.Class) error {
	t.classes[c.ClassID] = cloneClass(c)
	return nil
}

func (t *tables) DeleteClass(_ context.Context, id string) (bool, error) {
	_, ok := t.classes[id]
	delete(t.classes, id)
	return ok, nil
}

func (t *tables) GetInstructor(_ context.Context, id string) (*studio.Instructor, error) {
	in, ok := t.instructors[id]
	if !ok {
		return nil, nil
	}
	return &in, nil
}

func (t *tables) ListInstructors(_ context.Context) ([]studio.Instructor, error) {
	out := make([]studio.Instructor, 0, len(t.instructors))
	for _, in := range t.instructors {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstructorID < out[j].InstructorID })
	return out, nil
}

func (t *tables) SaveInstructor(_ context.Context, in studio.Instructor) error {
	t.instructors[in.InstructorID] = in
	return nil
}

func (t *tables) DeleteInstructor(_ context.Context, id string) (bool, error) {
	_, ok := t.instructors[id]
	delete(t.instructors, id)
	return ok, nil
}

func (t *tables) GetPackage(_ context.Context, id string) (*studio.Package, error) {
	p, ok := t.packages[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t *tables) ListPackages(_ context.Context) ([]studio.Package, error) {
	out := make([]studio.Package, 0, len(t.packages))
	for _, p := range t.packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PackageID < out[j].PackageID })
	return out, nil
}

func (t *tables) SavePackage(_ context.Context, p studio.Package) error {
	t.packages[p.PackageID] = p
	return nil
}

func (t *tables) DeletePackage(_ context.Context, id string) (bool, error) {
	_, ok := t.packages[id]
	delete(t.packages, id)
	return ok, nil
}

func (t *tables) MaxCheckinID(_ context.Context) (studio.CheckinID, error) {
	var last studio.CheckinID
	for id := range t.attendance {
		if id > last {
			last = id
		}
	}
	return last, nil
}

func (t *tables) InsertAttendance(_ context.Context, a studio.Attendance) error {
	if _, exists := t.attendance[a.CheckinID]; exists {
		return studio.ErrDuplicateCheckinID
	}
	t.attendance[a.CheckinID] = a
	return nil
}

func (t *tables) GetAttendance(_ context.Context, id studio.CheckinID) (*studio.Attendance, error) {
	a, ok := t.attendance[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (t *tables) FindAttendance(_ context.Context, f studio.AttendanceFilter) ([]studio.Attendance, error) {
	out := make([]studio.Attendance, 0)
	for _, a := range t.attendance {
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return f.Less(out[i], out[j]) })
	return out, nil
}

func (t *tables) SetAttendanceStatus(_ context.Context, id studio.CheckinID, status studio.Status) (bool, error) {
	a, ok := t.attendance[id]
	if !ok {
		return false, nil
	}
	a.Status = status
	t.attendance[id] = a
	return true, nil
}

func (t *tables) DeleteAllAttendance(_ context.Context) error {
	t.attendance = make(map[studio.CheckinID]studio.Attendance)
	return nil
}

var (
	_ studio.TxStore = (*TxMemory)(nil)
	_ studio.Store   = (*tables)(nil)
)
