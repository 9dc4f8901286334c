package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yogitrack/studio/studio"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// records implements studio.Store on a queryer. It does no locking.
type records struct {
	q queryer
}

// =============================================================================
// CUSTOMERS
// =============================================================================

const customerColumns = `customer_id, first_name, last_name, email, phone, senior, address, preferred_contact, class_balance`

func (r records) GetCustomer(ctx context.Context, customerID string) (*studio.Customer, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE customer_id = ?`, customerID)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (r records) ListCustomers(ctx context.Context) ([]studio.Customer, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := []studio.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r records) SaveCustomer(ctx context.Context, c studio.Customer) error {
	query := `
		INSERT INTO customers (id, ` + customerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(customer_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			phone = excluded.phone,
			senior = excluded.senior,
			address = excluded.address,
			preferred_contact = excluded.preferred_contact,
			class_balance = excluded.class_balance
	`
	_, err := r.q.ExecContext(ctx, query,
		uuid.NewString(), c.CustomerID, c.FirstName, c.LastName,
		nullString(c.Email), nullString(c.Phone), c.Senior,
		nullString(c.Address), nullString(c.PreferredContact), c.ClassBalance,
	)
	if err != nil {
		return mapError(fmt.Errorf("failed to save customer: %w", err))
	}
	return nil
}

func (r records) DeleteCustomer(ctx context.Context, customerID string) (bool, error) {
	return r.deleteByKey(ctx, "customers", "customer_id", customerID)
}

func (r records) AdjustClassBalance(ctx context.Context, customerID string, delta int) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE customers SET class_balance = class_balance + ? WHERE customer_id = ?`,
		delta, customerID,
	)
	if err != nil {
		return false, mapError(fmt.Errorf("failed to adjust class balance: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanCustomer(row interface{ Scan(...any) error }) (studio.Customer, error) {
	var (
		c                                       studio.Customer
		email, phone, address, preferredContact sql.NullString
	)
	err := row.Scan(&c.CustomerID, &c.FirstName, &c.LastName, &email, &phone,
		&c.Senior, &address, &preferredContact, &c.ClassBalance)
	c.Email = email.String
	c.Phone = phone.String
	c.Address = address.String
	c.PreferredContact = preferredContact.String
	return c, err
}

// =============================================================================
// INSTRUCTORS
// =============================================================================

const instructorColumns = `instructor_id, first_name, last_name, email, phone, address, preferred_contact`

func (r records) GetInstructor(ctx context.Context, instructorID string) (*studio.Instructor, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+instructorColumns+` FROM instructors WHERE instructor_id = ?`, instructorID)
	in, err := scanInstructor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instructor: %w", err)
	}
	return &in, nil
}

func (r records) ListInstructors(ctx context.Context) ([]studio.Instructor, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+instructorColumns+` FROM instructors ORDER BY instructor_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query instructors: %w", err)
	}
	defer rows.Close()

	instructors := []studio.Instructor{}
	for rows.Next() {
		in, err := scanInstructor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instructor: %w", err)
		}
		instructors = append(instructors, in)
	}
	return instructors, rows.Err()
}

func (r records) SaveInstructor(ctx context.Context, in studio.Instructor) error {
	query := `
		INSERT INTO instructors (id, ` + instructorColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(instructor_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			phone = excluded.phone,
			address = excluded.address,
			preferred_contact = excluded.preferred_contact
	`
	_, err := r.q.ExecContext(ctx, query,
		uuid.NewString(), in.InstructorID, in.FirstName, in.LastName,
		nullString(in.Email), nullString(in.Phone), nullString(in.Address), nullString(in.PreferredContact),
	)
	if err != nil {
		return mapError(fmt.Errorf("failed to save instructor: %w", err))
	}
	return nil
}

func (r records) DeleteInstructor(ctx context.Context, instructorID string) (bool, error) {
	return r.deleteByKey(ctx, "instructors", "instructor_id", instructorID)
}

func scanInstructor(row interface{ Scan(...any) error }) (studio.Instructor, error) {
	var (
		in                                      studio.Instructor
		email, phone, address, preferredContact sql.NullString
	)
	err := row.Scan(&in.InstructorID, &in.FirstName, &in.LastName, &email, &phone, &address, &preferredContact)
	in.Email = email.String
	in.Phone = phone.String
	in.Address = address.String
	in.PreferredContact = preferredContact.String
	return in, err
}

// =============================================================================
// PACKAGES
// =============================================================================

const packageColumns = `package_id, package_name, description, price`

func (r records) GetPackage(ctx context.Context, packageID string) (*studio.Package, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE package_id = ?`, packageID)
	p, err := scanPackage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return &p, nil
}

func (r records) ListPackages(ctx context.Context) ([]studio.Package, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+packageColumns+` FROM packages ORDER BY package_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	defer rows.Close()

	packages := []studio.Package{}
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

func (r records) SavePackage(ctx context.Context, p studio.Package) error {
	query := `
		INSERT INTO packages (id, ` + packageColumns + `)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(package_id) DO UPDATE SET
			package_name = excluded.package_name,
			description = excluded.description,
			price = excluded.price
	`
	_, err := r.q.ExecContext(ctx, query,
		uuid.NewString(), p.PackageID, p.PackageName, nullString(p.Description), p.Price.String(),
	)
	if err != nil {
		return mapError(fmt.Errorf("failed to save package: %w", err))
	}
	return nil
}

func (r records) DeletePackage(ctx context.Context, packageID string) (bool, error) {
	return r.deleteByKey(ctx, "packages", "package_id", packageID)
}

func scanPackage(row interface{ Scan(...any) error }) (studio.Package, error) {
	var (
		p           studio.Package
		description sql.NullString
		price       string
	)
	if err := row.Scan(&p.PackageID, &p.PackageName, &description, &price); err != nil {
		return p, err
	}
	p.Description = description.String
	d, err := decimal.NewFromString(price)
	if err != nil {
		return p, fmt.Errorf("invalid price %q: %w", price, err)
	}
	p.Price = d
	return p, nil
}

// =============================================================================
// CLASSES
// =============================================================================

const classColumns = `class_id, class_name, instructor_id, class_type, description, daytime_json`

func (r records) GetClass(ctx context.Context, classID string) (*studio.Class, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+classColumns+` FROM classes WHERE class_id = ?`, classID)
	c, err := scanClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return &c, nil
}

func (r records) ListClasses(ctx context.Context) ([]studio.Class, error) {
	return r.queryClasses(ctx, `SELECT `+classColumns+` FROM classes ORDER BY class_id`)
}

func (r records) ListClassesByInstructor(ctx context.Context, instructorID string) ([]studio.Class, error) {
	return r.queryClasses(ctx, `SELECT `+classColumns+` FROM classes WHERE instructor_id = ? ORDER BY class_id`, instructorID)
}

func (r records) queryClasses(ctx context.Context, query string, args ...any) ([]studio.Class, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	classes := []studio.Class{}
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r records) SaveClass(ctx context.Context, c studio.Class) error {
	daytime := c.Daytime
	if daytime == nil {
		daytime = []studio.ScheduleEntry{}
	}
	daytimeJSON, err := json.Marshal(daytime)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}

	query := `
		INSERT INTO classes (id, ` + classColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(class_id) DO UPDATE SET
			class_name = excluded.class_name,
			instructor_id = excluded.instructor_id,
			class_type = excluded.class_type,
			description = excluded.description,
			daytime_json = excluded.daytime_json
	`
	_, err = r.q.ExecContext(ctx, query,
		uuid.NewString(), c.ClassID, c.ClassName, c.InstructorID,
		nullString(c.ClassType), nullString(c.Description), string(daytimeJSON),
	)
	if err != nil {
		return mapError(fmt.Errorf("failed to save class: %w", err))
	}
	return nil
}

func (r records) DeleteClass(ctx context.Context, classID string) (bool, error) {
	return r.deleteByKey(ctx, "classes", "class_id", classID)
}

func scanClass(row interface{ Scan(...any) error }) (studio.Class, error) {
	var (
		c                      studio.Class
		classType, description sql.NullString
		daytimeJSON            string
	)
	if err := row.Scan(&c.ClassID, &c.ClassName, &c.InstructorID, &classType, &description, &daytimeJSON); err != nil {
		return c, err
	}
	c.ClassType = classType.String
	c.Description = description.String
	c.Daytime = []studio.ScheduleEntry{}
	if daytimeJSON != "" {
		if err := json.Unmarshal([]byte(daytimeJSON), &c.Daytime); err != nil {
			return c, fmt.Errorf("invalid schedule for class %s: %w", c.ClassID, err)
		}
	}
	return c, nil
}

// =============================================================================
// ATTENDANCE (studio.AttendanceStore interface)
// =============================================================================

const attendanceColumns = `checkin_id, customer_id, class_id, datetime, status`

func (r records) MaxCheckinID(ctx context.Context) (studio.CheckinID, error) {
	var last sql.NullInt64
	if err := r.q.QueryRowContext(ctx, `SELECT MAX(checkin_id) FROM attendance`).Scan(&last); err != nil {
		return 0, mapError(fmt.Errorf("failed to read max checkin id: %w", err))
	}
	return studio.CheckinID(last.Int64), nil
}

func (r records) InsertAttendance(ctx context.Context, a studio.Attendance) error {
	query := `INSERT INTO attendance (id, ` + attendanceColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		uuid.NewString(), int64(a.CheckinID), a.CustomerID, a.ClassID, a.Datetime, string(a.Status),
	)
	if err != nil {
		return mapError(fmt.Errorf("failed to insert attendance: %w", err))
	}
	return nil
}

func (r records) GetAttendance(ctx context.Context, id studio.CheckinID) (*studio.Attendance, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE checkin_id = ?`, int64(id))
	a, err := scanAttendance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return &a, nil
}

func (r records) FindAttendance(ctx context.Context, f studio.AttendanceFilter) ([]studio.Attendance, error) {
	query, args := buildAttendanceQuery(f)
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	out := []studio.Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// buildAttendanceQuery pushes every non-zero filter field into the WHERE
// clause and maps the ordering to ORDER BY.
func buildAttendanceQuery(f studio.AttendanceFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		where = append(where, cond)
		args = append(args, v)
	}
	if f.CustomerID != "" {
		add("customer_id = ?", f.CustomerID)
	}
	if f.ClassID != "" {
		add("class_id = ?", f.ClassID)
	}
	if f.Date != "" {
		add("datetime = ?", f.Date)
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.From != "" {
		add("datetime >= ?", f.From)
	}
	if f.To != "" {
		add("datetime <= ?", f.To)
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	switch f.OrderBy {
	case studio.OrderByDateDesc:
		query += ` ORDER BY datetime DESC, checkin_id DESC`
	default:
		query += ` ORDER BY checkin_id DESC`
	}
	return query, args
}

func (r records) SetAttendanceStatus(ctx context.Context, id studio.CheckinID, status studio.Status) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE attendance SET status = ? WHERE checkin_id = ?`, string(status), int64(id))
	if err != nil {
		return false, mapError(fmt.Errorf("failed to update attendance status: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r records) DeleteAllAttendance(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM attendance`)
	return mapError(err)
}

func scanAttendance(row interface{ Scan(...any) error }) (studio.Attendance, error) {
	var (
		a      studio.Attendance
		id     int64
		status string
	)
	err := row.Scan(&id, &a.CustomerID, &a.ClassID, &a.Datetime, &status)
	a.CheckinID = studio.CheckinID(id)
	a.Status = studio.Status(status)
	return a, err
}

func (r records) deleteByKey(ctx context.Context, table, column, key string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+column+` = ?`, key)
	if err != nil {
		return false, mapError(fmt.Errorf("failed to delete from %s: %w", table, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// =============================================================================
// LOCKED ACCESS (studio.Store on *Store)
// =============================================================================

func (s *Store) rec() records { return records{q: s.db} }

func (s *Store) GetCustomer(ctx context.Context, id string) (*studio.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().GetCustomer(ctx, id)
}

func (s *Store) ListCustomers(ctx context.Context) ([]studio.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().ListCustomers(ctx)
}

func (s *Store) SaveCustomer(ctx context.Context, c studio.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().SaveCustomer(ctx, c)
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().DeleteCustomer(ctx, id)
}

func (s *Store) AdjustClassBalance(ctx context.Context, id string, delta int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().AdjustClassBalance(ctx, id, delta)
}

func (s *Store) GetInstructor(ctx context.Context, id string) (*studio.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().GetInstructor(ctx, id)
}

func (s *Store) ListInstructors(ctx context.Context) ([]studio.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().ListInstructors(ctx)
}

func (s *Store) SaveInstructor(ctx context.Context, in studio.Instructor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().SaveInstructor(ctx, in)
}

func (s *Store) DeleteInstructor(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().DeleteInstructor(ctx, id)
}

func (s *Store) GetPackage(ctx context.Context, id string) (*studio.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().GetPackage(ctx, id)
}

func (s *Store) ListPackages(ctx context.Context) ([]studio.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().ListPackages(ctx)
}

func (s *Store) SavePackage(ctx context.Context, p studio.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().SavePackage(ctx, p)
}

func (s *Store) DeletePackage(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().DeletePackage(ctx, id)
}

func (s *Store) GetClass(ctx context.Context, id string) (*studio.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().GetClass(ctx, id)
}

func (s *Store) ListClasses(ctx context.Context) ([]studio.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().ListClasses(ctx)
}

func (s *Store) ListClassesByInstructor(ctx context.Context, instructorID string) ([]studio.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().ListClassesByInstructor(ctx, instructorID)
}

func (s *Store) SaveClass(ctx context.Context, c studio.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().SaveClass(ctx, c)
}

func (s *Store) DeleteClass(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().DeleteClass(ctx, id)
}

func (s *Store) MaxCheckinID(ctx context.Context) (studio.CheckinID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().MaxCheckinID(ctx)
}

func (s *Store) InsertAttendance(ctx context.Context, a studio.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().InsertAttendance(ctx, a)
}

func (s *Store) GetAttendance(ctx context.Context, id studio.CheckinID) (*studio.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().GetAttendance(ctx, id)
}

func (s *Store) FindAttendance(ctx context.Context, f studio.AttendanceFilter) ([]studio.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec().FindAttendance(ctx, f)
}

func (s *Store) SetAttendanceStatus(ctx context.Context, id studio.CheckinID, status studio.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().SetAttendanceStatus(ctx, id, status)
}

func (s *Store) DeleteAllAttendance(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec().DeleteAllAttendance(ctx)
}
