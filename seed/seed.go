/*
Package seed loads demo studio data.

HOW SEEDING WORKS:
 1. Parse the embedded demo.yaml
 2. Inside one store transaction, clear the requested collection(s)
 3. Insert the demo records for those collection(s)

Module "all" replaces every collection. A single module replaces only its
own collection and leaves references from other collections as they are.

NOTE:

	Seeding deletes data. The HTTP route guards it with a token in
	production (see api/admin.go).
*/
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/yogitrack/studio/studio"
)

//go:embed demo.yaml
var demoYAML []byte

// Module selects which collection to reseed.
type Module string

const (
	ModuleAll        Module = "all"
	ModuleInstructor Module = "instructor"
	ModulePackage    Module = "package"
	ModuleCustomer   Module = "customer"
	ModuleClass      Module = "class"
	ModuleAttendance Module = "attendance"
)

// Modules lists the accepted module names.
var Modules = []Module{ModuleAll, ModuleInstructor, ModulePackage, ModuleCustomer, ModuleClass, ModuleAttendance}

// ParseModule accepts "" as "all".
func ParseModule(s string) (Module, error) {
	if s == "" {
		return ModuleAll, nil
	}
	for _, m := range Modules {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid module %q: use one of all, instructor, package, customer, class, attendance", s)
}

// Data is the demo data set.
type Data struct {
	Instructors []studio.Instructor
	Packages    []studio.Package
	Customers   []studio.Customer
	Classes     []studio.Class
	Attendance  []studio.Attendance
}

// Summary counts the records inserted per collection.
type Summary struct {
	Module      Module `json:"module"`
	Instructors int    `json:"instructors"`
	Packages    int    `json:"packages"`
	Customers   int    `json:"customers"`
	Classes     int    `json:"classes"`
	Attendance  int    `json:"attendance"`
}

// =============================================================================
// YAML SHAPES
// =============================================================================

type document struct {
	Instructors []instructorDoc `yaml:"instructors"`
	Packages    []packageDoc    `yaml:"packages"`
	Customers   []customerDoc   `yaml:"customers"`
	Classes     []classDoc      `yaml:"classes"`
	Attendance  []attendanceDoc `yaml:"attendance"`
}

type instructorDoc struct {
	InstructorID     string `yaml:"instructorId"`
	FirstName        string `yaml:"firstName"`
	LastName         string `yaml:"lastName"`
	Email            string `yaml:"email"`
	Phone            string `yaml:"phone"`
	Address          string `yaml:"address"`
	PreferredContact string `yaml:"preferredContact"`
}

type packageDoc struct {
	PackageID   string `yaml:"packageId"`
	PackageName string `yaml:"packageName"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
}

type customerDoc struct {
	CustomerID       string `yaml:"customerId"`
	FirstName        string `yaml:"firstName"`
	LastName         string `yaml:"lastName"`
	Email            string `yaml:"email"`
	Phone            string `yaml:"phone"`
	Senior           bool   `yaml:"senior"`
	Address          string `yaml:"address"`
	PreferredContact string `yaml:"preferredContact"`
	ClassBalance     int    `yaml:"classBalance"`
}

type slotDoc struct {
	Day      string `yaml:"day"`
	Time     string `yaml:"time"`
	Duration int    `yaml:"duration"`
}

type classDoc struct {
	ClassID      string    `yaml:"classId"`
	ClassName    string    `yaml:"className"`
	InstructorID string    `yaml:"instructorId"`
	ClassType    string    `yaml:"classType"`
	Description  string    `yaml:"description"`
	Daytime      []slotDoc `yaml:"daytime"`
}

type attendanceDoc struct {
	CheckinID  int64  `yaml:"checkinId"`
	CustomerID string `yaml:"customerId"`
	ClassID    string `yaml:"classId"`
	Datetime   string `yaml:"datetime"`
	Status     string `yaml:"status"`
}

// Demo returns the embedded demo data.
func Demo() (*Data, error) {
	return Parse(demoYAML)
}

// Parse decodes a seed document and validates every attendance record.
func Parse(raw []byte) (*Data, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}

	d := &Data{}
	for _, in := range doc.Instructors {
		d.Instructors = append(d.Instructors, studio.Instructor(in))
	}
	for _, p := range doc.Packages {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("package %s: invalid price %q: %w", p.PackageID, p.Price, err)
		}
		d.Packages = append(d.Packages, studio.Package{
			PackageID: p.PackageID, PackageName: p.PackageName, Description: p.Description, Price: price,
		})
	}
	for _, c := range doc.Customers {
		d.Customers = append(d.Customers, studio.Customer(c))
	}
	for _, c := range doc.Classes {
		slots := make([]studio.ScheduleEntry, 0, len(c.Daytime))
		for _, s := range c.Daytime {
			slots = append(slots, studio.ScheduleEntry(s))
		}
		d.Classes = append(d.Classes, studio.Class{
			ClassID: c.ClassID, ClassName: c.ClassName, InstructorID: c.InstructorID,
			ClassType: c.ClassType, Description: c.Description, Daytime: slots,
		})
	}
	for _, a := range doc.Attendance {
		rec := studio.Attendance{
			CheckinID:  studio.CheckinID(a.CheckinID),
			CustomerID: a.CustomerID,
			ClassID:    a.ClassID,
			Datetime:   a.Datetime,
			Status:     studio.Status(a.Status),
		}
		if err := studio.ValidateAttendance(rec); err != nil {
			return nil, fmt.Errorf("attendance %d: %w", a.CheckinID, err)
		}
		d.Attendance = append(d.Attendance, rec)
	}
	return d, nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load replaces the collection(s) named by module with data.
func Load(ctx context.Context, store studio.TxStore, data *Data, module Module, log logrus.FieldLogger) (*Summary, error) {
	sum := &Summary{Module: module}
	has := func(m Module) bool { return module == ModuleAll || module == m }

	err := store.WithTx(ctx, func(tx studio.Store) error {
		if has(ModuleInstructor) {
			if err := clearInstructors(ctx, tx); err != nil {
				return err
			}
			for _, in := range data.Instructors {
				if err := tx.SaveInstructor(ctx, in); err != nil {
					return err
				}
			}
			sum.Instructors = len(data.Instructors)
		}
		if has(ModulePackage) {
			if err := clearPackages(ctx, tx); err != nil {
				return err
			}
			for _, p := range data.Packages {
				if err := tx.SavePackage(ctx, p); err != nil {
					return err
				}
			}
			sum.Packages = len(data.Packages)
		}
		if has(ModuleCustomer) {
			if err := clearCustomers(ctx, tx); err != nil {
				return err
			}
			for _, c := range data.Customers {
				if err := tx.SaveCustomer(ctx, c); err != nil {
					return err
				}
			}
			sum.Customers = len(data.Customers)
		}
		if has(ModuleClass) {
			if err := clearClasses(ctx, tx); err != nil {
				return err
			}
			for _, c := range data.Classes {
				if err := tx.SaveClass(ctx, c); err != nil {
					return err
				}
			}
			sum.Classes = len(data.Classes)
		}
		if has(ModuleAttendance) {
			if err := tx.DeleteAllAttendance(ctx); err != nil {
				return err
			}
			for _, a := range data.Attendance {
				if err := tx.InsertAttendance(ctx, a); err != nil {
					return err
				}
			}
			sum.Attendance = len(data.Attendance)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", module, err)
	}

	if log != nil {
		log.WithFields(logrus.Fields{
			"module":      module,
			"instructors": sum.Instructors,
			"packages":    sum.Packages,
			"customers":   sum.Customers,
			"classes":     sum.Classes,
			"attendance":  sum.Attendance,
		}).Info("demo data seeded")
	}
	return sum, nil
}

func clearInstructors(ctx context.Context, tx studio.Store) error {
	all, err := tx.ListInstructors(ctx)
	if err != nil {
		return err
	}
	for _, in := range all {
		if _, err := tx.DeleteInstructor(ctx, in.InstructorID); err != nil {
			return err
		}
	}
	return nil
}

func clearPackages(ctx context.Context, tx studio.Store) error {
	all, err := tx.ListPackages(ctx)
	if err != nil {
		return err
	}
	for _, p := range all {
		if _, err := tx.DeletePackage(ctx, p.PackageID); err != nil {
			return err
		}
	}
	return nil
}

func clearCustomers(ctx context.Context, tx studio.Store) error {
	all, err := tx.ListCustomers(ctx)
	if err != nil {
		return err
	}
	for _, c := range all {
		if _, err := tx.DeleteCustomer(ctx, c.CustomerID); err != nil {
			return err
		}
	}
	return nil
}

func clearClasses(ctx context.Context, tx studio.Store) error {
	all, err := tx.ListClasses(ctx)
	if err != nil {
		return err
	}
	for _, c := range all {
		if _, err := tx.DeleteClass(ctx, c.ClassID); err != nil {
			return err
		}
	}
	return nil
}
