/*
catalog.go - Record maintenance for customers, classes, instructors, packages

These are thin wrappers over the stores. The only rules:
  - required fields per record type (validated with go-playground/validator)
  - a missing business key is assigned from the prefix sequence (Y001, ...)
  - adding a key that already exists is rejected
  - classes must name an existing instructor when created or re-assigned
  - updates are read-modify-write inside one transaction
*/
package studio

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Business key prefixes.
const (
	CustomerPrefix   = "Y"
	ClassPrefix      = "A"
	InstructorPrefix = "I"
	PackagePrefix    = "P"
)

var trailingDigits = regexp.MustCompile(`\d+$`)

// NextKey returns prefix + (highest trailing number among keys with that
// prefix + 1), zero-padded to three digits. An empty set yields prefix+"001".
func NextKey(prefix string, keys []string) string {
	highest := 0
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		digits := trailingDigits.FindString(k)
		if digits == "" {
			continue
		}
		if n, err := strconv.Atoi(digits); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, highest+1)
}

type customerInput struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required"`
	Phone     string `validate:"required"`
}

type classInput struct {
	ClassName    string `validate:"required"`
	InstructorID string `validate:"required"`
	ClassType    string `validate:"required"`
}

type instructorInput struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
}

type packageInput struct {
	PackageName string `validate:"required"`
	Price       string `validate:"required"`
}

func requireFields(v any) error {
	if err := validate.Struct(v); err != nil {
		return &ValidationError{Message: MsgMissingFields}
	}
	return nil
}

func duplicateKey(kind, key string) error {
	return fmt.Errorf("%s %s already exists: %w", kind, key, ErrDuplicateKey)
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (s *Service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	c, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, customerNotFound(id)
	}
	return c, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.store.ListCustomers(ctx)
}

func (s *Service) NextCustomerID(ctx context.Context) (string, error) {
	all, err := s.store.ListCustomers(ctx)
	if err != nil {
		return "", err
	}
	keys := make([]string, len(all))
	for i, c := range all {
		keys[i] = c.CustomerID
	}
	return NextKey(CustomerPrefix, keys), nil
}

// AddCustomer creates a customer, assigning the next key when none is given.
func (s *Service) AddCustomer(ctx context.Context, c Customer) (*Customer, error) {
	if err := requireFields(customerInput{c.FirstName, c.LastName, c.Email, c.Phone}); err != nil {
		return nil, err
	}
	if c.ClassBalance < 0 {
		return nil, &ValidationError{Message: "Class balance cannot be negative", Field: "classBalance"}
	}

	err := s.store.WithTx(ctx, func(tx Store) error {
		if c.CustomerID == "" {
			all, err := tx.ListCustomers(ctx)
			if err != nil {
				return err
			}
			keys := make([]string, len(all))
			for i, existing := range all {
				keys[i] = existing.CustomerID
			}
			c.CustomerID = NextKey(CustomerPrefix, keys)
		} else if existing, err := tx.GetCustomer(ctx, c.CustomerID); err != nil {
			return err
		} else if existing != nil {
			return duplicateKey("customer", c.CustomerID)
		}
		return tx.SaveCustomer(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("customer_id", c.CustomerID).Info("customer added")
	return &c, nil
}

// UpdateCustomer applies mutate to the stored customer and saves it.
// The business key cannot change.
func (s *Service) UpdateCustomer(ctx context.Context, id string, mutate func(*Customer)) (*Customer, error) {
	var updated Customer
	err := s.store.WithTx(ctx, func(tx Store) error {
		c, err := tx.GetCustomer(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return customerNotFound(id)
		}
		mutate(c)
		c.CustomerID = id
		if c.ClassBalance < 0 {
			return &ValidationError{Message: "Class balance cannot be negative", Field: "classBalance"}
		}
		updated = *c
		return tx.SaveCustomer(ctx, *c)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetClassBalance overwrites a customer's balance (administrative top-up).
func (s *Service) SetClassBalance(ctx context.Context, id string, balance int) (*Customer, error) {
	if id == "" {
		return nil, missingFields("customerId")
	}
	if balance < 0 {
		return nil, &ValidationError{Message: "Class balance cannot be negative", Field: "newBalance"}
	}
	c, err := s.UpdateCustomer(ctx, id, func(c *Customer) { c.ClassBalance = balance })
	if err != nil {
		return nil, err
	}
	s.log.WithField("customer_id", id).WithField("class_balance", balance).Info("class balance set")
	return c, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	ok, err := s.store.DeleteCustomer(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return customerNotFound(id)
	}
	return nil
}

// =============================================================================
// INSTRUCTORS
// =============================================================================

func (s *Service) GetInstructor(ctx context.Context, id string) (*Instructor, error) {
	in, err := s.store.GetInstructor(ctx, id)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, instructorNotFound(id)
	}
	return in, nil
}

func (s *Service) ListInstructors(ctx context.Context) ([]Instructor, error) {
	return s.store.ListInstructors(ctx)
}

func (s *Service) NextInstructorID(ctx context.Context) (string, error) {
	all, err := s.store.ListInstructors(ctx)
	if err != nil {
		return "", err
	}
	keys := make([]string, len(all))
	for i, in := range all {
		keys[i] = in.InstructorID
	}
	return NextKey(InstructorPrefix, keys), nil
}

func (s *Service) AddInstructor(ctx context.Context, in Instructor) (*Instructor, error) {
	if err := requireFields(instructorInput{in.FirstName, in.LastName}); err != nil {
		return nil, err
	}
	err := s.store.WithTx(ctx, func(tx Store) error {
		if in.InstructorID == "" {
			all, err := tx.ListInstructors(ctx)
			if err != nil {
				return err
			}
			keys := make([]string, len(all))
			for i, existing := range all {
				keys[i] = existing.InstructorID
			}
			in.InstructorID = NextKey(InstructorPrefix, keys)
		} else if existing, err := tx.GetInstructor(ctx, in.InstructorID); err != nil {
			return err
		} else if existing != nil {
			return duplicateKey("instructor", in.InstructorID)
		}
		return tx.SaveInstructor(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *Service) UpdateInstructor(ctx context.Context, id string, mutate func(*Instructor)) (*Instructor, error) {
	var updated Instructor
	err := s.store.WithTx(ctx, func(tx Store) error {
		in, err := tx.GetInstructor(ctx, id)
		if err != nil {
			return err
		}
		if in == nil {
			return instructorNotFound(id)
		}
		mutate(in)
		in.InstructorID = id
		updated = *in
		return tx.SaveInstructor(ctx, *in)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) DeleteInstructor(ctx context.Context, id string) error {
	ok, err := s.store.DeleteInstructor(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return instructorNotFound(id)
	}
	return nil
}

// =============================================================================
// PACKAGES
// =============================================================================

func (s *Service) GetPackage(ctx context.Context, id string) (*Package, error) {
	p, err := s.store.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &NotFoundError{Kind: "package", Key: id, Message: MsgPackageNotFound}
	}
	return p, nil
}

func (s *Service) ListPackages(ctx context.Context) ([]Package, error) {
	return s.store.ListPackages(ctx)
}

func (s *Service) NextPackageID(ctx context.Context) (string, error) {
	all, err := s.store.ListPackages(ctx)
	if err != nil {
		return "", err
	}
	keys := make([]string, len(all))
	for i, p := range all {
		keys[i] = p.PackageID
	}
	return NextKey(PackagePrefix, keys), nil
}

func (s *Service) AddPackage(ctx context.Context, p Package) (*Package, error) {
	price := ""
	if !p.Price.IsZero() {
		price = p.Price.String()
	}
	if err := requireFields(packageInput{p.PackageName, price}); err != nil {
		return nil, err
	}
	if p.Price.IsNegative() {
		return nil, &ValidationError{Message: "Price cannot be negative", Field: "price"}
	}
	err := s.store.WithTx(ctx, func(tx Store) error {
		if p.PackageID == "" {
			all, err := tx.ListPackages(ctx)
			if err != nil {
				return err
			}
			keys := make([]string, len(all))
			for i, existing := range all {
				keys[i] = existing.PackageID
			}
			p.PackageID = NextKey(PackagePrefix, keys)
		} else if existing, err := tx.GetPackage(ctx, p.PackageID); err != nil {
			return err
		} else if existing != nil {
			return duplicateKey("package", p.PackageID)
		}
		return tx.SavePackage(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) UpdatePackage(ctx context.Context, id string, mutate func(*Package)) (*Package, error) {
	var updated Package
	err := s.store.WithTx(ctx, func(tx Store) error {
		p, err := tx.GetPackage(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return &NotFoundError{Kind: "package", Key: id, Message: MsgPackageNotFound}
		}
		mutate(p)
		p.PackageID = id
		if p.Price.IsNegative() {
			return &ValidationError{Message: "Price cannot be negative", Field: "price"}
		}
		updated = *p
		return tx.SavePackage(ctx, *p)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) DeletePackage(ctx context.Context, id string) error {
	ok, err := s.store.DeletePackage(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Kind: "package", Key: id, Message: MsgPackageNotFound}
	}
	return nil
}

// =============================================================================
// CLASSES
// =============================================================================

func (s *Service) GetClass(ctx context.Context, id string) (*Class, error) {
	c, err := s.store.GetClass(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, classNotFound(id)
	}
	return c, nil
}

func (s *Service) ListClasses(ctx context.Context) ([]Class, error) {
	return s.store.ListClasses(ctx)
}

func (s *Service) ListClassesByInstructor(ctx context.Context, instructorID string) ([]Class, error) {
	return s.store.ListClassesByInstructor(ctx, instructorID)
}

func (s *Service) NextClassID(ctx context.Context) (string, error) {
	all, err := s.store.ListClasses(ctx)
	if err != nil {
		return "", err
	}
	keys := make([]string, len(all))
	for i, c := range all {
		keys[i] = c.ClassID
	}
	return NextKey(ClassPrefix, keys), nil
}

// AddClass creates a class taught by an existing instructor.
func (s *Service) AddClass(ctx context.Context, c Class) (*Class, error) {
	if err := requireFields(classInput{c.ClassName, c.InstructorID, c.ClassType}); err != nil {
		return nil, err
	}
	if c.Daytime == nil {
		c.Daytime = []ScheduleEntry{}
	}
	err := s.store.WithTx(ctx, func(tx Store) error {
		in, err := tx.GetInstructor(ctx, c.InstructorID)
		if err != nil {
			return err
		}
		if in == nil {
			return &ValidationError{Message: MsgInstructorNotFound, Field: "instructorId"}
		}
		if c.ClassID == "" {
			all, err := tx.ListClasses(ctx)
			if err != nil {
				return err
			}
			keys := make([]string, len(all))
			for i, existing := range all {
				keys[i] = existing.ClassID
			}
			c.ClassID = NextKey(ClassPrefix, keys)
		} else if existing, err := tx.GetClass(ctx, c.ClassID); err != nil {
			return err
		} else if existing != nil {
			return duplicateKey("class", c.ClassID)
		}
		return tx.SaveClass(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateClass applies mutate and re-checks the instructor reference when it
// changed.
func (s *Service) UpdateClass(ctx context.Context, id string, mutate func(*Class)) (*Class, error) {
	var updated Class
	err := s.store.WithTx(ctx, func(tx Store) error {
		c, err := tx.GetClass(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return classNotFound(id)
		}
		before := c.InstructorID
		mutate(c)
		c.ClassID = id
		if c.InstructorID != before {
			in, err := tx.GetInstructor(ctx, c.InstructorID)
			if err != nil {
				return err
			}
			if in == nil {
				return &ValidationError{Message: MsgInstructorNotFound, Field: "instructorId"}
			}
		}
		updated = *c
		return tx.SaveClass(ctx, *c)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) DeleteClass(ctx context.Context, id string) error {
	ok, err := s.store.DeleteClass(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return classNotFound(id)
	}
	return nil
}
