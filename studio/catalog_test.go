package studio_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogitrack/studio/studio"
)

func TestNextKey(t *testing.T) {
	tests := []struct {
		prefix string
		keys   []string
		want   string
	}{
		{"Y", nil, "Y001"},
		{"Y", []string{"Y001", "Y002"}, "Y003"},
		{"Y", []string{"Y100", "Y005", "Y099"}, "Y101"},
		{"P", []string{"P001", "S003", "T001", "P002"}, "P003"},
		{"A", []string{"Abc"}, "A001"},
		{"I", []string{"I999"}, "I1000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, studio.NextKey(tt.prefix, tt.keys), "%s %v", tt.prefix, tt.keys)
	}
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "Monday", studio.WeekdayName("Mon"))
	assert.Equal(t, "Thursday", studio.WeekdayName("thursday"))
	assert.Equal(t, "Sunday", studio.WeekdayName(" SUN "))
	assert.Equal(t, "", studio.WeekdayName("Mo"))
	assert.Equal(t, "", studio.WeekdayName("Funday"))
}

func TestWeeklySchedule(t *testing.T) {
	svc, _ := newSeededService(t)

	week, err := svc.WeeklySchedule(context.Background())

	require.NoError(t, err)
	assert.Len(t, week, 7)
	require.Len(t, week["Monday"], 2)
	assert.Equal(t, "A002", week["Monday"][0].ClassID, "07:00 before 09:00")
	assert.Equal(t, "Brian Lee", week["Monday"][0].InstructorName)
	assert.Equal(t, "A001", week["Monday"][1].ClassID)
	assert.Len(t, week["Wednesday"], 1)
	assert.Empty(t, week["Sunday"])
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func TestAddCustomer_AssignsNextKey(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	c, err := svc.AddCustomer(ctx, studio.Customer{FirstName: "Ava", LastName: "Wong", Email: "ava@example.com", Phone: "555-0199", ClassBalance: 5})

	require.NoError(t, err)
	assert.Equal(t, "Y004", c.CustomerID)

	next, err := svc.NextCustomerID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Y005", next)
}

func TestAddCustomer_Rejects(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, studio.Customer{FirstName: "Ava"})
	assert.ErrorIs(t, err, studio.ErrValidation)

	_, err = svc.AddCustomer(ctx, studio.Customer{CustomerID: "Y001", FirstName: "Ava", LastName: "Wong", Email: "a@b.c", Phone: "1"})
	assert.ErrorIs(t, err, studio.ErrDuplicateKey)

	_, err = svc.AddCustomer(ctx, studio.Customer{FirstName: "Ava", LastName: "Wong", Email: "a@b.c", Phone: "1", ClassBalance: -1})
	assert.ErrorIs(t, err, studio.ErrValidation)
}

func TestUpdateCustomer_KeepsKey(t *testing.T) {
	svc, mem := newSeededService(t)
	ctx := context.Background()

	c, err := svc.UpdateCustomer(ctx, "Y001", func(c *studio.Customer) {
		c.CustomerID = "Y777"
		c.Phone = "555-9999"
	})

	require.NoError(t, err)
	assert.Equal(t, "Y001", c.CustomerID)
	stored, err := mem.GetCustomer(ctx, "Y001")
	require.NoError(t, err)
	assert.Equal(t, "555-9999", stored.Phone)

	_, err = svc.UpdateCustomer(ctx, "Y999", func(*studio.Customer) {})
	assert.True(t, studio.IsNotFound(err))
}

func TestSetClassBalance(t *testing.T) {
	svc, mem := newSeededService(t)
	ctx := context.Background()

	_, err := svc.SetClassBalance(ctx, "Y003", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, balanceOf(t, mem, "Y003"))

	_, err = svc.SetClassBalance(ctx, "Y003", -2)
	assert.ErrorIs(t, err, studio.ErrValidation)
	assert.Equal(t, 10, balanceOf(t, mem, "Y003"))
}

func TestDeleteCustomer(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	require.NoError(t, svc.DeleteCustomer(ctx, "Y002"))
	_, err := svc.GetCustomer(ctx, "Y002")
	assert.True(t, studio.IsNotFound(err))
	assert.True(t, studio.IsNotFound(svc.DeleteCustomer(ctx, "Y002")))
}

// =============================================================================
// CLASSES, INSTRUCTORS, PACKAGES
// =============================================================================

func TestAddClass_RequiresInstructor(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	_, err := svc.AddClass(ctx, studio.Class{ClassName: "Yin", InstructorID: "I404", ClassType: "General"})
	assert.ErrorIs(t, err, studio.ErrValidation)

	c, err := svc.AddClass(ctx, studio.Class{ClassName: "Yin", InstructorID: "I002", ClassType: "General"})
	require.NoError(t, err)
	assert.Equal(t, "A003", c.ClassID)
	assert.NotNil(t, c.Daytime)

	byInstructor, err := svc.ListClassesByInstructor(ctx, "I002")
	require.NoError(t, err)
	assert.Len(t, byInstructor, 2)
}

func TestUpdateClass_ChecksNewInstructor(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	_, err := svc.UpdateClass(ctx, "A001", func(c *studio.Class) { c.InstructorID = "I404" })
	assert.ErrorIs(t, err, studio.ErrValidation)

	c, err := svc.UpdateClass(ctx, "A001", func(c *studio.Class) {
		c.InstructorID = "I002"
		c.Daytime = append(c.Daytime, studio.ScheduleEntry{Day: "Fri", Time: "18:00:00", Duration: 60})
	})
	require.NoError(t, err)
	assert.Equal(t, "I002", c.InstructorID)
	assert.Len(t, c.Daytime, 3)
}

func TestInstructorLifecycle(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	in, err := svc.AddInstructor(ctx, studio.Instructor{FirstName: "Chloe", LastName: "Kim"})
	require.NoError(t, err)
	assert.Equal(t, "I003", in.InstructorID)

	in, err = svc.UpdateInstructor(ctx, "I003", func(i *studio.Instructor) { i.Email = "chloe@example.com" })
	require.NoError(t, err)
	assert.Equal(t, "chloe@example.com", in.Email)

	require.NoError(t, svc.DeleteInstructor(ctx, "I003"))
	_, err = svc.GetInstructor(ctx, "I003")
	assert.Equal(t, studio.MsgInstructorNotFound, err.Error())
}

func TestPackageLifecycle(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	_, err := svc.AddPackage(ctx, studio.Package{PackageName: "Free"})
	assert.ErrorIs(t, err, studio.ErrValidation)

	p, err := svc.AddPackage(ctx, studio.Package{PackageName: "Two Classes", Price: decimal.RequireFromString("140.00")})
	require.NoError(t, err)
	assert.Equal(t, "P002", p.PackageID)

	p, err = svc.UpdatePackage(ctx, "P002", func(p *studio.Package) { p.Price = decimal.NewFromInt(120) })
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(120)))

	_, err = svc.UpdatePackage(ctx, "P002", func(p *studio.Package) { p.Price = decimal.NewFromInt(-1) })
	assert.ErrorIs(t, err, studio.ErrValidation)

	require.NoError(t, svc.DeletePackage(ctx, "P002"))
	all, err := svc.ListPackages(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// =============================================================================
// LEDGER VALIDATION
// =============================================================================

func TestValidateAttendance(t *testing.T) {
	valid := studio.Attendance{CheckinID: 1, CustomerID: "Y001", ClassID: "A001", Datetime: "2025-05-17", Status: studio.StatusCheckedIn}
	require.NoError(t, studio.ValidateAttendance(valid))

	bad := valid
	bad.Status = "late"
	err := studio.ValidateAttendance(bad)
	var verr *studio.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, studio.MsgInvalidStatus, verr.Message)

	bad = valid
	bad.Datetime = "2025-5-17"
	require.ErrorAs(t, studio.ValidateAttendance(bad), &verr)
	assert.Equal(t, studio.MsgInvalidDate, verr.Message)

	bad = valid
	bad.CustomerID = ""
	require.ErrorAs(t, studio.ValidateAttendance(bad), &verr)
	assert.Equal(t, studio.MsgMissingFields, verr.Message)
}

func TestLedger_AppendRejectsDuplicateID(t *testing.T) {
	_, mem := newSeededService(t)
	ledger := studio.NewLedger(mem)
	ctx := context.Background()
	a := studio.Attendance{CheckinID: 1, CustomerID: "Y001", ClassID: "A001", Datetime: "2025-05-17", Status: studio.StatusCheckedIn}

	require.NoError(t, ledger.Append(ctx, a))
	assert.ErrorIs(t, ledger.Append(ctx, a), studio.ErrDuplicateCheckinID)

	next, err := ledger.NextCheckinID(ctx)
	require.NoError(t, err)
	assert.Equal(t, studio.CheckinID(2), next)
}
