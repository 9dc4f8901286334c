package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogitrack/studio/studio"
)

func TestCustomer_AddAssignsNextID(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodGet, "/api/customer/getNextId", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Y101", decode[map[string]string](t, rec)["nextId"])

	rec = srv.do(t, http.MethodPost, "/api/customer/add", map[string]any{
		"firstName": "Maya", "lastName": "Ortiz", "email": "maya@yoga.com", "phone": "555-1234", "classBalance": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[struct {
		Message  string      `json:"message"`
		Customer CustomerDTO `json:"customer"`
	}](t, rec)
	assert.Equal(t, "Customer added successfully", body.Message)
	assert.Equal(t, "Y101", body.Customer.CustomerID)
	assert.Equal(t, 4, srv.balance(t, "Y101"))
}

func TestCustomer_AddRejectsBadInput(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodPost, "/api/customer/add", map[string]any{"firstName": "Maya"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, studio.MsgMissingFields, decode[ErrorResponse](t, rec).Message)

	rec = srv.do(t, http.MethodPost, "/api/customer/add", map[string]any{
		"firstName": "Maya", "lastName": "Ortiz", "email": "not-an-email", "phone": "555-1234",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/customer/add", map[string]any{
		"customerId": "Y001", "firstName": "Maya", "lastName": "Ortiz", "email": "maya@yoga.com", "phone": "555-1234",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate business key")
}

func TestCustomer_UpdateKeepsUnsentFields(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodPut, "/api/customer/update", map[string]any{"customerId": "Y002", "phone": "555-9999"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = srv.do(t, http.MethodGet, "/api/customer/getCustomer?customerId=Y002", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[CustomerDTO](t, rec)
	assert.Equal(t, "555-9999", c.Phone)
	assert.Equal(t, "Sam", c.FirstName)
	assert.Equal(t, 9, c.ClassBalance)
	assert.True(t, c.Senior)

	rec = srv.do(t, http.MethodPut, "/api/customer/update", map[string]any{"customerId": "Y999", "phone": "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, studio.MsgCustomerNotFound, decode[ErrorResponse](t, rec).Error)
}

func TestCustomer_UpdateClassBalanceAndDelete(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodPut, "/api/customer/updateClassBalance", map[string]any{"customerId": "Y004", "newBalance": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, srv.balance(t, "Y004"))

	rec = srv.do(t, http.MethodPut, "/api/customer/updateClassBalance", map[string]any{"customerId": "Y004", "newBalance": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/customer/deleteCustomer?customerId=Y004", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Y004", decode[map[string]string](t, rec)["customerId"])

	rec = srv.do(t, http.MethodDelete, "/api/customer/deleteCustomer?customerId=Y004", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomer_GetCustomerIDs(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodGet, "/api/customer/getCustomerIds", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	ids := decode[[]CustomerIDDTO](t, rec)
	require.Len(t, ids, 6)
	assert.Equal(t, CustomerIDDTO{CustomerID: "Y001", FirstName: "Sara", LastName: "Doe", ClassBalance: 2}, ids[0])
}

func TestClass_AddRequiresInstructor(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodPost, "/api/class/add", map[string]any{
		"className": "Yin", "instructorId": "I999", "classType": "General",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, studio.MsgInstructorNotFound, decode[ErrorResponse](t, rec).Message)

	rec = srv.do(t, http.MethodPost, "/api/class/add", map[string]any{
		"className": "Yin", "instructorId": "I003", "classType": "General",
		"daytime": []map[string]any{{"day": "Sun", "time": "08:00:00", "duration": 75}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[struct {
		Class ClassDTO `json:"class"`
	}](t, rec)
	assert.Equal(t, "A101", body.Class.ClassID)
	assert.Equal(t, []studio.ScheduleEntry{{Day: "Sun", Time: "08:00:00", Duration: 75}}, body.Class.Daytime)
}

func TestClass_IDsCarryInstructorName(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodGet, "/api/class/getClassIds", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	ids := decode[[]ClassIDDTO](t, rec)
	require.Len(t, ids, 6)
	assert.Equal(t, "John Doe", ids[0].InstructorName)

	rec = srv.do(t, http.MethodGet, "/api/class/getClassesByInstructor?instructorId=I100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	classes := decode[[]ClassDTO](t, rec)
	require.Len(t, classes, 1)
	assert.Equal(t, "A100", classes[0].ClassID)
}

func TestClass_WeeklySchedule(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodGet, "/api/class/getWeeklySchedule", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	week := decode[map[string][]ScheduledClassDTO](t, rec)
	assert.Len(t, week, 7)
	require.Len(t, week["Monday"], 2)
	assert.Equal(t, ScheduledClassDTO{
		ClassID: "A001", ClassName: "Breath Work", Instructor: "John Doe",
		Time: "09:00:00", Duration: 45, ClassType: "General", Description: "A beginners class for pranayama",
	}, week["Monday"][0])
	assert.Equal(t, "A003", week["Monday"][1].ClassID)
	assert.Len(t, week["Tuesday"], 3)
	assert.Equal(t, "A004", week["Tuesday"][0].ClassID, "07:00 first")
}

func TestInstructor_Lifecycle(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodPost, "/api/instructor/add", map[string]any{
		"firstname": "Kai", "lastname": "Moana", "email": "kai@yoga.com", "phone": "555-4321",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/instructor/getInstructor?instructorId=I101", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	raw := decode[map[string]any](t, rec)
	assert.Equal(t, "Kai", raw["firstname"])
	assert.Equal(t, "Moana", raw["lastname"])
	assert.NotContains(t, raw, "firstName")

	rec = srv.do(t, http.MethodGet, "/api/instructor/getInstructorIds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]InstructorIDDTO](t, rec), 7)

	rec = srv.do(t, http.MethodDelete, "/api/instructor/deleteInstructor?instructorId=I101", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPackage_PriceRoundTrip(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodGet, "/api/package/getPackage?packageId=P002", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 140.0, decode[PackageDTO](t, rec).Price)

	rec = srv.do(t, http.MethodPost, "/api/package/add", map[string]any{
		"packageId": "P010", "packageName": "Drop-in", "description": "Single class", "price": 19.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPut, "/api/package/update", map[string]any{"packageId": "P010", "price": "21.25"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/package/getPackageIds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found bool
	for _, p := range decode[[]PackageIDDTO](t, rec) {
		if p.PackageID == "P010" {
			found = true
			assert.Equal(t, 21.25, p.Price)
		}
	}
	assert.True(t, found)

	rec = srv.do(t, http.MethodGet, "/api/package/getPackage?packageId=P404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, studio.MsgPackageNotFound, decode[ErrorResponse](t, rec).Error)
}
