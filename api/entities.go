/*
entities.go - HTTP handlers for the studio catalog

PURPOSE:
  CRUD over customers, classes, instructors and packages, plus the
  weekly class schedule. Business keys (Y001, A001, I001, P001) are
  assigned by package studio when a body omits them.

ENDPOINTS (each group mounted under /api/<entity>):
  customer:   getCustomer getNextId add update getCustomerIds
              deleteCustomer updateClassBalance
  class:      getClass getNextId add update getClassIds deleteClass
              getClassesByInstructor getWeeklySchedule
  instructor: getInstructor getNextId add update getInstructorIds
              deleteInstructor
  package:    getPackage getNextId add update getPackageIds deletePackage

RESPONSES:
  add     201 {message, <entity>}
  update  200 {message, <entity>}
  delete  200 {message, <key>}
  errors  400 {message} on bad input, 404 {error} when missing,
          500 {message, error} on storage failure

SEE ALSO:
  - handlers.go: Attendance handlers and shared helpers
  - studio/catalog.go: Business rules
*/
package api

import (
	"errors"
	"net/http"

	"github.com/yogitrack/studio/studio"
)

// writeCatalogError maps a catalog error to the response shape the UI
// expects. failMsg is used for unexpected failures.
func (h *Handler) writeCatalogError(w http.ResponseWriter, err error, failMsg string) {
	switch {
	case studio.IsNotFound(err):
		writeError(w, http.StatusNotFound, "", errors.New(clientMessage(err)))
	case studio.IsClientError(err):
		writeError(w, http.StatusBadRequest, clientMessage(err), nil)
	default:
		h.log.WithError(err).Error(failMsg)
		writeError(w, http.StatusInternalServerError, failMsg, err)
	}
}

// decodeRequest decodes and format-checks a catalog body.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(r, v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address", err)
		return false
	}
	return true
}

func writeNextID(w http.ResponseWriter, id string, err error) {
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"nextId": id})
}

// =============================================================================
// CUSTOMERS
// =============================================================================

// GET /api/customer/getCustomer?customerId=
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCustomer(r.Context(), r.URL.Query().Get("customerId"))
	if err != nil {
		h.writeCatalogError(w, err, "Failed to get customer")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*c))
}

// GET /api/customer/getNextId
func (h *Handler) GetNextCustomerID(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.NextCustomerID(r.Context())
	writeNextID(w, id, err)
}

// GET /api/customer/getCustomerIds
func (h *Handler) GetCustomerIDs(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	dtos := make([]CustomerIDDTO, len(all))
	for i, c := range all {
		dtos[i] = CustomerIDDTO{
			CustomerID:   c.CustomerID,
			FirstName:    c.FirstName,
			LastName:     c.LastName,
			ClassBalance: c.ClassBalance,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// POST /api/customer/add
func (h *Handler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	c := studio.Customer{CustomerID: req.CustomerID}
	req.apply(&c)

	added, err := h.svc.AddCustomer(r.Context(), c)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to add customer")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Customer added successfully",
		"customer": toCustomerDTO(*added),
	})
}

// PUT /api/customer/update
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, studio.MsgMissingFields, nil)
		return
	}

	updated, err := h.svc.UpdateCustomer(r.Context(), req.CustomerID, req.apply)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to update customer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Customer updated successfully",
		"customer": toCustomerDTO(*updated),
	})
}

// DELETE /api/customer/deleteCustomer?customerId=
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("customerId")
	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		h.writeCatalogError(w, err, "Failed to delete customer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Customer deleted", "customerId": id})
}

// PUT /api/customer/updateClassBalance
func (h *Handler) UpdateClassBalance(w http.ResponseWriter, r *http.Request) {
	var req UpdateClassBalanceRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.NewBalance == nil {
		writeError(w, http.StatusBadRequest, studio.MsgMissingFields, nil)
		return
	}

	c, err := h.svc.SetClassBalance(r.Context(), req.CustomerID, *req.NewBalance)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to update class balance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Class balance updated",
		"customer": toCustomerDTO(*c),
	})
}

// =============================================================================
// INSTRUCTORS
// =============================================================================

// GET /api/instructor/getInstructor?instructorId=
func (h *Handler) GetInstructor(w http.ResponseWriter, r *http.Request) {
	in, err := h.svc.GetInstructor(r.Context(), r.URL.Query().Get("instructorId"))
	if err != nil {
		h.writeCatalogError(w, err, "Failed to get instructor")
		return
	}
	writeJSON(w, http.StatusOK, InstructorDTO(*in))
}

// GET /api/instructor/getNextId
func (h *Handler) GetNextInstructorID(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.NextInstructorID(r.Context())
	writeNextID(w, id, err)
}

// GET /api/instructor/getInstructorIds
func (h *Handler) GetInstructorIDs(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.ListInstructors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	dtos := make([]InstructorIDDTO, len(all))
	for i, in := range all {
		dtos[i] = InstructorIDDTO{InstructorID: in.InstructorID, FirstName: in.FirstName, LastName: in.LastName}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// POST /api/instructor/add
func (h *Handler) AddInstructor(w http.ResponseWriter, r *http.Request) {
	var req InstructorRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	in := studio.Instructor{InstructorID: req.InstructorID}
	req.apply(&in)

	added, err := h.svc.AddInstructor(r.Context(), in)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to add instructor")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Instructor added successfully",
		"instructor": InstructorDTO(*added),
	})
}

// PUT /api/instructor/update
func (h *Handler) UpdateInstructor(w http.ResponseWriter, r *http.Request) {
	var req InstructorRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.InstructorID == "" {
		writeError(w, http.StatusBadRequest, studio.MsgMissingFields, nil)
		return
	}

	updated, err := h.svc.UpdateInstructor(r.Context(), req.InstructorID, req.apply)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to update instructor")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Instructor updated successfully",
		"instructor": InstructorDTO(*updated),
	})
}

// DELETE /api/instructor/deleteInstructor?instructorId=
func (h *Handler) DeleteInstructor(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("instructorId")
	if err := h.svc.DeleteInstructor(r.Context(), id); err != nil {
		h.writeCatalogError(w, err, "Failed to delete instructor")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Instructor deleted", "instructorId": id})
}

// =============================================================================
// PACKAGES
// =============================================================================

// GET /api/package/getPackage?packageId=
func (h *Handler) GetPackage(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPackage(r.Context(), r.URL.Query().Get("packageId"))
	if err != nil {
		h.writeCatalogError(w, err, "Failed to get package")
		return
	}
	writeJSON(w, http.StatusOK, toPackageDTO(*p))
}

// GET /api/package/getNextId
func (h *Handler) GetNextPackageID(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.NextPackageID(r.Context())
	writeNextID(w, id, err)
}

// GET /api/package/getPackageIds
func (h *Handler) GetPackageIDs(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.ListPackages(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	dtos := make([]PackageIDDTO, len(all))
	for i, p := range all {
		dtos[i] = PackageIDDTO{PackageID: p.PackageID, PackageName: p.PackageName, Price: p.Price.InexactFloat64()}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// POST /api/package/add
func (h *Handler) AddPackage(w http.ResponseWriter, r *http.Request) {
	var req PackageRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	p := studio.Package{PackageID: req.PackageID}
	req.apply(&p)

	added, err := h.svc.AddPackage(r.Context(), p)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to add package")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Package added successfully",
		"package": toPackageDTO(*added),
	})
}

// PUT /api/package/update
func (h *Handler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	var req PackageRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.PackageID == "" {
		writeError(w, http.StatusBadRequest, studio.MsgMissingFields, nil)
		return
	}

	updated, err := h.svc.UpdatePackage(r.Context(), req.PackageID, req.apply)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to update package")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Package updated successfully",
		"package": toPackageDTO(*updated),
	})
}

// DELETE /api/package/deletePackage?packageId=
func (h *Handler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("packageId")
	if err := h.svc.DeletePackage(r.Context(), id); err != nil {
		h.writeCatalogError(w, err, "Failed to delete package")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Package deleted", "packageId": id})
}

// =============================================================================
// CLASSES
// =============================================================================

// GET /api/class/getClass?classId=
func (h *Handler) GetClass(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetClass(r.Context(), r.URL.Query().Get("classId"))
	if err != nil {
		h.writeCatalogError(w, err, "Failed to get class")
		return
	}
	writeJSON(w, http.StatusOK, toClassDTO(*c))
}

// GET /api/class/getNextId
func (h *Handler) GetNextClassID(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.NextClassID(r.Context())
	writeNextID(w, id, err)
}

// GetClassIDs lists classes with their instructor's display name.
// GET /api/class/getClassIds
func (h *Handler) GetClassIDs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	all, err := h.svc.ListClasses(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}

	names := studio.NewEnricher(h.svc.Store(), 4)
	dtos := make([]ClassIDDTO, len(all))
	for i, c := range all {
		dtos[i] = ClassIDDTO{
			ClassID:        c.ClassID,
			ClassName:      c.ClassName,
			InstructorID:   c.InstructorID,
			InstructorName: names.InstructorName(ctx, c.InstructorID),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GET /api/class/getClassesByInstructor?instructorId=
func (h *Handler) GetClassesByInstructor(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("instructorId")
	if id == "" {
		writeError(w, http.StatusBadRequest, studio.MsgMissingFields, nil)
		return
	}
	all, err := h.svc.ListClassesByInstructor(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	dtos := make([]ClassDTO, len(all))
	for i, c := range all {
		dtos[i] = toClassDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWeeklySchedule groups class slots by weekday.
// GET /api/class/getWeeklySchedule
func (h *Handler) GetWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	week, err := h.svc.WeeklySchedule(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}

	out := make(map[string][]ScheduledClassDTO, len(week))
	for day, slots := range week {
		dtos := make([]ScheduledClassDTO, len(slots))
		for i, s := range slots {
			dtos[i] = ScheduledClassDTO{
				ClassID:     s.ClassID,
				ClassName:   s.ClassName,
				Instructor:  s.InstructorName,
				Time:        s.Time,
				Duration:    s.Duration,
				ClassType:   s.ClassType,
				Description: s.Description,
			}
		}
		out[day] = dtos
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/class/add
func (h *Handler) AddClass(w http.ResponseWriter, r *http.Request) {
	var req ClassRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	c := studio.Class{ClassID: req.ClassID}
	req.apply(&c)

	added, err := h.svc.AddClass(r.Context(), c)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to add class")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Class added successfully",
		"class":   toClassDTO(*added),
	})
}

// PUT /api/class/update
func (h *Handler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	var req ClassRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.ClassID == "" {
		writeError(w, http.StatusBadRequest, studio.MsgMissingFields, nil)
		return
	}

	updated, err := h.svc.UpdateClass(r.Context(), req.ClassID, req.apply)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to update class")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Class updated successfully",
		"class":   toClassDTO(*updated),
	})
}

// DELETE /api/class/deleteClass?classId=
func (h *Handler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("classId")
	if err := h.svc.DeleteClass(r.Context(), id); err != nil {
		h.writeCatalogError(w, err, "Failed to delete class")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Class deleted", "classId": id})
}
