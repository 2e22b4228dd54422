package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/baechuer/careportal/internal/domain"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestStatusFromResult(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, statusFromResult(0))
	assert.Equal(t, http.StatusNotFound, statusFromResult(http.StatusNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, statusFromResult(http.StatusServiceUnavailable))
	assert.Equal(t, http.StatusBadGateway, statusFromResult(http.StatusFound))
}

func TestListQuery_ForwardsKnownParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/doctor/patients?q=smith&page=2&debug=1&limit=", nil)
	assert.Equal(t, url.Values{"q": {"smith"}, "page": {"2"}}, listQuery(req))
}

func TestPatientHandler_BookAppointment(t *testing.T) {
	newHandler := func(api PatientClient) http.Handler {
		h := NewPatientHandler(api)
		h.now = func() time.Time { return fixedNow }
		r := chi.NewRouter()
		r.Post("/appointments", h.BookAppointment)
		return r
	}

	t.Run("valid booking is forwarded", func(t *testing.T) {
		api := new(mockPatient)
		api.On("BookAppointment", mock.Anything, mock.MatchedBy(func(req domain.BookingRequest) bool {
			return req.DoctorID == "d1" && req.StartTime.Equal(fixedNow.Add(24*time.Hour))
		})).Return(domain.OK(domain.Appointment{ID: "a1", Status: domain.AppointmentPending}))

		rec := httptest.NewRecorder()
		newHandler(api).ServeHTTP(rec, jsonRequest(http.MethodPost, "/appointments",
			`{"doctorId":"d1","startTime":"2026-03-11T09:00:00Z","reason":"checkup"}`))

		assert.Equal(t, http.StatusCreated, rec.Code)
		api.AssertExpectations(t)
	})

	t.Run("past start time never reaches backend", func(t *testing.T) {
		api := new(mockPatient)
		rec := httptest.NewRecorder()
		newHandler(api).ServeHTTP(rec, jsonRequest(http.MethodPost, "/appointments",
			`{"doctorId":"d1","startTime":"2026-03-01T09:00:00Z"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		res := decodeEnvelope(t, rec)
		assert.Contains(t, res.Errors, "start time must be in the future")
		api.AssertNotCalled(t, "BookAppointment", mock.Anything, mock.Anything)
	})

	t.Run("missing doctor", func(t *testing.T) {
		api := new(mockPatient)
		rec := httptest.NewRecorder()
		newHandler(api).ServeHTTP(rec, jsonRequest(http.MethodPost, "/appointments",
			`{"startTime":"2026-03-11T09:00:00Z"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		api.AssertNotCalled(t, "BookAppointment", mock.Anything, mock.Anything)
	})
}

func TestPatientHandler_AvailableSlots(t *testing.T) {
	api := new(mockPatient)
	api.On("AvailableSlots", mock.Anything, "d1", "2026-03-11").Return(domain.OK([]domain.TimeSlot{{Available: true}}))

	r := chi.NewRouter()
	r.Get("/doctors/{doctorID}/slots", NewPatientHandler(api).AvailableSlots)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctors/d1/slots?date=2026-03-11", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctors/d1/slots?date=11/03/2026", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	api.AssertNumberOfCalls(t, "AvailableSlots", 1)
}

func TestPatientHandler_ListsForwardSearch(t *testing.T) {
	api := new(mockPatient)
	api.On("Records", mock.Anything, url.Values{"q": {"flu"}}).Return(domain.OK([]domain.MedicalRecord{}))
	api.On("Appointments", mock.Anything, url.Values{"status": {"confirmed"}}).
		Return(domain.Fail[[]domain.Appointment](0, "unable to reach the server"))

	h := NewPatientHandler(api)

	rec := httptest.NewRecorder()
	h.Records(rec, httptest.NewRequest(http.MethodGet, "/records?q=flu", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ListAppointments(rec, httptest.NewRequest(http.MethodGet, "/appointments?status=confirmed", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "unable to reach the server", decodeEnvelope(t, rec).Message)
	api.AssertExpectations(t)
}

func TestDoctorHandler_UpdateStatus(t *testing.T) {
	api := new(mockDoctor)
	api.On("UpdateAppointmentStatus", mock.Anything, "a1", domain.StatusUpdate{Status: domain.AppointmentCompleted}).
		Return(domain.OK(domain.Appointment{ID: "a1", Status: domain.AppointmentCompleted}))

	r := chi.NewRouter()
	r.Patch("/appointments/{id}/status", NewDoctorHandler(api).UpdateAppointmentStatus)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, jsonRequest(http.MethodPatch, "/appointments/a1/status", `{"status":"completed"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, jsonRequest(http.MethodPatch, "/appointments/a1/status", `{"status":"teleported"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	api.AssertNumberOfCalls(t, "UpdateAppointmentStatus", 1)
}

func TestAssistantHandler_CheckIn(t *testing.T) {
	api := new(mockAssistant)
	api.On("CheckIn", mock.Anything, "a9").Return(domain.Fail[domain.Appointment](http.StatusConflict, "already checked in"))

	r := chi.NewRouter()
	r.Post("/appointments/{id}/check-in", NewAssistantHandler(api).CheckIn)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/appointments/a9/check-in", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already checked in", decodeEnvelope(t, rec).Message)
}

func TestAdminHandler_Users(t *testing.T) {
	api := new(mockAdmin)
	api.On("CreateUser", mock.Anything, mock.MatchedBy(func(in domain.UserInput) bool {
		return in.Role == domain.RoleDoctor
	})).Return(domain.OK(domain.User{ID: "u2", Role: domain.RoleDoctor}))
	api.On("DeleteUser", mock.Anything, "u2").Return(domain.OK(struct{}{}))

	h := NewAdminHandler(api, new(mockClinics))
	r := chi.NewRouter()
	r.Post("/users", h.CreateUser)
	r.Delete("/users/{id}", h.DeleteUser)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, jsonRequest(http.MethodPost, "/users",
		`{"fullName":"Dana Doc","email":"dana@example.com","role":"doctor"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, jsonRequest(http.MethodPost, "/users",
		`{"fullName":"Dana Doc","email":"dana@example.com","role":"superuser"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/u2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	api.AssertNumberOfCalls(t, "CreateUser", 1)
	api.AssertExpectations(t)
}

func TestAdminHandler_Clinics(t *testing.T) {
	clinics := new(mockClinics)
	clinics.On("Update", mock.Anything, "c1", mock.Anything).Return(domain.OK(domain.Clinic{ID: "c1", Name: "North"}))
	clinics.On("Get", mock.Anything, "missing").Return(domain.Fail[domain.Clinic](http.StatusNotFound, "clinic not found"))

	h := NewAdminHandler(new(mockAdmin), clinics)
	r := chi.NewRouter()
	r.Put("/clinics/{id}", h.UpdateClinic)
	r.Get("/clinics/{id}", h.GetClinic)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, jsonRequest(http.MethodPut, "/clinics/c1", `{"name":"North","address":"1 Main St"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, jsonRequest(http.MethodPut, "/clinics/c1", `{"name":"N","address":"1 Main St","status":"open"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clinics/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	clinics.AssertNumberOfCalls(t, "Update", 1)
}

func TestMessageHandler_Send(t *testing.T) {
	api := new(mockMessages)
	api.On("Send", mock.Anything, domain.SendMessage{ConversationID: "c1", Content: "hello"}).
		Return(domain.OK(domain.Message{ID: "m1", Content: "hello"}))

	h := NewMessageHandler(api)

	rec := httptest.NewRecorder()
	h.Send(rec, jsonRequest(http.MethodPost, "/messages", `{"conversationId":"c1","content":"  hello  "}`))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.Send(rec, jsonRequest(http.MethodPost, "/messages", `{"content":"hello"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Errors, "conversation or recipient is required")

	rec = httptest.NewRecorder()
	h.Send(rec, jsonRequest(http.MethodPost, "/messages", `{"conversationId":"c1","content":"   "}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	api.AssertNumberOfCalls(t, "Send", 1)
}
