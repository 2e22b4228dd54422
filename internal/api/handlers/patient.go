package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/validation"
)

type PatientClient interface {
	Dashboard(ctx context.Context) domain.Result[domain.DashboardStats]
	Appointments(ctx context.Context, query url.Values) domain.Result[[]domain.Appointment]
	BookAppointment(ctx context.Context, req domain.BookingRequest) domain.Result[domain.Appointment]
	CancelAppointment(ctx context.Context, id string, req domain.CancelRequest) domain.Result[domain.Appointment]
	RescheduleAppointment(ctx context.Context, id string, req domain.RescheduleRequest) domain.Result[domain.Appointment]
	AvailableSlots(ctx context.Context, doctorID, date string) domain.Result[[]domain.TimeSlot]
	Records(ctx context.Context, query url.Values) domain.Result[[]domain.MedicalRecord]
	LabResults(ctx context.Context, query url.Values) domain.Result[[]domain.LabResult]
	Prescriptions(ctx context.Context, query url.Values) domain.Result[[]domain.Prescription]
}

type PatientHandler struct {
	api PatientClient
	now func() time.Time
}

func NewPatientHandler(api PatientClient) *PatientHandler {
	return &PatientHandler{api: api, now: time.Now}
}

func (h *PatientHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Dashboard(r.Context()), http.StatusOK)
}

func (h *PatientHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Appointments(r.Context(), listQuery(r)), http.StatusOK)
}

func (h *PatientHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if v := validation.Merge(validation.Struct(req), futureStart(req.StartTime, h.now())); !v.IsValid {
		writeValidation(w, r, v)
		return
	}
	writeResult(w, r, h.api.BookAppointment(r.Context(), req), http.StatusCreated)
}

func (h *PatientHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	var req domain.CancelRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if v := validation.Struct(req); !v.IsValid {
		writeValidation(w, r, v)
		return
	}
	writeResult(w, r, h.api.CancelAppointment(r.Context(), chi.URLParam(r, "id"), req), http.StatusOK)
}

func (h *PatientHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	var req domain.RescheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if v := validation.Merge(validation.Struct(req), futureStart(req.StartTime, h.now())); !v.IsValid {
		writeValidation(w, r, v)
		return
	}
	writeResult(w, r, h.api.RescheduleAppointment(r.Context(), chi.URLParam(r, "id"), req), http.StatusOK)
}

func (h *PatientHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			writeError(w, r, domain.ErrInvalidField("date", "date must be YYYY-MM-DD"))
			return
		}
	}
	writeResult(w, r, h.api.AvailableSlots(r.Context(), chi.URLParam(r, "doctorID"), date), http.StatusOK)
}

func (h *PatientHandler) Records(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Records(r.Context(), listQuery(r)), http.StatusOK)
}

func (h *PatientHandler) LabResults(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.LabResults(r.Context(), listQuery(r)), http.StatusOK)
}

func (h *PatientHandler) Prescriptions(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Prescriptions(r.Context(), listQuery(r)), http.StatusOK)
}

func futureStart(start, now time.Time) validation.Result {
	switch {
	case start.IsZero():
		return validation.Result{Errors: []string{"start time is required"}}
	case !start.After(now):
		return validation.Result{Errors: []string{"start time must be in the future"}}
	default:
		return validation.Result{IsValid: true, Errors: []string{}}
	}
}
