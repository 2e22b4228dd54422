package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/validation"
)

type DoctorClient interface {
	Dashboard(ctx context.Context) domain.Result[domain.DashboardStats]
	Appointments(ctx context.Context, query url.Values) domain.Result[[]domain.Appointment]
	UpdateAppointmentStatus(ctx context.Context, id string, upd domain.StatusUpdate) domain.Result[domain.Appointment]
	Patients(ctx context.Context, query url.Values) domain.Result[[]domain.User]
	Patient(ctx context.Context, id string) domain.Result[domain.PatientChart]
}

type DoctorHandler struct {
	api DoctorClient
}

func NewDoctorHandler(api DoctorClient) *DoctorHandler {
	return &DoctorHandler{api: api}
}

func (h *DoctorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Dashboard(r.Context()), http.StatusOK)
}

func (h *DoctorHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Appointments(r.Context(), listQuery(r)), http.StatusOK)
}

func (h *DoctorHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var upd domain.StatusUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, r, err)
		return
	}
	if v := validation.Struct(upd); !v.IsValid {
		writeValidation(w, r, v)
		return
	}
	writeResult(w, r, h.api.UpdateAppointmentStatus(r.Context(), chi.URLParam(r, "id"), upd), http.StatusOK)
}

func (h *DoctorHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Patients(r.Context(), listQuery(r)), http.StatusOK)
}

func (h *DoctorHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Patient(r.Context(), chi.URLParam(r, "id")), http.StatusOK)
}
