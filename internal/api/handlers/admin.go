package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/validation"
)

type AdminClient interface {
	Stats(ctx context.Context) domain.Result[domain.DashboardStats]
	Users(ctx context.Context, query url.Values) domain.Result[domain.PaginatedResponse[domain.User]]
	CreateUser(ctx context.Context, in domain.UserInput) domain.Result[domain.User]
	UpdateUser(ctx context.Context, id string, in domain.UserInput) domain.Result[domain.User]
	DeleteUser(ctx context.Context, id string) domain.Result[struct{}]
}

type ClinicClient interface {
	List(ctx context.Context, query url.Values) domain.Result[[]domain.Clinic]
	Get(ctx context.Context, id string) domain.Result[domain.Clinic]
	Create(ctx context.Context, in domain.ClinicInput) domain.Result[domain.Clinic]
	Update(ctx context.Context, id string, in domain.ClinicInput) domain.Result[domain.Clinic]
	Delete(ctx context.Context, id string) domain.Result[struct{}]
}

type AdminHandler struct {
	api     AdminClient
	clinics ClinicClient
}

func NewAdminHandler(api AdminClient, clinics ClinicClient) *AdminHandler {
	return &AdminHandler{api: api, clinics: clinics}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Stats(r.Context()), http.StatusOK)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Users(r.Context(), listQuery(r)), http.StatusOK)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if v := validation.Struct(in); !v.IsValid {
		writeValidation(w, r, v)
		return
	}
	writeResult(w, r, h.api.CreateUser(r.Context(), in), http.StatusCreated)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if v := validation.Struct(in); !v.IsValid {
		writeValidation(w, r, v)
		return
	}
	writeResult(w, r, h.api.UpdateUser(r.Context(), chi.URLParam(r, "id"), in), http.StatusOK)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.DeleteUser(r.Context(), chi.URLParam(r, "id")), http.StatusOK)
}

func (h *AdminHandler) ListClinics(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.clinics.List(r.Context(), listQuery(r)), http.StatusOK)
}

func (h *AdminHandler) GetClinic(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.clinics.Get(r.Context(), chi.URLParam(r, "id")), http.StatusOK)
}

func (h *AdminHandler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	var in domain.ClinicInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if v := validation.Struct(in); !v.IsValid {
		writeValidation(w, r, v)
		return
	}
	writeResult(w, r, h.clinics.Create(r.Context(), in), http.StatusCreated)
}

func (h *AdminHandler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	var in domain.ClinicInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if v := validation.Struct(in); !v.IsValid {
		writeValidation(w, r, v)
		return
	}
	writeResult(w, r, h.clinics.Update(r.Context(), chi.URLParam(r, "id"), in), http.StatusOK)
}

func (h *AdminHandler) DeleteClinic(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.clinics.Delete(r.Context(), chi.URLParam(r, "id")), http.StatusOK)
}
