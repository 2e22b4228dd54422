package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/careportal/internal/domain"
)

type AssistantClient interface {
	Dashboard(ctx context.Context) domain.Result[domain.DashboardStats]
	Appointments(ctx context.Context, query url.Values) domain.Result[[]domain.Appointment]
	CheckIn(ctx context.Context, id string) domain.Result[domain.Appointment]
}

type AssistantHandler struct {
	api AssistantClient
}

func NewAssistantHandler(api AssistantClient) *AssistantHandler {
	return &AssistantHandler{api: api}
}

func (h *AssistantHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Dashboard(r.Context()), http.StatusOK)
}

func (h *AssistantHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.Appointments(r.Context(), listQuery(r)), http.StatusOK)
}

func (h *AssistantHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.api.CheckIn(r.Context(), chi.URLParam(r, "id")), http.StatusOK)
}
