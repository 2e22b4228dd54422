package backend

import (
	"context"
	"net/url"

	"github.com/baechuer/careportal/internal/domain"
)

type DoctorAPI struct {
	r Requester
}

func NewDoctorAPI(r Requester) *DoctorAPI { return &DoctorAPI{r: r} }

func (d *DoctorAPI) Dashboard(ctx context.Context) domain.Result[domain.DashboardStats] {
	return get[domain.DashboardStats](ctx, d.r, "/doctor/dashboard", nil)
}

func (d *DoctorAPI) Appointments(ctx context.Context, query url.Values) domain.Result[[]domain.Appointment] {
	return get[[]domain.Appointment](ctx, d.r, "/doctor/appointments", query)
}

func (d *DoctorAPI) UpdateAppointmentStatus(ctx context.Context, id string, upd domain.StatusUpdate) domain.Result[domain.Appointment] {
	return patch[domain.Appointment](ctx, d.r, "/doctor/appointments/"+seg(id)+"/status", upd)
}

func (d *DoctorAPI) Patients(ctx context.Context, query url.Values) domain.Result[[]domain.User] {
	return get[[]domain.User](ctx, d.r, "/doctor/patients", query)
}

func (d *DoctorAPI) Patient(ctx context.Context, id string) domain.Result[domain.PatientChart] {
	return get[domain.PatientChart](ctx, d.r, "/doctor/patients/"+seg(id), nil)
}
