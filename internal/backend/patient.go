package backend

import (
	"context"
	"net/url"

	"github.com/baechuer/careportal/internal/domain"
)

type PatientAPI struct {
	r Requester
}

func NewPatientAPI(r Requester) *PatientAPI { return &PatientAPI{r: r} }

func (p *PatientAPI) Dashboard(ctx context.Context) domain.Result[domain.DashboardStats] {
	return get[domain.DashboardStats](ctx, p.r, "/patient/dashboard", nil)
}

func (p *PatientAPI) Appointments(ctx context.Context, query url.Values) domain.Result[[]domain.Appointment] {
	return get[[]domain.Appointment](ctx, p.r, "/patient/appointments", query)
}

func (p *PatientAPI) BookAppointment(ctx context.Context, req domain.BookingRequest) domain.Result[domain.Appointment] {
	return post[domain.Appointment](ctx, p.r, "/patient/appointments", req)
}

func (p *PatientAPI) CancelAppointment(ctx context.Context, id string, req domain.CancelRequest) domain.Result[domain.Appointment] {
	return patch[domain.Appointment](ctx, p.r, "/patient/appointments/"+seg(id)+"/cancel", req)
}

func (p *PatientAPI) RescheduleAppointment(ctx context.Context, id string, req domain.RescheduleRequest) domain.Result[domain.Appointment] {
	return patch[domain.Appointment](ctx, p.r, "/patient/appointments/"+seg(id)+"/reschedule", req)
}

// AvailableSlots lists a doctor's slots for one day (date is YYYY-MM-DD).
func (p *PatientAPI) AvailableSlots(ctx context.Context, doctorID, date string) domain.Result[[]domain.TimeSlot] {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	return get[[]domain.TimeSlot](ctx, p.r, "/patient/doctors/"+seg(doctorID)+"/slots", q)
}

func (p *PatientAPI) Records(ctx context.Context, query url.Values) domain.Result[[]domain.MedicalRecord] {
	return get[[]domain.MedicalRecord](ctx, p.r, "/patient/records", query)
}

func (p *PatientAPI) LabResults(ctx context.Context, query url.Values) domain.Result[[]domain.LabResult] {
	return get[[]domain.LabResult](ctx, p.r, "/patient/lab-results", query)
}

func (p *PatientAPI) Prescriptions(ctx context.Context, query url.Values) domain.Result[[]domain.Prescription] {
	return get[[]domain.Prescription](ctx, p.r, "/patient/prescriptions", query)
}
