package handlers

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/stretchr/testify/mock"

	"github.com/baechuer/careportal/internal/domain"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, creds domain.Credentials) domain.Result[domain.LoginResult] {
	return m.Called(ctx, creds).Get(0).(domain.Result[domain.LoginResult])
}

func (m *mockSessions) Register(ctx context.Context, reg domain.Registration) domain.Result[domain.User] {
	return m.Called(ctx, reg).Get(0).(domain.Result[domain.User])
}

func (m *mockSessions) VerifyOTP(ctx context.Context, w http.ResponseWriter, v domain.OTPVerification) domain.Result[domain.LoginResult] {
	return m.Called(ctx, v).Get(0).(domain.Result[domain.LoginResult])
}

func (m *mockSessions) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	m.Called(ctx)
}

type mockProfile struct {
	mock.Mock
}

func (m *mockProfile) Me(ctx context.Context) domain.Result[domain.User] {
	return m.Called(ctx).Get(0).(domain.Result[domain.User])
}

type mockPatient struct {
	mock.Mock
}

func (m *mockPatient) Dashboard(ctx context.Context) domain.Result[domain.DashboardStats] {
	return m.Called(ctx).Get(0).(domain.Result[domain.DashboardStats])
}

func (m *mockPatient) Appointments(ctx context.Context, query url.Values) domain.Result[[]domain.Appointment] {
	return m.Called(ctx, query).Get(0).(domain.Result[[]domain.Appointment])
}

func (m *mockPatient) BookAppointment(ctx context.Context, req domain.BookingRequest) domain.Result[domain.Appointment] {
	return m.Called(ctx, req).Get(0).(domain.Result[domain.Appointment])
}

func (m *mockPatient) CancelAppointment(ctx context.Context, id string, req domain.CancelRequest) domain.Result[domain.Appointment] {
	return m.Called(ctx, id, req).Get(0).(domain.Result[domain.Appointment])
}

func (m *mockPatient) RescheduleAppointment(ctx context.Context, id string, req domain.RescheduleRequest) domain.Result[domain.Appointment] {
	return m.Called(ctx, id, req).Get(0).(domain.Result[domain.Appointment])
}

func (m *mockPatient) AvailableSlots(ctx context.Context, doctorID, date string) domain.Result[[]domain.TimeSlot] {
	return m.Called(ctx, doctorID, date).Get(0).(domain.Result[[]domain.TimeSlot])
}

func (m *mockPatient) Records(ctx context.Context, query url.Values) domain.Result[[]domain.MedicalRecord] {
	return m.Called(ctx, query).Get(0).(domain.Result[[]domain.MedicalRecord])
}

func (m *mockPatient) LabResults(ctx context.Context, query url.Values) domain.Result[[]domain.LabResult] {
	return m.Called(ctx, query).Get(0).(domain.Result[[]domain.LabResult])
}

func (m *mockPatient) Prescriptions(ctx context.Context, query url.Values) domain.Result[[]domain.Prescription] {
	return m.Called(ctx, query).Get(0).(domain.Result[[]domain.Prescription])
}

type mockDoctor struct {
	mock.Mock
}

func (m *mockDoctor) Dashboard(ctx context.Context) domain.Result[domain.DashboardStats] {
	return m.Called(ctx).Get(0).(domain.Result[domain.DashboardStats])
}

func (m *mockDoctor) Appointments(ctx context.Context, query url.Values) domain.Result[[]domain.Appointment] {
	return m.Called(ctx, query).Get(0).(domain.Result[[]domain.Appointment])
}

func (m *mockDoctor) UpdateAppointmentStatus(ctx context.Context, id string, upd domain.StatusUpdate) domain.Result[domain.Appointment] {
	return m.Called(ctx, id, upd).Get(0).(domain.Result[domain.Appointment])
}

func (m *mockDoctor) Patients(ctx context.Context, query url.Values) domain.Result[[]domain.User] {
	return m.Called(ctx, query).Get(0).(domain.Result[[]domain.User])
}

func (m *mockDoctor) Patient(ctx context.Context, id string) domain.Result[domain.PatientChart] {
	return m.Called(ctx, id).Get(0).(domain.Result[domain.PatientChart])
}

type mockAssistant struct {
	mock.Mock
}

func (m *mockAssistant) Dashboard(ctx context.Context) domain.Result[domain.DashboardStats] {
	return m.Called(ctx).Get(0).(domain.Result[domain.DashboardStats])
}

func (m *mockAssistant) Appointments(ctx context.Context, query url.Values) domain.Result[[]domain.Appointment] {
	return m.Called(ctx, query).Get(0).(domain.Result[[]domain.Appointment])
}

func (m *mockAssistant) CheckIn(ctx context.Context, id string) domain.Result[domain.Appointment] {
	return m.Called(ctx, id).Get(0).(domain.Result[domain.Appointment])
}

type mockAdmin struct {
	mock.Mock
}

func (m *mockAdmin) Stats(ctx context.Context) domain.Result[domain.DashboardStats] {
	return m.Called(ctx).Get(0).(domain.Result[domain.DashboardStats])
}

func (m *mockAdmin) Users(ctx context.Context, query url.Values) domain.Result[domain.PaginatedResponse[domain.User]] {
	return m.Called(ctx, query).Get(0).(domain.Result[domain.PaginatedResponse[domain.User]])
}

func (m *mockAdmin) CreateUser(ctx context.Context, in domain.UserInput) domain.Result[domain.User] {
	return m.Called(ctx, in).Get(0).(domain.Result[domain.User])
}

func (m *mockAdmin) UpdateUser(ctx context.Context, id string, in domain.UserInput) domain.Result[domain.User] {
	return m.Called(ctx, id, in).Get(0).(domain.Result[domain.User])
}

func (m *mockAdmin) DeleteUser(ctx context.Context, id string) domain.Result[struct{}] {
	return m.Called(ctx, id).Get(0).(domain.Result[struct{}])
}

type mockClinics struct {
	mock.Mock
}

func (m *mockClinics) List(ctx context.Context, query url.Values) domain.Result[[]domain.Clinic] {
	return m.Called(ctx, query).Get(0).(domain.Result[[]domain.Clinic])
}

func (m *mockClinics) Get(ctx context.Context, id string) domain.Result[domain.Clinic] {
	return m.Called(ctx, id).Get(0).(domain.Result[domain.Clinic])
}

func (m *mockClinics) Create(ctx context.Context, in domain.ClinicInput) domain.Result[domain.Clinic] {
	return m.Called(ctx, in).Get(0).(domain.Result[domain.Clinic])
}

func (m *mockClinics) Update(ctx context.Context, id string, in domain.ClinicInput) domain.Result[domain.Clinic] {
	return m.Called(ctx, id, in).Get(0).(domain.Result[domain.Clinic])
}

func (m *mockClinics) Delete(ctx context.Context, id string) domain.Result[struct{}] {
	return m.Called(ctx, id).Get(0).(domain.Result[struct{}])
}

type mockMessages struct {
	mock.Mock
}

func (m *mockMessages) Conversations(ctx context.Context) domain.Result[[]domain.Conversation] {
	return m.Called(ctx).Get(0).(domain.Result[[]domain.Conversation])
}

func (m *mockMessages) Thread(ctx context.Context, conversationID string) domain.Result[[]domain.Message] {
	return m.Called(ctx, conversationID).Get(0).(domain.Result[[]domain.Message])
}

func (m *mockMessages) Send(ctx context.Context, msg domain.SendMessage) domain.Result[domain.Message] {
	return m.Called(ctx, msg).Get(0).(domain.Result[domain.Message])
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, filename, contentType string, content io.Reader) domain.Result[domain.UploadResult] {
	b, _ := io.ReadAll(content)
	return m.Called(ctx, filename, contentType, b).Get(0).(domain.Result[domain.UploadResult])
}
