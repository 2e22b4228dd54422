package handlers

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/format"
	"github.com/baechuer/careportal/internal/validation"
)

// formTimeLayout is what <input type="datetime-local"> submits.
const formTimeLayout = "2006-01-02T15:04"

type statView struct {
	Label string
	Value int
}

type dashboardView struct {
	Stats    []statView
	Upcoming []domain.Appointment
}

type appointmentsView struct {
	Month     time.Time
	PrevMonth string
	NextMonth string
	Weekdays  []time.Weekday
	Calendar  [][]format.CalendarDay

	DoctorID string
	Date     string
	Slots    []domain.TimeSlot

	Items    []domain.Appointment
	Statuses []domain.AppointmentStatus
}

type messagesView struct {
	Conversations []domain.Conversation
	Active        string
	Thread        []domain.Message
	ThreadError   string
}

type usersView struct {
	Roles    []domain.Role
	Page     domain.PaginatedResponse[domain.User]
	PrevPage int
	NextPage int
}

func statViews(stats domain.DashboardStats) []statView {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]statView, 0, len(keys))
	for _, k := range keys {
		out = append(out, statView{Label: statLabel(k), Value: stats[k]})
	}
	return out
}

// ---- dashboards ----

// Dashboard renders the home page of role. Counters and the upcoming list are fetched
// concurrently; either failing shows the banner.
func (h *PageHandler) Dashboard(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var (
			stats    domain.Result[domain.DashboardStats]
			upcoming domain.Result[[]domain.Appointment]
			wg       sync.WaitGroup
		)
		upcomingQuery := url.Values{"from": {h.now().Format(time.RFC3339)}, "limit": {"5"}, "sort": {"startTime"}}

		wg.Add(1)
		go func() {
			defer wg.Done()
			stats = h.statsFor(ctx, role)
		}()
		if role != domain.RoleAdmin {
			wg.Add(1)
			go func() {
				defer wg.Done()
				upcoming = h.appointmentsFor(ctx, role, upcomingQuery)
			}()
		} else {
			upcoming = domain.OK([]domain.Appointment{})
		}
		wg.Wait()

		data := h.base(r, "Dashboard")
		status := failed(&data, r, stats)
		if status == http.StatusOK {
			status = failed(&data, r, upcoming)
		}
		data.Data = dashboardView{Stats: statViews(stats.Data), Upcoming: upcoming.Data}
		h.Renderer.Render(w, r, status, "dashboard", data)
	}
}

func (h *PageHandler) statsFor(ctx context.Context, role domain.Role) domain.Result[domain.DashboardStats] {
	switch role {
	case domain.RolePatient:
		return h.Patient.Dashboard(ctx)
	case domain.RoleDoctor:
		return h.Doctor.Dashboard(ctx)
	case domain.RoleAssistant:
		return h.Assistant.Dashboard(ctx)
	default:
		return h.Admin.Stats(ctx)
	}
}

func (h *PageHandler) appointmentsFor(ctx context.Context, role domain.Role, q url.Values) domain.Result[[]domain.Appointment] {
	switch role {
	case domain.RolePatient:
		return h.Patient.Appointments(ctx, q)
	case domain.RoleDoctor:
		return h.Doctor.Appointments(ctx, q)
	case domain.RoleAssistant:
		return h.Assistant.Appointments(ctx, q)
	default:
		return domain.Fail[[]domain.Appointment](http.StatusForbidden, "appointments are not available for this role")
	}
}

// ---- appointments ----

// Appointments renders the month calendar and the appointment list of role. Patients also
// get the slot finder when ?doctor= and ?date= are set.
func (h *PageHandler) Appointments(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := h.now()
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		if m, err := time.ParseInLocation("2006-01", r.URL.Query().Get("month"), now.Location()); err == nil {
			month = m
		}

		q := listQuery(r)
		if q.Get("from") == "" && q.Get("to") == "" && q.Get("q") == "" {
			q.Set("from", month.Format(time.DateOnly))
			q.Set("to", month.AddDate(0, 1, -1).Format(time.DateOnly))
		}

		view := appointmentsView{
			Month:     month,
			PrevMonth: month.AddDate(0, -1, 0).Format("2006-01"),
			NextMonth: month.AddDate(0, 1, 0).Format("2006-01"),
			Weekdays:  weekdaysFrom(time.Sunday),
			DoctorID:  strings.TrimSpace(r.URL.Query().Get("doctor")),
			Date:      r.URL.Query().Get("date"),
			Statuses: []domain.AppointmentStatus{
				domain.AppointmentConfirmed, domain.AppointmentCheckedIn, domain.AppointmentCompleted,
				domain.AppointmentNoShow, domain.AppointmentCancelled,
			},
		}

		var (
			items domain.Result[[]domain.Appointment]
			slots = domain.OK([]domain.TimeSlot{})
			wg    sync.WaitGroup
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			items = h.appointmentsFor(ctx, role, q)
		}()
		if role == domain.RolePatient && view.DoctorID != "" && view.Date != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := time.Parse(time.DateOnly, view.Date); err != nil {
					slots = domain.Fail[[]domain.TimeSlot](http.StatusBadRequest, "date must be YYYY-MM-DD")
					return
				}
				slots = h.Patient.AvailableSlots(ctx, view.DoctorID, view.Date)
			}()
		}
		wg.Wait()

		data := h.base(r, "Appointments")
		status := failed(&data, r, items)
		if status == http.StatusOK {
			status = failed(&data, r, slots)
		}
		view.Items = items.Data
		view.Slots = slots.Data
		view.Calendar = format.MonthGrid(month.Year(), month.Month(), time.Sunday, now)
		starts := make([]time.Time, 0, len(items.Data))
		for _, a := range items.Data {
			starts = append(starts, a.StartTime)
		}
		format.MarkAppointments(view.Calendar, starts)
		data.Data = view
		h.Renderer.Render(w, r, status, "appointments", data)
	}
}

func weekdaysFrom(start time.Weekday) []time.Weekday {
	out := make([]time.Weekday, 7)
	for i := range out {
		out[i] = (start + time.Weekday(i)) % 7
	}
	return out
}

func parseFormTime(v string) time.Time {
	t, err := time.ParseInLocation(formTimeLayout, strings.TrimSpace(v), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (h *PageHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	const target = "/patient/appointments"
	if err := r.ParseForm(); err != nil {
		back(w, r, target, "error", "invalid form")
		return
	}
	req := domain.BookingRequest{
		DoctorID:  strings.TrimSpace(r.PostForm.Get("doctorId")),
		ClinicID:  r.PostForm.Get("clinicId"),
		StartTime: parseFormTime(r.PostForm.Get("startTime")),
		Reason:    strings.TrimSpace(r.PostForm.Get("reason")),
	}
	if v := validation.Merge(validation.Struct(req), futureStart(req.StartTime, h.now())); !v.IsValid {
		backInvalid(w, r, target, v)
		return
	}
	backResult(w, r, target, h.Patient.BookAppointment(r.Context(), req), "Appointment booked.")
}

func (h *PageHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	const target = "/patient/appointments"
	if err := r.ParseForm(); err != nil {
		back(w, r, target, "error", "invalid form")
		return
	}
	req := domain.CancelRequest{Reason: strings.TrimSpace(r.PostForm.Get("reason"))}
	res := h.Patient.CancelAppointment(r.Context(), chi.URLParam(r, "id"), req)
	backResult(w, r, target, res, "Appointment cancelled.")
}

func (h *PageHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	const target = "/patient/appointments"
	if err := r.ParseForm(); err != nil {
		back(w, r, target, "error", "invalid form")
		return
	}
	req := domain.RescheduleRequest{
		StartTime: parseFormTime(r.PostForm.Get("startTime")),
		Reason:    strings.TrimSpace(r.PostForm.Get("reason")),
	}
	if v := validation.Merge(validation.Struct(req), futureStart(req.StartTime, h.now())); !v.IsValid {
		backInvalid(w, r, target, v)
		return
	}
	res := h.Patient.RescheduleAppointment(r.Context(), chi.URLParam(r, "id"), req)
	backResult(w, r, target, res, "Appointment rescheduled.")
}

func (h *PageHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	const target = "/doctor/appointments"
	if err := r.ParseForm(); err != nil {
		back(w, r, target, "error", "invalid form")
		return
	}
	upd := domain.StatusUpdate{
		Status: domain.AppointmentStatus(r.PostForm.Get("status")),
		Notes:  strings.TrimSpace(r.PostForm.Get("notes")),
	}
	if v := validation.Struct(upd); !v.IsValid {
		backInvalid(w, r, target, v)
		return
	}
	res := h.Doctor.UpdateAppointmentStatus(r.Context(), chi.URLParam(r, "id"), upd)
	backResult(w, r, target, res, "Appointment updated.")
}

func (h *PageHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	res := h.Assistant.CheckIn(r.Context(), chi.URLParam(r, "id"))
	backResult(w, r, "/assistant/appointments", res, "Patient checked in.")
}

// ---- patient records ----

func (h *PageHandler) Records(w http.ResponseWriter, r *http.Request) {
	data := h.base(r, "Medical records")
	res := h.Patient.Records(r.Context(), listQuery(r))
	status := failed(&data, r, res)
	data.Data = res.Data
	h.Renderer.Render(w, r, status, "records", data)
}

func (h *PageHandler) LabResults(w http.ResponseWriter, r *http.Request) {
	data := h.base(r, "Lab results")
	res := h.Patient.LabResults(r.Context(), listQuery(r))
	status := failed(&data, r, res)
	data.Data = res.Data
	h.Renderer.Render(w, r, status, "lab_results", data)
}

func (h *PageHandler) Prescriptions(w http.ResponseWriter, r *http.Request) {
	data := h.base(r, "Prescriptions")
	res := h.Patient.Prescriptions(r.Context(), listQuery(r))
	status := failed(&data, r, res)
	data.Data = res.Data
	h.Renderer.Render(w, r, status, "prescriptions", data)
}

// ---- doctor ----

func (h *PageHandler) Patients(w http.ResponseWriter, r *http.Request) {
	data := h.base(r, "Patients")
	res := h.Doctor.Patients(r.Context(), listQuery(r))
	status := failed(&data, r, res)
	data.Data = res.Data
	h.Renderer.Render(w, r, status, "patients", data)
}

func (h *PageHandler) PatientChart(w http.ResponseWriter, r *http.Request) {
	data := h.base(r, "Patient")
	res := h.Doctor.Patient(r.Context(), chi.URLParam(r, "id"))
	status := failed(&data, r, res)
	if res.Success && res.Data.Patient.FullName != "" {
		data.Title = res.Data.Patient.FullName
	}
	data.Data = res.Data
	h.Renderer.Render(w, r, status, "patient_chart", data)
}

// ---- messages ----

// MessagesPage lists the conversations and, when ?c= is set, the selected thread. A failing
// thread only marks its own pane.
func (h *PageHandler) MessagesPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := messagesView{Active: r.URL.Query().Get("c")}

	var (
		convs  domain.Result[[]domain.Conversation]
		thread = domain.OK([]domain.Message{})
		wg     sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		convs = h.Messages.Conversations(ctx)
	}()
	if view.Active != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			thread = h.Messages.Thread(ctx, view.Active)
		}()
	}
	wg.Wait()

	data := h.base(r, "Messages")
	status := failed(&data, r, convs)
	view.Conversations = convs.Data
	view.Thread = thread.Data
	if !thread.Success {
		view.ThreadError = thread.Message
	}
	data.Data = view
	h.Renderer.Render(w, r, status, "messages", data)
}

func (h *PageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path
	if err := r.ParseForm(); err != nil {
		back(w, r, target, "error", "invalid form")
		return
	}
	msg := domain.SendMessage{
		ConversationID: r.PostForm.Get("conversationId"),
		RecipientID:    r.PostForm.Get("recipientId"),
		Content:        strings.TrimSpace(r.PostForm.Get("content")),
	}
	if msg.ConversationID != "" {
		target += "?" + url.Values{"c": {msg.ConversationID}}.Encode()
	}
	if v := validateMessage(msg); !v.IsValid {
		backInvalid(w, r, target, v)
		return
	}
	backResult(w, r, target, h.Messages.Send(r.Context(), msg), "")
}

// ---- admin ----

func (h *PageHandler) Users(w http.ResponseWriter, r *http.Request) {
	q := listQuery(r)
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))

	data := h.base(r, "Users")
	res := h.Admin.Users(r.Context(), q)
	status := failed(&data, r, res)
	view := usersView{Roles: domain.AllRoles, Page: res.Data}
	if page > 1 {
		view.PrevPage = page - 1
	}
	if res.Data.Limit > 0 && page*res.Data.Limit < res.Data.Total {
		view.NextPage = page + 1
	}
	data.Data = view
	h.Renderer.Render(w, r, status, "users", data)
}

func (h *PageHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	const target = "/admin/users"
	if err := r.ParseForm(); err != nil {
		back(w, r, target, "error", "invalid form")
		return
	}
	in := domain.UserInput{
		FullName:    strings.TrimSpace(r.PostForm.Get("fullName")),
		Email:       strings.TrimSpace(r.PostForm.Get("email")),
		PhoneNumber: strings.TrimSpace(r.PostForm.Get("phoneNumber")),
		Role:        domain.Role(r.PostForm.Get("role")),
		Password:    r.PostForm.Get("password"),
	}
	if v := validation.Struct(in); !v.IsValid {
		backInvalid(w, r, target, v)
		return
	}
	backResult(w, r, target, h.Admin.CreateUser(r.Context(), in), "User created.")
}

func (h *PageHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	backResult(w, r, "/admin/users", h.Admin.DeleteUser(r.Context(), chi.URLParam(r, "id")), "User deleted.")
}

func (h *PageHandler) ClinicsPage(w http.ResponseWriter, r *http.Request) {
	data := h.base(r, "Clinics")
	res := h.Clinics.List(r.Context(), listQuery(r))
	status := failed(&data, r, res)
	data.Data = res.Data
	h.Renderer.Render(w, r, status, "clinics", data)
}

func (h *PageHandler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	const target = "/admin/clinics"
	if err := r.ParseForm(); err != nil {
		back(w, r, target, "error", "invalid form")
		return
	}
	in := domain.ClinicInput{
		Name:    strings.TrimSpace(r.PostForm.Get("name")),
		Address: strings.TrimSpace(r.PostForm.Get("address")),
		Phone:   strings.TrimSpace(r.PostForm.Get("phone")),
		Email:   strings.TrimSpace(r.PostForm.Get("email")),
		Status:  "active",
	}
	if v := validation.Struct(in); !v.IsValid {
		backInvalid(w, r, target, v)
		return
	}
	backResult(w, r, target, h.Clinics.Create(r.Context(), in), "Clinic created.")
}

func (h *PageHandler) DeleteClinic(w http.ResponseWriter, r *http.Request) {
	backResult(w, r, "/admin/clinics", h.Clinics.Delete(r.Context(), chi.URLParam(r, "id")), "Clinic deleted.")
}
