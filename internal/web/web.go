// Package web renders the portal pages from embedded templates.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/format"
	"github.com/baechuer/careportal/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages rendered inside the shared layout.
var Pages = []string{
	"home", "help", "privacy", "public_appointments", "login", "register", "verify_otp",
	"unauthorized", "not_found", "dashboard", "appointments", "records", "lab_results",
	"prescriptions", "messages", "patients", "patient_chart", "users", "clinics",
}

type NavLink struct {
	Label  string
	Href   string
	Active bool
}

// PageData is what every template receives.
type PageData struct {
	Title string
	Path  string
	User  *domain.User
	Role  domain.Role
	Nav   []NavLink

	// Error is the page level banner; RetryURL re-runs the failed fetch.
	Error    string
	RetryURL string
	Notice   string
	// FormErrors lists field level validation messages.
	FormErrors []string

	Query          string
	SearchDebounce int64
	Now            time.Time
	Data           any
}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"date":         format.Date,
		"datetime":     format.DateTime,
		"clock":        format.Time,
		"relative":     format.RelativeTime,
		"phone":        format.Phone,
		"initials":     format.Initials,
		"truncate":     format.Truncate,
		"statusLabel":  statusLabel,
		"statusClass":  statusClass,
		"isoDate":      func(t time.Time) string { return t.Format(time.DateOnly) },
		"isoLocal":     func(t time.Time) string { return t.Format("2006-01-02T15:04") },
		"hasRole":      func(r domain.Role, want string) bool { return string(r) == want },
		"title":        titleCase,
		"monthLabel":   func(t time.Time) string { return t.Format("January 2006") },
		"weekdayShort": func(d time.Weekday) string { return d.String()[:3] },
	}

	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(Pages))
	for _, name := range Pages {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render executes into a buffer first so a template failure never leaves a half written page.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	t, ok := rd.pages[page]
	if !ok {
		logger.Ctx(r.Context()).Error().Str("page", page).Msg("unknown_page_template")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data.Now.IsZero() {
		data.Now = time.Now()
	}
	if data.Path == "" {
		data.Path = r.URL.Path
	}
	data.SearchDebounce = format.DefaultSearchDebounce.Milliseconds()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("template_render_failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// StaticHandler serves the embedded assets under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// NavFor builds the sidebar of a role; Active marks the current section.
func NavFor(role domain.Role, path string) []NavLink {
	var links []NavLink
	switch role {
	case domain.RolePatient:
		links = []NavLink{
			{Label: "Dashboard", Href: "/patient/dashboard"},
			{Label: "Appointments", Href: "/patient/appointments"},
			{Label: "Medical records", Href: "/patient/records"},
			{Label: "Lab results", Href: "/patient/lab-results"},
			{Label: "Prescriptions", Href: "/patient/prescriptions"},
			{Label: "Messages", Href: "/patient/messages"},
		}
	case domain.RoleDoctor:
		links = []NavLink{
			{Label: "Dashboard", Href: "/doctor/dashboard"},
			{Label: "Appointments", Href: "/doctor/appointments"},
			{Label: "Patients", Href: "/doctor/patients"},
			{Label: "Messages", Href: "/doctor/messages"},
		}
	case domain.RoleAssistant:
		links = []NavLink{
			{Label: "Dashboard", Href: "/assistant/dashboard"},
			{Label: "Appointments", Href: "/assistant/appointments"},
		}
	case domain.RoleAdmin:
		links = []NavLink{
			{Label: "Dashboard", Href: "/admin/dashboard"},
			{Label: "Users", Href: "/admin/users"},
			{Label: "Clinics", Href: "/admin/clinics"},
		}
	}
	for i := range links {
		links[i].Active = path == links[i].Href || strings.HasPrefix(path, links[i].Href+"/")
	}
	return links
}

func statusLabel(s domain.AppointmentStatus) string {
	return titleCase(strings.ReplaceAll(string(s), "_", " "))
}

func statusClass(v any) string {
	switch fmt.Sprint(v) {
	case "confirmed", "completed", "checked_in", "active", "normal":
		return "ok"
	case "cancelled", "no_show", "abnormal", "critical", "inactive":
		return "bad"
	default:
		return "pending"
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
