package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/guard"
	"github.com/baechuer/careportal/internal/reqctx"
	"github.com/baechuer/careportal/internal/validation"
	"github.com/baechuer/careportal/internal/web"
)

// PageDeps are the collaborators of the server rendered pages.
type PageDeps struct {
	Renderer  *web.Renderer
	Policy    *guard.Policy
	Sessions  SessionService
	Patient   PatientClient
	Doctor    DoctorClient
	Assistant AssistantClient
	Admin     AdminClient
	Clinics   ClinicClient
	Messages  MessageClient
}

// PageHandler serves the pages. Every page follows the same lifecycle: guard check, fetch,
// render the data or an error banner with Retry; form posts mutate and redirect back so the
// page refetches.
type PageHandler struct {
	PageDeps
	now func() time.Time
}

func NewPageHandler(deps PageDeps) *PageHandler {
	return &PageHandler{PageDeps: deps, now: time.Now}
}

// Protect is the page-mount check. It runs the same policy as the edge middleware so the
// two layers cannot drift apart.
func (h *PageHandler) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := reqctx.GetSession(r.Context())
		d := h.Policy.DecideURL(r.URL, sess)
		if d.Outcome != guard.Allow {
			http.Redirect(w, r, d.Location, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// base fills the parts of PageData shared by every page.
func (h *PageHandler) base(r *http.Request, title string) web.PageData {
	q := r.URL.Query()
	data := web.PageData{
		Title:  title,
		Path:   r.URL.Path,
		Query:  q.Get("q"),
		Notice: q.Get("notice"),
		Error:  q.Get("error"),
		Now:    h.now(),
	}
	if sess, ok := reqctx.GetSession(r.Context()); ok {
		data.Role = sess.Role
		data.User = sess.User
		if data.User == nil {
			data.User = &domain.User{Role: sess.Role, FullName: titleRole(sess.Role)}
		}
		data.Nav = web.NavFor(sess.Role, r.URL.Path)
	}
	return data
}

// failed turns a failed fetch into the page banner and picks the response status.
func failed[T any](data *web.PageData, r *http.Request, res domain.Result[T]) int {
	if res.Success {
		return http.StatusOK
	}
	data.Error = res.Message
	data.RetryURL = retryURL(r)
	return statusFromResult(res.Status)
}

// retryURL is the current page without the one-shot notice/error parameters.
func retryURL(r *http.Request) string {
	q := r.URL.Query()
	q.Del("notice")
	q.Del("error")
	if len(q) == 0 {
		return r.URL.Path
	}
	return r.URL.Path + "?" + q.Encode()
}

// back redirects to target (a local path, optionally with a query) after a form post,
// carrying a one-shot message.
func back(w http.ResponseWriter, r *http.Request, target, key, msg string) {
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		u = &url.URL{Path: "/"}
	}
	if msg != "" {
		q := u.Query()
		q.Set(key, msg)
		u.RawQuery = q.Encode()
	}
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// backResult redirects with a notice on success and the failure message otherwise.
func backResult[T any](w http.ResponseWriter, r *http.Request, target string, res domain.Result[T], notice string) {
	if !res.Success {
		back(w, r, target, "error", res.Message)
		return
	}
	back(w, r, target, "notice", notice)
}

func backInvalid(w http.ResponseWriter, r *http.Request, target string, v validation.Result) {
	back(w, r, target, "error", strings.Join(v.Errors, "; "))
}

func titleRole(role domain.Role) string {
	s := string(role)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// statLabel turns backend counter keys ("upcomingAppointments", "total_users") into labels.
func statLabel(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && i > 0:
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ---- public pages ----

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}
	data := h.base(r, "")
	data.Data = data.Role.HomePath()
	h.Renderer.Render(w, r, http.StatusOK, "home", data)
}

func (h *PageHandler) Help(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, http.StatusOK, "help", h.base(r, "Help"))
}

func (h *PageHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, http.StatusOK, "privacy", h.base(r, "Privacy"))
}

func (h *PageHandler) PublicAppointments(w http.ResponseWriter, r *http.Request) {
	data := h.base(r, "Appointments")
	res := h.Clinics.List(r.Context(), listQuery(r))
	status := failed(&data, r, res)
	data.Data = res.Data
	h.Renderer.Render(w, r, status, "public_appointments", data)
}

func (h *PageHandler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	data := h.base(r, "Access denied")
	if data.Role != "" {
		data.Data = data.Role.HomePath()
	}
	h.Renderer.Render(w, r, http.StatusForbidden, "unauthorized", data)
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, http.StatusNotFound, "not_found", h.base(r, "Not found"))
}

// ---- auth pages ----

func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := reqctx.GetSession(r.Context()); ok && domain.IsValidRole(string(sess.Role)) {
		http.Redirect(w, r, h.Policy.AfterLogin(r.URL.Query().Get("redirect"), sess.Role), http.StatusFound)
		return
	}
	data := h.base(r, "Log in")
	data.Data = r.URL.Query().Get("redirect")
	h.Renderer.Render(w, r, http.StatusOK, "login", data)
}

func (h *PageHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		back(w, r, h.Policy.LoginPath(), "error", "invalid form")
		return
	}
	redirect := r.PostForm.Get("redirect")
	creds := credentialsFromIdentifier(r.PostForm.Get("identifier"), r.PostForm.Get("password"))

	res := h.Sessions.Login(r.Context(), w, r, creds)
	if !res.Success {
		data := h.base(r, "Log in")
		data.Error = res.Message
		data.FormErrors = res.Errors
		data.Data = redirect
		status := http.StatusUnauthorized
		if res.Status == http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		h.Renderer.Render(w, r, status, "login", data)
		return
	}
	http.Redirect(w, r, h.Policy.AfterLogin(redirect, res.Data.User.Role), http.StatusSeeOther)
}

// credentialsFromIdentifier treats anything with an @ as an email, everything else as a phone.
func credentialsFromIdentifier(identifier, password string) domain.Credentials {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return domain.Credentials{Email: identifier, Password: password}
	}
	return domain.Credentials{PhoneNumber: identifier, Password: password}
}

// registerForm refills the register page. Strength rates the rejected password so the
// form can show how far it is from the rules; it is only set after a submit.
type registerForm struct {
	domain.Registration
	Strength    int
	StrengthMax int
}

func (h *PageHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	data := h.base(r, "Create an account")
	data.Data = registerForm{}
	h.Renderer.Render(w, r, http.StatusOK, "register", data)
}

func (h *PageHandler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		back(w, r, "/auth/register", "error", "invalid form")
		return
	}
	reg := domain.Registration{
		FullName:    r.PostForm.Get("fullName"),
		Email:       r.PostForm.Get("email"),
		PhoneNumber: r.PostForm.Get("phoneNumber"),
		Password:    r.PostForm.Get("password"),
	}
	if dob := r.PostForm.Get("dateOfBirth"); dob != "" {
		if t, err := time.ParseInLocation(time.DateOnly, dob, time.Local); err == nil {
			reg.DateOfBirth = t
		}
	}

	res := h.Sessions.Register(r.Context(), reg)
	if !res.Success {
		data := h.base(r, "Create an account")
		data.Error = res.Message
		data.FormErrors = res.Errors
		form := registerForm{
			Strength:    validation.PasswordStrength(reg.Password),
			StrengthMax: validation.PasswordRuleCount,
		}
		reg.Password = ""
		form.Registration = reg
		data.Data = form
		h.Renderer.Render(w, r, statusFromResult(res.Status), "register", data)
		return
	}
	u := url.URL{Path: "/auth/verify-otp", RawQuery: url.Values{
		"phone":  {reg.PhoneNumber},
		"notice": {"Account created. Enter the code we sent to your phone."},
	}.Encode()}
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

func (h *PageHandler) VerifyOTPPage(w http.ResponseWriter, r *http.Request) {
	data := h.base(r, "Verify your phone")
	data.Data = r.URL.Query().Get("phone")
	h.Renderer.Render(w, r, http.StatusOK, "verify_otp", data)
}

func (h *PageHandler) VerifyOTPSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		back(w, r, "/auth/verify-otp", "error", "invalid form")
		return
	}
	v := domain.OTPVerification{
		PhoneNumber: strings.TrimSpace(r.PostForm.Get("phoneNumber")),
		Code:        strings.TrimSpace(r.PostForm.Get("code")),
	}
	res := h.Sessions.VerifyOTP(r.Context(), w, v)
	if !res.Success {
		data := h.base(r, "Verify your phone")
		data.Error = res.Message
		data.FormErrors = res.Errors
		data.Data = v.PhoneNumber
		h.Renderer.Render(w, r, statusFromResult(res.Status), "verify_otp", data)
		return
	}
	if res.Data.Token != "" {
		http.Redirect(w, r, res.Data.User.Role.HomePath(), http.StatusSeeOther)
		return
	}
	back(w, r, h.Policy.LoginPath(), "notice", "Phone verified. You can now log in.")
}

func (h *PageHandler) LogoutSubmit(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(r.Context(), w, r)
	back(w, r, h.Policy.LoginPath(), "notice", "You have been logged out.")
}
