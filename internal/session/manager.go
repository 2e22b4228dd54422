// Package session owns the authenticated state of a browser: storage, cookies and the
// login/logout flows. Manager is the only writer; everything else reads the domain.Session
// the session middleware puts into the request context.
package session

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/baechuer/careportal/internal/audit"
	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/logger"
	"github.com/baechuer/careportal/internal/reqctx"
	"github.com/baechuer/careportal/internal/validation"
)

var sessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "portal_session_events_total",
		Help: "Session lifecycle events by outcome",
	},
	[]string{"event", "outcome"},
)

// AuthBackend is the backend auth resource the manager drives.
type AuthBackend interface {
	Login(ctx context.Context, creds domain.Credentials) domain.Result[domain.LoginResult]
	Register(ctx context.Context, reg domain.Registration) domain.Result[domain.User]
	VerifyOTP(ctx context.Context, v domain.OTPVerification) domain.Result[domain.LoginResult]
	Logout(ctx context.Context) domain.Result[struct{}]
}

type Options struct {
	Cookies        CookieOptions
	RevokeOnLogout bool
	// RevokeTimeout bounds the best-effort backend revocation on logout.
	RevokeTimeout time.Duration
}

type Manager struct {
	auth    AuthBackend
	store   Storage
	opts    Options
	audit   *audit.Logger
	now     func() time.Time
	storeOK bool
}

func NewManager(auth AuthBackend, store Storage, opts Options, auditLog *audit.Logger) *Manager {
	if auditLog == nil {
		auditLog = audit.Nop()
	}
	if opts.RevokeTimeout <= 0 {
		opts.RevokeTimeout = 3 * time.Second
	}
	return &Manager{
		auth:    auth,
		store:   store,
		opts:    opts,
		audit:   auditLog,
		now:     time.Now,
		storeOK: store != nil,
	}
}

// Storage exposes the backing storage for readiness checks.
func (m *Manager) Storage() Storage { return m.store }

// Login validates credentials locally, authenticates against the backend and, on success,
// persists the session and writes both cookies.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, creds domain.Credentials) domain.Result[domain.LoginResult] {
	creds.Email = strings.TrimSpace(creds.Email)
	creds.PhoneNumber = strings.TrimSpace(creds.PhoneNumber)

	if v := ValidateCredentials(creds); !v.IsValid {
		sessionEventsTotal.WithLabelValues("login", "invalid").Inc()
		return validationFailure[domain.LoginResult](v)
	}

	identifier := creds.Email
	if identifier == "" {
		identifier = creds.PhoneNumber
	}

	res := m.auth.Login(ctx, creds)
	if !res.Success {
		sessionEventsTotal.WithLabelValues("login", "rejected").Inc()
		m.audit.LoginFailed(ctx, identifier, clientIP(r), res.Message)
		return res
	}
	if res.Data.Token == "" {
		sessionEventsTotal.WithLabelValues("login", "rejected").Inc()
		m.audit.LoginFailed(ctx, identifier, clientIP(r), "missing token")
		return domain.Fail[domain.LoginResult](http.StatusBadGateway, "login response did not include a token")
	}

	sess := m.establish(ctx, w, res.Data)
	res.Data.User = *sess.User
	sessionEventsTotal.WithLabelValues("login", "success").Inc()
	m.audit.LoginSuccess(ctx, sess.User.ID, identifier, string(sess.Role), clientIP(r))
	return res
}

// establish stores the session and writes cookies. The returned session carries the
// normalised role, which callers hand back instead of the backend's raw user. A storage failure only degrades
// CurrentUser to token claims; the cookies still carry the session.
func (m *Manager) establish(ctx context.Context, w http.ResponseWriter, lr domain.LoginResult) domain.Session {
	user := lr.User
	if user.Role == "" {
		if cu := userFromClaims(lr.Token, m.now()); cu != nil {
			user.Role = cu.Role
			if user.ID == "" {
				user.ID = cu.ID
			}
		}
	}
	user.Role = domain.ParseRole(string(user.Role))

	sess := domain.Session{Token: lr.Token, Role: user.Role, User: &user}
	if m.storeOK {
		if err := m.store.Save(ctx, lr.Token, sess, m.opts.Cookies.TTL); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("session_store_save_failed")
		}
	}
	setSessionCookies(w, lr.Token, user.Role, m.opts.Cookies)
	return sess
}

// IsAuthenticated is true iff the request carries a session token.
func (m *Manager) IsAuthenticated(r *http.Request) bool {
	return ReadToken(r) != ""
}

// Resolve builds the read-only session for r. Role precedence: stored session, token claims,
// then the user-role cookie.
func (m *Manager) Resolve(r *http.Request) (domain.Session, bool) {
	token := ReadToken(r)
	if token == "" {
		return domain.Session{}, false
	}
	ctx := r.Context()

	if m.storeOK {
		sess, err := m.store.Load(ctx, token)
		switch {
		case err == nil:
			sess.Token = token
			return sess, true
		case !errors.Is(err, ErrNotFound):
			logger.Ctx(ctx).Warn().Err(err).Msg("session_store_load_failed")
		}
	}

	sess := domain.Session{Token: token}
	if u := userFromClaims(token, m.now()); u != nil {
		sess.User = u
		sess.Role = u.Role
	}
	if sess.Role == "" {
		sess.Role = ReadRoleCookie(r)
	}
	return sess, true
}

// CurrentUser returns the cached user of the session, or nil.
func (m *Manager) CurrentUser(r *http.Request) *domain.User {
	if s, ok := reqctx.GetSession(r.Context()); ok {
		return s.User
	}
	s, ok := m.Resolve(r)
	if !ok {
		return nil
	}
	return s.User
}

// Logout tears the session down locally: storage entry removed, both cookies expired.
// Backend revocation runs first when enabled and never blocks the teardown.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	token := ReadToken(r)
	var userID string
	if s, ok := m.Resolve(r); ok && s.User != nil {
		userID = s.User.ID
	}

	revoked := false
	if token != "" && m.opts.RevokeOnLogout {
		rctx, cancel := context.WithTimeout(reqctx.WithSession(ctx, domain.Session{Token: token}), m.opts.RevokeTimeout)
		res := m.auth.Logout(rctx)
		cancel()
		revoked = res.Success
		if !res.Success {
			logger.Ctx(ctx).Warn().Int("status", res.Status).Str("message", res.Message).Msg("logout_revoke_failed")
		}
	}

	if token != "" && m.storeOK {
		if err := m.store.Delete(ctx, token); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("session_store_delete_failed")
		}
	}
	clearSessionCookies(w, m.opts.Cookies)

	sessionEventsTotal.WithLabelValues("logout", "success").Inc()
	m.audit.Logout(ctx, userID, revoked)
}

// Register validates a self-registration and forwards it. Self-registered accounts are
// always patients and must be adults.
func (m *Manager) Register(ctx context.Context, reg domain.Registration) domain.Result[domain.User] {
	reg.Role = domain.RolePatient
	reg.Email = strings.TrimSpace(reg.Email)
	reg.FullName = strings.TrimSpace(reg.FullName)

	v := validation.Merge(
		validation.Struct(reg),
		validation.DateOfBirth(reg.DateOfBirth, m.now(), true),
	)
	if !v.IsValid {
		sessionEventsTotal.WithLabelValues("register", "invalid").Inc()
		return validationFailure[domain.User](v)
	}

	res := m.auth.Register(ctx, reg)
	if !res.Success {
		sessionEventsTotal.WithLabelValues("register", "rejected").Inc()
		return res
	}
	sessionEventsTotal.WithLabelValues("register", "success").Inc()
	m.audit.Registered(ctx, res.Data.ID, reg.Email)
	return res
}

// VerifyOTP confirms a phone number. When the backend answers with a token the user is
// logged in right away.
func (m *Manager) VerifyOTP(ctx context.Context, w http.ResponseWriter, v domain.OTPVerification) domain.Result[domain.LoginResult] {
	if vr := validation.Struct(v); !vr.IsValid {
		return validationFailure[domain.LoginResult](vr)
	}

	res := m.auth.VerifyOTP(ctx, v)
	if !res.Success {
		sessionEventsTotal.WithLabelValues("verify_otp", "rejected").Inc()
		return res
	}
	if res.Data.Token != "" {
		res.Data.User = *m.establish(ctx, w, res.Data).User
	}
	sessionEventsTotal.WithLabelValues("verify_otp", "success").Inc()
	m.audit.OTPVerified(ctx, v.PhoneNumber)
	return res
}

// ValidateCredentials requires exactly one identifier (email or phone) and a password.
func ValidateCredentials(c domain.Credentials) validation.Result {
	var errs []string
	switch {
	case c.Email == "" && c.PhoneNumber == "":
		errs = append(errs, "email or phone number is required")
	case c.Email != "":
		errs = append(errs, validation.Email(c.Email).Errors...)
	default:
		errs = append(errs, validation.Phone(c.PhoneNumber).Errors...)
	}
	if c.Password == "" {
		errs = append(errs, "password is required")
	}
	return validation.Result{IsValid: len(errs) == 0, Errors: errs}
}

func validationFailure[T any](v validation.Result) domain.Result[T] {
	res := domain.Fail[T](http.StatusBadRequest, "please correct the highlighted fields")
	res.Errors = v.Errors
	return res
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
