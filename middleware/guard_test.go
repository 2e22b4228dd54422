package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/guard"
)

type staticResolver struct {
	sess domain.Session
}

func (s staticResolver) Resolve(r *http.Request) (domain.Session, bool) {
	return s.sess, s.sess.Token != ""
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func pageChain(sess domain.Session) http.Handler {
	p := guard.DefaultPolicy("/auth/login", "/unauthorized")
	return Session(staticResolver{sess})(RouteGuard(p, nil)(okHandler))
}

func TestRouteGuard_RedirectsToLoginWithRedirectParam(t *testing.T) {
	rec := httptest.NewRecorder()
	pageChain(domain.Session{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctor/patients", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", loc.Path)
	assert.Equal(t, "/doctor/patients", loc.Query().Get("redirect"))
}

func TestRouteGuard_RedirectKeepsQuery(t *testing.T) {
	rec := httptest.NewRecorder()
	pageChain(domain.Session{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctor/patients?q=john&page=2", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/doctor/patients?q=john&page=2", loc.Query().Get("redirect"))
}

func TestRouteGuard_DotSegmentsJudgedOnCleanPath(t *testing.T) {
	rec := httptest.NewRecorder()
	pageChain(domain.Session{Token: "t", Role: domain.RolePatient}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/help/../admin/users", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
}

func TestRouteGuard_WrongRoleGoesToUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	pageChain(domain.Session{Token: "t", Role: domain.RolePatient}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
}

func TestRouteGuard_AllowsMatchingRoleAndPublic(t *testing.T) {
	cases := []struct {
		sess domain.Session
		path string
	}{
		{domain.Session{Token: "t", Role: domain.RoleAssistant}, "/assistant/dashboard"},
		{domain.Session{Token: "t", Role: domain.RoleAdmin}, "/patient/records"},
		{domain.Session{}, "/"},
		{domain.Session{}, "/auth/login"},
		{domain.Session{}, "/appointments"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		pageChain(tc.sess).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, tc.path)
	}
}

func TestAPIGuard(t *testing.T) {
	p := guard.DefaultPolicy("/auth/login", "/unauthorized")
	chain := func(sess domain.Session) http.Handler {
		return Session(staticResolver{sess})(APIGuard(p, nil)(okHandler))
	}

	cases := []struct {
		name   string
		sess   domain.Session
		path   string
		status int
	}{
		{"no token", domain.Session{}, "/api/patient/records", http.StatusUnauthorized},
		{"wrong role", domain.Session{Token: "t", Role: domain.RoleDoctor}, "/api/admin/users", http.StatusForbidden},
		{"allowed", domain.Session{Token: "t", Role: domain.RoleDoctor}, "/api/doctor/patients", http.StatusOK},
		{"admin everywhere", domain.Session{Token: "t", Role: domain.RoleAdmin}, "/api/assistant/appointments", http.StatusOK},
		{"unlisted", domain.Session{}, "/api/clinics", http.StatusOK},
		{"dot segments", domain.Session{Token: "t", Role: domain.RolePatient}, "/api/x/../admin/stats", http.StatusForbidden},
		{"encoded dot segments", domain.Session{Token: "t", Role: domain.RolePatient}, "/api/x/%2e%2e/admin/stats", http.StatusForbidden},
		{"doubled slash", domain.Session{}, "/api//patient/records", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			chain(tc.sess).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, rec.Code)
			if tc.status >= 400 {
				var body domain.Result[any]
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.False(t, body.Success)
				assert.NotEmpty(t, body.Message)
			}
		})
	}
}

func TestRequireSession(t *testing.T) {
	rec := httptest.NewRecorder()
	Session(staticResolver{})(RequireSession(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/messages", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	Session(staticResolver{domain.Session{Token: "t", Role: domain.RolePatient}})(RequireSession(okHandler)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/messages", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
