package guard

import (
	"net/url"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/careportal/internal/domain"
)

func newPolicy() *Policy {
	return DefaultPolicy("/auth/login", "/unauthorized")
}

func session(role domain.Role) domain.Session {
	return domain.Session{Token: "tok", Role: role}
}

// Every role outside a prefix's allow-list lands on the unauthorized page, for every path
// under that prefix.
func TestDecide_RoleMatrix(t *testing.T) {
	p := newPolicy()
	suffixes := []string{"", "/", "/dashboard", "/appointments/42", "/a/b/c?x=1"}

	for _, rule := range p.Rules() {
		for _, role := range append(slices.Clone(domain.AllRoles), "nurse", "") {
			for _, suffix := range suffixes {
				path := rule.Prefix + suffix
				d := p.Decide(path, session(role))
				if rule.Allows(role) {
					assert.Equal(t, Allow, d.Outcome, "%s as %q", path, role)
				} else {
					assert.Equal(t, RedirectUnauthorized, d.Outcome, "%s as %q", path, role)
					assert.Equal(t, "/unauthorized", d.Location)
				}
			}
		}
	}
}

func TestDecide_AdminReachesEverySubtree(t *testing.T) {
	p := newPolicy()
	for _, rule := range p.Rules() {
		assert.Equal(t, Allow, p.Decide(rule.Prefix+"/dashboard", session(domain.RoleAdmin)).Outcome)
	}
}

func TestDecide_NoTokenRedirectsToLoginWithOriginalPath(t *testing.T) {
	p := newPolicy()
	for _, rule := range p.Rules() {
		path := rule.Prefix + "/dashboard"
		d := p.Decide(path, domain.Session{Role: domain.RoleAdmin})

		require.Equal(t, RedirectLogin, d.Outcome, path)
		u, err := url.Parse(d.Location)
		require.NoError(t, err)
		assert.Equal(t, "/auth/login", u.Path)
		assert.Equal(t, path, u.Query().Get("redirect"))
	}
}

func TestDecide_PublicPathsIgnoreAuthState(t *testing.T) {
	p := newPolicy()
	public := []string{
		"/", "/auth/login", "/auth/register", "/auth/verify-otp", "/help", "/privacy",
		"/appointments", "/appointments/book", "/unauthorized", "/static/app.css",
		"/healthz", "/api/patient/records",
	}
	states := []domain.Session{
		{},
		session(domain.RolePatient),
		session(domain.RoleAdmin),
		session("unknown"),
	}

	for _, path := range public {
		for _, s := range states {
			d := p.Decide(path, s)
			assert.Equal(t, Allow, d.Outcome, "%s as %+v", path, s)
			assert.Nil(t, d.Rule)
		}
	}
}

func TestDecide_UnlistedPathsFailOpen(t *testing.T) {
	p := newPolicy()
	for _, path := range []string{"/about", "/contact", "/careers/jobs"} {
		assert.Equal(t, Allow, p.Decide(path, domain.Session{}).Outcome, path)
	}
}

func TestDecide_UnknownRoleFailsClosed(t *testing.T) {
	p := newPolicy()
	d := p.Decide("/patient/dashboard", session("superuser"))
	assert.Equal(t, RedirectUnauthorized, d.Outcome)
}

func TestMatch_FirstRuleWins(t *testing.T) {
	p := NewPolicy([]Rule{
		{Prefix: "/admin", Roles: []domain.Role{domain.RoleAdmin}},
		{Prefix: "/admin/reports", Roles: []domain.Role{domain.RoleDoctor, domain.RoleAdmin}},
	}, "/auth/login", "/unauthorized")

	rule, ok := p.Match("/admin/reports/2026")
	require.True(t, ok)
	assert.Equal(t, "/admin", rule.Prefix)
	assert.Equal(t, RedirectUnauthorized, p.Decide("/admin/reports/2026", session(domain.RoleDoctor)).Outcome)
}

func TestMatch_PlainPrefix(t *testing.T) {
	p := newPolicy()
	rule, ok := p.Match("/patients-guide")
	require.True(t, ok)
	assert.Equal(t, "/patient", rule.Prefix)
}

func TestPublicTrees_RequireSegmentBoundary(t *testing.T) {
	p := newPolicy()
	assert.True(t, p.IsPublic("/help"))
	assert.True(t, p.IsPublic("/help/faq"))
	assert.False(t, p.IsPublic("/helpdesk"))
	assert.True(t, p.IsPublic("/appointments-guide"))
}

func TestSafeRedirect(t *testing.T) {
	cases := map[string]string{
		"/doctor/patients?q=john": "/doctor/patients?q=john",
		"":                        "/home",
		"https://evil.example":    "/home",
		"//evil.example/x":        "/home",
		"/\\evil.example":         "/home",
		"relative/path":           "/home",
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeRedirect(in, "/home"), in)
	}
}

func TestCleanPath(t *testing.T) {
	cases := map[string]string{
		"":                      "/",
		"/":                     "/",
		"/api/x/../admin/stats": "/api/admin/stats",
		"//admin":               "/admin",
		"/patient/./records/":   "/patient/records",
		"/../..":                "/",
		"admin":                 "/admin",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanPath(in), in)
	}
	assert.True(t, IsCanonical("/api/clinics"))
	assert.True(t, IsCanonical("/api/clinics/"))
	assert.False(t, IsCanonical("/api/x/../admin"))
	assert.False(t, IsCanonical("/api//admin"))
}

func TestDecide_DotSegmentsCannotEscapeARule(t *testing.T) {
	p := newPolicy()
	for _, path := range []string{"/help/../admin/users", "/auth/../admin", "//admin/users", "/static/./../admin"} {
		d := p.Decide(path, session(domain.RolePatient))
		assert.Equal(t, RedirectUnauthorized, d.Outcome, path)
		require.NotNil(t, d.Rule, path)
		assert.Equal(t, "/admin", d.Rule.Prefix)
	}
}

func TestDecideURL_LoginRedirectCarriesQuery(t *testing.T) {
	p := newPolicy()
	u, err := url.Parse("/doctor/patients?q=john")
	require.NoError(t, err)

	d := p.DecideURL(u, domain.Session{})
	require.Equal(t, RedirectLogin, d.Outcome)
	loc, err := url.Parse(d.Location)
	require.NoError(t, err)
	assert.Equal(t, "/doctor/patients?q=john", loc.Query().Get("redirect"))
}

func TestAfterLogin(t *testing.T) {
	p := newPolicy()
	cases := []struct {
		target string
		role   domain.Role
		want   string
	}{
		{"/doctor/patients?q=john", domain.RoleDoctor, "/doctor/patients?q=john"},
		{"/admin/users", domain.RolePatient, "/patient/dashboard"},
		{"/patient/../admin/users", domain.RolePatient, "/patient/dashboard"},
		{"/patient/records", domain.RoleAdmin, "/patient/records"},
		{"/help", domain.RoleAssistant, "/help"},
		{"/about", domain.RoleAssistant, "/about"},
		{"//evil.example", domain.RoleDoctor, "/doctor/dashboard"},
		{"", domain.RoleAdmin, "/admin/dashboard"},
		{"/doctor/patients", "", "/"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, p.AfterLogin(tc.target, tc.role), "%s as %q", tc.target, tc.role)
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect_login", RedirectLogin.String())
	assert.Equal(t, "redirect_unauthorized", RedirectUnauthorized.String())
}
