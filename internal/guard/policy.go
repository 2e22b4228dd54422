// Package guard holds the route to role table and the navigation decision shared by the
// edge middleware, the page handlers and the JSON API gate.
package guard

import (
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/baechuer/careportal/internal/domain"
)

type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectUnauthorized
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Rule gates every path starting with Prefix to Roles.
type Rule struct {
	Prefix string
	Roles  []domain.Role
}

func (r Rule) Allows(role domain.Role) bool {
	return slices.Contains(r.Roles, role)
}

type Decision struct {
	Outcome Outcome
	// Location is the redirect target; empty for Allow.
	Location string
	// Rule is the matched protected prefix, nil for public or unlisted paths.
	Rule *Rule
}

// Policy is immutable after construction.
type Policy struct {
	rules []Rule
	// publicExact matches only the path itself.
	publicExact []string
	// publicTrees match the path and everything below it ("/auth" covers "/auth/login").
	publicTrees []string
	// publicPrefixes are raw string prefixes ("/appointments" covers "/appointments-guide").
	publicPrefixes []string

	loginPath        string
	unauthorizedPath string
}

// DefaultRules is the protected table. Order matters: the first prefix that matches wins.
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "/patient", Roles: []domain.Role{domain.RolePatient, domain.RoleAdmin}},
		{Prefix: "/doctor", Roles: []domain.Role{domain.RoleDoctor, domain.RoleAdmin}},
		{Prefix: "/assistant", Roles: []domain.Role{domain.RoleAssistant, domain.RoleAdmin}},
		{Prefix: "/admin", Roles: []domain.Role{domain.RoleAdmin}},
	}
}

func NewPolicy(rules []Rule, loginPath, unauthorizedPath string) *Policy {
	return &Policy{
		rules:       slices.Clone(rules),
		publicExact: []string{"/", "/favicon.ico"},
		publicTrees: []string{
			"/auth", "/help", "/privacy", unauthorizedPath,
			"/static", "/healthz", "/readyz", "/metrics", "/api",
		},
		publicPrefixes:   []string{"/appointments"},
		loginPath:        loginPath,
		unauthorizedPath: unauthorizedPath,
	}
}

func DefaultPolicy(loginPath, unauthorizedPath string) *Policy {
	return NewPolicy(DefaultRules(), loginPath, unauthorizedPath)
}

func (p *Policy) Rules() []Rule { return slices.Clone(p.rules) }

func (p *Policy) LoginPath() string        { return p.loginPath }
func (p *Policy) UnauthorizedPath() string { return p.unauthorizedPath }

func (p *Policy) IsPublic(path string) bool {
	if slices.Contains(p.publicExact, path) {
		return true
	}
	for _, t := range p.publicTrees {
		if t != "" && (path == t || strings.HasPrefix(path, t+"/")) {
			return true
		}
	}
	for _, pre := range p.publicPrefixes {
		if strings.HasPrefix(path, pre) {
			return true
		}
	}
	return false
}

// CleanPath resolves dot segments and repeated slashes. Every check runs on the cleaned
// form because that is the path the backend and the proxy end up serving.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

// IsCanonical reports whether p needs no cleaning beyond an optional trailing slash.
func IsCanonical(p string) bool {
	c := CleanPath(p)
	return c == p || c+"/" == p
}

// Match returns the first rule whose prefix the cleaned path starts with.
func (p *Policy) Match(target string) (*Rule, bool) {
	target = CleanPath(target)
	for i := range p.rules {
		if strings.HasPrefix(target, p.rules[i].Prefix) {
			return &p.rules[i], true
		}
	}
	return nil, false
}

// Decide runs one navigation through the guard: public and unlisted paths render, a
// protected path without a token goes to login, a role outside the matched set (including
// unknown roles) goes to the unauthorized page.
func (p *Policy) Decide(target string, sess domain.Session) Decision {
	return p.decide(CleanPath(target), "", sess)
}

// DecideURL is Decide for a request URL; the query survives into the login redirect.
func (p *Policy) DecideURL(u *url.URL, sess domain.Session) Decision {
	return p.decide(CleanPath(u.Path), u.RawQuery, sess)
}

func (p *Policy) decide(clean, rawQuery string, sess domain.Session) Decision {
	if p.IsPublic(clean) {
		return Decision{Outcome: Allow}
	}
	rule, ok := p.Match(clean)
	if !ok {
		return Decision{Outcome: Allow}
	}
	if sess.Token == "" {
		back := clean
		if rawQuery != "" {
			back += "?" + rawQuery
		}
		return Decision{Outcome: RedirectLogin, Location: p.LoginURL(back), Rule: rule}
	}
	if !rule.Allows(sess.Role) {
		return Decision{Outcome: RedirectUnauthorized, Location: p.unauthorizedPath, Rule: rule}
	}
	return Decision{Outcome: Allow, Rule: rule}
}

// LoginURL is the login page with a redirect parameter pointing back at path.
func (p *Policy) LoginURL(path string) string {
	return p.loginPath + "?redirect=" + url.QueryEscape(path)
}

// SafeRedirect returns target when it is a local path, otherwise fallback. Used for the
// post-login redirect parameter.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return target
}

// AfterLogin picks the post-login destination: target when it is local and role may open
// it, otherwise the role's home.
func (p *Policy) AfterLogin(target string, role domain.Role) string {
	home := role.HomePath()
	safe := SafeRedirect(target, home)
	if safe == home {
		return home
	}
	u, err := url.Parse(safe)
	if err != nil {
		return home
	}
	clean := CleanPath(u.Path)
	if p.IsPublic(clean) {
		return safe
	}
	if rule, ok := p.Match(clean); ok && !rule.Allows(role) {
		return home
	}
	return safe
}
