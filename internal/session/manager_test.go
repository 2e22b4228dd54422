package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/reqctx"
)

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Login(ctx context.Context, creds domain.Credentials) domain.Result[domain.LoginResult] {
	return m.Called(ctx, creds).Get(0).(domain.Result[domain.LoginResult])
}

func (m *mockAuth) Register(ctx context.Context, reg domain.Registration) domain.Result[domain.User] {
	return m.Called(ctx, reg).Get(0).(domain.Result[domain.User])
}

func (m *mockAuth) VerifyOTP(ctx context.Context, v domain.OTPVerification) domain.Result[domain.LoginResult] {
	return m.Called(ctx, v).Get(0).(domain.Result[domain.LoginResult])
}

func (m *mockAuth) Logout(ctx context.Context) domain.Result[struct{}] {
	return m.Called(ctx).Get(0).(domain.Result[struct{}])
}

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func newRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStorage(rdb), mr
}

func testOptions() Options {
	return Options{Cookies: CookieOptions{TTL: time.Hour}}
}

// requestWithCookies replays the Set-Cookie headers of rec onto a new request.
func requestWithCookies(rec *httptest.ResponseRecorder, path string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		r.AddCookie(c)
	}
	return r
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLogin_SuccessPersistsAndSetsCookies(t *testing.T) {
	store, mr := newRedisStorage(t)
	auth := new(mockAuth)
	creds := domain.Credentials{Email: "dr@example.com", Password: "Abc123!@"}
	auth.On("Login", mock.Anything, creds).Return(domain.OK(domain.LoginResult{
		Token: "tok-1",
		User:  domain.User{ID: "u1", Role: domain.RoleDoctor, FullName: "Dr Jane"},
	}))
	m := NewManager(auth, store, testOptions(), nil)

	rec := httptest.NewRecorder()
	res := m.Login(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil), creds)

	require.True(t, res.Success)
	tokenCookie := cookieByName(rec, TokenCookie)
	roleCookie := cookieByName(rec, RoleCookie)
	require.NotNil(t, tokenCookie)
	require.NotNil(t, roleCookie)
	assert.Equal(t, "tok-1", tokenCookie.Value)
	assert.True(t, tokenCookie.HttpOnly)
	assert.Equal(t, "doctor", roleCookie.Value)
	assert.Equal(t, 3600, tokenCookie.MaxAge)

	assert.True(t, mr.Exists("sess:"+tokenKey("tok-1")))
	assert.False(t, mr.Exists("sess:tok-1"), "raw token must not be a key")

	next := requestWithCookies(rec, "/doctor/dashboard")
	assert.True(t, m.IsAuthenticated(next))
	u := m.CurrentUser(next)
	require.NotNil(t, u)
	assert.Equal(t, "Dr Jane", u.FullName)
	auth.AssertExpectations(t)
}

func TestLogin_ValidationFailsBeforeNetwork(t *testing.T) {
	auth := new(mockAuth)
	m := NewManager(auth, NewMemoryStorage(), testOptions(), nil)

	cases := []domain.Credentials{
		{Password: "x"},
		{Email: "not-an-email", Password: "x"},
		{PhoneNumber: "12345", Password: "x"},
		{Email: "a@b.co"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		res := m.Login(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/", nil), c)
		assert.False(t, res.Success)
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.NotEmpty(t, res.Errors)
		assert.Empty(t, rec.Result().Cookies())
	}
	auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestLogin_BackendRejects(t *testing.T) {
	auth := new(mockAuth)
	creds := domain.Credentials{PhoneNumber: "555-123-4567", Password: "wrong"}
	auth.On("Login", mock.Anything, creds).Return(domain.Fail[domain.LoginResult](401, "invalid credentials"))
	m := NewManager(auth, NewMemoryStorage(), testOptions(), nil)

	rec := httptest.NewRecorder()
	res := m.Login(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/", nil), creds)

	assert.False(t, res.Success)
	assert.Equal(t, "invalid credentials", res.Message)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogin_RoleFromClaimsWhenUserHasNone(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{"sub": "u7", "role": "assistant", "exp": time.Now().Add(time.Hour).Unix()})
	auth := new(mockAuth)
	creds := domain.Credentials{Email: "a@example.com", Password: "x"}
	auth.On("Login", mock.Anything, creds).Return(domain.OK(domain.LoginResult{Token: token}))
	m := NewManager(auth, NewMemoryStorage(), testOptions(), nil)

	rec := httptest.NewRecorder()
	res := m.Login(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/", nil), creds)

	require.True(t, res.Success)
	assert.Equal(t, "assistant", cookieByName(rec, RoleCookie).Value)
	assert.Equal(t, domain.RoleAssistant, res.Data.User.Role)
	assert.Equal(t, "u7", res.Data.User.ID)
	assert.Equal(t, "/assistant/dashboard", res.Data.User.Role.HomePath())
}

func TestLogin_ReturnsNormalisedRole(t *testing.T) {
	auth := new(mockAuth)
	creds := domain.Credentials{Email: "d@example.com", Password: "x"}
	auth.On("Login", mock.Anything, creds).Return(domain.OK(domain.LoginResult{
		Token: "tok-d",
		User:  domain.User{ID: "u9", Role: " Doctor"},
	}))
	m := NewManager(auth, NewMemoryStorage(), testOptions(), nil)

	rec := httptest.NewRecorder()
	res := m.Login(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/", nil), creds)

	require.True(t, res.Success)
	assert.Equal(t, "doctor", cookieByName(rec, RoleCookie).Value)
	assert.Equal(t, domain.RoleDoctor, res.Data.User.Role)
	assert.Equal(t, "/doctor/dashboard", res.Data.User.Role.HomePath())
}

func TestLogout_ClearsCookiesAndStorage(t *testing.T) {
	store, mr := newRedisStorage(t)
	auth := new(mockAuth)
	creds := domain.Credentials{Email: "p@example.com", Password: "x"}
	auth.On("Login", mock.Anything, creds).Return(domain.OK(domain.LoginResult{
		Token: "tok-2",
		User:  domain.User{ID: "u2", Role: domain.RolePatient},
	}))
	m := NewManager(auth, store, testOptions(), nil)

	loginRec := httptest.NewRecorder()
	m.Login(context.Background(), loginRec, httptest.NewRequest(http.MethodPost, "/", nil), creds)
	r := requestWithCookies(loginRec, "/auth/logout")
	require.True(t, m.IsAuthenticated(r))

	logoutRec := httptest.NewRecorder()
	m.Logout(context.Background(), logoutRec, r)

	for _, name := range []string{TokenCookie, RoleCookie} {
		c := cookieByName(logoutRec, name)
		require.NotNil(t, c, name)
		assert.Equal(t, "", c.Value)
		assert.Less(t, c.MaxAge, 0)
	}
	assert.False(t, mr.Exists("sess:"+tokenKey("tok-2")))

	after := requestWithCookies(logoutRec, "/patient/dashboard")
	assert.False(t, m.IsAuthenticated(after))
	assert.Nil(t, m.CurrentUser(after))
	auth.AssertNotCalled(t, "Logout", mock.Anything)
}

func TestLogout_RevokeIsBestEffort(t *testing.T) {
	auth := new(mockAuth)
	auth.On("Logout", mock.MatchedBy(func(ctx context.Context) bool {
		return reqctx.GetToken(ctx) == "tok-3"
	})).Return(domain.Fail[struct{}](0, "unable to reach the server"))
	store := NewMemoryStorage()
	require.NoError(t, store.Save(context.Background(), "tok-3", domain.Session{Role: domain.RoleAdmin}, time.Hour))

	opts := testOptions()
	opts.RevokeOnLogout = true
	m := NewManager(auth, store, opts, nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "tok-3"})
	rec := httptest.NewRecorder()
	m.Logout(context.Background(), rec, r)

	auth.AssertExpectations(t)
	assert.Equal(t, 0, store.Len())
	assert.Less(t, cookieByName(rec, TokenCookie).MaxAge, 0)
}

func TestResolve_FallsBackToClaimsThenCookie(t *testing.T) {
	m := NewManager(new(mockAuth), NewMemoryStorage(), testOptions(), nil)

	token := mintToken(t, jwt.MapClaims{"uid": "u9", "role": "doctor", "exp": time.Now().Add(time.Hour).Unix()})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	r.AddCookie(&http.Cookie{Name: RoleCookie, Value: "admin"})

	s, ok := m.Resolve(r)
	require.True(t, ok)
	assert.Equal(t, domain.RoleDoctor, s.Role, "claims win over a client-editable cookie")
	require.NotNil(t, s.User)
	assert.Equal(t, "u9", s.User.ID)

	opaque := httptest.NewRequest(http.MethodGet, "/", nil)
	opaque.AddCookie(&http.Cookie{Name: TokenCookie, Value: "opaque"})
	opaque.AddCookie(&http.Cookie{Name: RoleCookie, Value: "Patient"})
	s, ok = m.Resolve(opaque)
	require.True(t, ok)
	assert.Equal(t, domain.RolePatient, s.Role)
	assert.Nil(t, s.User)
}

func TestResolve_BearerHeader(t *testing.T) {
	m := NewManager(new(mockAuth), NewMemoryStorage(), testOptions(), nil)
	r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	r.Header.Set("Authorization", "Bearer abc")

	s, ok := m.Resolve(r)
	require.True(t, ok)
	assert.Equal(t, "abc", s.Token)
}

func TestResolve_NoToken(t *testing.T) {
	m := NewManager(new(mockAuth), NewMemoryStorage(), testOptions(), nil)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: RoleCookie, Value: "admin"})

	_, ok := m.Resolve(r)
	assert.False(t, ok)
	assert.False(t, m.IsAuthenticated(r))
}

func TestRegister_RequiresAdultAndForcesPatient(t *testing.T) {
	now := time.Now()
	auth := new(mockAuth)
	m := NewManager(auth, NewMemoryStorage(), testOptions(), nil)

	minor := domain.Registration{
		FullName:    "Amy Pond",
		Email:       "amy@example.com",
		PhoneNumber: "555-123-4567",
		Password:    "Abc123!@",
		DateOfBirth: now.AddDate(-17, 0, 0),
	}
	res := m.Register(context.Background(), minor)
	assert.False(t, res.Success)
	assert.Contains(t, res.Errors, "you must be at least 18 years old")
	auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)

	adult := minor
	adult.DateOfBirth = now.AddDate(-30, 0, 0)
	adult.Role = domain.RoleAdmin
	auth.On("Register", mock.Anything, mock.MatchedBy(func(reg domain.Registration) bool {
		return reg.Role == domain.RolePatient
	})).Return(domain.OK(domain.User{ID: "u5", Role: domain.RolePatient}))

	res = m.Register(context.Background(), adult)
	assert.True(t, res.Success)
	auth.AssertExpectations(t)
}

func TestVerifyOTP_EstablishesSessionWhenTokenReturned(t *testing.T) {
	auth := new(mockAuth)
	v := domain.OTPVerification{PhoneNumber: "5551234567", Code: "123456"}
	auth.On("VerifyOTP", mock.Anything, v).Return(domain.OK(domain.LoginResult{
		Token: "tok-otp",
		User:  domain.User{ID: "u6", Role: "PATIENT"},
	}))
	m := NewManager(auth, NewMemoryStorage(), testOptions(), nil)

	rec := httptest.NewRecorder()
	res := m.VerifyOTP(context.Background(), rec, v)

	require.True(t, res.Success)
	assert.Equal(t, "tok-otp", cookieByName(rec, TokenCookie).Value)
	assert.Equal(t, domain.RolePatient, res.Data.User.Role)

	bad := m.VerifyOTP(context.Background(), httptest.NewRecorder(), domain.OTPVerification{PhoneNumber: "5551234567", Code: "12"})
	assert.False(t, bad.Success)
	assert.Equal(t, http.StatusBadRequest, bad.Status)
}
