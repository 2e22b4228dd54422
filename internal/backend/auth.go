package backend

import (
	"context"

	"github.com/baechuer/careportal/internal/domain"
)

type AuthAPI struct {
	r Requester
}

func NewAuthAPI(r Requester) *AuthAPI { return &AuthAPI{r: r} }

func (a *AuthAPI) Login(ctx context.Context, creds domain.Credentials) domain.Result[domain.LoginResult] {
	return post[domain.LoginResult](ctx, a.r, "/auth/login", creds)
}

func (a *AuthAPI) Register(ctx context.Context, reg domain.Registration) domain.Result[domain.User] {
	return post[domain.User](ctx, a.r, "/auth/register", reg)
}

// VerifyOTP may or may not hand back a token, depending on whether the backend logs the
// user in after verification.
func (a *AuthAPI) VerifyOTP(ctx context.Context, v domain.OTPVerification) domain.Result[domain.LoginResult] {
	return post[domain.LoginResult](ctx, a.r, "/auth/verify-otp", v)
}

// Logout revokes the bearer token in ctx at the backend.
func (a *AuthAPI) Logout(ctx context.Context) domain.Result[struct{}] {
	return post[struct{}](ctx, a.r, "/auth/logout", nil)
}

func (a *AuthAPI) Me(ctx context.Context) domain.Result[domain.User] {
	return get[domain.User](ctx, a.r, "/auth/me", nil)
}
