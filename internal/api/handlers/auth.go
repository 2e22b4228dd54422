package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/guard"
	"github.com/baechuer/careportal/internal/reqctx"
)

// SessionService is the session.Manager surface the handlers use.
type SessionService interface {
	Login(ctx context.Context, w http.ResponseWriter, r *http.Request, creds domain.Credentials) domain.Result[domain.LoginResult]
	Register(ctx context.Context, reg domain.Registration) domain.Result[domain.User]
	VerifyOTP(ctx context.Context, w http.ResponseWriter, v domain.OTPVerification) domain.Result[domain.LoginResult]
	Logout(ctx context.Context, w http.ResponseWriter, r *http.Request)
}

type ProfileClient interface {
	Me(ctx context.Context) domain.Result[domain.User]
}

type AuthHandler struct {
	sessions SessionService
	profile  ProfileClient
	policy   *guard.Policy
}

func NewAuthHandler(sessions SessionService, profile ProfileClient, policy *guard.Policy) *AuthHandler {
	return &AuthHandler{sessions: sessions, profile: profile, policy: policy}
}

type loginRequest struct {
	domain.Credentials
	Redirect string `json:"redirect,omitempty"`
}

// LoginResponse never carries the token; it lives in the HttpOnly auth-token cookie.
type LoginResponse struct {
	User     domain.User `json:"user"`
	Redirect string      `json:"redirect"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res := h.sessions.Login(r.Context(), w, r, req.Credentials)
	if !res.Success {
		writeResult(w, r, res, http.StatusOK)
		return
	}

	out := domain.OK(LoginResponse{
		User:     res.Data.User,
		Redirect: h.policy.AfterLogin(req.Redirect, res.Data.User.Role),
	})
	out.Message = res.Message
	writeResult(w, r, out, http.StatusOK)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg domain.Registration
	if err := decodeJSON(w, r, &reg); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, h.sessions.Register(r.Context(), reg), http.StatusCreated)
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var v domain.OTPVerification
	if err := decodeJSON(w, r, &v); err != nil {
		writeError(w, r, err)
		return
	}
	res := h.sessions.VerifyOTP(r.Context(), w, v)
	if !res.Success {
		writeResult(w, r, res, http.StatusOK)
		return
	}
	writeResult(w, r, domain.OK(LoginResponse{
		User:     res.Data.User,
		Redirect: res.Data.User.Role.HomePath(),
	}), http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context(), w, r)
	render.JSON(w, r, domain.Result[any]{Success: true, Message: "logged out"})
}

// Me answers from the session cache and only asks the backend when nothing is cached.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := reqctx.GetSession(r.Context())
	if !ok {
		writeError(w, r, domain.ErrAuthRequired())
		return
	}
	if sess.User != nil && sess.User.FullName != "" {
		writeResult(w, r, domain.OK(*sess.User), http.StatusOK)
		return
	}
	writeResult(w, r, h.profile.Me(r.Context()), http.StatusOK)
}
