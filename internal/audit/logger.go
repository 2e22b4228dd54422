package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/baechuer/careportal/internal/reqctx"
)

// Logger writes the audit trail of session lifecycle and access decisions.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Nop discards every event.
func Nop() *Logger {
	return &Logger{log: zerolog.Nop()}
}

func (l *Logger) LoginSuccess(ctx context.Context, userID, identifier, role, ip string) {
	l.log.Info().
		Str("action", "login_success").
		Str("user_id", userID).
		Str("identifier", maskIdentifier(identifier)).
		Str("role", role).
		Str("ip", ip).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("User logged in")
}

func (l *Logger) LoginFailed(ctx context.Context, identifier, ip, reason string) {
	l.log.Warn().
		Str("action", "login_failed").
		Str("identifier", maskIdentifier(identifier)).
		Str("ip", ip).
		Str("reason", reason).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("Login attempt failed")
}

func (l *Logger) Registered(ctx context.Context, userID, email string) {
	l.log.Info().
		Str("action", "registered").
		Str("user_id", userID).
		Str("identifier", maskIdentifier(email)).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("User registered")
}

func (l *Logger) OTPVerified(ctx context.Context, phone string) {
	l.log.Info().
		Str("action", "otp_verified").
		Str("identifier", maskIdentifier(phone)).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("Phone number verified")
}

// Logout records a local teardown; revoked reports whether the backend confirmed revocation.
func (l *Logger) Logout(ctx context.Context, userID string, revoked bool) {
	l.log.Info().
		Str("action", "logout").
		Str("user_id", userID).
		Bool("revoked", revoked).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("User logged out")
}

func (l *Logger) AccessDenied(ctx context.Context, path, role, outcome string) {
	l.log.Warn().
		Str("action", "access_denied").
		Str("path", path).
		Str("role", role).
		Str("outcome", outcome).
		Str("request_id", reqctx.GetRequestID(ctx)).
		Msg("Navigation denied")
}

// maskIdentifier keeps enough of an email or phone number to correlate events.
func maskIdentifier(id string) string {
	if strings.Contains(id, "@") {
		return maskEmail(id)
	}
	if len(id) < 4 {
		return "***"
	}
	return "***" + id[len(id)-4:]
}

func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
