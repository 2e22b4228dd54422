package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/careportal/internal/domain"
)

var claimsParser = jwt.NewParser()

// userFromClaims reads user id and role from the token payload without verifying the
// signature. The backend verifies the token on every call; this is only used to label the
// session when storage has no cached user. Expired or non-JWT tokens yield nil.
func userFromClaims(token string, now time.Time) *domain.User {
	claims := jwt.MapClaims{}
	if _, _, err := claimsParser.ParseUnverified(token, claims); err != nil {
		return nil
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && !now.Before(exp.Time) {
		return nil
	}

	uid, _ := claims["uid"].(string)
	if uid == "" {
		uid, _ = claims["sub"].(string)
	}
	if uid == "" {
		uid, _ = claims["userId"].(string)
	}
	if uid == "" {
		return nil
	}

	role, _ := claims["role"].(string)
	u := &domain.User{
		ID:   uid,
		Role: domain.ParseRole(role),
	}
	u.Email, _ = claims["email"].(string)
	u.FullName, _ = claims["name"].(string)
	return u
}
