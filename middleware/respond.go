package middleware

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/baechuer/careportal/internal/domain"
)

// writeFailure answers a JSON caller with a failed result envelope.
func writeFailure(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, domain.Fail[any](status, message))
}
