package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/render"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/logger"
	"github.com/baechuer/careportal/internal/validation"
)

const maxJSONBody = 1 << 20

// statusFromResult maps a failed backend result to the status we answer with. Status 0
// means the backend never answered.
func statusFromResult(status int) int {
	switch {
	case status >= 400 && status < 600:
		return status
	default:
		return http.StatusBadGateway
	}
}

// writeResult writes a result envelope; failures keep the backend status.
func writeResult[T any](w http.ResponseWriter, r *http.Request, res domain.Result[T], okStatus int) {
	if res.Success {
		render.Status(r, okStatus)
		render.JSON(w, r, res)
		return
	}
	render.Status(r, statusFromResult(res.Status))
	render.JSON(w, r, res)
}

// writeError answers with the envelope of a portal error. Causes are logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	pe := domain.AsError(err)
	res := pe.Result()
	if res.Status >= 500 {
		logger.Ctx(r.Context()).Error().Err(err).Str("code", pe.Code).Msg("request_failed")
	}
	render.Status(r, res.Status)
	render.JSON(w, r, res)
}

func writeValidation(w http.ResponseWriter, r *http.Request, v validation.Result) {
	res := domain.Fail[any](http.StatusBadRequest, "please correct the highlighted fields")
	res.Errors = v.Errors
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, res)
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return domain.ErrInvalidJSON(err)
	}
	return nil
}

// listQuery forwards the list parameters the backend understands, search term included.
func listQuery(r *http.Request) url.Values {
	in := r.URL.Query()
	out := url.Values{}
	for _, k := range []string{"q", "page", "limit", "status", "date", "from", "to", "role", "sort"} {
		if v := in.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	return out
}
