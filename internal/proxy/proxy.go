// Package proxy forwards /api calls that have no typed handler straight to the backend.
package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/render"

	"github.com/baechuer/careportal/internal/apiclient"
	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/guard"
	"github.com/baechuer/careportal/internal/logger"
	"github.com/baechuer/careportal/internal/reqctx"
	"github.com/baechuer/careportal/internal/tracing"
)

// New proxies requests under mount to backendURL with mount removed, so
// /api/clinics/1/doctors reaches <backend>/clinics/1/doctors.
//
// Browser cookies and any client supplied Authorization are dropped; the session token is
// sent as a bearer instead. Set-Cookie from the backend is discarded because only the
// session manager writes portal cookies. Paths with dot segments or doubled slashes are
// refused with 400, so the backend only ever sees the path the guard judged.
func New(backendURL, mount string) (http.Handler, error) {
	target, err := url.Parse(backendURL)
	if err != nil {
		return nil, err
	}

	rp := &httputil.ReverseProxy{
		Transport: tracing.Transport(nil),
		Rewrite: func(pr *httputil.ProxyRequest) {
			rest := strings.TrimPrefix(pr.In.URL.Path, mount)
			pr.SetURL(target)
			pr.Out.URL.Path = path.Join("/", target.Path, rest)
			pr.Out.URL.RawPath = ""
			pr.SetXForwarded()

			pr.Out.Header.Del("Cookie")
			pr.Out.Header.Del("Authorization")
			ctx := pr.In.Context()
			if token := reqctx.GetToken(ctx); token != "" {
				pr.Out.Header.Set("Authorization", "Bearer "+token)
			}
			if id := reqctx.GetRequestID(ctx); id != "" {
				pr.Out.Header.Set(apiclient.HeaderRequestID, id)
			}
		},
		ModifyResponse: func(resp *http.Response) error {
			resp.Header.Del("Set-Cookie")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Ctx(r.Context()).Error().Err(err).
				Str("backend", target.Host).
				Str("path", r.URL.Path).
				Msg("backend_proxy_failed")
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, domain.Fail[any](http.StatusBadGateway, "unable to reach the server"))
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !guard.IsCanonical(r.URL.Path) {
			logger.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("backend_proxy_path_refused")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, domain.Fail[any](http.StatusBadRequest, "invalid request path"))
			return
		}
		rp.ServeHTTP(w, r)
	}), nil
}
