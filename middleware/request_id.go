package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/baechuer/careportal/internal/reqctx"
)

const HeaderXRequestID = "X-Request-Id"

// RequestID establishes the request id in context (generated if the caller sent none) and
// echoes it back. The API client and the proxy forward it downstream.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, reqID)

		next.ServeHTTP(w, r.WithContext(reqctx.WithRequestID(r.Context(), reqID)))
	})
}

func GetRequestID(ctx context.Context) string {
	return reqctx.GetRequestID(ctx)
}
