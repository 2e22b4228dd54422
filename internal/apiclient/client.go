// Package apiclient is the single HTTP path to the backend REST API. Every call returns a
// domain.Result envelope; HTTP and network failures are reported there and never as Go errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/logger"
	"github.com/baechuer/careportal/internal/reqctx"
	"github.com/baechuer/careportal/internal/tracing"
)

const (
	HeaderRequestID = "X-Request-Id"
	maxBodyBytes    = 8 << 20
)

// ClientConfig holds configuration for the HTTP client wrapper
type ClientConfig struct {
	// ReadTimeout is used for GET requests
	ReadTimeout time.Duration
	// WriteTimeout is used for POST, PUT, PATCH, DELETE requests
	WriteTimeout time.Duration
	// Transport overrides the base round tripper (tests). Tracing wraps it either way.
	Transport http.RoundTripper
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Client:
// 1. attaches the session bearer token and X-Request-Id from context
// 2. enforces timeouts based on HTTP method (read vs write)
// 3. maps every outcome to a result envelope
type Client struct {
	baseURL    string
	baseClient *http.Client
	config     ClientConfig
}

func New(baseURL string, config ClientConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		baseClient: &http.Client{
			// per-request timeouts via context
			Timeout:   0,
			Transport: tracing.Transport(config.Transport),
		},
		config: config,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// backendEnvelope accepts both {success,data,message} and {error:{code,message}} bodies.
type backendEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) domain.Result[json.RawMessage] {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.Request(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) domain.Result[json.RawMessage] {
	return c.Request(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) domain.Result[json.RawMessage] {
	return c.Request(ctx, http.MethodPut, path, body)
}

func (c *Client) Patch(ctx context.Context, path string, body any) domain.Result[json.RawMessage] {
	return c.Request(ctx, http.MethodPatch, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) domain.Result[json.RawMessage] {
	return c.Request(ctx, http.MethodDelete, path, nil)
}

// Request issues method path with an optional JSON body.
func (c *Client) Request(ctx context.Context, method, path string, body any) domain.Result[json.RawMessage] {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("path", path).Msg("request_body_marshal_failed")
			return domain.Fail[json.RawMessage](0, "invalid request body")
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("path", path).Msg("request_build_failed")
		return domain.Fail[json.RawMessage](0, "invalid request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(ctx, req)
}

// Upload sends one file as multipart/form-data field "file" to target (absolute URL).
func (c *Client) Upload(ctx context.Context, target, filename, contentType string, content io.Reader) domain.Result[json.RawMessage] {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err == nil {
		_, err = io.Copy(part, content)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("upload_body_build_failed")
		return domain.Fail[json.RawMessage](0, "invalid upload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return domain.Fail[json.RawMessage](0, "invalid upload target")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return c.do(ctx, req)
}

func (c *Client) do(ctx context.Context, req *http.Request) domain.Result[json.RawMessage] {
	if reqID := reqctx.GetRequestID(ctx); reqID != "" {
		req.Header.Set(HeaderRequestID, reqID)
	}
	if token := reqctx.GetToken(ctx); token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	timeout := c.config.ReadTimeout
	if isWriteMethod(req.Method) {
		timeout = c.config.WriteTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	log := logger.Ctx(ctx).With().
		Str("method", req.Method).
		Str("url", req.URL.Path).
		Logger()

	start := time.Now()
	resp, err := c.baseClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Warn().Err(err).Dur("duration", duration).Msg("downstream_request_failed")
		return domain.Fail[json.RawMessage](0, networkMessage(err))
	}
	defer resp.Body.Close()

	log.Debug().Int("status", resp.StatusCode).Dur("duration", duration).Msg("downstream_request_completed")

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn().Err(err).Msg("downstream_body_read_failed")
		return domain.Fail[json.RawMessage](resp.StatusCode, networkMessage(err))
	}

	return decodeResponse(resp.StatusCode, raw)
}

func decodeResponse(status int, raw []byte) domain.Result[json.RawMessage] {
	var env backendEnvelope
	isEnvelope := len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &env) == nil &&
		(env.Success != nil || env.Data != nil || env.Error != nil || env.Message != "")

	if status >= 200 && status < 300 {
		if !isEnvelope {
			if len(bytes.TrimSpace(raw)) == 0 {
				return domain.Result[json.RawMessage]{Success: true, Status: status}
			}
			if !json.Valid(raw) {
				return domain.Fail[json.RawMessage](status, "invalid response from server")
			}
			return domain.Result[json.RawMessage]{Success: true, Data: raw, Status: status}
		}
		if env.Success != nil && !*env.Success {
			res := domain.Fail[json.RawMessage](status, messageOf(env, status))
			res.Errors = env.Errors
			return res
		}
		return domain.Result[json.RawMessage]{Success: true, Data: env.Data, Message: env.Message, Status: status}
	}

	res := domain.Fail[json.RawMessage](status, http.StatusText(status))
	if isEnvelope {
		res.Message = messageOf(env, status)
		res.Errors = env.Errors
	}
	return res
}

func messageOf(env backendEnvelope, status int) string {
	if env.Message != "" {
		return env.Message
	}
	if env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "request failed"
}

func networkMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "the server took too long to respond"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	default:
		return "unable to reach the server"
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Decode types the data of a successful result. A decode failure turns the result into a
// failure rather than an error.
func Decode[T any](r domain.Result[json.RawMessage]) domain.Result[T] {
	if !r.Success {
		return domain.FailWith[T](r)
	}
	var out T
	if len(r.Data) > 0 && string(r.Data) != "null" {
		if err := json.Unmarshal(r.Data, &out); err != nil {
			return domain.Fail[T](r.Status, "unexpected response format")
		}
	}
	return domain.Result[T]{Success: true, Data: out, Message: r.Message, Status: r.Status}
}
