package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups the errors the portal raises itself (as opposed to failures reported by the
// backend, which travel as a failed Result).
type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthenticated
	KindTooLarge
)

// Status is the HTTP status a JSON caller receives for k.
func (k Kind) Status() int {
	switch k {
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a client safe Message and an optional field level Detail. Cause is only
// ever logged.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Detail  string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Result renders e as the failed envelope sent to the browser.
func (e *Error) Result() Result[any] {
	res := Fail[any](e.Kind.Status(), e.Message)
	if e.Detail != "" {
		res.Errors = []string{e.Detail}
	}
	return res
}

// AsError unwraps a portal error, treating anything else as internal.
func AsError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return ErrInternal(err)
}

// HasCode reports whether err is a portal error with the given code.
func HasCode(err error, code string) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == code
}

func ErrInvalidJSON(cause error) *Error {
	return &Error{Kind: KindInvalid, Code: "invalid_json", Message: "invalid JSON body", Cause: cause}
}

func ErrInvalidField(field, detail string) *Error {
	return &Error{Kind: KindInvalid, Code: "invalid_" + field, Message: "invalid " + field, Detail: detail}
}

func ErrUnsupportedMediaType(mime string) *Error {
	return &Error{Kind: KindInvalid, Code: "unsupported_media_type", Message: "file type is not allowed",
		Detail: mime + " uploads are not accepted"}
}

func ErrAuthRequired() *Error {
	return &Error{Kind: KindUnauthenticated, Code: "auth_required", Message: "authentication required"}
}

func ErrFileTooLarge(limit int64) *Error {
	return &Error{Kind: KindTooLarge, Code: "file_too_large", Message: "file exceeds the upload limit",
		Detail: fmt.Sprintf("the limit is %d bytes", limit)}
}

func ErrInternal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: "internal_error", Message: "internal error", Cause: cause}
}
