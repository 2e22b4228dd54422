package domain

// Result is the {success, data, message} envelope used for every backend call and every JSON
// response of this service. Expected failures are reported here, never as Go errors.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	// Errors carries field level validation messages.
	Errors []string `json:"errors,omitempty"`
	// Status is the upstream HTTP status; 0 means the request never got a response.
	Status int `json:"-"`
}

func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func Fail[T any](status int, message string) Result[T] {
	return Result[T]{Success: false, Message: message, Status: status}
}

// FailWith converts a failed result of one type into another, keeping message and status.
func FailWith[T, U any](r Result[U]) Result[T] {
	return Result[T]{Success: false, Message: r.Message, Errors: r.Errors, Status: r.Status}
}
