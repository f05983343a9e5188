package apiclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Operation names a backend call for error reporting.
type Operation string

const (
	OpLogin          Operation = "login"
	OpRegister       Operation = "register"
	OpCurrentUser    Operation = "current_user"
	OpForgotPassword Operation = "forgot_password"
	OpResetPassword  Operation = "reset_password"
	OpDashboard      Operation = "dashboard"
)

var fallbackMessages = map[Operation]string{
	OpLogin:          "Login failed",
	OpRegister:       "Registration failed",
	OpCurrentUser:    "Failed to get user data",
	OpForgotPassword: "Failed to send reset email",
	OpResetPassword:  "Failed to reset password",
	OpDashboard:      "Failed to load dashboard data",
}

// FallbackMessage is the message reported for op when the backend supplies none.
func FallbackMessage(op Operation) string {
	if msg, ok := fallbackMessages[op]; ok {
		return msg
	}
	return "Request failed"
}

var (
	// ErrUnauthorized is wrapped by every Error caused by an HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedResponse is wrapped when a successful response cannot be used.
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is returned by every Client call that fails, whether in transport
// or at the backend. Its message is meant for the user.
type Error struct {
	Op      Operation
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err came from an HTTP 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode returns the HTTP status behind err, or zero for transport failures.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Msg     string `json:"msg"`
}

func newStatusError(op Operation, status int, body []byte) *Error {
	message := backendMessage(body)
	if message == "" {
		message = FallbackMessage(op)
	}
	apiErr := &Error{Op: op, Status: status, Message: message}
	if status == http.StatusUnauthorized {
		apiErr.Err = ErrUnauthorized
	}
	return apiErr
}

func newTransportError(op Operation, err error) *Error {
	return &Error{Op: op, Message: FallbackMessage(op), Err: err}
}

func backendMessage(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(parsed.Message); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(parsed.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(parsed.Msg)
}
