package apperror

import (
	"errors"
	"net/http"
)

// Code identifies a domain error kind with a stable status string and
// a fixed HTTP status. The HTTP mapping is consumed by the transport
// layer only; services raise codes, never responses.
type Code int

const (
	InvalidInput Code = iota
	AuthenticationFail
	EmailAlreadyExists
	ResourceIDAlreadyExists
)

var codeStatus = map[Code]string{
	InvalidInput:            "INVALID_INPUT",
	AuthenticationFail:      "AUTHENTICATION_FAIL",
	EmailAlreadyExists:      "EMAIL_ALREADY_EXISTS",
	ResourceIDAlreadyExists: "RESOURCE_ID_ALREADY_EXISTS",
}

var codeHTTPStatus = map[Code]int{
	InvalidInput:            http.StatusBadRequest,
	AuthenticationFail:      http.StatusUnauthorized,
	EmailAlreadyExists:      http.StatusConflict,
	ResourceIDAlreadyExists: http.StatusConflict,
}

var codeMessage = map[Code]string{
	InvalidInput:            "Request validation error.",
	AuthenticationFail:      "Failed to authenticate user.",
	EmailAlreadyExists:      "This email is already registered.",
	ResourceIDAlreadyExists: "Resource ID is already used.",
}

// Status returns the stable machine-readable status string for the code.
func (c Code) Status() string { return codeStatus[c] }

// HTTPStatus returns the HTTP status the transport layer renders for the code.
func (c Code) HTTPStatus() int { return codeHTTPStatus[c] }

// Message returns the default human-readable message for the code.
func (c Code) Message() string { return codeMessage[c] }

// Error is a typed domain error. Message overrides the code's default
// when non-empty; Details carries structured context such as field-level
// validation failures.
type Error struct {
	Code    Code
	Message string
	Details []any
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code.Message()
}

// New builds an Error for code with the default message.
func New(code Code) *Error {
	return &Error{Code: code}
}

// NewWithMessage builds an Error for code with an overridden message.
func NewWithMessage(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewWithDetails builds an Error for code carrying structured details.
func NewWithDetails(code Code, details ...any) *Error {
	return &Error{Code: code, Details: details}
}

// CodeOf unwraps err and reports its Code. ok is false when err is not
// an *Error; callers treat such errors as unclassified faults.
func CodeOf(err error) (code Code, ok bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return 0, false
}

// IsCode reports whether err is a typed Error with the given code.
func IsCode(err error, code Code) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}
