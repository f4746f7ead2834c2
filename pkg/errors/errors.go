package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeIllegalCancellation = "ILLEGAL_CANCELLATION"
	CodeTransient           = "TRANSIENT"
	CodeInternal            = "INTERNAL_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
)

// AppError represents an application error
type AppError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the JSON response structure for errors
type ErrorResponse struct {
	Error   ErrorBody `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// ErrorBody contains error details
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ToJSON converts an error to the standard JSON response
func ToJSON(err error, traceID string) (int, []byte) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = &AppError{
			Code:    CodeInternal,
			Message: "An internal error occurred",
		}
	}

	response := ErrorResponse{
		Error: ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
		TraceID: traceID,
	}

	data, _ := json.Marshal(response)
	return HTTPStatus(appErr), data
}

// ErrorDomain identifies storefront codes carried in gRPC ErrorInfo details
const ErrorDomain = "storefront"

// surface is how a code is presented over HTTP and gRPC
type surface struct {
	http int
	grpc codes.Code
}

var surfaces = map[string]surface{
	CodeValidation:          {http.StatusBadRequest, codes.InvalidArgument},
	CodeInvalidTransition:   {http.StatusBadRequest, codes.FailedPrecondition},
	CodeNotFound:            {http.StatusNotFound, codes.NotFound},
	CodeConflict:            {http.StatusConflict, codes.AlreadyExists},
	CodeIllegalCancellation: {http.StatusConflict, codes.FailedPrecondition},
	CodeTransient:           {http.StatusServiceUnavailable, codes.Unavailable},
	CodeUnauthorized:        {http.StatusUnauthorized, codes.Unauthenticated},
	CodeForbidden:           {http.StatusForbidden, codes.PermissionDenied},
	CodeInternal:            {http.StatusInternalServerError, codes.Internal},
}

// fromGRPC picks a code for statuses that arrive without ErrorInfo
var fromGRPC = map[codes.Code]string{
	codes.InvalidArgument:    CodeValidation,
	codes.NotFound:           CodeNotFound,
	codes.AlreadyExists:      CodeConflict,
	codes.FailedPrecondition: CodeInvalidTransition,
	codes.Unavailable:        CodeTransient,
	codes.Aborted:            CodeTransient,
	codes.DeadlineExceeded:   CodeTransient,
	codes.Unauthenticated:    CodeUnauthorized,
	codes.PermissionDenied:   CodeForbidden,
}

func surfaceOf(err error) (*AppError, surface) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return nil, surfaces[CodeInternal]
	}
	if s, ok := surfaces[appErr.Code]; ok {
		return appErr, s
	}
	return appErr, surfaces[CodeInternal]
}

// HTTPStatus returns the HTTP status code for an error
func HTTPStatus(err error) int {
	_, s := surfaceOf(err)
	return s.http
}

// GRPCStatus converts an error into a gRPC status error. The exact code
// travels in an ErrorInfo detail so codes sharing a gRPC status survive the hop.
func GRPCStatus(err error) error {
	appErr, s := surfaceOf(err)
	if appErr == nil {
		return status.Error(codes.Internal, "internal error")
	}

	st := status.New(s.grpc, appErr.Message)
	detailed, derr := st.WithDetails(&errdetails.ErrorInfo{Reason: appErr.Code, Domain: ErrorDomain})
	if derr != nil {
		return st.Err()
	}
	return detailed.Err()
}

// FromGRPCStatus converts a gRPC status error back into an application error
func FromGRPCStatus(err error) *AppError {
	st, ok := status.FromError(err)
	if !ok {
		return NewInternal("unknown error", err)
	}

	code := CodeInternal
	if mapped, ok := fromGRPC[st.Code()]; ok {
		code = mapped
	}
	for _, detail := range st.Details() {
		if info, ok := detail.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
			code = info.GetReason()
		}
	}

	return &AppError{
		Code:    code,
		Message: st.Message(),
		Err:     err,
	}
}

// Constructor functions

// NewValidation creates a validation error
func NewValidation(message string, details interface{}) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

// NewNotFound creates a not found error
func NewNotFound(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with id '%v' not found", resource, id),
	}
}

// NewConflict creates a conflict error
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewInvalidTransition creates an error for a status change the state machine does not allow
func NewInvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("invalid status transition from %s to %s", from, to),
		Details: map[string]string{"from": from, "to": to},
	}
}

// NewIllegalCancellation creates an error for a rejected cancellation
func NewIllegalCancellation(message string) *AppError {
	return &AppError{
		Code:    CodeIllegalCancellation,
		Message: message,
	}
}

// NewTransient creates an error the caller may retry
func NewTransient(message string, err error) *AppError {
	return &AppError{
		Code:    CodeTransient,
		Message: message,
		Err:     err,
	}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// NewUnauthorized creates an unauthorized error
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewForbidden creates a forbidden error
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// Is checks if an error matches a specific code
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message + ": " + appErr.Message,
			Details: appErr.Details,
			Err:     err,
		}
	}
	return NewInternal(message, err)
}
