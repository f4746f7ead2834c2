package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("bad", nil), http.StatusBadRequest},
		{"invalid transition", NewInvalidTransition("Paid", "Cancelled"), http.StatusBadRequest},
		{"not found", NewNotFound("order", 1), http.StatusNotFound},
		{"illegal cancellation", NewIllegalCancellation("nope"), http.StatusConflict},
		{"transient", NewTransient("busy", nil), http.StatusServiceUnavailable},
		{"forbidden", NewForbidden("no"), http.StatusForbidden},
		{"wrapped", fmt.Errorf("outer: %w", NewNotFound("order", 1)), http.StatusNotFound},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestNewInvalidTransition_MentionsBothStates(t *testing.T) {
	err := NewInvalidTransition("Pending", "Shipped")

	assert.Contains(t, err.Error(), "Pending")
	assert.Contains(t, err.Error(), "Shipped")
	assert.True(t, Is(err, CodeInvalidTransition))
}

func TestToJSON_HidesInternalDetails(t *testing.T) {
	code, body := ToJSON(fmt.Errorf("database exploded"), "trace-1")

	assert.Equal(t, http.StatusInternalServerError, code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, CodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "exploded")
	assert.Equal(t, "trace-1", resp.TraceID)
}

func TestGRPCRoundTrip(t *testing.T) {
	tests := []struct {
		code     string
		grpcCode codes.Code
	}{
		{CodeValidation, codes.InvalidArgument},
		{CodeNotFound, codes.NotFound},
		{CodeInvalidTransition, codes.FailedPrecondition},
		{CodeTransient, codes.Unavailable},
		{CodeIllegalCancellation, codes.FailedPrecondition},
		{CodeConflict, codes.AlreadyExists},
		{CodeForbidden, codes.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			st := status.Convert(GRPCStatus(&AppError{Code: tt.code, Message: "m"}))
			assert.Equal(t, tt.grpcCode, st.Code())

			back := FromGRPCStatus(st.Err())
			assert.Equal(t, tt.code, back.Code)
		})
	}
}

func TestFromGRPCStatus_WithoutErrorInfo(t *testing.T) {
	tests := []struct {
		grpcCode codes.Code
		want     string
	}{
		{codes.FailedPrecondition, CodeInvalidTransition},
		{codes.DeadlineExceeded, CodeTransient},
		{codes.Unknown, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.grpcCode.String(), func(t *testing.T) {
			err := FromGRPCStatus(status.Error(tt.grpcCode, "from elsewhere"))

			assert.Equal(t, tt.want, err.Code)
			assert.Equal(t, "from elsewhere", err.Message)
		})
	}

	assert.Equal(t, CodeInternal, FromGRPCStatus(fmt.Errorf("not a status")).Code)
}

func TestGRPCStatus_PlainErrorIsInternal(t *testing.T) {
	st := status.Convert(GRPCStatus(fmt.Errorf("database exploded")))

	assert.Equal(t, codes.Internal, st.Code())
	assert.NotContains(t, st.Message(), "exploded")
}

func TestWrap_KeepsCode(t *testing.T) {
	err := Wrap(NewTransient("deadlock", nil), "create order")

	assert.True(t, Is(err, CodeTransient))
	assert.Equal(t, "create order: deadlock", err.Message)
}
