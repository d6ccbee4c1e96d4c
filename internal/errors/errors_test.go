package errors

import (
	"fmt"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    *TrackerError
		code   ErrorCode
		status int
	}{
		{NewInvalidRequest("bad"), ErrInvalidRequest, 400},
		{NewNotFound("abc"), ErrNotFound, 404},
		{NewMalformedImport("bad csv"), ErrMalformedImport, 422},
		{NewInternal(fmt.Errorf("boom")), ErrInternal, 500},
		{NewUpstreamFailure("api down"), ErrUpstreamFailure, 502},
	}
	for _, tt := range tests {
		if tt.err.Code != tt.code {
			t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
		}
		if tt.err.Status != tt.status {
			t.Errorf("Status = %d, want %d", tt.err.Status, tt.status)
		}
	}
}

func TestError_Format(t *testing.T) {
	err := NewInvalidRequest("missing field")
	if got := err.Error(); got != "INVALID_REQUEST: missing field" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNotFound_Details(t *testing.T) {
	err := NewNotFound("01HTEST")
	if err.Details["identifier"] != "01HTEST" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestNewInternal_NilError(t *testing.T) {
	err := NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestIs(t *testing.T) {
	err := NewNotFound("x")
	if !Is(err, ErrNotFound) {
		t.Error("Is should match the code")
	}
	if Is(err, ErrInvalidRequest) {
		t.Error("Is should not match a different code")
	}
	if Is(fmt.Errorf("plain"), ErrNotFound) {
		t.Error("Is should reject non-tracker errors")
	}
}
