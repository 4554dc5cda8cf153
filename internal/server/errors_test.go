package server

import (
	"errors"
	"fmt"
	"testing"

	"github.com/localrivet/leaveoff/internal/errortypes"
)

func TestFailureMapping(t *testing.T) {
	cause := errors.New("open /data/abc: no such file or directory")

	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{
			name:     "validation",
			err:      errortypes.ValidationError(errors.New("id must not be empty"), "id is required"),
			wantCode: StatusCodeValidationError,
			wantMsg:  "id is required: id must not be empty",
		},
		{
			name:     "not found hides path",
			err:      errortypes.NotFoundError(cause, "context item abc not found"),
			wantCode: StatusCodeNotFound,
			wantMsg:  "context item abc not found",
		},
		{
			name:     "wrapped sentinel",
			err:      fmt.Errorf("lookup: %w", errortypes.ErrNotFound),
			wantCode: StatusCodeNotFound,
			wantMsg:  "lookup: context item not found",
		},
		{
			name:     "io",
			err:      errortypes.IOError(errors.New("disk full"), "failed to write context item"),
			wantCode: StatusCodeIOError,
			wantMsg:  "failed to write context item: disk full",
		},
		{
			name:     "config",
			err:      errortypes.ConfigError(errors.New("bad dir"), "store not ready"),
			wantCode: StatusCodeConfigError,
			wantMsg:  "store not ready: bad dir",
		},
		{
			name:     "plain",
			err:      errors.New("boom"),
			wantCode: StatusCodeInternalError,
			wantMsg:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Failure(nil, "pick_up", tt.err)
			if result.Success {
				t.Fatal("expected Success to be false")
			}
			if result.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", result.Code, tt.wantCode)
			}
			if result.Error != tt.wantMsg {
				t.Errorf("Error = %q, want %q", result.Error, tt.wantMsg)
			}
			if result.Text() != "Error: "+tt.wantMsg {
				t.Errorf("Text = %q, want %q", result.Text(), "Error: "+tt.wantMsg)
			}
		})
	}
}

func TestFailureLeavesErrorUntouched(t *testing.T) {
	err := errortypes.IOError(errors.New("disk full"), "failed to write context item")
	Failure(nil, "leave_off", err)

	if _, ok := err.Fields["tool"]; ok {
		t.Errorf("expected error fields to be left alone, got %v", err.Fields)
	}
}
