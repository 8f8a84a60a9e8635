package dto

import (
	"errors"
	"testing"
	"time"
)

func TestErrorResponse_Error(t *testing.T) {
	cases := []struct {
		name string
		in   ErrorResponse
		want string
	}{
		{name: "message only", in: ErrorResponse{Message: "scheduler is stopped"}, want: "scheduler is stopped"},
		{name: "with details", in: ErrorResponse{Message: "listing failed", ErrorDetails: "permission denied"}, want: "listing failed: permission denied"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Error(); got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	e := NewErrorResponse("msg", nil)
	if e.Message != "msg" || e.ErrorDetails != "" {
		t.Fatalf("unexpected %+v", e)
	}
	if e.Timestamp.IsZero() || time.Since(e.Timestamp) > time.Second {
		t.Fatalf("timestamp not set")
	}

	e2 := NewErrorResponse("msg", errors.New("disk full"))
	if e2.ErrorDetails != "disk full" {
		t.Fatalf("unexpected %+v", e2)
	}
}
