package health

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatus_HTTPStatus(t *testing.T) {
	if got := StatusDegraded.HTTPStatus(); got != http.StatusOK {
		t.Errorf("degraded HTTPStatus() = %d, want 200", got)
	}
	if got := StatusUnhealthy.HTTPStatus(); got != http.StatusServiceUnavailable {
		t.Errorf("unhealthy HTTPStatus() = %d, want 503", got)
	}
}

func TestResultConstructors(t *testing.T) {
	cause := errors.New("disk full")

	r := Unhealthy("store down", cause).WithDetails(map[string]any{"path": "invoicekit.db"})
	if r.Status != StatusUnhealthy || r.Error != cause {
		t.Errorf("Unhealthy() = %+v", r)
	}
	if r.Details["path"] != "invoicekit.db" {
		t.Errorf("Details = %v", r.Details)
	}
	if Degraded("slow").Status != StatusDegraded {
		t.Error("Degraded() status mismatch")
	}
	if Healthy("ok").Error != nil {
		t.Error("Healthy() carries an error")
	}
}

func TestNewCheckerFunc(t *testing.T) {
	c := NewCheckerFunc("store", func(context.Context) Result { return Degraded("replica lag") })
	if c.Name() != "store" {
		t.Errorf("Name() = %q, want store", c.Name())
	}
	if got := c.Check(context.Background()); got.Message != "replica lag" {
		t.Errorf("Check() = %+v", got)
	}
}
