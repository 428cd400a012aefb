package services_test

import (
	"errors"
	"strings"
	"testing"

	"nutrilog/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "analysis", "post", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"analysis", "post", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestIsSoftFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient", services.Wrap(services.ErrTransient, "analysis", "post", "", errors.New("eof")), true},
		{"decode", services.Wrap(services.ErrDecode, "analysis", "decode", "", nil), true},
		{"timeout", services.Wrap(services.ErrTimeout, "analysis", "post", "", nil), true},
		{"configuration", services.Wrap(services.ErrConfiguration, "analysis", "init", "missing key", nil), false},
		{"validation", services.Wrap(services.ErrValidation, "pipeline", "submit", "empty", nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.IsSoftFailure(tt.err); got != tt.want {
				t.Fatalf("IsSoftFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
