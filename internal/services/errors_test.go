package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesMarker(t *testing.T) {
	tests := []struct {
		name   string
		marker error
	}{
		{"invalid input", ErrInvalidInput},
		{"not found", ErrNotFound},
		{"integrity", ErrIntegrity},
		{"policy", ErrPolicyViolation},
		{"upstream", ErrUpstream},
		{"conflict", ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrap(tt.marker, "transfer", "download", "failed", errors.New("cause"))
			if !errors.Is(err, tt.marker) {
				t.Errorf("errors.Is(%v, marker) = false", err)
			}
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	err := Wrap(ErrUpstream, "feedcache", "fetch", "page 1", cause)
	if !errors.Is(err, cause) {
		t.Errorf("wrapped error should match its cause: %v", err)
	}
	want := "upstream failure: feedcache: fetch: page 1: socket closed"
	if err.Error() != want {
		t.Errorf("Wrap() = %q, want %q", err.Error(), want)
	}
}

func TestWrapNilMarkerDefaultsToUpstream(t *testing.T) {
	err := Wrap(nil, "resolver", "probe", "", nil)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("nil marker should default to ErrUpstream: %v", err)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := Wrap(ErrNotFound, "", "", "", nil)
	if err.Error() != "not found: service failure" {
		t.Errorf("Wrap() = %q", err.Error())
	}
}

func TestIsMiss(t *testing.T) {
	if !IsMiss(Wrap(ErrNotFound, "matcher", "match", "no candidate", nil)) {
		t.Error("IsMiss should report true for ErrNotFound wraps")
	}
	if IsMiss(Wrap(ErrIntegrity, "transfer", "download", "short read", nil)) {
		t.Error("IsMiss should report false for non-miss errors")
	}
}
