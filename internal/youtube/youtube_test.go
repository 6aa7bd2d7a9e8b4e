package youtube

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsTransientClassification(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{403, false},
		{404, false},
	}
	for _, tc := range cases {
		err := fmt.Errorf("post comment: %w", &StatusError{Code: tc.code})
		if got := IsTransient(err); got != tc.want {
			t.Fatalf("IsTransient(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
	if IsTransient(errors.New("malformed response")) {
		t.Fatalf("non-status errors must be terminal")
	}
}

func TestStatusCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &StatusError{Code: 403, Body: "forbidden"})
	if got := StatusCode(err); got != 403 {
		t.Fatalf("StatusCode = %d, want 403", got)
	}
	if got := StatusCode(errors.New("other")); got != 0 {
		t.Fatalf("StatusCode for unrelated error = %d, want 0", got)
	}
}
