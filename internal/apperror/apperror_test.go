package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("post", "12"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("age", "Enter a number between 18 and 100"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("username", "Username bob taken."),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("Username or Password Incorrect"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Transport wraps ErrTransport",
			err:       Transport("/auth/verify", errors.New("connection refused")),
			target:    ErrTransport,
			wantMatch: true,
		},
		{
			name:      "Transport keeps its cause reachable",
			err:       Transport("/auth/verify", context.DeadlineExceeded),
			target:    context.DeadlineExceeded,
			wantMatch: true,
		},
		{
			name:      "Status wraps ErrStatus",
			err:       Status("/posts/delete", http.StatusInternalServerError),
			target:    ErrStatus,
			wantMatch: true,
		},
		{
			name:      "Decode wraps ErrDecode",
			err:       Decode("/posts/detail", errors.New("unexpected EOF")),
			target:    ErrDecode,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("post", "12"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Status does NOT match ErrTransport",
			err:       Status("/posts/delete", http.StatusBadGateway),
			target:    ErrTransport,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorsIs_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading feed: %w", Status("/categories/feed", http.StatusBadGateway))

	if !errors.Is(err, ErrStatus) {
		t.Error("wrapped Status error should match ErrStatus")
	}
	if got := StatusCode(err); got != http.StatusBadGateway {
		t.Errorf("StatusCode() = %d, want %d", got, http.StatusBadGateway)
	}
}

func TestStatusCode_NonStatusError(t *testing.T) {
	if got := StatusCode(NotFound("post", "1")); got != 0 {
		t.Errorf("StatusCode() = %d, want 0", got)
	}
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("StatusCode() = %d, want 0", got)
	}
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("post", "abc123")
	want := "post not found with id abc123"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	withCause := Transport("/auth/verify", errors.New("connection refused"))
	want = "calling /auth/verify: connection refused"
	if withCause.Error() != want {
		t.Errorf("Error() = %q, want %q", withCause.Error(), want)
	}
}

func TestErrorsAs(t *testing.T) {
	err := fmt.Errorf("sign up: %w", ValidationFailed("height", "Enter a number between 36 and 96"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As should find *AppError in chain")
	}
	if appErr.Field != "height" {
		t.Errorf("Field = %q, want %q", appErr.Field, "height")
	}
	if FieldOf(err) != "height" {
		t.Errorf("FieldOf() = %q, want %q", FieldOf(err), "height")
	}
}

func TestFields_JoinedErrors(t *testing.T) {
	err := errors.Join(
		ValidationFailed("age", "Enter a number between 18 and 100"),
		fmt.Errorf("wrapped: %w", ValidationFailed("height", "Enter a number between 36 and 96")),
		errors.New("no field here"),
	)

	fields := Fields(err)
	if len(fields) != 2 {
		t.Fatalf("Fields() = %v, want 2 entries", fields)
	}
	if fields["age"] != "Enter a number between 18 and 100" {
		t.Errorf("fields[age] = %q", fields["age"])
	}
	if fields["height"] != "Enter a number between 36 and 96" {
		t.Errorf("fields[height] = %q", fields["height"])
	}
}

func TestFields_Nil(t *testing.T) {
	if got := Fields(nil); len(got) != 0 {
		t.Errorf("Fields(nil) = %v, want empty", got)
	}
}
