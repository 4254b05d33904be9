package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("register: %w", Full("tournament is full"))

	if !errors.Is(err, ErrFull) {
		t.Fatalf("expected wrapped error to match ErrFull")
	}
	if errors.Is(err, ErrInvalidState) {
		t.Fatalf("FULL must not match INVALID_STATE")
	}
}

func TestInternalUnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("could not load tournament", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain")
	}
	if err.Error() != "could not load tournament" {
		t.Fatalf("cause leaked into message: %q", err.Error())
	}
	if CodeOf(err) != CodeInternal {
		t.Fatalf("expected INTERNAL, got %s", CodeOf(err))
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != CodeInternal {
		t.Fatalf("expected INTERNAL for plain errors, got %s", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:     http.StatusNotFound,
		CodeInvalidState: http.StatusBadRequest,
		CodeFull:         http.StatusBadRequest,
		CodeConflict:     http.StatusBadRequest,
		CodeValidation:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := code.HTTPStatus(); got != want {
			t.Errorf("%s: expected %d, got %d", code, want, got)
		}
	}
}

func TestFieldErrors(t *testing.T) {
	var fields FieldErrors
	if fields.Err("invalid") != nil {
		t.Fatalf("empty collector must not produce an error")
	}

	fields.Check(true, "title", "required")
	fields.Check(false, "game", "required")

	err := fields.Err("invalid tournament")
	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if appErr.Code != CodeValidation || len(appErr.Fields) != 1 || appErr.Fields[0].Field != "game" {
		t.Fatalf("unexpected validation error: %+v", appErr)
	}
}
