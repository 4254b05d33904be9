package services

import (
	"errors"
	"testing"
	"time"

	"tournament-platform/apperrors"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", "tests", 7*24*time.Hour)

	token, expires, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if d := time.Until(expires); d < 7*24*time.Hour-time.Minute {
		t.Fatalf("expected ~7 day expiry, got %s", d)
	}

	userID, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", "tests", time.Hour)
	issued := time.Now()
	issuer.now = func() time.Time { return issued }

	token, _, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = issuer.Parse(token)
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if err.Error() != "token expired" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestTokenRejectsForeignSecretAndIssuer(t *testing.T) {
	good := NewTokenIssuer("secret", "tests", time.Hour)
	otherSecret := NewTokenIssuer("other", "tests", time.Hour)
	otherIssuer := NewTokenIssuer("secret", "elsewhere", time.Hour)

	for name, issuer := range map[string]*TokenIssuer{"secret": otherSecret, "issuer": otherIssuer} {
		token, _, err := issuer.Issue("user-1")
		if err != nil {
			t.Fatalf("%s: issue: %v", name, err)
		}
		if _, err := good.Parse(token); !errors.Is(err, apperrors.ErrUnauthorized) {
			t.Fatalf("%s: expected UNAUTHORIZED, got %v", name, err)
		}
	}

	if _, err := good.Parse("not-a-token"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED for garbage, got %v", err)
	}
}
