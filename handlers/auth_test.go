package handlers

import (
	"net/http"
	"testing"
	"time"

	"tournament-platform/apperrors"
	"tournament-platform/config"
	"tournament-platform/models"
	"tournament-platform/services"
)

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	player := s.signup(t, "player_one", models.AccountParticipant)
	if player.Token == "" {
		t.Fatal("signup returned no token")
	}

	status, env := s.do(t, http.MethodGet, "/api/auth/me", player.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("me: %d %+v", status, env)
	}
	me := decode[models.User](t, env)
	if me.ID != player.ID || me.PasswordHash != "" {
		t.Fatalf("me = %+v", me)
	}

	status, env = s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	expectError(t, status, env, http.StatusUnauthorized, apperrors.CodeUnauthorized)
	status, env = s.do(t, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	expectError(t, status, env, http.StatusUnauthorized, apperrors.CodeUnauthorized)

	foreign := services.NewTokenIssuer("other-secret", "tournament-platform-test", time.Hour)
	forged, _, err := foreign.Issue(player.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	status, env = s.do(t, http.MethodGet, "/api/auth/me", forged, nil)
	expectError(t, status, env, http.StatusUnauthorized, apperrors.CodeUnauthorized)

	status, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"identifier": "PLAYER_ONE", "password": "Secret123",
	})
	if status != http.StatusOK || decode[authResponse](t, env).User.ID != player.ID {
		t.Fatalf("login: %d %+v", status, env)
	}
	status, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "player_one@example.com", "password": "wrong",
	})
	expectError(t, status, env, http.StatusUnauthorized, apperrors.CodeUnauthorized)

	status, env = s.do(t, http.MethodPost, "/api/auth/signup", "", services.SignupInput{
		FirstName: "Test", Username: "player_one", Email: "fresh@example.com",
		Password: "Secret123", AccountType: models.AccountParticipant,
	})
	expectError(t, status, env, http.StatusBadRequest, apperrors.CodeConflict)

	status, env = s.do(t, http.MethodPost, "/api/auth/signup", "", services.SignupInput{Username: "x"})
	expectError(t, status, env, http.StatusBadRequest, apperrors.CodeValidation)
	if len(env.Errors) == 0 {
		t.Fatal("validation error without field details")
	}

	status, env = s.do(t, http.MethodPost, "/api/auth/logout", player.Token, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("logout: %d %+v", status, env)
	}
}

func TestAvailabilityEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "taken_name", models.AccountHost)

	status, env := s.do(t, http.MethodPost, "/api/auth/check-username", "", map[string]string{"username": "taken_name"})
	if status != http.StatusOK || decode[map[string]bool](t, env)["available"] {
		t.Fatalf("check-username taken: %d %s", status, env.Data)
	}
	status, env = s.do(t, http.MethodPost, "/api/auth/check-email", "", map[string]string{"email": "new@example.com"})
	if status != http.StatusOK || !decode[map[string]bool](t, env)["available"] {
		t.Fatalf("check-email free: %d %s", status, env.Data)
	}
}

func TestDeactivatedAccountLosesAccess(t *testing.T) {
	s := newTestServer(t)
	player := s.signup(t, "player_one", models.AccountParticipant)

	status, env := s.do(t, http.MethodDelete, "/api/users/account", player.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("deactivate: %d %+v", status, env)
	}
	status, env = s.do(t, http.MethodGet, "/api/auth/me", player.Token, nil)
	expectError(t, status, env, http.StatusUnauthorized, apperrors.CodeUnauthorized)
	status, env = s.do(t, http.MethodGet, "/api/users/player_one", "", nil)
	expectError(t, status, env, http.StatusNotFound, apperrors.CodeNotFound)
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.AuthRateLimit = 2 })

	body := map[string]string{"identifier": "nobody", "password": "Secret123"}
	for i := 0; i < 2; i++ {
		status, env := s.do(t, http.MethodPost, "/api/auth/login", "", body)
		expectError(t, status, env, http.StatusUnauthorized, apperrors.CodeUnauthorized)
	}
	status, env := s.do(t, http.MethodPost, "/api/auth/login", "", body)
	if status != http.StatusTooManyRequests || env.Success {
		t.Fatalf("third login: %d %+v", status, env)
	}

	// Other routes are not limited.
	status, _ = s.do(t, http.MethodGet, "/api/tournaments", "", nil)
	if status != http.StatusOK {
		t.Fatalf("tournaments: %d", status)
	}
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t)
	player := s.signup(t, "player_one", models.AccountParticipant)

	status, env := s.do(t, http.MethodPut, "/api/users/profile", player.Token, map[string]string{"bio": "Entry fragger"})
	if status != http.StatusOK || decode[models.User](t, env).Profile.Bio != "Entry fragger" {
		t.Fatalf("update profile: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodGet, "/api/users/player_one", "", nil)
	if status != http.StatusOK {
		t.Fatalf("public profile: %d %+v", status, env)
	}
	public := decode[map[string]any](t, env)
	if _, leaked := public["email"]; leaked {
		t.Fatal("public profile exposes email")
	}

	status, env = s.do(t, http.MethodPut, "/api/users/change-password", player.Token, map[string]string{
		"current_password": "Secret123", "new_password": "Another123", "confirm_password": "Another123",
	})
	if status != http.StatusOK {
		t.Fatalf("change password: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodGet, "/api/users/search?q=player", "", nil)
	if status != http.StatusOK || len(decode[[]models.PublicProfile](t, env)) != 1 {
		t.Fatalf("search: %d %s", status, env.Data)
	}
}
