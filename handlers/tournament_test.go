package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"tournament-platform/apperrors"
	"tournament-platform/models"
	"tournament-platform/services"
)

type listResponse struct {
	Tournaments []models.Tournament `json:"tournaments"`
	Pagination  services.Pagination `json:"pagination"`
}

type registrationList struct {
	Registrations []models.Registration `json:"registrations"`
	Pagination    services.Pagination   `json:"pagination"`
}

func TestTournamentRoleGates(t *testing.T) {
	s := newTestServer(t)
	host := s.signup(t, "host_one", models.AccountHost)
	other := s.signup(t, "host_two", models.AccountHost)
	player := s.signup(t, "player_one", models.AccountParticipant)

	status, env := s.do(t, http.MethodPost, "/api/tournaments", player.Token, tournamentBody(8))
	expectError(t, status, env, http.StatusForbidden, apperrors.CodeForbidden)
	status, env = s.do(t, http.MethodPost, "/api/tournaments", "", tournamentBody(8))
	expectError(t, status, env, http.StatusUnauthorized, apperrors.CodeUnauthorized)

	tournament := s.createTournament(t, host, 8)
	if tournament.Host == nil || tournament.Host.ID != host.ID {
		t.Fatalf("host = %+v", tournament.Host)
	}

	status, env = s.do(t, http.MethodPut, "/api/tournaments/"+tournament.ID, other.Token, tournamentBody(8))
	expectError(t, status, env, http.StatusForbidden, apperrors.CodeForbidden)
	status, env = s.do(t, http.MethodDelete, "/api/tournaments/"+tournament.ID, other.Token, nil)
	expectError(t, status, env, http.StatusForbidden, apperrors.CodeForbidden)
	status, env = s.do(t, http.MethodGet, "/api/tournaments/"+tournament.ID+"/registrations", other.Token, nil)
	expectError(t, status, env, http.StatusForbidden, apperrors.CodeForbidden)

	status, env = s.do(t, http.MethodPost, "/api/tournaments/"+tournament.ID+"/register", host.Token, services.RegisterRequest{})
	expectError(t, status, env, http.StatusForbidden, apperrors.CodeForbidden)
}

func TestTournamentCRUD(t *testing.T) {
	s := newTestServer(t)
	host := s.signup(t, "host_one", models.AccountHost)
	tournament := s.createTournament(t, host, 8)

	bad := tournamentBody(8)
	bad.PrizePool = models.PrizePool{First: 10, Second: 20}
	status, env := s.do(t, http.MethodPost, "/api/tournaments", host.Token, bad)
	expectError(t, status, env, http.StatusBadRequest, apperrors.CodeValidation)

	update := tournamentBody(12)
	update.Title = "Saturday Clash"
	status, env = s.do(t, http.MethodPut, "/api/tournaments/"+tournament.ID, host.Token, update)
	if status != http.StatusOK {
		t.Fatalf("update: %d %+v", status, env)
	}
	if got := decode[models.Tournament](t, env); got.Title != "Saturday Clash" || got.MaxParticipants != 12 {
		t.Fatalf("updated = %s / %d", got.Title, got.MaxParticipants)
	}

	status, env = s.do(t, http.MethodPatch, "/api/tournaments/"+tournament.ID+"/status", host.Token, map[string]string{"status": "bogus"})
	expectError(t, status, env, http.StatusBadRequest, apperrors.CodeValidation)
	status, env = s.do(t, http.MethodPatch, "/api/tournaments/"+tournament.ID+"/status", host.Token, map[string]string{"status": models.StatusCancelled})
	if status != http.StatusOK || decode[models.Tournament](t, env).RegistrationStatus != models.RegistrationStateCancelled {
		t.Fatalf("update status: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodGet, "/api/tournaments/host/mine", host.Token, nil)
	if status != http.StatusOK || len(decode[listResponse](t, env).Tournaments) != 1 {
		t.Fatalf("mine: %d %s", status, env.Data)
	}

	status, _ = s.do(t, http.MethodDelete, "/api/tournaments/"+tournament.ID, host.Token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete status = %d", status)
	}
	status, env = s.do(t, http.MethodGet, "/api/tournaments/"+tournament.ID, "", nil)
	expectError(t, status, env, http.StatusNotFound, apperrors.CodeNotFound)
}

func TestTournamentListAndDetail(t *testing.T) {
	s := newTestServer(t)
	host := s.signup(t, "host_one", models.AccountHost)
	first := s.createTournament(t, host, 8)
	s.createTournament(t, host, 8)

	private := tournamentBody(8)
	private.Visibility = models.VisibilityPrivate
	status, env := s.do(t, http.MethodPost, "/api/tournaments", host.Token, private)
	if status != http.StatusCreated {
		t.Fatalf("create private: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodGet, "/api/tournaments?limit=1&page=1&category=FPS", "", nil)
	if status != http.StatusOK {
		t.Fatalf("list: %d %+v", status, env)
	}
	list := decode[listResponse](t, env)
	if len(list.Tournaments) != 1 || list.Pagination.TotalItems != 2 || list.Pagination.TotalPages != 2 {
		t.Fatalf("list = %d items, %+v", len(list.Tournaments), list.Pagination)
	}

	status, env = s.do(t, http.MethodGet, "/api/tournaments?page=9223372036854775807", "", nil)
	if status != http.StatusOK {
		t.Fatalf("huge page: %d %+v", status, env)
	}
	list = decode[listResponse](t, env)
	if len(list.Tournaments) != 0 || list.Pagination.CurrentPage != services.MaxPage {
		t.Fatalf("huge page = %d items, %+v", len(list.Tournaments), list.Pagination)
	}

	status, env = s.do(t, http.MethodGet, "/api/tournaments?maxEntryFee=abc", "", nil)
	expectError(t, status, env, http.StatusBadRequest, apperrors.CodeValidation)
	status, env = s.do(t, http.MethodGet, "/api/tournaments?dateFrom=yesterday", "", nil)
	expectError(t, status, env, http.StatusBadRequest, apperrors.CodeValidation)

	for want := int64(1); want <= 2; want++ {
		status, env = s.do(t, http.MethodGet, "/api/tournaments/"+first.Slug, "", nil)
		if status != http.StatusOK {
			t.Fatalf("detail: %d %+v", status, env)
		}
		if got := decode[models.Tournament](t, env).Statistics.Views; got != want {
			t.Fatalf("views = %d, want %d", got, want)
		}
	}
}

func TestRegistrationLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	host := s.signup(t, "host_one", models.AccountHost)
	player := s.signup(t, "player_one", models.AccountParticipant)
	rival := s.signup(t, "player_two", models.AccountParticipant)
	tournament := s.createTournament(t, host, 2)
	registerPath := "/api/tournaments/" + tournament.ID + "/register"

	status, env := s.do(t, http.MethodPost, registerPath, player.Token, services.RegisterRequest{
		TeamName: "Owls", Member1: "Alice", Member2: "Bob", Substitute1: "Carol",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: %d %+v", status, env)
	}
	reg := decode[models.Registration](t, env)
	if reg.Status != models.RegistrationPending || len(reg.TeamMembers) != 2 || reg.TeamMembers[0].Role != "Captain" {
		t.Fatalf("registration = %+v", reg)
	}

	status, env = s.do(t, http.MethodPost, registerPath, player.Token, services.RegisterRequest{})
	expectError(t, status, env, http.StatusBadRequest, apperrors.CodeConflict)

	status, env = s.do(t, http.MethodGet, "/api/registrations/"+reg.ID, rival.Token, nil)
	expectError(t, status, env, http.StatusForbidden, apperrors.CodeForbidden)
	status, env = s.do(t, http.MethodGet, "/api/registrations/"+reg.ID, host.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("host get: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodPut, "/api/registrations/"+reg.ID, player.Token, map[string]string{"action": "approve"})
	expectError(t, status, env, http.StatusForbidden, apperrors.CodeForbidden)
	status, env = s.do(t, http.MethodPut, "/api/registrations/"+reg.ID, host.Token, map[string]string{"action": "maybe"})
	expectError(t, status, env, http.StatusBadRequest, apperrors.CodeValidation)
	status, env = s.do(t, http.MethodPut, "/api/registrations/"+reg.ID, host.Token, map[string]string{"action": "approve", "notes": "see you"})
	if status != http.StatusOK || decode[models.Registration](t, env).Status != models.RegistrationApproved {
		t.Fatalf("approve: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodPost, "/api/registrations/"+reg.ID+"/check-in", host.Token, nil)
	if status != http.StatusOK || !decode[models.Registration](t, env).CheckedIn {
		t.Fatalf("check in: %d %+v", status, env)
	}
	status, env = s.do(t, http.MethodPost, "/api/registrations/"+reg.ID+"/result", host.Token, map[string]any{"final_rank": 1, "prize": 100})
	if status != http.StatusOK {
		t.Fatalf("result: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodPost, registerPath, rival.Token, services.RegisterRequest{Member1: "Zed"})
	if status != http.StatusCreated {
		t.Fatalf("rival register: %d %+v", status, env)
	}
	late := s.signup(t, "player_three", models.AccountParticipant)
	status, env = s.do(t, http.MethodPost, registerPath, late.Token, services.RegisterRequest{})
	expectError(t, status, env, http.StatusBadRequest, apperrors.CodeFull)

	status, env = s.do(t, http.MethodGet, "/api/tournaments/"+tournament.ID+"/registrations/stats", host.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("stats: %d %+v", status, env)
	}
	stats := decode[map[string]int64](t, env)
	if stats["total"] != 2 || stats["approved"] != 1 || stats["pending"] != 1 {
		t.Fatalf("stats = %v", stats)
	}

	status, env = s.do(t, http.MethodPost, "/api/registrations/"+reg.ID+"/cancel", player.Token, map[string]string{"notes": "sorry"})
	if status != http.StatusOK || decode[models.Registration](t, env).Status != models.RegistrationCancelled {
		t.Fatalf("cancel: %d %+v", status, env)
	}
	status, env = s.do(t, http.MethodPost, "/api/registrations/"+reg.ID+"/cancel", player.Token, nil)
	expectError(t, status, env, http.StatusBadRequest, apperrors.CodeInvalidState)

	status, env = s.do(t, http.MethodGet, "/api/tournaments/my-registrations", player.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("my registrations: %d %+v", status, env)
	}
	mine := decode[registrationList](t, env)
	if len(mine.Registrations) != 1 || mine.Registrations[0].Tournament == nil {
		t.Fatalf("my registrations = %+v", mine)
	}

	status, env = s.do(t, http.MethodGet, "/api/tournaments/"+tournament.ID+"/registrations?status=pending", host.Token, nil)
	if status != http.StatusOK || len(decode[registrationList](t, env).Registrations) != 1 {
		t.Fatalf("host list: %d %s", status, env.Data)
	}
}

func TestRegisterWithoutBody(t *testing.T) {
	s := newTestServer(t)
	host := s.signup(t, "host_one", models.AccountHost)
	player := s.signup(t, "player_one", models.AccountParticipant)

	status, env := s.do(t, http.MethodPost, "/api/tournaments/"+uuid.NewString()+"/register", player.Token, nil)
	expectError(t, status, env, http.StatusNotFound, apperrors.CodeNotFound)

	tournament := s.createTournament(t, host, 4)
	status, env = s.do(t, http.MethodPost, "/api/tournaments/"+tournament.ID+"/register", player.Token, nil)
	if status != http.StatusCreated {
		t.Fatalf("register without body: %d %+v", status, env)
	}
	reg := decode[models.Registration](t, env)
	if reg.Status != models.RegistrationPending || len(reg.TeamMembers) != 0 {
		t.Fatalf("registration = %+v", reg)
	}
}
