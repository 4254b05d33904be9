package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tournament-platform/apperrors"
	"tournament-platform/database"
	"tournament-platform/models"
)

const testPassword = "Secret123"

type fixture struct {
	db            *gorm.DB
	now           time.Time
	users         *UserService
	tournaments   *TournamentService
	registrations *RegistrationService
	scheduler     *StatusScheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(database.Options{URL: "sqlite:" + filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	f := &fixture{
		db:  db,
		now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.users = NewUserService(db)
	f.users.BcryptCost = bcrypt.MinCost
	f.users.now = clock
	f.tournaments = NewTournamentService(db, f.users, nil)
	f.tournaments.now = clock
	f.registrations = NewRegistrationService(db, f.users)
	f.registrations.now = clock
	f.scheduler = NewStatusScheduler(db)
	f.scheduler.now = clock
	return f
}

func (f *fixture) user(t *testing.T, username, accountType string) *models.User {
	t.Helper()
	u, err := f.users.Signup(context.Background(), SignupInput{
		FirstName:   "Test",
		LastName:    "User",
		Username:    username,
		Email:       username + "@example.com",
		Password:    testPassword,
		AccountType: accountType,
	})
	if err != nil {
		t.Fatalf("signup %s: %v", username, err)
	}
	return u
}

func (f *fixture) host(t *testing.T, username string) *models.User {
	return f.user(t, username, models.AccountHost)
}

func (f *fixture) participant(t *testing.T, username string) *models.User {
	return f.user(t, username, models.AccountParticipant)
}

func (f *fixture) input(maxParticipants int) TournamentInput {
	return TournamentInput{
		Type:            "esport",
		Title:           "Spring Cup",
		Description:     "Weekly community cup",
		Game:            "Mobile Legends",
		Category:        "MOBA",
		Format:          "Single Elimination",
		MaxParticipants: maxParticipants,
		EntryFee:        10,
		PrizePool:       models.PrizePool{First: 300, Second: 200, Third: 100},
		Schedule: models.Schedule{
			RegistrationDeadline: f.now.Add(24 * time.Hour),
			StartDate:            f.now.Add(48 * time.Hour),
			EndDate:              f.now.Add(72 * time.Hour),
		},
		Status: models.StatusOpen,
		Tags:   []string{"weekly", "mlbb"},
	}
}

func (f *fixture) tournament(t *testing.T, hostID string, in TournamentInput) *models.Tournament {
	t.Helper()
	tournament, err := f.tournaments.Create(context.Background(), hostID, in)
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return tournament
}

func (f *fixture) reload(t *testing.T, id string) models.Tournament {
	t.Helper()
	var tournament models.Tournament
	if err := f.db.First(&tournament, "id = ?", id).Error; err != nil {
		t.Fatalf("reload tournament: %v", err)
	}
	return tournament
}

func (f *fixture) register(t *testing.T, tournamentID, participantID string) *models.Registration {
	t.Helper()
	reg, err := f.registrations.Register(context.Background(), tournamentID, participantID, RegisterRequest{
		TeamName: "Team " + participantID[:4],
		Member1:  "Alice",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func requireCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperrors.Error with %s, got %T: %v", code, err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected %s, got %s: %v", code, appErr.Code, err)
	}
}
