package models

import (
	"testing"
	"time"
)

func sampleTournament(now time.Time) Tournament {
	return Tournament{
		Status:              StatusOpen,
		MaxParticipants:     4,
		CurrentParticipants: 1,
		PrizePool:           PrizePool{First: 300, Second: 200, Third: 100},
		Schedule: Schedule{
			RegistrationDeadline: now.Add(24 * time.Hour),
			StartDate:            now.Add(48 * time.Hour),
			EndDate:              now.Add(72 * time.Hour),
		},
	}
}

func TestComputeRegistrationStatusPrecedence(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*Tournament)
		want   string
	}{
		{"open", func(*Tournament) {}, RegistrationStateOpen},
		{"draft wins over full", func(t *Tournament) {
			t.Status = StatusDraft
			t.CurrentParticipants = t.MaxParticipants
		}, RegistrationStateDraft},
		{"cancelled wins over past deadline", func(t *Tournament) {
			t.Status = StatusCancelled
			t.Schedule.RegistrationDeadline = now.Add(-time.Hour)
		}, RegistrationStateCancelled},
		{"full wins over past deadline", func(t *Tournament) {
			t.CurrentParticipants = t.MaxParticipants
			t.Schedule.RegistrationDeadline = now.Add(-time.Hour)
		}, RegistrationStateFull},
		{"past deadline", func(t *Tournament) {
			t.Schedule.RegistrationDeadline = now.Add(-time.Second)
		}, RegistrationStateClosed},
		{"at deadline is still open", func(t *Tournament) {
			t.Schedule.RegistrationDeadline = now
		}, RegistrationStateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tournament := sampleTournament(now)
			tt.mutate(&tournament)
			if got := tournament.ComputeRegistrationStatus(now); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestComputeProgress(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tournament := sampleTournament(now)

	if got := tournament.ComputeProgress(now); got != ProgressUpcoming {
		t.Fatalf("expected upcoming, got %s", got)
	}
	if got := tournament.ComputeProgress(tournament.Schedule.StartDate); got != ProgressOngoing {
		t.Fatalf("expected ongoing at start, got %s", got)
	}
	if got := tournament.ComputeProgress(tournament.Schedule.EndDate); got != ProgressOngoing {
		t.Fatalf("expected ongoing at end, got %s", got)
	}
	if got := tournament.ComputeProgress(tournament.Schedule.EndDate.Add(time.Second)); got != ProgressCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
}

func TestDecorate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tournament := sampleTournament(now)
	tournament.Decorate(now)

	if tournament.TotalPrizePool != 600 {
		t.Fatalf("expected total prize 600, got %v", tournament.TotalPrizePool)
	}
	if tournament.AvailableSlots != 3 {
		t.Fatalf("expected 3 slots, got %d", tournament.AvailableSlots)
	}
	if tournament.RegistrationStatus != RegistrationStateOpen || tournament.Progress != ProgressUpcoming {
		t.Fatalf("unexpected derived state %s/%s", tournament.RegistrationStatus, tournament.Progress)
	}
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{RegistrationPending, RegistrationApproved}:   true,
		{RegistrationPending, RegistrationRejected}:   true,
		{RegistrationPending, RegistrationCancelled}:  true,
		{RegistrationApproved, RegistrationCancelled}: true,
	}

	for _, from := range RegistrationStatuses {
		for _, to := range RegistrationStatuses {
			want := allowed[[2]string{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("%s -> %s: expected %v, got %v", from, to, want, got)
			}
		}
	}
}

func TestRegistrationDecorate(t *testing.T) {
	r := Registration{Status: RegistrationApproved}
	r.Decorate()
	if !r.CanParticipate {
		t.Fatalf("approved registration without payment must be able to participate")
	}

	r.Payment = Payment{Method: "transfer", Status: "pending"}
	r.Decorate()
	if r.IsPaid || r.CanParticipate {
		t.Fatalf("unpaid transfer must not be able to participate")
	}

	r.Payment.Method = "free"
	r.Decorate()
	if !r.IsPaid || !r.CanParticipate {
		t.Fatalf("free entry counts as paid")
	}
}
