package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"tournament-platform/models"
)

// StatusScheduler keeps stored tournament statuses in step with their schedule.
// Draft and cancelled tournaments are never touched.
type StatusScheduler struct {
	DB *gorm.DB

	now func() time.Time
}

func NewStatusScheduler(db *gorm.DB) *StatusScheduler {
	return &StatusScheduler{DB: db, now: time.Now}
}

// Start runs SyncStatuses every interval until ctx is done.
func (s *StatusScheduler) Start(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := s.SyncStatuses(ctx); err != nil {
				log.Printf("[Scheduler] Status sync failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule status sync: %w", err)
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("[Scheduler] Shutdown error: %v", err)
		}
	}()
	return sched, nil
}

// SyncResult counts the tournaments moved by one sync pass.
type SyncResult struct {
	Completed int64
	Ongoing   int64
	Closed    int64
}

// SyncStatuses applies the schedule-driven transitions:
// open/soon -> registration_closed after the deadline,
// open/soon/registration_closed -> ongoing once the start date is reached,
// ongoing -> completed after the end date.
// Steps run in that order, so an overdue tournament catches up in one pass.
func (s *StatusScheduler) SyncStatuses(ctx context.Context) (SyncResult, error) {
	now := s.now().UTC()
	db := s.DB.WithContext(ctx)
	var res SyncResult

	step := func(to string, from []string, cond string, count *int64) error {
		r := db.Model(&models.Tournament{}).
			Where("status IN ?", from).
			Where(cond, now).
			Update("status", to)
		if r.Error != nil {
			return fmt.Errorf("move tournaments to %s: %w", to, r.Error)
		}
		*count = r.RowsAffected
		return nil
	}

	if err := step(models.StatusRegistrationClosed,
		[]string{models.StatusOpen, models.StatusSoon}, "registration_deadline < ?", &res.Closed); err != nil {
		return res, err
	}
	if err := step(models.StatusOngoing,
		[]string{models.StatusOpen, models.StatusSoon, models.StatusRegistrationClosed}, "start_date <= ?", &res.Ongoing); err != nil {
		return res, err
	}
	if err := step(models.StatusCompleted, []string{models.StatusOngoing}, "end_date < ?", &res.Completed); err != nil {
		return res, err
	}

	if res.Completed+res.Ongoing+res.Closed > 0 {
		log.Printf("✅ [Scheduler] Synced statuses: %d registration closed, %d ongoing, %d completed",
			res.Closed, res.Ongoing, res.Completed)
	}
	return res, nil
}
