package models

import (
	"time"

	"gorm.io/datatypes"
)

// Stored tournament statuses.
const (
	StatusDraft              = "draft"
	StatusOpen               = "open"
	StatusRegistrationClosed = "registration_closed"
	StatusOngoing            = "ongoing"
	StatusCompleted          = "completed"
	StatusCancelled          = "cancelled"
	StatusSoon               = "soon"
)

// Derived registration states, see Tournament.ComputeRegistrationStatus.
const (
	RegistrationStateDraft     = "draft"
	RegistrationStateCancelled = "cancelled"
	RegistrationStateFull      = "full"
	RegistrationStateClosed    = "closed"
	RegistrationStateOpen      = "open"
)

// Derived schedule progress, see Tournament.ComputeProgress.
const (
	ProgressUpcoming  = "upcoming"
	ProgressOngoing   = "ongoing"
	ProgressCompleted = "completed"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

const (
	MinParticipants = 2
	MaxParticipants = 1000
)

var (
	TournamentTypes    = []string{"esport", "sport"}
	TournamentStatuses = []string{StatusDraft, StatusOpen, StatusRegistrationClosed, StatusOngoing, StatusCompleted, StatusCancelled, StatusSoon}
	Categories         = []string{"MOBA", "FPS", "Battle Royale", "Strategy", "Sports", "Fighting", "Racing", "Other"}
	Formats            = []string{"Single Elimination", "Double Elimination", "Round Robin", "Swiss System", "League"}
	Visibilities       = []string{VisibilityPublic, VisibilityPrivate}
	LocationTypes      = []string{"online", "offline", "hybrid"}
)

type PrizePool struct {
	First  float64 `json:"first" gorm:"not null;default:0"`
	Second float64 `json:"second" gorm:"not null;default:0"`
	Third  float64 `json:"third" gorm:"not null;default:0"`
}

func (p PrizePool) Total() float64 { return p.First + p.Second + p.Third }

type Schedule struct {
	RegistrationDeadline time.Time `json:"registration_deadline" gorm:"not null"`
	StartDate            time.Time `json:"start_date" gorm:"not null;index"`
	EndDate              time.Time `json:"end_date" gorm:"not null"`
}

type Term struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Images struct {
	Banner string `json:"banner,omitempty" gorm:"size:512"`
	Logo   string `json:"logo,omitempty" gorm:"size:512"`
}

type Location struct {
	Type    string `json:"type" gorm:"size:16;not null;default:'online'"`
	Address string `json:"address,omitempty" gorm:"size:200"`
	City    string `json:"city,omitempty" gorm:"size:50"`
}

type Contact struct {
	Email    string `json:"email,omitempty" gorm:"size:100"`
	Phone    string `json:"phone,omitempty" gorm:"size:20"`
	WhatsApp string `json:"whatsapp,omitempty" gorm:"size:20"`
}

type Organizer struct {
	Name  string `json:"name,omitempty" gorm:"size:100"`
	Role  string `json:"role,omitempty" gorm:"size:100"`
	Email string `json:"email,omitempty" gorm:"size:100"`
	Phone string `json:"phone,omitempty" gorm:"size:20"`
}

// Statistics counters. Registrations is cumulative and never decremented.
type Statistics struct {
	Views         int64 `json:"views" gorm:"not null;default:0"`
	Registrations int64 `json:"registrations" gorm:"not null;default:0"`
	Shares        int64 `json:"shares" gorm:"not null;default:0"`
}

// Tournament is a hosted competition that participants register for.
// CurrentParticipants and Statistics are only written through the counter
// statements in the services package, never through metadata updates.
type Tournament struct {
	ID                  string                      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	HostID              string                      `json:"host_id" gorm:"type:varchar(36);not null;index"`
	Type                string                      `json:"type" gorm:"size:16;not null"`
	Title               string                      `json:"title" gorm:"size:100;not null"`
	Slug                string                      `json:"slug" gorm:"size:128;uniqueIndex;not null"`
	Description         string                      `json:"description" gorm:"type:text;not null"`
	Game                string                      `json:"game" gorm:"size:50;not null;index"`
	Category            string                      `json:"category,omitempty" gorm:"size:32;index"`
	Format              string                      `json:"format,omitempty" gorm:"size:32"`
	MaxParticipants     int                         `json:"max_participants" gorm:"not null"`
	CurrentParticipants int                         `json:"current_participants" gorm:"not null;default:0"`
	EntryFee            float64                     `json:"entry_fee" gorm:"not null;default:0"`
	PrizePool           PrizePool                   `json:"prize_pool" gorm:"embedded;embeddedPrefix:prize_"`
	Schedule            Schedule                    `json:"schedule" gorm:"embedded"`
	Rules               string                      `json:"rules,omitempty" gorm:"type:text"`
	Requirements        string                      `json:"requirements,omitempty" gorm:"type:text"`
	TermsConditions     datatypes.JSONSlice[Term]   `json:"terms_conditions"`
	Status              string                      `json:"status" gorm:"size:32;not null;default:'draft';index"`
	Visibility          string                      `json:"visibility" gorm:"size:16;not null;default:'public';index"`
	Tags                datatypes.JSONSlice[string] `json:"tags"`
	Images              Images                      `json:"images" gorm:"embedded;embeddedPrefix:image_"`
	Location            Location                    `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	Contact             Contact                     `json:"contact" gorm:"embedded;embeddedPrefix:contact_"`
	Organizer           Organizer                   `json:"organizer" gorm:"embedded;embeddedPrefix:organizer_"`
	Statistics          Statistics                  `json:"statistics" gorm:"embedded;embeddedPrefix:stat_"`
	Timestamps

	// Calculated fields (not stored in DB)
	Host               *PublicProfile `json:"host,omitempty" gorm:"-"`
	RegistrationStatus string         `json:"registration_status" gorm:"-"`
	Progress           string         `json:"progress" gorm:"-"`
	TotalPrizePool     float64        `json:"total_prize_pool" gorm:"-"`
	AvailableSlots     int            `json:"available_slots" gorm:"-"`
}

// ComputeRegistrationStatus derives whether registration is possible at now.
// Precedence: draft, cancelled, full, closed, open.
func (t *Tournament) ComputeRegistrationStatus(now time.Time) string {
	switch {
	case t.Status == StatusDraft:
		return RegistrationStateDraft
	case t.Status == StatusCancelled:
		return RegistrationStateCancelled
	case t.CurrentParticipants >= t.MaxParticipants:
		return RegistrationStateFull
	case now.After(t.Schedule.RegistrationDeadline):
		return RegistrationStateClosed
	default:
		return RegistrationStateOpen
	}
}

// ComputeProgress places now relative to the tournament's start and end.
func (t *Tournament) ComputeProgress(now time.Time) string {
	switch {
	case now.Before(t.Schedule.StartDate):
		return ProgressUpcoming
	case !now.After(t.Schedule.EndDate):
		return ProgressOngoing
	default:
		return ProgressCompleted
	}
}

// Decorate fills the calculated fields as of now.
func (t *Tournament) Decorate(now time.Time) {
	t.RegistrationStatus = t.ComputeRegistrationStatus(now)
	t.Progress = t.ComputeProgress(now)
	t.TotalPrizePool = t.PrizePool.Total()
	t.AvailableSlots = t.MaxParticipants - t.CurrentParticipants
	if t.AvailableSlots < 0 {
		t.AvailableSlots = 0
	}
}
