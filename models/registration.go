package models

import (
	"time"
)

const (
	RegistrationPending   = "pending"
	RegistrationApproved  = "approved"
	RegistrationRejected  = "rejected"
	RegistrationCancelled = "cancelled"
)

const (
	MaxTeamMembers = 5
	MaxSubstitutes = 2
)

var (
	RegistrationStatuses = []string{RegistrationPending, RegistrationApproved, RegistrationRejected, RegistrationCancelled}
	PaymentMethods       = []string{"transfer", "ewallet", "cash", "free"}
	PaymentStatuses      = []string{"pending", "paid", "failed", "refunded"}
	ExperienceLevels     = []string{"beginner", "intermediate", "advanced", "professional"}
)

// ActiveRegistrationStatuses hold a slot and block a second registration for the same pair.
var ActiveRegistrationStatuses = []string{RegistrationPending, RegistrationApproved}

// transitions lists the allowed registration status changes. Rejected and cancelled are terminal.
var transitions = map[string][]string{
	RegistrationPending:  {RegistrationApproved, RegistrationRejected, RegistrationCancelled},
	RegistrationApproved: {RegistrationCancelled},
}

// CanTransition reports whether a registration may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type TeamMember struct {
	ID             uint   `json:"-" gorm:"primaryKey"`
	RegistrationID string `json:"-" gorm:"type:varchar(36);not null;index"`
	Position       int    `json:"-" gorm:"not null;default:0"`
	Name           string `json:"name" gorm:"size:50;not null"`
	Email          string `json:"email,omitempty" gorm:"size:100"`
	Phone          string `json:"phone,omitempty" gorm:"size:20"`
	GameID         string `json:"game_id,omitempty" gorm:"size:50"`
	Role           string `json:"role,omitempty" gorm:"size:30"`
}

// Payment is recorded for the host's bookkeeping only; nothing here moves money.
type Payment struct {
	Method string     `json:"method,omitempty" gorm:"size:16"`
	Amount float64    `json:"amount" gorm:"not null;default:0"`
	Status string     `json:"status,omitempty" gorm:"size:16;index"`
	Proof  string     `json:"proof,omitempty" gorm:"size:512"`
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

type SocialMedia struct {
	Instagram string `json:"instagram,omitempty" gorm:"size:100"`
	Twitter   string `json:"twitter,omitempty" gorm:"size:100"`
	YouTube   string `json:"youtube,omitempty" gorm:"size:100"`
}

type AdditionalInfo struct {
	Experience          string      `json:"experience,omitempty" gorm:"size:16"`
	PreviousTournaments string      `json:"previous_tournaments,omitempty" gorm:"size:500"`
	Achievements        string      `json:"achievements,omitempty" gorm:"size:500"`
	SocialMedia         SocialMedia `json:"social_media" gorm:"embedded;embeddedPrefix:social_"`
}

type Notes struct {
	FromHost        string `json:"from_host" gorm:"size:1000"`
	FromParticipant string `json:"from_participant" gorm:"size:1000"`
}

// Registration is one participant's entry into a tournament.
//
// idx_registration_active keeps at most one pending or approved registration
// per (tournament, participant); rejected and cancelled rows fall outside it.
type Registration struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TournamentID   string         `json:"tournament_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_registration_active,priority:1,where:status <> 'rejected' AND status <> 'cancelled';index:idx_registration_tournament_status,priority:1"`
	ParticipantID  string         `json:"participant_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_registration_active,priority:2;index:idx_registration_participant_status,priority:1"`
	TeamName       string         `json:"team_name,omitempty" gorm:"size:50"`
	TeamMembers    []TeamMember   `json:"team_members" gorm:"foreignKey:RegistrationID"`
	Status         string         `json:"status" gorm:"size:16;not null;default:'pending';index:idx_registration_tournament_status,priority:2;index:idx_registration_participant_status,priority:2"`
	Payment        Payment        `json:"payment" gorm:"embedded;embeddedPrefix:payment_"`
	AdditionalInfo AdditionalInfo `json:"additional_info" gorm:"embedded;embeddedPrefix:info_"`
	Notes          Notes          `json:"notes" gorm:"embedded;embeddedPrefix:notes_"`
	CheckedIn      bool           `json:"checked_in" gorm:"not null;default:false"`
	CheckedInAt    *time.Time     `json:"checked_in_at,omitempty"`
	FinalRank      *int           `json:"final_rank,omitempty"`
	Prize          float64        `json:"prize" gorm:"not null;default:0"`
	Timestamps

	Tournament *Tournament `json:"tournament,omitempty" gorm:"foreignKey:TournamentID"`

	// Calculated fields (not stored in DB)
	Participant    *PublicProfile `json:"participant,omitempty" gorm:"-"`
	IsPaid         bool           `json:"is_paid" gorm:"-"`
	CanParticipate bool           `json:"can_participate" gorm:"-"`
}

// IsActive reports whether the registration currently holds a slot.
func (r *Registration) IsActive() bool {
	return r.Status == RegistrationPending || r.Status == RegistrationApproved
}

// Decorate fills the calculated payment fields.
func (r *Registration) Decorate() {
	r.IsPaid = r.Payment.Status == "paid" || r.Payment.Method == "free"
	if r.Payment.Method == "" {
		r.CanParticipate = r.Status == RegistrationApproved
	} else {
		r.CanParticipate = r.Status == RegistrationApproved && r.IsPaid
	}
}
