package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"tournament-platform/apperrors"
	"tournament-platform/models"
)

var tracer = otel.Tracer("tournament-platform/services")

type RegistrationService struct {
	DB    *gorm.DB
	Users *UserService

	now func() time.Time
}

func NewRegistrationService(db *gorm.DB, users *UserService) *RegistrationService {
	return &RegistrationService{DB: db, Users: users, now: time.Now}
}

// RegisterRequest is the registration form: up to five named members, two
// substitutes and shared contact details.
type RegisterRequest struct {
	TeamName       string                `json:"team_name"`
	Member1        string                `json:"member1"`
	Member2        string                `json:"member2"`
	Member3        string                `json:"member3"`
	Member4        string                `json:"member4"`
	Member5        string                `json:"member5"`
	Substitute1    string                `json:"substitute1"`
	Substitute2    string                `json:"substitute2"`
	TeamEmail      string                `json:"team_email"`
	WhatsAppNumber string                `json:"whatsapp_number"`
	PaymentMethod  string                `json:"payment_method"`
	AdditionalInfo models.AdditionalInfo `json:"additional_info"`
}

// build turns the form into a registration. The first non-blank member is the
// captain and carries the WhatsApp number; substitutes are kept in the
// participant notes.
func (req RegisterRequest) build(entryFee float64) (*models.Registration, error) {
	var f apperrors.FieldErrors

	reg := &models.Registration{
		ID:          uuid.NewString(),
		TeamName:    strings.TrimSpace(req.TeamName),
		Status:      models.RegistrationPending,
		TeamMembers: []models.TeamMember{},
	}
	f.Check(maxLen(reg.TeamName, 50), "team_name", "team name must be at most 50 characters")

	email := strings.ToLower(strings.TrimSpace(req.TeamEmail))
	validateEmail(&f, "team_email", email, false)
	whatsapp := strings.TrimSpace(req.WhatsAppNumber)
	validatePhone(&f, "whatsapp_number", whatsapp)

	members := [models.MaxTeamMembers]string{req.Member1, req.Member2, req.Member3, req.Member4, req.Member5}
	for i, name := range members {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		field := fmt.Sprintf("member%d", i+1)
		f.Check(maxLen(name, 50), field, "member name must be at most 50 characters")

		member := models.TeamMember{
			Position: len(reg.TeamMembers),
			Name:     name,
			Email:    email,
			Role:     "Player",
		}
		if len(reg.TeamMembers) == 0 {
			member.Role = "Captain"
			member.Phone = whatsapp
		}
		reg.TeamMembers = append(reg.TeamMembers, member)
	}

	var subs []string
	for i, name := range [models.MaxSubstitutes]string{req.Substitute1, req.Substitute2} {
		if name = strings.TrimSpace(name); name != "" {
			f.Check(maxLen(name, 50), fmt.Sprintf("substitute%d", i+1), "substitute name must be at most 50 characters")
			subs = append(subs, name)
		}
	}
	if len(subs) > 0 {
		reg.Notes.FromParticipant = "Substitute players: " + strings.Join(subs, ", ")
	}

	if method := strings.TrimSpace(req.PaymentMethod); method != "" {
		f.Check(slices.Contains(models.PaymentMethods, method), "payment_method", "payment method must be transfer, ewallet, cash or free")
		reg.Payment = models.Payment{Method: method, Amount: entryFee, Status: "pending"}
	}

	info := req.AdditionalInfo
	info.PreviousTournaments = strings.TrimSpace(info.PreviousTournaments)
	info.Achievements = strings.TrimSpace(info.Achievements)
	f.Check(info.Experience == "" || slices.Contains(models.ExperienceLevels, info.Experience),
		"additional_info.experience", "experience must be beginner, intermediate, advanced or professional")
	f.Check(maxLen(info.PreviousTournaments, 500), "additional_info.previous_tournaments", "previous tournaments must be at most 500 characters")
	f.Check(maxLen(info.Achievements, 500), "additional_info.achievements", "achievements must be at most 500 characters")
	f.Check(maxLen(info.SocialMedia.Instagram, 100) && maxLen(info.SocialMedia.Twitter, 100) && maxLen(info.SocialMedia.YouTube, 100),
		"additional_info.social_media", "social media handles must be at most 100 characters")
	reg.AdditionalInfo = info

	if err := f.Err("invalid registration data"); err != nil {
		return nil, err
	}
	return reg, nil
}

// Register enters participantID into a tournament. Checks run in a fixed order
// and the first failure wins: not found, not open, deadline passed, full,
// already registered. The insert and the counter increment share one
// transaction; the increment is conditional so capacity holds under concurrency.
func (s *RegistrationService) Register(ctx context.Context, tournamentID, participantID string, req RegisterRequest) (reg *models.Registration, err error) {
	ctx, span := tracer.Start(ctx, "registration.register", trace.WithAttributes(
		attribute.String("tournament.id", tournamentID),
		attribute.String("participant.id", participantID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		}
		span.End()
	}()

	now := s.now().UTC()
	db := s.DB.WithContext(ctx)

	var t models.Tournament
	if err := db.First(&t, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("tournament not found")
		}
		return nil, apperrors.Internal("could not load tournament", err)
	}
	if err := checkIntake(&t, now); err != nil {
		return nil, err
	}

	var active int64
	err = db.Model(&models.Registration{}).
		Where("tournament_id = ? AND participant_id = ? AND status IN ?", t.ID, participantID, models.ActiveRegistrationStatuses).
		Count(&active).Error
	if err != nil {
		return nil, apperrors.Internal("could not check registration", err)
	}
	if active > 0 {
		return nil, apperrors.Conflict("already registered for this tournament")
	}

	reg, err = req.build(t.EntryFee)
	if err != nil {
		return nil, err
	}
	reg.TournamentID = t.ID
	reg.ParticipantID = participantID
	for i := range reg.TeamMembers {
		reg.TeamMembers[i].RegistrationID = reg.ID
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := incrementParticipants(tx, t.ID, now); err != nil {
			return err
		}
		if err := tx.Create(reg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("already registered for this tournament")
			}
			return apperrors.Internal("could not create registration", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📝 [Registrations] %s registered for %s (%s)", participantID, t.ID, reg.ID)
	return s.get(ctx, reg.ID)
}

// checkIntake applies the status, deadline and capacity preconditions in order.
func checkIntake(t *models.Tournament, now time.Time) error {
	if t.Status != models.StatusOpen {
		return apperrors.InvalidState("tournament is not accepting registrations")
	}
	if now.After(t.Schedule.RegistrationDeadline) {
		return apperrors.InvalidState("registration deadline has passed")
	}
	if t.CurrentParticipants >= t.MaxParticipants {
		return apperrors.Full("tournament is full")
	}
	return nil
}

// incrementParticipants claims a slot. It only succeeds while the tournament is
// open, before its deadline and below capacity; otherwise it reports why not.
func incrementParticipants(tx *gorm.DB, tournamentID string, now time.Time) error {
	res := tx.Model(&models.Tournament{}).
		Where("id = ? AND status = ? AND registration_deadline >= ? AND current_participants < max_participants",
			tournamentID, models.StatusOpen, now).
		UpdateColumns(map[string]any{
			"current_participants": gorm.Expr("current_participants + ?", 1),
			"stat_registrations":   gorm.Expr("stat_registrations + ?", 1),
		})
	if res.Error != nil {
		return apperrors.Internal("could not reserve a slot", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var t models.Tournament
	if err := tx.First(&t, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("tournament not found")
		}
		return apperrors.Internal("could not load tournament", err)
	}
	if err := checkIntake(&t, now); err != nil {
		return err
	}
	return apperrors.Full("tournament is full")
}

// releaseParticipant frees a slot. The guard keeps the counter from going negative.
func releaseParticipant(tx *gorm.DB, tournamentID string) error {
	err := tx.Model(&models.Tournament{}).
		Where("id = ? AND current_participants > 0", tournamentID).
		UpdateColumn("current_participants", gorm.Expr("current_participants - ?", 1)).Error
	if err != nil {
		return apperrors.Internal("could not release slot", err)
	}
	return nil
}

func (s *RegistrationService) Approve(ctx context.Context, hostID, registrationID, notes string) (*models.Registration, error) {
	return s.transition(ctx, registrationID, models.RegistrationApproved, s.hostOwns(hostID), "notes_from_host", notes)
}

func (s *RegistrationService) Reject(ctx context.Context, hostID, registrationID, notes string) (*models.Registration, error) {
	return s.transition(ctx, registrationID, models.RegistrationRejected, s.hostOwns(hostID), "notes_from_host", notes)
}

func (s *RegistrationService) Cancel(ctx context.Context, participantID, registrationID, notes string) (*models.Registration, error) {
	return s.transition(ctx, registrationID, models.RegistrationCancelled, participantOwns(participantID), "notes_from_participant", notes)
}

// authorizer decides whether the caller may act on a registration.
type authorizer func(tx *gorm.DB, reg *models.Registration) error

func (s *RegistrationService) hostOwns(hostID string) authorizer {
	return func(tx *gorm.DB, reg *models.Registration) error {
		var t models.Tournament
		if err := tx.Select("id", "host_id").First(&t, "id = ?", reg.TournamentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("tournament not found")
			}
			return apperrors.Internal("could not load tournament", err)
		}
		if t.HostID != hostID {
			return apperrors.Forbidden("you do not own this tournament")
		}
		return nil
	}
}

func participantOwns(participantID string) authorizer {
	return func(_ *gorm.DB, reg *models.Registration) error {
		if reg.ParticipantID != participantID {
			return apperrors.Forbidden("you do not own this registration")
		}
		return nil
	}
}

// transition moves a registration to status `to`. The update is conditional on
// the status that was read, so two concurrent transitions cannot both apply.
// Leaving an active status releases the tournament slot in the same transaction.
func (s *RegistrationService) transition(ctx context.Context, registrationID, to string, authorize authorizer, notesColumn, notes string) (reg *models.Registration, err error) {
	ctx, span := tracer.Start(ctx, "registration.transition", trace.WithAttributes(
		attribute.String("registration.id", registrationID),
		attribute.String("registration.to", to),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		}
		span.End()
	}()

	notes = strings.TrimSpace(notes)
	if !maxLen(notes, 1000) {
		return nil, apperrors.Validation("notes are too long",
			apperrors.FieldError{Field: "notes", Message: "notes must be at most 1000 characters"})
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadRegistration(tx, registrationID)
		if err != nil {
			return err
		}
		if err := authorize(tx, current); err != nil {
			return err
		}
		if !models.CanTransition(current.Status, to) {
			return apperrors.InvalidState(fmt.Sprintf("cannot move a %s registration to %s", current.Status, to))
		}

		updates := map[string]any{"status": to}
		if notes != "" {
			updates[notesColumn] = notes
		}
		res := tx.Model(&models.Registration{}).
			Where("id = ? AND status = ?", current.ID, current.Status).
			Updates(updates)
		if res.Error != nil {
			return apperrors.Internal("could not update registration", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.InvalidState("registration status changed concurrently")
		}

		if current.IsActive() && (to == models.RegistrationRejected || to == models.RegistrationCancelled) {
			return releaseParticipant(tx, current.TournamentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📝 [Registrations] %s -> %s", registrationID, to)
	return s.get(ctx, registrationID)
}

// CheckIn marks an approved registration as present.
func (s *RegistrationService) CheckIn(ctx context.Context, hostID, registrationID string) (*models.Registration, error) {
	return s.hostUpdate(ctx, hostID, registrationID, func(reg *models.Registration) (map[string]any, error) {
		if reg.Status != models.RegistrationApproved {
			return nil, apperrors.InvalidState("only approved registrations can check in")
		}
		if reg.CheckedIn {
			return nil, apperrors.InvalidState("registration is already checked in")
		}
		return map[string]any{"checked_in": true, "checked_in_at": s.now().UTC()}, nil
	})
}

// MarkPaid records that the host received the entry fee. No money moves here.
func (s *RegistrationService) MarkPaid(ctx context.Context, hostID, registrationID, proof string) (*models.Registration, error) {
	proof = strings.TrimSpace(proof)
	if !maxLen(proof, 512) {
		return nil, apperrors.Validation("payment proof is too long",
			apperrors.FieldError{Field: "proof", Message: "proof must be at most 512 characters"})
	}
	return s.hostUpdate(ctx, hostID, registrationID, func(reg *models.Registration) (map[string]any, error) {
		if !reg.IsActive() {
			return nil, apperrors.InvalidState("only pending or approved registrations can be marked paid")
		}
		if reg.Payment.Status == "paid" {
			return nil, apperrors.InvalidState("registration is already paid")
		}
		updates := map[string]any{"payment_status": "paid", "payment_paid_at": s.now().UTC()}
		if proof != "" {
			updates["payment_proof"] = proof
		}
		return updates, nil
	})
}

// SetResult records the final placement and prize of an approved registration.
func (s *RegistrationService) SetResult(ctx context.Context, hostID, registrationID string, finalRank int, prize float64) (*models.Registration, error) {
	var f apperrors.FieldErrors
	f.Check(finalRank >= 1, "final_rank", "final rank must be at least 1")
	f.Check(prize >= 0, "prize", "prize cannot be negative")
	if err := f.Err("invalid result"); err != nil {
		return nil, err
	}
	return s.hostUpdate(ctx, hostID, registrationID, func(reg *models.Registration) (map[string]any, error) {
		if reg.Status != models.RegistrationApproved {
			return nil, apperrors.InvalidState("only approved registrations can receive a result")
		}
		return map[string]any{"final_rank": finalRank, "prize": prize}, nil
	})
}

// hostUpdate applies the updates built by change to a registration of a tournament hostID owns.
func (s *RegistrationService) hostUpdate(ctx context.Context, hostID, registrationID string, change func(*models.Registration) (map[string]any, error)) (*models.Registration, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg, err := loadRegistration(tx, registrationID)
		if err != nil {
			return err
		}
		if err := s.hostOwns(hostID)(tx, reg); err != nil {
			return err
		}
		updates, err := change(reg)
		if err != nil {
			return err
		}
		res := tx.Model(&models.Registration{}).
			Where("id = ? AND status = ?", reg.ID, reg.Status).
			Updates(updates)
		if res.Error != nil {
			return apperrors.Internal("could not update registration", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.InvalidState("registration status changed concurrently")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, registrationID)
}

func loadRegistration(db *gorm.DB, id string) (*models.Registration, error) {
	var reg models.Registration
	err := db.First(&reg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("registration not found")
	}
	if err != nil {
		return nil, apperrors.Internal("could not load registration", err)
	}
	return &reg, nil
}

// Get returns a registration visible to its participant or to the tournament host.
func (s *RegistrationService) Get(ctx context.Context, userID, registrationID string) (*models.Registration, error) {
	reg, err := s.get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.ParticipantID != userID && (reg.Tournament == nil || reg.Tournament.HostID != userID) {
		return nil, apperrors.Forbidden("you cannot view this registration")
	}
	return reg, nil
}

func (s *RegistrationService) get(ctx context.Context, id string) (*models.Registration, error) {
	var reg models.Registration
	err := s.DB.WithContext(ctx).Preload("TeamMembers").Preload("Tournament").First(&reg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("registration not found")
	}
	if err != nil {
		return nil, apperrors.Internal("could not load registration", err)
	}
	if err := s.decorate(ctx, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// ListForTournament lists the registrations of a tournament hostID owns.
func (s *RegistrationService) ListForTournament(ctx context.Context, hostID, tournamentID, status string, page PageRequest) ([]models.Registration, Pagination, error) {
	db := s.DB.WithContext(ctx)
	var t models.Tournament
	if err := db.Select("id", "host_id").First(&t, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Pagination{}, apperrors.NotFound("tournament not found")
		}
		return nil, Pagination{}, apperrors.Internal("could not load tournament", err)
	}
	if t.HostID != hostID {
		return nil, Pagination{}, apperrors.Forbidden("you do not own this tournament")
	}

	query := db.Model(&models.Registration{}).Where("tournament_id = ?", t.ID)
	if status != "" {
		if !slices.Contains(models.RegistrationStatuses, status) {
			return nil, Pagination{}, apperrors.Validation("invalid status",
				apperrors.FieldError{Field: "status", Message: "unknown registration status"})
		}
		query = query.Where("status = ?", status)
	}
	return s.listPage(ctx, query, page, "TeamMembers")
}

// ListForParticipant lists the caller's own registrations with their tournaments.
func (s *RegistrationService) ListForParticipant(ctx context.Context, participantID, status string, page PageRequest) ([]models.Registration, Pagination, error) {
	query := s.DB.WithContext(ctx).Model(&models.Registration{}).Where("participant_id = ?", participantID)
	if status != "" {
		if !slices.Contains(models.RegistrationStatuses, status) {
			return nil, Pagination{}, apperrors.Validation("invalid status",
				apperrors.FieldError{Field: "status", Message: "unknown registration status"})
		}
		query = query.Where("status = ?", status)
	}
	return s.listPage(ctx, query, page, "TeamMembers", "Tournament")
}

func (s *RegistrationService) listPage(ctx context.Context, query *gorm.DB, page PageRequest, preload ...string) ([]models.Registration, Pagination, error) {
	var regs []models.Registration
	pagination, err := findPage(query, page, &regs, preload...)
	if err != nil {
		return nil, Pagination{}, apperrors.Internal("could not list registrations", err)
	}
	ptrs := make([]*models.Registration, len(regs))
	for i := range regs {
		ptrs[i] = &regs[i]
	}
	if err := s.decorate(ctx, ptrs...); err != nil {
		return nil, Pagination{}, err
	}
	return regs, pagination, nil
}

// Stats counts a tournament's registrations by status.
func (s *RegistrationService) Stats(ctx context.Context, hostID, tournamentID string) (map[string]int64, error) {
	db := s.DB.WithContext(ctx)
	var t models.Tournament
	if err := db.Select("id", "host_id").First(&t, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("tournament not found")
		}
		return nil, apperrors.Internal("could not load tournament", err)
	}
	if t.HostID != hostID {
		return nil, apperrors.Forbidden("you do not own this tournament")
	}

	var rows []struct {
		Status string
		Count  int64
	}
	err := db.Model(&models.Registration{}).
		Select("status, COUNT(*) AS count").
		Where("tournament_id = ?", t.ID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal("could not count registrations", err)
	}

	stats := map[string]int64{"total": 0}
	for _, status := range models.RegistrationStatuses {
		stats[status] = 0
	}
	for _, row := range rows {
		stats[row.Status] = row.Count
		stats["total"] += row.Count
	}
	return stats, nil
}

// decorate orders team members, fills payment flags, tournament derived
// fields and participant profiles.
func (s *RegistrationService) decorate(ctx context.Context, regs ...*models.Registration) error {
	now := s.now()
	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		sort.Slice(reg.TeamMembers, func(i, j int) bool {
			return reg.TeamMembers[i].Position < reg.TeamMembers[j].Position
		})
		reg.Decorate()
		if reg.Tournament != nil {
			reg.Tournament.Decorate(now)
		}
		if !slices.Contains(ids, reg.ParticipantID) {
			ids = append(ids, reg.ParticipantID)
		}
	}
	if s.Users == nil {
		return nil
	}
	profiles, err := s.Users.publicProfiles(ctx, ids)
	if err != nil {
		return err
	}
	for _, reg := range regs {
		reg.Participant = profiles[reg.ParticipantID]
	}
	return nil
}
