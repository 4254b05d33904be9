package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"tournament-platform/apperrors"
	"tournament-platform/models"
	"tournament-platform/utils"
)

type TournamentService struct {
	DB    *gorm.DB
	Users *UserService
	Store utils.ObjectStore

	now func() time.Time
}

func NewTournamentService(db *gorm.DB, users *UserService, store utils.ObjectStore) *TournamentService {
	return &TournamentService{DB: db, Users: users, Store: store, now: time.Now}
}

// TournamentInput is the host-editable part of a tournament. Counters are not
// part of it: they only change through registrations and views.
type TournamentInput struct {
	Type            string           `json:"type"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Game            string           `json:"game"`
	Category        string           `json:"category"`
	Format          string           `json:"format"`
	MaxParticipants int              `json:"max_participants"`
	EntryFee        float64          `json:"entry_fee"`
	PrizePool       models.PrizePool `json:"prize_pool"`
	Schedule        models.Schedule  `json:"schedule"`
	Rules           string           `json:"rules"`
	Requirements    string           `json:"requirements"`
	TermsConditions []models.Term    `json:"terms_conditions"`
	// Status applies on create only; use UpdateStatus afterwards.
	Status     string           `json:"status"`
	Visibility string           `json:"visibility"`
	Tags       []string         `json:"tags"`
	Location   models.Location  `json:"location"`
	Contact    models.Contact   `json:"contact"`
	Organizer  models.Organizer `json:"organizer"`
}

// Statuses a tournament may be created with.
var createStatuses = []string{models.StatusDraft, models.StatusOpen, models.StatusSoon}

// metadataColumns are written by Update. current_participants and stat_* never are.
var metadataColumns = []string{
	"type", "title", "slug", "description", "game", "category", "format",
	"max_participants", "entry_fee",
	"prize_first", "prize_second", "prize_third",
	"registration_deadline", "start_date", "end_date",
	"rules", "requirements", "terms_conditions", "visibility", "tags",
	"location_type", "location_address", "location_city",
	"contact_email", "contact_phone", "contact_whats_app",
	"organizer_name", "organizer_role", "organizer_email", "organizer_phone",
}

func (in *TournamentInput) normalize() {
	in.Type = strings.TrimSpace(in.Type)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Game = strings.TrimSpace(in.Game)
	in.Category = strings.TrimSpace(in.Category)
	in.Format = strings.TrimSpace(in.Format)
	in.Rules = strings.TrimSpace(in.Rules)
	in.Requirements = strings.TrimSpace(in.Requirements)
	in.Status = strings.TrimSpace(in.Status)
	if in.Visibility = strings.TrimSpace(in.Visibility); in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if in.Location.Type = strings.TrimSpace(in.Location.Type); in.Location.Type == "" {
		in.Location.Type = "online"
	}
	in.Location.Address = strings.TrimSpace(in.Location.Address)
	in.Location.City = strings.TrimSpace(in.Location.City)
	in.Contact.Email = strings.ToLower(strings.TrimSpace(in.Contact.Email))
	in.Organizer.Email = strings.ToLower(strings.TrimSpace(in.Organizer.Email))
	in.Schedule.RegistrationDeadline = in.Schedule.RegistrationDeadline.UTC()
	in.Schedule.StartDate = in.Schedule.StartDate.UTC()
	in.Schedule.EndDate = in.Schedule.EndDate.UTC()

	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" && !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	in.Tags = tags
}

// validate checks every field-level rule and the schedule and prize orderings.
func (in *TournamentInput) validate() error {
	var f apperrors.FieldErrors

	f.Check(slices.Contains(models.TournamentTypes, in.Type), "type", "type must be esport or sport")
	f.Check(in.Title != "", "title", "title is required")
	f.Check(maxLen(in.Title, 100), "title", "title must be at most 100 characters")
	f.Check(in.Description != "", "description", "description is required")
	f.Check(maxLen(in.Description, 2000), "description", "description must be at most 2000 characters")
	f.Check(in.Game != "", "game", "game is required")
	f.Check(maxLen(in.Game, 50), "game", "game must be at most 50 characters")
	f.Check(in.Category == "" || slices.Contains(models.Categories, in.Category), "category", "unknown category")
	f.Check(in.Format == "" || slices.Contains(models.Formats, in.Format), "format", "unknown format")
	f.Check(in.MaxParticipants >= models.MinParticipants && in.MaxParticipants <= models.MaxParticipants,
		"max_participants", fmt.Sprintf("max participants must be between %d and %d", models.MinParticipants, models.MaxParticipants))
	f.Check(in.EntryFee >= 0, "entry_fee", "entry fee cannot be negative")

	p := in.PrizePool
	f.Check(p.First >= 0 && p.Second >= 0 && p.Third >= 0, "prize_pool", "prizes cannot be negative")
	f.Check(p.First >= p.Second && p.Second >= p.Third, "prize_pool", "prizes must be ordered first >= second >= third")

	s := in.Schedule
	switch {
	case s.RegistrationDeadline.IsZero() || s.StartDate.IsZero() || s.EndDate.IsZero():
		f.Add("schedule", "registration deadline, start date and end date are required")
	default:
		f.Check(s.RegistrationDeadline.Before(s.StartDate), "schedule.registration_deadline", "registration deadline must be before start date")
		f.Check(s.StartDate.Before(s.EndDate), "schedule.start_date", "start date must be before end date")
	}

	f.Check(maxLen(in.Rules, 5000), "rules", "rules must be at most 5000 characters")
	f.Check(maxLen(in.Requirements, 1000), "requirements", "requirements must be at most 1000 characters")
	for i, term := range in.TermsConditions {
		f.Check(strings.TrimSpace(term.Title) != "" && strings.TrimSpace(term.Content) != "",
			fmt.Sprintf("terms_conditions[%d]", i), "terms need a title and content")
	}
	f.Check(in.Status == "" || slices.Contains(createStatuses, in.Status), "status", "status must be draft, open or soon")
	f.Check(slices.Contains(models.Visibilities, in.Visibility), "visibility", "visibility must be public or private")
	for i, tag := range in.Tags {
		f.Check(maxLen(tag, 20), fmt.Sprintf("tags[%d]", i), "tags must be at most 20 characters")
	}

	f.Check(slices.Contains(models.LocationTypes, in.Location.Type), "location.type", "location type must be online, offline or hybrid")
	f.Check(maxLen(in.Location.Address, 200), "location.address", "address must be at most 200 characters")
	f.Check(maxLen(in.Location.City, 50), "location.city", "city must be at most 50 characters")

	validateEmail(&f, "contact.email", in.Contact.Email, false)
	validatePhone(&f, "contact.phone", in.Contact.Phone)
	validatePhone(&f, "contact.whatsapp", in.Contact.WhatsApp)
	f.Check(maxLen(in.Organizer.Name, 100), "organizer.name", "organizer name must be at most 100 characters")
	f.Check(maxLen(in.Organizer.Role, 100), "organizer.role", "organizer role must be at most 100 characters")
	validateEmail(&f, "organizer.email", in.Organizer.Email, false)
	validatePhone(&f, "organizer.phone", in.Organizer.Phone)

	return f.Err("invalid tournament data")
}

// applyTo copies the metadata fields onto t.
func (in *TournamentInput) applyTo(t *models.Tournament) {
	t.Type = in.Type
	t.Title = in.Title
	t.Description = in.Description
	t.Game = in.Game
	t.Category = in.Category
	t.Format = in.Format
	t.MaxParticipants = in.MaxParticipants
	t.EntryFee = in.EntryFee
	t.PrizePool = in.PrizePool
	t.Schedule = in.Schedule
	t.Rules = in.Rules
	t.Requirements = in.Requirements
	t.TermsConditions = in.TermsConditions
	t.Visibility = in.Visibility
	t.Tags = in.Tags
	t.Location = in.Location
	t.Contact = in.Contact
	t.Organizer = in.Organizer
}

func makeSlug(title string) string {
	base := slug.Make(title)
	if base == "" {
		base = "tournament"
	}
	return base + "-" + uuid.NewString()[:8]
}

// Create validates and stores a new tournament owned by hostID.
func (s *TournamentService) Create(ctx context.Context, hostID string, in TournamentInput) (*models.Tournament, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	t := &models.Tournament{
		ID:     uuid.NewString(),
		HostID: hostID,
		Slug:   makeSlug(in.Title),
		Status: in.Status,
	}
	if t.Status == "" {
		t.Status = models.StatusDraft
	}
	in.applyTo(t)
	if t.TermsConditions == nil {
		t.TermsConditions = []models.Term{}
	}

	if err := s.DB.WithContext(ctx).Create(t).Error; err != nil {
		return nil, apperrors.Internal("could not create tournament", err)
	}
	log.Printf("🏆 [Tournaments] Created %q (%s) by host %s", t.Title, t.ID, hostID)
	return s.Get(ctx, t.ID)
}

// load reads a tournament by id or slug without decorating it.
func (s *TournamentService) load(db *gorm.DB, idOrSlug string) (*models.Tournament, error) {
	var t models.Tournament
	err := db.Where("id = ? OR slug = ?", idOrSlug, idOrSlug).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("tournament not found")
	}
	if err != nil {
		return nil, apperrors.Internal("could not load tournament", err)
	}
	return &t, nil
}

// Get returns a tournament by id or slug, with its host and derived fields.
func (s *TournamentService) Get(ctx context.Context, idOrSlug string) (*models.Tournament, error) {
	t, err := s.load(s.DB.WithContext(ctx), idOrSlug)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// View is Get for a public detail page: it also counts the view.
func (s *TournamentService) View(ctx context.Context, idOrSlug string) (*models.Tournament, error) {
	t, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if err := s.RecordView(ctx, t.ID); err != nil {
		return nil, err
	}
	t.Statistics.Views++
	return t, nil
}

func (s *TournamentService) RecordView(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ?", id).
		UpdateColumn("stat_views", gorm.Expr("stat_views + ?", 1)).Error
	if err != nil {
		return apperrors.Internal("could not record view", err)
	}
	return nil
}

// requireOwned loads a tournament and checks that hostID owns it.
func (s *TournamentService) requireOwned(db *gorm.DB, hostID, id string) (*models.Tournament, error) {
	t, err := s.load(db, id)
	if err != nil {
		return nil, err
	}
	if t.HostID != hostID {
		return nil, apperrors.Forbidden("you do not own this tournament")
	}
	return t, nil
}

// Update replaces the metadata of an owned tournament. It refuses to lower
// max participants below the current participant count.
func (s *TournamentService) Update(ctx context.Context, hostID, id string, in TournamentInput) (*models.Tournament, error) {
	db := s.DB.WithContext(ctx)
	t, err := s.requireOwned(db, hostID, id)
	if err != nil {
		return nil, err
	}

	in.normalize()
	in.Status = ""
	if err := in.validate(); err != nil {
		return nil, err
	}

	if in.Title != t.Title {
		t.Slug = makeSlug(in.Title)
	}
	in.applyTo(t)
	if t.TermsConditions == nil {
		t.TermsConditions = []models.Term{}
	}

	// The participant guard is part of the statement so a concurrent
	// registration cannot slip past it.
	res := db.Model(t).
		Where("current_participants <= ?", in.MaxParticipants).
		Select(metadataColumns).
		Updates(t)
	if res.Error != nil {
		return nil, apperrors.Internal("could not update tournament", res.Error)
	}
	if res.RowsAffected == 0 {
		current, err := s.load(db, t.ID)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.Validation("max participants is below current participants",
			apperrors.FieldError{
				Field:   "max_participants",
				Message: fmt.Sprintf("max participants cannot be lower than the %d current participants", current.CurrentParticipants),
			})
	}
	log.Printf("🏆 [Tournaments] Updated %s", t.ID)
	return s.Get(ctx, t.ID)
}

// UpdateStatus lets the owner set any valid stored status.
func (s *TournamentService) UpdateStatus(ctx context.Context, hostID, id, status string) (*models.Tournament, error) {
	status = strings.TrimSpace(status)
	if !slices.Contains(models.TournamentStatuses, status) {
		return nil, apperrors.Validation("invalid status",
			apperrors.FieldError{Field: "status", Message: "status must be one of " + strings.Join(models.TournamentStatuses, ", ")})
	}

	db := s.DB.WithContext(ctx)
	t, err := s.requireOwned(db, hostID, id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(t).Update("status", status).Error; err != nil {
		return nil, apperrors.Internal("could not update status", err)
	}
	log.Printf("🏆 [Tournaments] %s status %s -> %s", t.ID, t.Status, status)
	return s.Get(ctx, t.ID)
}

// Delete removes an owned tournament together with its registrations.
func (s *TournamentService) Delete(ctx context.Context, hostID, id string) error {
	var images models.Images
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.requireOwned(tx, hostID, id)
		if err != nil {
			return err
		}
		images = t.Images

		regIDs := tx.Model(&models.Registration{}).Select("id").Where("tournament_id = ?", t.ID)
		if err := tx.Where("registration_id IN (?)", regIDs).Delete(&models.TeamMember{}).Error; err != nil {
			return apperrors.Internal("could not delete team members", err)
		}
		if err := tx.Where("tournament_id = ?", t.ID).Delete(&models.Registration{}).Error; err != nil {
			return apperrors.Internal("could not delete registrations", err)
		}
		if err := tx.Delete(t).Error; err != nil {
			return apperrors.Internal("could not delete tournament", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, url := range []string{images.Banner, images.Logo} {
		s.removeImage(ctx, url)
	}
	log.Printf("🗑️ [Tournaments] Deleted %s", id)
	return nil
}

// List returns public tournaments matching filter, newest first.
func (s *TournamentService) List(ctx context.Context, filter TournamentFilter) ([]models.Tournament, Pagination, error) {
	if err := filter.validate(); err != nil {
		return nil, Pagination{}, err
	}
	query := filter.apply(
		s.DB.WithContext(ctx).Model(&models.Tournament{}).Where("visibility = ?", models.VisibilityPublic),
	)
	return s.listPage(ctx, query, filter.PageRequest)
}

// ListByHost returns the host's own tournaments of any visibility.
func (s *TournamentService) ListByHost(ctx context.Context, hostID, status string, page PageRequest) ([]models.Tournament, Pagination, error) {
	query := s.DB.WithContext(ctx).Model(&models.Tournament{}).Where("host_id = ?", hostID)
	if status != "" {
		if !slices.Contains(models.TournamentStatuses, status) {
			return nil, Pagination{}, apperrors.Validation("invalid status",
				apperrors.FieldError{Field: "status", Message: "unknown status"})
		}
		query = query.Where("status = ?", status)
	}
	return s.listPage(ctx, query, page)
}

func (s *TournamentService) listPage(ctx context.Context, query *gorm.DB, page PageRequest) ([]models.Tournament, Pagination, error) {
	var tournaments []models.Tournament
	pagination, err := findPage(query, page, &tournaments)
	if err != nil {
		return nil, Pagination{}, apperrors.Internal("could not list tournaments", err)
	}
	if err := s.decorate(ctx, tournamentPtrs(tournaments)...); err != nil {
		return nil, Pagination{}, err
	}
	return tournaments, pagination, nil
}

// UploadImage stores a banner or logo for an owned tournament and records its URL.
func (s *TournamentService) UploadImage(ctx context.Context, hostID, id, kind string, file *multipart.FileHeader) (*models.Tournament, error) {
	if kind != "banner" && kind != "logo" {
		return nil, apperrors.Validation("invalid image kind",
			apperrors.FieldError{Field: "kind", Message: "image kind must be banner or logo"})
	}
	if s.Store == nil {
		return nil, apperrors.Internal("image uploads are not configured", nil)
	}

	db := s.DB.WithContext(ctx)
	t, err := s.requireOwned(db, hostID, id)
	if err != nil {
		return nil, err
	}

	url, err := utils.UploadImage(ctx, s.Store, file, "tournaments/"+kind)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidImage) {
			return nil, apperrors.Validation(err.Error(), apperrors.FieldError{Field: kind, Message: err.Error()})
		}
		return nil, apperrors.Internal("failed to upload image", err)
	}

	previous := t.Images.Banner
	if kind == "logo" {
		previous = t.Images.Logo
	}
	if err := db.Model(t).Update("image_"+kind, url).Error; err != nil {
		s.removeImage(ctx, url)
		return nil, apperrors.Internal("could not save image", err)
	}
	s.removeImage(ctx, previous)
	return s.Get(ctx, t.ID)
}

// removeImage best-effort deletes a stored object by URL.
func (s *TournamentService) removeImage(ctx context.Context, url string) {
	if url == "" || s.Store == nil {
		return
	}
	key, ok := s.Store.KeyFor(url)
	if !ok {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil {
		log.Printf("[Tournaments] Failed to delete image %s: %v", key, err)
	}
}

// decorate fills derived fields and host profiles.
func (s *TournamentService) decorate(ctx context.Context, tournaments ...*models.Tournament) error {
	now := s.now()
	hostIDs := make([]string, 0, len(tournaments))
	for _, t := range tournaments {
		t.Decorate(now)
		if !slices.Contains(hostIDs, t.HostID) {
			hostIDs = append(hostIDs, t.HostID)
		}
	}
	if s.Users == nil {
		return nil
	}
	hosts, err := s.Users.publicProfiles(ctx, hostIDs)
	if err != nil {
		return err
	}
	for _, t := range tournaments {
		t.Host = hosts[t.HostID]
	}
	return nil
}

func tournamentPtrs(ts []models.Tournament) []*models.Tournament {
	out := make([]*models.Tournament, len(ts))
	for i := range ts {
		out[i] = &ts[i]
	}
	return out
}
