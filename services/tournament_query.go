package services

import (
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	"tournament-platform/apperrors"
	"tournament-platform/models"
)

// TournamentFilter narrows the public tournament listing. Zero values are ignored.
type TournamentFilter struct {
	Category    string
	Game        string
	Status      string
	Format      string
	MaxEntryFee *float64
	Location    string
	DateFrom    *time.Time
	DateTo      *time.Time
	Search      string
	Type        string
	PageRequest
}

func (f TournamentFilter) validate() error {
	var fe apperrors.FieldErrors
	fe.Check(f.Category == "" || slices.Contains(models.Categories, f.Category), "category", "unknown category")
	fe.Check(f.Status == "" || slices.Contains(models.TournamentStatuses, f.Status), "status", "unknown status")
	fe.Check(f.Format == "" || slices.Contains(models.Formats, f.Format), "format", "unknown format")
	fe.Check(f.Location == "" || slices.Contains(models.LocationTypes, f.Location), "location", "unknown location type")
	fe.Check(f.Type == "" || slices.Contains(models.TournamentTypes, f.Type), "type", "unknown tournament type")
	fe.Check(f.MaxEntryFee == nil || *f.MaxEntryFee >= 0, "max_entry_fee", "max entry fee cannot be negative")
	return fe.Err("invalid tournament filter")
}

func (f TournamentFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.Game != "" {
		db = db.Where(`LOWER(game) LIKE ? ESCAPE '\'`, likePattern(f.Game))
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Format != "" {
		db = db.Where("format = ?", f.Format)
	}
	if f.MaxEntryFee != nil {
		db = db.Where("entry_fee <= ?", *f.MaxEntryFee)
	}
	if f.Location != "" {
		db = db.Where("location_type = ?", f.Location)
	}
	if f.DateFrom != nil {
		db = db.Where("start_date >= ?", f.DateFrom.UTC())
	}
	if f.DateTo != nil {
		db = db.Where("end_date <= ?", f.DateTo.UTC())
	}
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if f.Search != "" {
		term := likePattern(f.Search)
		db = db.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(game) LIKE ? ESCAPE '\' OR LOWER(CAST(tags AS TEXT)) LIKE ? ESCAPE '\'`,
			term, term, term, term,
		)
	}
	return db
}

// likePattern builds a case-insensitive substring pattern with LIKE wildcards escaped.
func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
