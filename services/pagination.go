package services

import (
	"math"

	"gorm.io/gorm"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPage keeps the row offset within int32.
	MaxPage          = math.MaxInt32 / MaxPageLimit
)

// PageRequest is a 1-based page and a page size.
type PageRequest struct {
	Page  int `json:"page" query:"page"`
	Limit int `json:"limit" query:"limit"`
}

func (p PageRequest) normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageRequest) offset() int {
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
}

func newPagination(p PageRequest, total int64) Pagination {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		CurrentPage:  p.Page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: p.Limit,
	}
}

// findPage counts the rows matched by query and loads one page of them into dest,
// newest first. Associations in preload are loaded for the page only.
func findPage(query *gorm.DB, p PageRequest, dest any, preload ...string) (Pagination, error) {
	p = p.normalize()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}
	page := query.Session(&gorm.Session{})
	for _, assoc := range preload {
		page = page.Preload(assoc)
	}
	err := page.
		Order("created_at DESC").
		Order("id DESC").
		Offset(p.offset()).
		Limit(p.Limit).
		Find(dest).Error
	if err != nil {
		return Pagination{}, err
	}
	return newPagination(p, total), nil
}
