// Package orm holds query helpers shared by the repositories.
package orm

import (
	"math"

	"gorm.io/gorm"
)

const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination clamps page and perPage into valid ranges.
func NewPagination(page, perPage int) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Pagination{Page: page, PerPage: perPage}
}

func (p Pagination) Offset() int { return (p.Page - 1) * p.PerPage }

// Paginate counts the rows matched by q, then loads the requested page into
// dest. q must already carry Model/Where clauses; ordering belongs to the
// caller.
func Paginate(q *gorm.DB, p Pagination, dest interface{}) (Pagination, error) {
	if err := q.Session(&gorm.Session{}).Count(&p.Total).Error; err != nil {
		return p, err
	}
	p.TotalPages = int(math.Ceil(float64(p.Total) / float64(p.PerPage)))

	if err := q.Limit(p.PerPage).Offset(p.Offset()).Find(dest).Error; err != nil {
		return p, err
	}
	return p, nil
}
