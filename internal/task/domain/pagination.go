package domain

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 100
)

// Pagination is a normalized page/limit pair.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination normalizes page and limit: non-positive values fall back to the defaults and
// limit is capped at MaxLimit.
func NewPagination(page, limit int) Pagination {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// ParsePagination normalizes raw query values. Non-numeric values fall back to the defaults.
func ParsePagination(page, limit string) Pagination {
	p, err := strconv.Atoi(page)
	if err != nil {
		p = 0
	}
	l, err := strconv.Atoi(limit)
	if err != nil {
		l = 0
	}
	return NewPagination(p, l)
}

// Offset is the number of tasks skipped before this window.
// It saturates instead of overflowing for absurd page numbers.
func (p Pagination) Offset() int {
	if p.Page-1 > math.MaxInt32/p.Limit {
		return math.MaxInt32
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total/limit). Zero tasks means zero pages.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
