package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxPage         = 10000
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
	Offset   int
}

// NewPagination clamps page to [1, MaxPage] and pageSize to
// [1, MaxPageSize]. Non-positive values take the defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return Pagination{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// ParsePagination reads page and pageSize query params with sane defaults.
func ParsePagination(c *fiber.Ctx) Pagination {
	return NewPagination(
		parseInt(c.Query("page"), 1),
		parseInt(c.Query("pageSize"), DefaultPageSize),
	)
}

// TotalPages returns max(1, ceil(total/pageSize)).
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	pages := (total + int64(pageSize) - 1) / int64(pageSize)
	if pages < 1 {
		return 1
	}
	return int(pages)
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
