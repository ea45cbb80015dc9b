package helpers

import (
	"strconv"

	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1
)

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number and size into a usable page
func NewPage(number, size int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return Page{Number: number, Size: size}
}

// PageFromQuery reads ?page and ?size, falling back to the defaults for
// missing or malformed values
func PageFromQuery(c *gin.Context) Page {
	number, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		number = DefaultPage
	}
	size, err := strconv.Atoi(c.Query("size"))
	if err != nil {
		size = DefaultPageSize
	}
	return NewPage(number, size)
}

// Offset is the number of rows before the page
func (p Page) Offset() uint64 {
	return uint64((p.Number - 1) * p.Size)
}

// Info describes the page within total items. An empty result still has one
// page, and the current page never points past the last one.
func (p Page) Info(total int64) dto.PaginationInfo {
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	if pages == 0 {
		pages = 1
	}
	current := p.Number
	if current > pages {
		current = pages
	}
	return dto.PaginationInfo{
		CurrentPage: current,
		TotalPages:  pages,
		PageSize:    p.Size,
		TotalItems:  total,
	}
}
