package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Page-based pagination

// Pagination is the page metadata returned with list responses
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// PaginationParams represents input parameters for pagination
type PaginationParams struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"per_page" json:"per_page"`
}

// ParsePaginationParams reads page and per_page query values, falling back to
// defaults on anything unparsable.
func ParsePaginationParams(page, perPage string) *PaginationParams {
	p := &PaginationParams{}
	p.Page, _ = strconv.Atoi(page)
	p.PerPage, _ = strconv.Atoi(perPage)
	p.Validate()
	return p
}

// Validate clamps the parameters into their allowed ranges
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

// Offset calculates the offset for SQL queries
func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// NewPagination creates a new Pagination response
func NewPagination(page, perPage int, total int64) *Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(perPage)))
	}

	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// PaginatedResult represents a paginated result with items and pagination info
type PaginatedResult[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// NewPaginatedResult creates a new paginated result
func NewPaginatedResult[T any](items []T, pagination *Pagination) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{
		Items:      items,
		Pagination: pagination,
	}
}

// Cursor-based (keyset) pagination over (created_at, id)

// CursorDirection represents the direction of cursor navigation
type CursorDirection string

const (
	CursorDirectionNext CursorDirection = "next"
	CursorDirectionPrev CursorDirection = "prev"
)

// Cursor is the decoded position of the last row a client has seen
type Cursor struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// CursorParams represents input parameters for cursor-based pagination
type CursorParams struct {
	Cursor    string          `form:"cursor" json:"cursor"`
	Direction CursorDirection `form:"direction" json:"direction"`
	Limit     int             `form:"limit" json:"limit"`
}

// Validate ensures cursor pagination parameters are within valid ranges
func (c *CursorParams) Validate() {
	if c.Limit < 1 {
		c.Limit = DefaultPerPage
	}
	if c.Limit > MaxPerPage {
		c.Limit = MaxPerPage
	}
	if c.Direction != CursorDirectionPrev {
		c.Direction = CursorDirectionNext
	}
}

// DecodeCursor decodes the base64 cursor. An empty cursor means "first page"
// and yields (nil, nil).
func (c *CursorParams) DecodeCursor() (*Cursor, error) {
	if c.Cursor == "" {
		return nil, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(c.Cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor format: %w", err)
	}

	var cursor Cursor
	if err := json.Unmarshal(decoded, &cursor); err != nil {
		return nil, fmt.Errorf("invalid cursor data: %w", err)
	}
	if cursor.ID == uuid.Nil {
		return nil, fmt.Errorf("invalid cursor data: missing id")
	}

	return &cursor, nil
}

// EncodeCursor creates a base64 encoded cursor
func EncodeCursor(id uuid.UUID, createdAt time.Time) string {
	data, _ := json.Marshal(Cursor{ID: id, CreatedAt: createdAt})
	return base64.URLEncoding.EncodeToString(data)
}

// CursorPagination represents cursor-based pagination response metadata
type CursorPagination struct {
	NextCursor *string `json:"next_cursor,omitempty"`
	PrevCursor *string `json:"prev_cursor,omitempty"`
	HasNext    bool    `json:"has_next"`
	HasPrev    bool    `json:"has_prev"`
	Limit      int     `json:"limit"`
}

// CursorPaginatedResult represents a cursor-paginated result with items
type CursorPaginatedResult[T any] struct {
	Items      []T               `json:"items"`
	Pagination *CursorPagination `json:"pagination"`
}

// NewCursorPaginatedResult builds the response from rows fetched with
// limit+1. The extra row only signals that another page exists and is dropped.
func NewCursorPaginatedResult[T any](rows []T, params *CursorParams, key func(T) (uuid.UUID, time.Time)) *CursorPaginatedResult[T] {
	hasMore := len(rows) > params.Limit
	if hasMore {
		rows = rows[:params.Limit]
	}
	if rows == nil {
		rows = []T{}
	}

	pag := &CursorPagination{
		Limit:   params.Limit,
		HasNext: hasMore,
		HasPrev: params.Cursor != "",
	}
	// walking backwards, the extra row lies before the page and the cursor
	// row after it
	if params.Direction == CursorDirectionPrev && params.Cursor != "" {
		pag.HasPrev = hasMore
		pag.HasNext = true
	}

	if len(rows) > 0 {
		lastID, lastAt := key(rows[len(rows)-1])
		next := EncodeCursor(lastID, lastAt)
		pag.NextCursor = &next

		firstID, firstAt := key(rows[0])
		prev := EncodeCursor(firstID, firstAt)
		pag.PrevCursor = &prev
	}

	return &CursorPaginatedResult[T]{Items: rows, Pagination: pag}
}
