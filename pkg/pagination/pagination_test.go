package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		page, perPage string
		wantPage      int
		wantPerPage   int
		wantOffset    int
	}{
		{"", "", 1, DefaultPerPage, 0},
		{"3", "10", 3, 10, 20},
		{"-1", "500", 1, MaxPerPage, 0},
		{"abc", "0", 1, DefaultPerPage, 0},
	}
	for _, tt := range tests {
		p := ParsePaginationParams(tt.page, tt.perPage)
		assert.Equal(t, tt.wantPage, p.Page)
		assert.Equal(t, tt.wantPerPage, p.PerPage)
		assert.Equal(t, tt.wantOffset, p.Offset())
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 45)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := NewPagination(1, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestCursorRoundTrip(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	params := &CursorParams{Cursor: EncodeCursor(id, at)}
	cur, err := params.DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, id, cur.ID)
	assert.True(t, at.Equal(cur.CreatedAt))
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, err := (&CursorParams{Cursor: "%%%"}).DecodeCursor()
	assert.Error(t, err)

	_, err = (&CursorParams{Cursor: base64.URLEncoding.EncodeToString([]byte(`{"id":""}`))}).DecodeCursor()
	assert.Error(t, err)

	cur, err := (&CursorParams{}).DecodeCursor()
	assert.NoError(t, err)
	assert.Nil(t, cur)
}

type row struct {
	id uuid.UUID
	at time.Time
}

func TestNewCursorPaginatedResult(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]row, 4)
	for i := range rows {
		rows[i] = row{id: uuid.New(), at: base.Add(time.Duration(i) * time.Minute)}
	}
	key := func(r row) (uuid.UUID, time.Time) { return r.id, r.at }

	params := &CursorParams{Limit: 3}
	params.Validate()
	res := NewCursorPaginatedResult(rows, params, key)

	assert.Len(t, res.Items, 3)
	assert.True(t, res.Pagination.HasNext)
	assert.False(t, res.Pagination.HasPrev)
	require.NotNil(t, res.Pagination.NextCursor)

	next, err := (&CursorParams{Cursor: *res.Pagination.NextCursor}).DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, rows[2].id, next.ID)

	last := NewCursorPaginatedResult(rows[3:], &CursorParams{Limit: 3, Cursor: *res.Pagination.NextCursor}, key)
	assert.False(t, last.Pagination.HasNext)
	assert.True(t, last.Pagination.HasPrev)
}

func TestNewCursorPaginatedResult_Prev(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]row, 4)
	for i := range rows {
		rows[i] = row{id: uuid.New(), at: base.Add(time.Duration(i) * time.Minute)}
	}
	key := func(r row) (uuid.UUID, time.Time) { return r.id, r.at }
	cursor := EncodeCursor(uuid.New(), base.Add(time.Hour))

	// a full page plus one older row: more pages before this one
	res := NewCursorPaginatedResult(rows, &CursorParams{Limit: 3, Cursor: cursor, Direction: CursorDirectionPrev}, key)
	assert.Len(t, res.Items, 3)
	assert.True(t, res.Pagination.HasPrev)
	assert.True(t, res.Pagination.HasNext)

	// reached the start
	first := NewCursorPaginatedResult(rows[:2], &CursorParams{Limit: 3, Cursor: cursor, Direction: CursorDirectionPrev}, key)
	assert.Len(t, first.Items, 2)
	assert.False(t, first.Pagination.HasPrev)
	assert.True(t, first.Pagination.HasNext)
}
