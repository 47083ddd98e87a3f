package pagination

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"
)

const (
	// DefaultLimit matches the page size the mobile clients request.
	DefaultLimit = 50
	MaxLimit     = 100
)

// Cursor is the opaque boundary token handed back to callers. Internally it
// is the primary key of the last row of the previous page; every paginated
// table uses a strictly increasing int64 id, so "older" is always "smaller"
// and no secondary sort key is needed.
type Cursor int64

func (c Cursor) String() string { return strconv.FormatInt(int64(c), 10) }

// Parse decodes a cursor token. The empty string means "first page" and
// returns a nil cursor.
func Parse(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("bad cursor %q", token)
	}
	c := Cursor(id)
	return &c, nil
}

// ClampLimit normalises a caller-supplied page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Scope applies the cursor contract to a gorm query: rows strictly older than
// the boundary, newest first, at most limit rows. The column must be the
// table's unique monotonic id; a boundary predicate keeps pages stable under
// concurrent inserts, which an OFFSET never would.
func Scope(column string, cursor *Cursor, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor != nil {
			db = db.Where(column+" < ?", int64(*cursor))
		}
		return db.Order(column + " DESC").Limit(limit)
	}
}

// Page is one page of results plus the token for the next one.
type Page[T any] struct {
	Items []T
	Next  *Cursor
}

// NewPage wraps a fetched slice. The next cursor is the smallest id in the
// page and is only present when the page is full: a short page is the
// end-of-stream signal, a full page always says "there may be more" even if
// the next fetch turns out empty.
func NewPage[T any](items []T, limit int, id func(T) int64) Page[T] {
	p := Page[T]{Items: items}
	if len(items) < limit || len(items) == 0 {
		return p
	}
	min := id(items[0])
	for _, it := range items[1:] {
		if v := id(it); v < min {
			min = v
		}
	}
	c := Cursor(min)
	p.Next = &c
	return p
}
