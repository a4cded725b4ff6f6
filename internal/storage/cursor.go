package storage

import (
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
)

// Cursor references the last document of a page: its ID and its value of the
// ordering field. Callers treat it as opaque and pass it back via StartAfter.
type Cursor struct {
	ID    string `json:"i"`
	Field Field  `json:"f"`
	Value string `json:"v"`
}

// NewCursor builds a cursor for m ordered by field. It returns nil when m has
// no value for field.
func NewCursor(m memory.Memory, field Field) *Cursor {
	v, ok := SortValue(m, field)
	if !ok {
		return nil
	}
	return &Cursor{ID: m.ID, Field: field, Value: v}
}

// SortValue renders m's value of field in its cursor form.
func SortValue(m memory.Memory, field Field) (string, bool) {
	v, ok := FieldValue(m, field)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano), true
	default:
		return "", false
	}
}

// TimeValue parses the cursor value of a time-ordered page.
func (c *Cursor) TimeValue() (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, c.Value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cursor time value %q: %w", c.Value, err)
	}
	return t, nil
}

// OrderValue returns the cursor value typed after its field: time.Time or string.
func (c *Cursor) OrderValue() (any, error) {
	if c.Field.Kind() == FieldKindTime {
		return c.TimeValue()
	}
	return c.Value, nil
}
