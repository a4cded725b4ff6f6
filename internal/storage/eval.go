package storage

import (
	"strings"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
)

// FieldValue returns m's value for field: string, bool, time.Time or []string.
// ok is false when the field is absent (an unset updatedAt).
func FieldValue(m memory.Memory, field Field) (any, bool) {
	switch field {
	case FieldID:
		return m.ID, true
	case FieldTitle:
		return m.Title, true
	case FieldTags:
		return m.Tags, true
	case FieldAuthorID:
		return m.Author.ID, true
	case FieldAuthorName:
		return m.Author.Name, true
	case FieldCreatedAt:
		return m.CreatedAt, true
	case FieldUpdatedAt:
		if m.UpdatedAt == nil {
			return nil, false
		}
		return *m.UpdatedAt, true
	case FieldIsPublic:
		return m.IsPublic, true
	case FieldMediaURLs:
		return m.MediaURLs, true
	case FieldLocation:
		return m.Location, true
	case FieldPeople:
		return m.People, true
	default:
		return nil, false
	}
}

// Matches reports whether m satisfies every filter of the plan. This is the
// reference semantics the pg and es translations follow.
func (p *Plan) Matches(m memory.Memory) bool {
	if _, ok := FieldValue(m, p.OrderField); !ok {
		// ordering by a field excludes documents that lack it
		return false
	}
	for _, c := range p.Filters {
		if !matchWhere(m, c) {
			return false
		}
	}
	return true
}

func matchWhere(m memory.Memory, c Constraint) bool {
	v, ok := FieldValue(m, c.Field)
	if !ok {
		return false
	}

	switch c.Op {
	case OpEqual:
		cmp, ok := compareScalar(v, c.Value)
		return ok && cmp == 0
	case OpGTE:
		cmp, ok := compareScalar(v, c.Value)
		return ok && cmp >= 0
	case OpLTE:
		cmp, ok := compareScalar(v, c.Value)
		return ok && cmp <= 0
	case OpArrayContainsAny:
		have, _ := v.([]string)
		want, _ := c.Value.([]string)
		for _, w := range want {
			for _, h := range have {
				if h == w {
					return true
				}
			}
		}
		return false
	case OpNotEmpty:
		switch val := v.(type) {
		case []string:
			return len(val) > 0
		case string:
			return val != ""
		}
		return false
	default:
		return false
	}
}

// compareScalar orders two values of the same scalar kind. ok is false
// when the kinds differ.
func compareScalar(a, b any) (int, bool) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	default:
		return 0, false
	}
}

// CompareOrder orders a before b under the plan's ordering, ties broken by ID
// in the same direction. Both memories must have the ordering field.
func (p *Plan) CompareOrder(a, b memory.Memory) int {
	av, _ := FieldValue(a, p.OrderField)
	bv, _ := FieldValue(b, p.OrderField)
	c, _ := compareScalar(av, bv)
	if c == 0 {
		c = strings.Compare(a.ID, b.ID)
	}
	if p.OrderDir == Desc {
		return -c
	}
	return c
}

// After reports whether m sorts strictly after the plan's StartAfter cursor.
func (p *Plan) After(m memory.Memory) bool {
	if p.StartAfter == nil {
		return true
	}
	cv, err := p.StartAfter.OrderValue()
	if err != nil {
		return false
	}
	mv, ok := FieldValue(m, p.OrderField)
	if !ok {
		return false
	}
	c, ok := compareScalar(mv, cv)
	if !ok {
		return false
	}
	if c == 0 {
		c = strings.Compare(m.ID, p.StartAfter.ID)
	}
	if p.OrderDir == Desc {
		c = -c
	}
	return c > 0
}
