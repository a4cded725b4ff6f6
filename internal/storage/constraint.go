package storage

import (
	"fmt"
	"strings"
	"time"
)

// Field is a queryable memory attribute, named as in the document collection.
type Field string

const (
	FieldID         Field = "id"
	FieldTitle      Field = "title"
	FieldTags       Field = "tags"
	FieldAuthorID   Field = "authorId"
	FieldAuthorName Field = "authorName"
	FieldCreatedAt  Field = "createdAt"
	FieldUpdatedAt  Field = "updatedAt"
	FieldIsPublic   Field = "isPublic"
	FieldMediaURLs  Field = "mediaUrls"
	FieldLocation   Field = "location"
	FieldPeople     Field = "people"
)

type FieldKind int

const (
	FieldKindInvalid FieldKind = iota
	FieldKindString
	FieldKindTime
	FieldKindBool
	FieldKindArray
)

var fieldKinds = map[Field]FieldKind{
	FieldID:         FieldKindString,
	FieldTitle:      FieldKindString,
	FieldTags:       FieldKindArray,
	FieldAuthorID:   FieldKindString,
	FieldAuthorName: FieldKindString,
	FieldCreatedAt:  FieldKindTime,
	FieldUpdatedAt:  FieldKindTime,
	FieldIsPublic:   FieldKindBool,
	FieldMediaURLs:  FieldKindArray,
	FieldLocation:   FieldKindString,
	FieldPeople:     FieldKindArray,
}

func (f Field) Kind() FieldKind {
	return fieldKinds[f]
}

// Sortable reports whether results can be ordered by f.
func (f Field) Sortable() bool {
	k := f.Kind()
	return k == FieldKindString || k == FieldKindTime
}

// Op is a filter operator.
type Op string

const (
	OpEqual            Op = "=="
	OpGTE              Op = ">="
	OpLTE              Op = "<="
	OpArrayContainsAny Op = "array-contains-any"
	OpNotEmpty         Op = "not-empty"
)

// MaxArrayContainsAny is the largest value list accepted by OpArrayContainsAny.
const MaxArrayContainsAny = 10

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type ConstraintType int

const (
	TypeWhere ConstraintType = iota + 1
	TypeOrderBy
	TypeStartAfter
	TypeLimit
)

// Constraint is one element of a store query. Use the constructors below.
type Constraint struct {
	Type      ConstraintType
	Field     Field
	Op        Op
	Value     any
	Direction Direction
	Cursor    *Cursor
	N         int
}

func Where(field Field, op Op, value any) Constraint {
	return Constraint{Type: TypeWhere, Field: field, Op: op, Value: value}
}

func Equal(field Field, value any) Constraint {
	return Where(field, OpEqual, value)
}

func AtLeast(field Field, value any) Constraint {
	return Where(field, OpGTE, value)
}

func AtMost(field Field, value any) Constraint {
	return Where(field, OpLTE, value)
}

func ArrayContainsAny(field Field, values []string) Constraint {
	return Where(field, OpArrayContainsAny, append([]string(nil), values...))
}

func NotEmpty(field Field) Constraint {
	return Where(field, OpNotEmpty, nil)
}

func OrderBy(field Field, dir Direction) Constraint {
	return Constraint{Type: TypeOrderBy, Field: field, Direction: dir}
}

func StartAfter(c *Cursor) Constraint {
	return Constraint{Type: TypeStartAfter, Cursor: c}
}

func Limit(n int) Constraint {
	return Constraint{Type: TypeLimit, N: n}
}

func (c Constraint) String() string {
	switch c.Type {
	case TypeWhere:
		if c.Op == OpNotEmpty {
			return fmt.Sprintf("where(%s %s)", c.Field, c.Op)
		}
		return fmt.Sprintf("where(%s %s %s)", c.Field, c.Op, formatValue(c.Value))
	case TypeOrderBy:
		return fmt.Sprintf("orderBy(%s %s)", c.Field, c.Direction)
	case TypeStartAfter:
		if c.Cursor == nil {
			return "startAfter(nil)"
		}
		return fmt.Sprintf("startAfter(%s)", c.Cursor.ID)
	case TypeLimit:
		return fmt.Sprintf("limit(%d)", c.N)
	default:
		return "invalid"
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case []string:
		return "[" + strings.Join(val, ",") + "]"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
