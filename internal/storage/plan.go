package storage

import (
	"fmt"
	"time"
)

// Plan is a validated, structured form of a constraint list. Backends
// translate a Plan rather than walking raw constraints.
type Plan struct {
	Filters    []Constraint
	OrderField Field
	OrderDir   Direction
	StartAfter *Cursor
	// Limit of 0 means unbounded.
	Limit int
}

// Compile validates constraints and folds them into a Plan. Without an
// explicit ordering the plan orders by createdAt descending.
func Compile(constraints []Constraint) (*Plan, error) {
	const op = "compile query"

	p := &Plan{OrderField: FieldCreatedAt, OrderDir: Desc}
	var ordered, limited, containsAny bool

	for _, c := range constraints {
		switch c.Type {
		case TypeWhere:
			if err := checkWhere(c); err != nil {
				return nil, NewError(KindValidation, op, err)
			}
			if c.Op == OpArrayContainsAny {
				if containsAny {
					return nil, Validationf(op, "only one %s filter is allowed per query", OpArrayContainsAny)
				}
				containsAny = true
			}
			p.Filters = append(p.Filters, c)
		case TypeOrderBy:
			if ordered {
				return nil, Validationf(op, "only one ordering is supported")
			}
			if !c.Field.Sortable() {
				return nil, Validationf(op, "field %q cannot be ordered by", c.Field)
			}
			if c.Direction != Asc && c.Direction != Desc {
				return nil, Validationf(op, "invalid order direction %q", c.Direction)
			}
			ordered = true
			p.OrderField, p.OrderDir = c.Field, c.Direction
		case TypeStartAfter:
			if c.Cursor == nil {
				return nil, Validationf(op, "startAfter requires a cursor")
			}
			p.StartAfter = c.Cursor
		case TypeLimit:
			if limited {
				return nil, Validationf(op, "only one limit is allowed")
			}
			if c.N <= 0 {
				return nil, Validationf(op, "limit must be positive, got %d", c.N)
			}
			limited = true
			p.Limit = c.N
		default:
			return nil, Validationf(op, "unknown constraint type %d", c.Type)
		}
	}

	if p.StartAfter != nil {
		if p.StartAfter.Field != p.OrderField {
			return nil, Validationf(op, "cursor was taken on %q but query orders by %q", p.StartAfter.Field, p.OrderField)
		}
		if _, err := p.StartAfter.OrderValue(); err != nil {
			return nil, NewError(KindValidation, op, err)
		}
	}

	return p, nil
}

func checkWhere(c Constraint) error {
	kind := c.Field.Kind()
	if kind == FieldKindInvalid {
		return fmt.Errorf("unknown field %q", c.Field)
	}

	switch c.Op {
	case OpEqual:
		if kind == FieldKindArray {
			return fmt.Errorf("equality is not supported on array field %q", c.Field)
		}
		return checkValueType(c.Field, kind, c.Value)
	case OpGTE, OpLTE:
		if kind != FieldKindString && kind != FieldKindTime {
			return fmt.Errorf("range filter is not supported on field %q", c.Field)
		}
		return checkValueType(c.Field, kind, c.Value)
	case OpArrayContainsAny:
		if kind != FieldKindArray {
			return fmt.Errorf("%s requires an array field, got %q", c.Op, c.Field)
		}
		values, ok := c.Value.([]string)
		if !ok {
			return fmt.Errorf("%s on %q requires a string list", c.Op, c.Field)
		}
		if len(values) == 0 || len(values) > MaxArrayContainsAny {
			return fmt.Errorf("%s on %q takes 1 to %d values, got %d", c.Op, c.Field, MaxArrayContainsAny, len(values))
		}
		return nil
	case OpNotEmpty:
		if kind != FieldKindArray && kind != FieldKindString {
			return fmt.Errorf("%s is not supported on field %q", c.Op, c.Field)
		}
		return nil
	default:
		return fmt.Errorf("unknown operator %q", c.Op)
	}
}

func checkValueType(field Field, kind FieldKind, v any) error {
	var ok bool
	switch kind {
	case FieldKindString:
		_, ok = v.(string)
	case FieldKindTime:
		_, ok = v.(time.Time)
	case FieldKindBool:
		_, ok = v.(bool)
	}
	if !ok {
		return fmt.Errorf("value %v (%T) does not fit field %q", v, v, field)
	}
	return nil
}
