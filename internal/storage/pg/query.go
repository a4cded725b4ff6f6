package pg

import (
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
)

const memoryColumns = "id, title, description, content, tags, author_id, author_name, created_at, updated_at, is_public, media_urls, location, people"

var columns = map[storage.Field]string{
	storage.FieldID:         "id",
	storage.FieldTitle:      "title",
	storage.FieldTags:       "tags",
	storage.FieldAuthorID:   "author_id",
	storage.FieldAuthorName: "author_name",
	storage.FieldCreatedAt:  "created_at",
	storage.FieldUpdatedAt:  "updated_at",
	storage.FieldIsPublic:   "is_public",
	storage.FieldMediaURLs:  "media_urls",
	storage.FieldLocation:   "location",
	storage.FieldPeople:     "people",
}

// sqlBuilder accumulates positional arguments while a statement is rendered.
type sqlBuilder struct {
	conds []string
	args  []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// buildSelect renders a compiled plan as a keyset-paginated SELECT.
func buildSelect(p *storage.Plan) (string, []any, error) {
	b := &sqlBuilder{}

	for _, c := range p.Filters {
		cond, err := b.where(c)
		if err != nil {
			return "", nil, err
		}
		b.conds = append(b.conds, cond)
	}

	orderCol, ok := columns[p.OrderField]
	if !ok {
		return "", nil, fmt.Errorf("no column for order field %q", p.OrderField)
	}
	if p.OrderField.Kind() == storage.FieldKindTime {
		b.conds = append(b.conds, orderCol+" IS NOT NULL")
	}

	dir := "ASC"
	cmp := ">"
	if p.OrderDir == storage.Desc {
		dir, cmp = "DESC", "<"
	}

	if p.StartAfter != nil {
		v, err := p.StartAfter.OrderValue()
		if err != nil {
			return "", nil, err
		}
		b.conds = append(b.conds, fmt.Sprintf("(%s, id) %s (%s, %s)", orderCol, cmp, b.arg(v), b.arg(p.StartAfter.ID)))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(memoryColumns)
	sb.WriteString(" FROM memories")
	if len(b.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.conds, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s, id %s", orderCol, dir, dir)
	if p.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.arg(p.Limit))
	}

	return sb.String(), b.args, nil
}

func (b *sqlBuilder) where(c storage.Constraint) (string, error) {
	col, ok := columns[c.Field]
	if !ok {
		return "", fmt.Errorf("no column for field %q", c.Field)
	}

	switch c.Op {
	case storage.OpEqual:
		return fmt.Sprintf("%s = %s", col, b.arg(c.Value)), nil
	case storage.OpGTE:
		return fmt.Sprintf("%s >= %s", col, b.arg(c.Value)), nil
	case storage.OpLTE:
		return fmt.Sprintf("%s <= %s", col, b.arg(c.Value)), nil
	case storage.OpArrayContainsAny:
		return fmt.Sprintf("%s && %s::text[]", col, b.arg(c.Value)), nil
	case storage.OpNotEmpty:
		if c.Field.Kind() == storage.FieldKindArray {
			return fmt.Sprintf("cardinality(%s) > 0", col), nil
		}
		return fmt.Sprintf("%s <> ''", col), nil
	default:
		return "", fmt.Errorf("unsupported operator %q", c.Op)
	}
}
