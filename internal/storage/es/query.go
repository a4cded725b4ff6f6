package es

import (
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
)

// maxWindow bounds unlimited queries to the default index.max_result_window.
const maxWindow = 10000

// searchRequest is the translated form of a storage plan.
type searchRequest struct {
	Query       *types.Query
	Sort        []types.SortCombinations
	SearchAfter []types.FieldValue
	Size        int
}

func buildSearch(p *storage.Plan) (*searchRequest, error) {
	var filters []types.Query
	var mustNot []types.Query

	for _, c := range p.Filters {
		q, not, err := whereQuery(c)
		if err != nil {
			return nil, err
		}
		filters = append(filters, q)
		mustNot = append(mustNot, not...)
	}

	orderPath := exactField(p.OrderField)
	if p.OrderField.Kind() == storage.FieldKindTime {
		filters = append(filters, types.Query{Exists: &types.ExistsQuery{Field: orderPath}})
	}

	order := sortorder.Asc
	if p.OrderDir == storage.Desc {
		order = sortorder.Desc
	}

	req := &searchRequest{
		Query: &types.Query{Bool: &types.BoolQuery{Filter: filters, MustNot: mustNot}},
		Sort: []types.SortCombinations{
			&types.SortOptions{SortOptions: map[string]types.FieldSort{orderPath: {Order: &order}}},
			&types.SortOptions{SortOptions: map[string]types.FieldSort{"id": {Order: &order}}},
		},
		Size: maxWindow,
	}
	if p.Limit > 0 {
		req.Size = p.Limit
	}

	if p.StartAfter != nil {
		v, err := p.StartAfter.OrderValue()
		if err != nil {
			return nil, err
		}
		if t, ok := v.(time.Time); ok {
			// date sort values are epoch millis
			v = t.UnixMilli()
		}
		req.SearchAfter = []types.FieldValue{v, p.StartAfter.ID}
	}

	return req, nil
}

// whereQuery translates one filter; string not-empty also yields a must_not clause.
func whereQuery(c storage.Constraint) (types.Query, []types.Query, error) {
	path := exactField(c.Field)

	switch c.Op {
	case storage.OpEqual:
		return types.Query{Term: map[string]types.TermQuery{path: {Value: scalar(c.Value)}}}, nil, nil
	case storage.OpGTE, storage.OpLTE:
		return rangeQuery(path, c), nil, nil
	case storage.OpArrayContainsAny:
		values, _ := c.Value.([]string)
		terms := make([]types.FieldValue, len(values))
		for i, v := range values {
			terms[i] = v
		}
		return types.Query{Terms: &types.TermsQuery{TermsQuery: map[string]types.TermsQueryField{path: terms}}}, nil, nil
	case storage.OpNotEmpty:
		exists := types.Query{Exists: &types.ExistsQuery{Field: path}}
		if c.Field.Kind() == storage.FieldKindString {
			blank := types.Query{Term: map[string]types.TermQuery{path: {Value: ""}}}
			return exists, []types.Query{blank}, nil
		}
		return exists, nil, nil
	default:
		return types.Query{}, nil, fmt.Errorf("unsupported operator %q", c.Op)
	}
}

func rangeQuery(path string, c storage.Constraint) types.Query {
	if t, ok := c.Value.(time.Time); ok {
		v := t.UTC().Format(time.RFC3339Nano)
		r := types.DateRangeQuery{}
		if c.Op == storage.OpGTE {
			r.Gte = &v
		} else {
			r.Lte = &v
		}
		return types.Query{Range: map[string]types.RangeQuery{path: r}}
	}

	v, _ := c.Value.(string)
	r := types.TermRangeQuery{}
	if c.Op == storage.OpGTE {
		r.Gte = &v
	} else {
		r.Lte = &v
	}
	return types.Query{Range: map[string]types.RangeQuery{path: r}}
}

func scalar(v any) types.FieldValue {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return v
}
