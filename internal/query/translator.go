// Package query implements the generic list pipeline: translating a raw
// query string into a bounded plan and executing that plan against a
// collection with deterministic pagination.
package query

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"camphub/internal/config"
	"camphub/internal/schemas"
)

// Operator is a comparison operator in a filter predicate. Only this fixed
// vocabulary ever reaches the storage layer.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// Filter is one predicate of a query plan. For OpIn the value is the raw
// comma-separated list; Values() splits it.
type Filter struct {
	Field string
	Op    Operator
	Value string
}

// Values returns the membership candidates of an OpIn filter.
func (f Filter) Values() []string {
	return strings.Split(f.Value, ",")
}

// SortKey orders results by one field.
type SortKey struct {
	Field string
	Desc  bool
}

// Plan is the normalized, per-request query derived from the URL. Page and
// Limit are always positive once a plan exists.
type Plan struct {
	Filters []Filter
	Select  []string
	Sort    []SortKey
	Page    int
	Limit   int
}

// Offset returns the index of the first record on the requested page.
func (p Plan) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Collection is the storage contract the pipeline executes against.
type Collection interface {
	Count(ctx context.Context, filters []Filter) (int, error)
	Find(ctx context.Context, plan Plan) ([]schemas.Document, error)
}

// reserved query-string keys that control the pipeline itself and are never
// treated as filters.
var reservedKeys = map[string]struct{}{
	"select": {},
	"sort":   {},
	"page":   {},
	"limit":  {},
}

var allowedOperators = map[string]Operator{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

// Translate turns raw query values into a plan. Malformed input never
// fails: unparseable page/limit fall back to defaults, limits are clamped
// to the configured maximum, and operator tokens outside the allowlist
// degrade to equality filters on the base field.
func Translate(values url.Values, cfg *config.Config) Plan {
	plan := Plan{
		Page:  1,
		Limit: cfg.DefaultPageSize,
		Sort:  []SortKey{{Field: "createdAt", Desc: true}},
	}

	for key := range values {
		if _, ok := reservedKeys[key]; ok {
			continue
		}
		plan.Filters = append(plan.Filters, parseFilter(key, values.Get(key)))
	}

	if raw := values.Get("select"); raw != "" {
		for _, field := range strings.Split(raw, ",") {
			if field = strings.TrimSpace(field); field != "" {
				plan.Select = append(plan.Select, field)
			}
		}
	}

	if raw := values.Get("sort"); raw != "" {
		var keys []SortKey
		for _, field := range strings.Split(raw, ",") {
			if field = strings.TrimSpace(field); field == "" {
				continue
			}
			if strings.HasPrefix(field, "-") {
				keys = append(keys, SortKey{Field: field[1:], Desc: true})
			} else {
				keys = append(keys, SortKey{Field: field})
			}
		}
		if len(keys) > 0 {
			plan.Sort = keys
		}
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page >= 1 {
		plan.Page = page
	}
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit >= 1 {
		plan.Limit = limit
	}
	if plan.Limit > cfg.MaxPageSize {
		plan.Limit = cfg.MaxPageSize
	}

	return plan
}

// parseFilter interprets one query-string pair. `field[op]=value` with an
// allowlisted op becomes a comparison; any other bracket token is treated
// as a plain equality filter on the base field, so storage directives
// smuggled in as operators are never forwarded.
func parseFilter(key, value string) Filter {
	open := strings.IndexByte(key, '[')
	if open > 0 && strings.HasSuffix(key, "]") {
		field := key[:open]
		token := key[open+1 : len(key)-1]
		if op, ok := allowedOperators[token]; ok {
			return Filter{Field: field, Op: op, Value: value}
		}
		return Filter{Field: field, Op: OpEq, Value: value}
	}

	return Filter{Field: key, Op: OpEq, Value: value}
}
