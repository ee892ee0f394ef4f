package stores

import (
	"context"
	"fmt"
	"strings"
	"time"

	"camphub/internal/interfaces"
	"camphub/internal/query"
	"camphub/internal/schemas"
)

// userColumns maps document field names onto the typed columns of the
// users table. Unlike the JSONB collections the accounts table has a fixed
// schema, so only these fields are queryable; a filter on any other field
// matches nothing, which is the same observable behavior an equality
// filter on an absent document field has.
var userColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
}

// UserCollection adapts the users table to the list pipeline's Collection
// contract for the admin users endpoint. Password and reset columns are
// not reachable through it.
type UserCollection struct {
	db interfaces.Querier
}

// NewUserCollection creates the list-pipeline view of the users table.
func NewUserCollection(db interfaces.Querier) *UserCollection {
	return &UserCollection{db: db}
}

// Count returns the number of accounts matching the filters.
func (c *UserCollection) Count(ctx context.Context, filters []query.Filter) (int, error) {
	where, args := c.buildWhere(filters)

	var count int
	err := c.db.QueryRow(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Find executes the plan and returns accounts as documents carrying only
// the public fields.
func (c *UserCollection) Find(ctx context.Context, plan query.Plan) ([]schemas.Document, error) {
	where, args := c.buildWhere(plan.Filters)

	var sb strings.Builder
	sb.WriteString("SELECT id, name, email, role, created_at FROM users")
	sb.WriteString(where)

	sb.WriteString(" ORDER BY ")
	orders := make([]string, 0, len(plan.Sort))
	for _, key := range plan.Sort {
		column, ok := userColumns[key.Field]
		if !ok {
			continue
		}
		if key.Desc {
			column += " DESC"
		}
		orders = append(orders, column)
	}
	if len(orders) == 0 {
		orders = append(orders, "created_at DESC")
	}
	sb.WriteString(strings.Join(orders, ", "))

	args = append(args, plan.Limit)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	args = append(args, plan.Offset())
	sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	rows, err := c.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]schemas.Document, 0)
	for rows.Next() {
		var (
			id        string
			name      string
			email     string
			role      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &name, &email, &role, &createdAt); err != nil {
			return nil, err
		}
		docs = append(docs, schemas.Document{
			"id":        id,
			"name":      name,
			"email":     email,
			"role":      role,
			"createdAt": createdAt.Format(time.RFC3339),
		})
	}

	return docs, rows.Err()
}

// buildWhere renders filters against the column allowlist. Timestamps are
// compared as timestamps when the value parses as RFC 3339; any filter
// that cannot be expressed against the schema collapses to FALSE.
func (c *UserCollection) buildWhere(filters []query.Filter) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}

	var args []any
	clauses := make([]string, 0, len(filters))

	arg := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	for _, f := range filters {
		column, ok := userColumns[f.Field]
		if !ok {
			clauses = append(clauses, "FALSE")
			continue
		}

		switch f.Op {
		case query.OpEq:
			if column == "created_at" {
				ts, err := time.Parse(time.RFC3339, f.Value)
				if err != nil {
					clauses = append(clauses, "FALSE")
					continue
				}
				clauses = append(clauses, fmt.Sprintf("%s = $%d", column, arg(ts)))
			} else {
				clauses = append(clauses, fmt.Sprintf("%s = $%d", column, arg(f.Value)))
			}
		case query.OpGt, query.OpGte, query.OpLt, query.OpLte:
			op := sqlOperator(f.Op)
			if column == "created_at" {
				ts, err := time.Parse(time.RFC3339, f.Value)
				if err != nil {
					clauses = append(clauses, "FALSE")
					continue
				}
				clauses = append(clauses, fmt.Sprintf("%s %s $%d", column, op, arg(ts)))
			} else {
				clauses = append(clauses, fmt.Sprintf("%s %s $%d", column, op, arg(f.Value)))
			}
		case query.OpIn:
			clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", column, arg(f.Values())))
		}
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
