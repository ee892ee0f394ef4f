// Package stores implements persistence on PostgreSQL: a generic JSONB
// document collection for the directory resources and a typed repository
// for user accounts.
package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"camphub/internal/interfaces"
	"camphub/internal/query"
	"camphub/internal/schemas"
)

// Tables backing the document collections. Table names are compile-time
// constants; they are the only identifiers ever concatenated into SQL.
const (
	TableBootcamps = "bootcamps"
	TableCourses   = "courses"
	TableReviews   = "reviews"
)

// DocumentStore is a schemaless collection over a `(id uuid, doc jsonb)`
// table. Field names from query plans are passed to PostgreSQL as bind
// parameters of `doc->>$n` expressions, never interpolated, so arbitrary
// client-supplied field names are safe.
type DocumentStore struct {
	db    interfaces.Querier
	table string
}

// NewDocumentStore creates a collection bound to one of the Table* names.
func NewDocumentStore(db interfaces.Querier, table string) *DocumentStore {
	return &DocumentStore{db: db, table: table}
}

// WithTx returns a copy of the store that runs inside the transaction.
func (s *DocumentStore) WithTx(tx pgx.Tx) *DocumentStore {
	return &DocumentStore{db: tx, table: s.table}
}

// Count returns the number of documents matching the filters, ignoring
// pagination.
func (s *DocumentStore) Count(ctx context.Context, filters []query.Filter) (int, error) {
	where, args := buildWhere(filters)

	var count int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+s.table+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Find executes the filtered, sorted, paginated fetch of a plan.
func (s *DocumentStore) Find(ctx context.Context, plan query.Plan) ([]schemas.Document, error) {
	where, args := buildWhere(plan.Filters)

	var sb strings.Builder
	sb.WriteString("SELECT doc FROM ")
	sb.WriteString(s.table)
	sb.WriteString(where)

	sort := plan.Sort
	if len(sort) == 0 {
		sort = []query.SortKey{{Field: "createdAt", Desc: true}}
	}

	sb.WriteString(" ORDER BY ")
	for i, key := range sort {
		if i > 0 {
			sb.WriteString(", ")
		}
		args = append(args, key.Field)
		sb.WriteString(fmt.Sprintf("doc->>$%d", len(args)))
		if key.Desc {
			sb.WriteString(" DESC")
		}
	}

	args = append(args, plan.Limit)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	args = append(args, plan.Offset())
	sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	rows, err := s.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]schemas.Document, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc schemas.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// FindByID returns a single document or pgx.ErrNoRows.
func (s *DocumentStore) FindByID(ctx context.Context, id uuid.UUID) (schemas.Document, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, "SELECT doc FROM "+s.table+" WHERE id = $1", id).Scan(&raw)
	if err != nil {
		return nil, err
	}

	var doc schemas.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Insert stores a new document. The document must already carry its id.
func (s *DocumentStore) Insert(ctx context.Context, id uuid.UUID, doc schemas.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, "INSERT INTO "+s.table+" (id, doc) VALUES ($1, $2)", id, raw)
	return err
}

// UpdateByID merges the patch into the stored document and returns the
// result, or pgx.ErrNoRows when the id is unknown.
func (s *DocumentStore) UpdateByID(ctx context.Context, id uuid.UUID, patch schemas.Document) (schemas.Document, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}

	var updated []byte
	err = s.db.QueryRow(ctx, "UPDATE "+s.table+" SET doc = doc || $2 WHERE id = $1 RETURNING doc", id, raw).Scan(&updated)
	if err != nil {
		return nil, err
	}

	var doc schemas.Document
	if err := json.Unmarshal(updated, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteByID removes a document, reporting pgx.ErrNoRows for unknown ids.
func (s *DocumentStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM "+s.table+" WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteWhere removes every document matching the filters. Used for
// cascading deletes of dependent resources.
func (s *DocumentStore) DeleteWhere(ctx context.Context, filters []query.Filter) error {
	where, args := buildWhere(filters)
	_, err := s.db.Exec(ctx, "DELETE FROM "+s.table+where, args...)
	return err
}

// Average computes the mean of a numeric document field over the matching
// documents. Returns nil when no document matches.
func (s *DocumentStore) Average(ctx context.Context, field string, filters []query.Filter) (*float64, error) {
	where, args := buildWhere(filters)
	args = append(args, field)
	sql := fmt.Sprintf("SELECT AVG((doc->>$%d)::numeric) FROM %s%s", len(args), s.table, where)

	var avg *float64
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&avg); err != nil {
		return nil, err
	}
	return avg, nil
}

// buildWhere renders the filter predicates into a WHERE clause. Equality
// compares the text projection; the range operators compare numerically
// when both sides are numbers and textually otherwise (RFC 3339 timestamps
// sort correctly as text); membership matches scalar fields against the
// candidate list and array fields by intersection.
func buildWhere(filters []query.Filter) (string, []any) {
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
		switch f.Op {
		case query.OpEq:
			clauses = append(clauses, fmt.Sprintf("doc->>$%d = $%d", arg(f.Field), arg(f.Value)))
		case query.OpGt, query.OpGte, query.OpLt, query.OpLte:
			op := sqlOperator(f.Op)
			k := arg(f.Field)
			if num, err := strconv.ParseFloat(f.Value, 64); err == nil {
				clauses = append(clauses, fmt.Sprintf(
					"(jsonb_typeof(doc->$%d) = 'number' AND (doc->>$%d)::numeric %s $%d)",
					k, k, op, arg(num)))
			} else {
				clauses = append(clauses, fmt.Sprintf("doc->>$%d %s $%d", k, op, arg(f.Value)))
			}
		case query.OpIn:
			k := arg(f.Field)
			v := arg(f.Values())
			clauses = append(clauses, fmt.Sprintf(
				"(doc->>$%d = ANY($%d) OR (jsonb_typeof(doc->$%d) = 'array' AND doc->$%d ?| $%d))",
				k, v, k, k, v))
		}
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func sqlOperator(op query.Operator) string {
	switch op {
	case query.OpGt:
		return ">"
	case query.OpGte:
		return ">="
	case query.OpLt:
		return "<"
	case query.OpLte:
		return "<="
	}
	return "="
}
