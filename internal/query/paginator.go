package query

import (
	"context"

	"camphub/internal/schemas"
)

// Expand inlines related entities into the fetched documents before they
// are projected and returned (the list endpoints' relation expansion).
type Expand func(ctx context.Context, docs []schemas.Document) error

// Paginate executes a plan against a collection and assembles the list
// envelope: the total count under the same filters, the page of documents,
// and next/prev cursors derived from the page window.
func Paginate(ctx context.Context, coll Collection, plan Plan, expand Expand) (*schemas.ListResponse, error) {
	total, err := coll.Count(ctx, plan.Filters)
	if err != nil {
		return nil, err
	}

	docs, err := coll.Find(ctx, plan)
	if err != nil {
		return nil, err
	}

	if expand != nil {
		if err := expand(ctx, docs); err != nil {
			return nil, err
		}
	}

	docs = Project(docs, plan.Select)

	startIndex := plan.Offset()
	endIndex := plan.Page * plan.Limit

	pagination := schemas.Pagination{}
	if endIndex < total {
		pagination.Next = &schemas.PageCursor{Page: plan.Page + 1, Limit: plan.Limit}
	}
	if startIndex > 0 {
		pagination.Prev = &schemas.PageCursor{Page: plan.Page - 1, Limit: plan.Limit}
	}

	return &schemas.ListResponse{
		Success:    true,
		Count:      len(docs),
		Pagination: pagination,
		Data:       docs,
	}, nil
}

// Project trims documents to the selected fields. The id field is always
// kept. A nil selection returns the documents untouched.
func Project(docs []schemas.Document, fields []string) []schemas.Document {
	if len(fields) == 0 {
		return docs
	}

	keep := make(map[string]struct{}, len(fields)+1)
	keep["id"] = struct{}{}
	for _, field := range fields {
		keep[field] = struct{}{}
	}

	projected := make([]schemas.Document, len(docs))
	for i, doc := range docs {
		trimmed := make(schemas.Document, len(keep))
		for key, value := range doc {
			if _, ok := keep[key]; ok {
				trimmed[key] = value
			}
		}
		projected[i] = trimmed
	}

	return projected
}
