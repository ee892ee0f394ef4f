package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"camphub/internal/schemas"
)

// fakeCollection serves a fixed dataset, slicing it the way storage would.
type fakeCollection struct {
	docs []schemas.Document
}

func (c *fakeCollection) Count(_ context.Context, _ []Filter) (int, error) {
	return len(c.docs), nil
}

func (c *fakeCollection) Find(_ context.Context, plan Plan) ([]schemas.Document, error) {
	start := plan.Offset()
	if start >= len(c.docs) {
		return []schemas.Document{}, nil
	}
	end := start + plan.Limit
	if end > len(c.docs) {
		end = len(c.docs)
	}
	return c.docs[start:end], nil
}

func fakeDocs(n int) []schemas.Document {
	docs := make([]schemas.Document, n)
	for i := range docs {
		docs[i] = schemas.Document{
			"id":          fmt.Sprintf("doc-%02d", i),
			"name":        fmt.Sprintf("Bootcamp %02d", i),
			"description": "A bootcamp",
			"housing":     i%2 == 0,
		}
	}
	return docs
}

func TestPaginateCursors(t *testing.T) {
	testCases := []struct {
		name          string
		total         int
		page          int
		limit         int
		expectedCount int
		expectNext    bool
		expectPrev    bool
	}{
		{"FirstOfThree", 25, 1, 10, 10, true, false},
		{"MiddlePage", 25, 2, 10, 10, true, true},
		{"LastPartialPage", 25, 3, 10, 5, false, true},
		{"SinglePage", 5, 1, 10, 5, false, false},
		{"ExactBoundary", 20, 2, 10, 10, false, true},
		{"BeyondEnd", 5, 3, 10, 0, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			coll := &fakeCollection{docs: fakeDocs(tc.total)}
			plan := Plan{Page: tc.page, Limit: tc.limit}

			response, err := Paginate(context.Background(), coll, plan, nil)
			assert.NoError(t, err)

			assert.True(t, response.Success)
			assert.Equal(t, tc.expectedCount, response.Count)
			assert.Len(t, response.Data, tc.expectedCount)

			if tc.expectNext {
				assert.Equal(t, &schemas.PageCursor{Page: tc.page + 1, Limit: tc.limit}, response.Pagination.Next)
			} else {
				assert.Nil(t, response.Pagination.Next)
			}
			if tc.expectPrev {
				assert.Equal(t, &schemas.PageCursor{Page: tc.page - 1, Limit: tc.limit}, response.Pagination.Prev)
			} else {
				assert.Nil(t, response.Pagination.Prev)
			}
		})
	}
}

func TestPaginateCountIsPageSizeNotTotal(t *testing.T) {
	coll := &fakeCollection{docs: fakeDocs(25)}
	plan := Plan{Page: 2, Limit: 10}

	response, err := Paginate(context.Background(), coll, plan, nil)
	assert.NoError(t, err)

	assert.Equal(t, 10, response.Count)
}

func TestPaginateAppliesExpansion(t *testing.T) {
	coll := &fakeCollection{docs: fakeDocs(3)}
	plan := Plan{Page: 1, Limit: 10}

	expand := func(_ context.Context, docs []schemas.Document) error {
		for _, doc := range docs {
			doc["courses"] = []schemas.Document{{"title": "Test Course"}}
		}
		return nil
	}

	response, err := Paginate(context.Background(), coll, plan, expand)
	assert.NoError(t, err)

	for _, doc := range response.Data {
		assert.Contains(t, doc, "courses")
	}
}

func TestProjectKeepsIDAndSelectedFields(t *testing.T) {
	docs := fakeDocs(2)

	projected := Project(docs, []string{"name"})

	for _, doc := range projected {
		assert.Contains(t, doc, "id")
		assert.Contains(t, doc, "name")
		assert.NotContains(t, doc, "description")
		assert.NotContains(t, doc, "housing")
	}
}

func TestProjectWithoutSelectionReturnsAllFields(t *testing.T) {
	docs := fakeDocs(1)

	projected := Project(docs, nil)

	assert.Equal(t, docs, projected)
}
