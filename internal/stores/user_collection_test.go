package stores

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camphub/internal/query"
)

func newUserCollectionMock(t *testing.T) (*UserCollection, pgxmock.PgxPoolIface) {
	t.Helper()

	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(poolMock.Close)

	return NewUserCollection(poolMock), poolMock
}

func TestUserCollectionFind(t *testing.T) {
	coll, poolMock := newUserCollectionMock(t)
	id := uuid.New()

	poolMock.ExpectQuery(`SELECT id, name, email, role, created_at FROM users WHERE role = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("publisher", 25, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "role", "created_at"}).
			AddRow(id.String(), "John Doe", "john@gmail.com", "publisher", time.Now().UTC()))

	plan := query.Plan{
		Filters: []query.Filter{{Field: "role", Op: query.OpEq, Value: "publisher"}},
		Sort:    []query.SortKey{{Field: "createdAt", Desc: true}},
		Page:    1,
		Limit:   25,
	}

	docs, err := coll.Find(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, id.String(), docs[0].ID())
	assert.Equal(t, "publisher", docs[0]["role"])
	assert.NotContains(t, docs[0], "password")

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestUserCollectionUnqueryableFieldMatchesNothing(t *testing.T) {
	coll, poolMock := newUserCollectionMock(t)

	// A filter on a column outside the allowlist collapses to FALSE
	poolMock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE FALSE`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	count, err := coll.Count(context.Background(), []query.Filter{
		{Field: "password", Op: query.OpEq, Value: "x"},
	})
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestUserCollectionUnknownSortFallsBack(t *testing.T) {
	coll, poolMock := newUserCollectionMock(t)

	poolMock.ExpectQuery(`SELECT id, name, email, role, created_at FROM users ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(25, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "role", "created_at"}))

	plan := query.Plan{
		Sort:  []query.SortKey{{Field: "password"}},
		Page:  1,
		Limit: 25,
	}

	docs, err := coll.Find(context.Background(), plan)
	require.NoError(t, err)
	assert.Empty(t, docs)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}
