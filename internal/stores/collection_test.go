package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camphub/internal/query"
	"camphub/internal/schemas"
)

func newCollectionMock(t *testing.T, table string) (*DocumentStore, pgxmock.PgxPoolIface) {
	t.Helper()

	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(poolMock.Close)

	return NewDocumentStore(poolMock, table), poolMock
}

func TestCollectionCount(t *testing.T) {
	store, poolMock := newCollectionMock(t, TableBootcamps)

	poolMock.ExpectQuery(`SELECT COUNT\(\*\) FROM bootcamps WHERE doc->>\$1 = \$2`).
		WithArgs("housing", "true").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := store.Count(context.Background(), []query.Filter{
		{Field: "housing", Op: query.OpEq, Value: "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCollectionFindNumericComparison(t *testing.T) {
	store, poolMock := newCollectionMock(t, TableBootcamps)

	// Numeric range compares guard on jsonb_typeof so text fields never
	// match a numeric predicate.
	poolMock.ExpectQuery(`SELECT doc FROM bootcamps WHERE \(jsonb_typeof\(doc->\$1\) = 'number' AND \(doc->>\$1\)::numeric <= \$2\) ORDER BY doc->>\$3 DESC LIMIT \$4 OFFSET \$5`).
		WithArgs("averageCost", float64(10000), "createdAt", 25, 0).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"a","name":"Devworks","averageCost":8000}`)))

	plan := query.Plan{
		Filters: []query.Filter{{Field: "averageCost", Op: query.OpLte, Value: "10000"}},
		Sort:    []query.SortKey{{Field: "createdAt", Desc: true}},
		Page:    1,
		Limit:   25,
	}

	docs, err := store.Find(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Devworks", docs[0]["name"])

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCollectionFindMembership(t *testing.T) {
	store, poolMock := newCollectionMock(t, TableBootcamps)

	poolMock.ExpectQuery(`SELECT doc FROM bootcamps WHERE \(doc->>\$1 = ANY\(\$2\) OR \(jsonb_typeof\(doc->\$1\) = 'array' AND doc->\$1 \?\| \$2\)\)`).
		WithArgs("careers", []string{"Business", "Web Development"}, "createdAt", 25, 0).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"a","careers":["Business","UI/UX"]}`)))

	plan := query.Plan{
		Filters: []query.Filter{{Field: "careers", Op: query.OpIn, Value: "Business,Web Development"}},
		Sort:    []query.SortKey{{Field: "createdAt", Desc: true}},
		Page:    1,
		Limit:   25,
	}

	docs, err := store.Find(context.Background(), plan)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCollectionFindWithoutSortDefaultsToCreatedAt(t *testing.T) {
	store, poolMock := newCollectionMock(t, TableBootcamps)

	poolMock.ExpectQuery(`SELECT doc FROM bootcamps ORDER BY doc->>\$1 DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("createdAt", 25, 0).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}))

	docs, err := store.Find(context.Background(), query.Plan{Page: 1, Limit: 25})
	require.NoError(t, err)
	assert.Empty(t, docs)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCollectionFindByID(t *testing.T) {
	store, poolMock := newCollectionMock(t, TableCourses)
	id := uuid.New()

	poolMock.ExpectQuery("SELECT doc FROM courses WHERE id =").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"` + id.String() + `","title":"Full Stack Web Dev"}`)))

	doc, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id.String(), doc.ID())
	assert.Equal(t, "Full Stack Web Dev", doc["title"])

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCollectionInsertAndUpdate(t *testing.T) {
	store, poolMock := newCollectionMock(t, TableBootcamps)
	id := uuid.New()
	doc := schemas.Document{"id": id.String(), "name": "Devworks"}

	poolMock.ExpectExec("INSERT INTO bootcamps").
		WithArgs(id, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Insert(context.Background(), id, doc))

	poolMock.ExpectQuery(`UPDATE bootcamps SET doc = doc \|\| \$2 WHERE id = \$1 RETURNING doc`).
		WithArgs(id, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"` + id.String() + `","name":"Devworks East"}`)))

	updated, err := store.UpdateByID(context.Background(), id, schemas.Document{"name": "Devworks East"})
	require.NoError(t, err)
	assert.Equal(t, "Devworks East", updated["name"])

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCollectionDeleteByID(t *testing.T) {
	store, poolMock := newCollectionMock(t, TableReviews)
	id := uuid.New()

	poolMock.ExpectExec("DELETE FROM reviews").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, store.DeleteByID(context.Background(), id))

	poolMock.ExpectExec("DELETE FROM reviews").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, store.DeleteByID(context.Background(), id), pgx.ErrNoRows)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCollectionAverage(t *testing.T) {
	store, poolMock := newCollectionMock(t, TableCourses)
	bootcampID := uuid.New().String()

	avg := 9666.666
	poolMock.ExpectQuery(`SELECT AVG\(\(doc->>\$3\)::numeric\) FROM courses WHERE doc->>\$1 = \$2`).
		WithArgs("bootcamp", bootcampID, "tuition").
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(&avg))

	result, err := store.Average(context.Background(), "tuition", []query.Filter{
		{Field: "bootcamp", Op: query.OpEq, Value: bootcampID},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.InDelta(t, 9666.666, *result, 0.001)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCollectionAverageEmpty(t *testing.T) {
	store, poolMock := newCollectionMock(t, TableReviews)
	bootcampID := uuid.New().String()

	poolMock.ExpectQuery(`SELECT AVG`).
		WithArgs("bootcamp", bootcampID, "rating").
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(nil))

	result, err := store.Average(context.Background(), "rating", []query.Filter{
		{Field: "bootcamp", Op: query.OpEq, Value: bootcampID},
	})
	require.NoError(t, err)
	assert.Nil(t, result)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}
