package slab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slab-db/slab/pkg/filter"
	"github.com/slab-db/slab/pkg/schema"
)

func TestCreate_PositionalOrderAndEmptyDefaults(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	// desc is omitted on purpose: absent fields bind as "" rather than NULL.
	require.NoError(t, h.Create(ctx, "", filter.Spec{
		filter.Eq("rid", 1),
		filter.Eq("header", "h"),
		filter.Eq("rating", 5),
	}))

	res, err := h.Read(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, Row{int64(1), "h", int64(5), ""}, res.Rows[0])
}

func TestCreate_OutOfOrderValuesBindByColumn(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	require.NoError(t, h.Create(ctx, "", filter.Spec{
		filter.Eq("rating", 3),
		filter.Eq("rid", 2),
		filter.Eq("desc", "fine"),
		filter.Eq("header", "ok"),
	}))

	res, err := h.Read(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, Row{int64(2), "ok", int64(3), "fine"}, res.Rows[0])
}

func TestCreate_ValidationRejectsUnknownColumns(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t, WithValidation())

	err := h.Create(ctx, "", filter.Spec{
		filter.Eq("rid", 1),
		filter.Eq("bogus", "x"),
		filter.Eq("also_bogus", 2),
	})
	require.ErrorIs(t, err, ErrUnknownColumn)
	assert.Contains(t, err.Error(), "bogus")
	assert.Contains(t, err.Error(), "also_bogus")
}

func TestCreate_NoTableResolvable(t *testing.T) {
	ctx := context.Background()
	h := newTestHandle(t)
	require.NoError(t, h.Open(ctx))
	defer h.Close(false)

	err := h.Create(ctx, "", filter.Spec{filter.Eq("rid", 1)})
	assert.ErrorIs(t, err, ErrNoTable)

	_, err = h.Read(ctx, "", nil)
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestCreate_RejectsRangeValues(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	err := h.Create(ctx, "", filter.Spec{filter.Between("rating", 1, 5)})
	assert.Error(t, err)
}

func TestCreate_ConstraintViolationPropagates(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	require.NoError(t, h.Create(ctx, "", filter.Spec{filter.Eq("rid", 1)}))
	err := h.Create(ctx, "", filter.Spec{filter.Eq("rid", 1)})
	require.Error(t, err, "primary key violation must surface")
	assert.Contains(t, err.Error(), "UNIQUE")
	assert.NotErrorIs(t, err, ErrUnknownColumn)
}

// seedSquares creates the squares table with rows (1,1), (2,4), (3,9).
func seedSquares(t *testing.T, h *Handle) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, h.CreateTable(ctx, schema.Table{
		Name: "squares",
		Fields: []schema.Field{
			{Name: "num", Type: schema.TypeInt},
			{Name: "square", Type: schema.TypeInt},
		},
	}))
	for n := 1; n <= 3; n++ {
		require.NoError(t, h.Create(ctx, "squares", filter.Spec{
			filter.Eq("num", n),
			filter.Eq("square", n*n),
		}))
	}
}

func TestRead_RangeIsInclusiveOfStoredValues(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)
	seedSquares(t, h)

	res, err := h.Read(ctx, "squares", filter.Spec{filter.Between("square", 4, 9)})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2, "BETWEEN 4 AND 9 must include both endpoints")

	res, err = h.Read(ctx, "squares", filter.Spec{filter.Between("square", 2, 3)})
	require.NoError(t, err)
	assert.Empty(t, res.Rows, "no stored square falls inside [2,3]")
}

func TestRead_Pagination(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	for i := 1; i <= 10; i++ {
		require.NoError(t, h.Create(ctx, "", filter.Spec{filter.Eq("rid", i)}))
	}

	res, err := h.Read(ctx, "", nil, WithLimit(3))
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3)

	res, err = h.Read(ctx, "", nil, WithLimit(3), WithOffset(9))
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)

	// Without pagination options no LIMIT/OFFSET clause is emitted.
	res, err = h.Read(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 10)
}

func TestRead_HeaderFromStatementMetadata(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	res, err := h.Read(ctx, "", nil, IncludeHeader())
	require.NoError(t, err)
	assert.Equal(t, []string{"rid", "header", "rating", "desc"}, res.Columns)

	// Catalog queries get their header from the statement too.
	res, err = h.Read(ctx, "sqlite_master", filter.Spec{filter.Eq("type", "table")}, IncludeHeader())
	require.NoError(t, err)
	assert.Contains(t, res.Columns, "name")
	assert.Contains(t, res.Columns, "sql")

	res, err = h.Read(ctx, "", nil)
	require.NoError(t, err)
	assert.Nil(t, res.Columns, "header only on request")
}

func TestReadFirst(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	require.NoError(t, h.Create(ctx, "", filter.Spec{filter.Eq("rid", 1), filter.Eq("rating", 4)}))
	require.NoError(t, h.Create(ctx, "", filter.Spec{filter.Eq("rid", 2), filter.Eq("rating", 4)}))

	row, cols, err := h.ReadFirst(ctx, "", filter.Spec{filter.Eq("rating", 4)}, IncludeHeader())
	require.NoError(t, err)
	assert.Equal(t, []string{"rid", "header", "rating", "desc"}, cols)
	require.NotNil(t, row)
	assert.EqualValues(t, 1, row[0])

	row, _, err = h.ReadFirst(ctx, "", filter.Spec{filter.Eq("rating", 999)})
	require.NoError(t, err)
	assert.Nil(t, row, "no match yields no row, not an error")
}

func TestUpdate_RequiresCondition(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	err := h.Update(ctx, "", nil, filter.Spec{filter.Eq("rating", 1)})
	assert.ErrorIs(t, err, ErrEmptyCondition)

	err = h.Update(ctx, "", filter.Spec{}, filter.Spec{filter.Eq("rating", 1)})
	assert.ErrorIs(t, err, ErrEmptyCondition)
}

func TestUpdate_RewritesMatchingRows(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	require.NoError(t, h.Create(ctx, "", filter.Spec{filter.Eq("rid", 1), filter.Eq("rating", 1)}))
	require.NoError(t, h.Create(ctx, "", filter.Spec{filter.Eq("rid", 2), filter.Eq("rating", 5)}))

	require.NoError(t, h.Update(ctx, "",
		filter.Spec{filter.Eq("rid", 1)},
		filter.Spec{filter.Eq("rating", 2), filter.Eq("header", "bumped")},
	))

	row, _, err := h.ReadFirst(ctx, "", filter.Spec{filter.Eq("rid", 1)})
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, Row{int64(1), "bumped", int64(2), ""}, row)

	// The unmatched row is untouched.
	row, _, err = h.ReadFirst(ctx, "", filter.Spec{filter.Eq("rid", 2)})
	require.NoError(t, err)
	assert.EqualValues(t, 5, row[2])
}

func TestUpdate_RangeCondition(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)
	seedSquares(t, h)

	require.NoError(t, h.Update(ctx, "squares",
		filter.Spec{filter.Between("square", 4, 9)},
		filter.Spec{filter.Eq("num", 0)},
	))

	n, err := h.Count(ctx, "squares", filter.Spec{filter.Eq("num", 0)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	for i := 1; i <= 4; i++ {
		require.NoError(t, h.Create(ctx, "", filter.Spec{filter.Eq("rid", i), filter.Eq("rating", i%2)}))
	}

	require.NoError(t, h.Delete(ctx, "", filter.Spec{filter.Eq("rating", 0)}))
	n, err := h.Count(ctx, "", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// Empty filters wipe the table; that is the documented contract.
	require.NoError(t, h.Delete(ctx, "", nil))
	n, err = h.Count(ctx, "", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
