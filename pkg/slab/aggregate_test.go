package slab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slab-db/slab/pkg/filter"
)

func seedRatings(t *testing.T, h *Handle) {
	t.Helper()
	ctx := context.Background()
	for i, rating := range []int{2, 4, 6, 8} {
		require.NoError(t, h.Create(ctx, "", filter.Spec{
			filter.Eq("rid", i+1),
			filter.Eq("rating", rating),
			filter.Eq("header", "r"),
		}))
	}
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)
	seedRatings(t, h)

	n, err := h.Count(ctx, "", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	n, err = h.Count(ctx, "", filter.Spec{filter.Between("rating", 4, 6)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = h.Count(ctx, "", filter.Spec{filter.Eq("rating", 99)})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMinMaxAvg(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)
	seedRatings(t, h)

	v, err := h.Min(ctx, "rating", "", nil)
	require.NoError(t, err)
	assert.EqualValues(t, int64(2), v)

	v, err = h.Max(ctx, "rating", "", nil)
	require.NoError(t, err)
	assert.EqualValues(t, int64(8), v)

	v, err = h.Avg(ctx, "rating", "", nil)
	require.NoError(t, err)
	assert.EqualValues(t, float64(5), v)

	// Filtered aggregates only see the matching rows.
	v, err = h.Max(ctx, "rating", "", filter.Spec{filter.Between("rating", 2, 6)})
	require.NoError(t, err)
	assert.EqualValues(t, int64(6), v)
}

func TestAggregates_EmptyMatchIsAbsent(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	v, err := h.Min(ctx, "rating", "", nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = h.Avg(ctx, "rating", "", filter.Spec{filter.Eq("rid", 404)})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestAggregates_UnknownField(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	_, err := h.Min(ctx, "no_such_col", "", nil)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = h.Avg(ctx, "rating", "unregistered", nil)
	assert.Error(t, err)
}
