package slab

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slab-db/slab/internal/testutil"
	"github.com/slab-db/slab/pkg/filter"
	"github.com/slab-db/slab/pkg/schema"
)

func TestCreateTable_Idempotent(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	// The table already exists; creating it again must not fail or reset it.
	require.NoError(t, h.Create(ctx, "", filter.Spec{filter.Eq("rid", 1)}))
	require.NoError(t, h.CreateTable(ctx, reviewsTable()))

	n, err := h.Count(ctx, "", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestTableExistsAndNames(t *testing.T) {
	ctx := context.Background()
	h := openReviews(t)

	ok, err := h.TableExists(ctx, "reviews")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.TableExists(ctx, "phantom")
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := h.TableNames(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "reviews")
}

func TestDiscover_RoundTripsSchema(t *testing.T) {
	ctx := context.Background()
	t.Setenv(EnvDBDir, "")
	path := filepath.Join(t.TempDir(), "shared.db")

	writer, err := New(path, WithLogger(testutil.NewTestLogger(t)), WithTimeout(5*time.Second))
	require.NoError(t, err)
	writer.Registry().Register(reviewsTable())
	require.NoError(t, writer.Open(ctx))
	require.NoError(t, writer.InitSchema(ctx))
	require.NoError(t, writer.Close(true))

	// A second handle with an empty registry recovers the schema from the
	// database file alone.
	reader, err := New(path, WithLogger(testutil.NewTestLogger(t)), WithTimeout(5*time.Second))
	require.NoError(t, err)
	require.NoError(t, reader.Open(ctx))
	defer reader.Close(false)

	require.NoError(t, reader.Discover(ctx))
	tbl, err := reader.Registry().Lookup("reviews")
	require.NoError(t, err)
	assert.Equal(t, []string{"rid", "header", "rating", "desc"}, tbl.ColumnOrder)
	assert.Equal(t, "rid", tbl.PrimaryKey)
	assert.Equal(t, schema.TypeInt, tbl.FieldType("rating"))
	assert.Equal(t, schema.TypeText, tbl.FieldType("header"))

	// Discovered tables are immediately usable for reads.
	res, err := reader.Read(ctx, "reviews", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}
