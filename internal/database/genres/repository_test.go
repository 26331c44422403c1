package genres

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshare/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Genre{})
	require.NoError(t, err)

	return NewRepository(db)
}

func TestRepository_Seed(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.Seed(ctx, []string{"Terror", "Novela"})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = repo.Seed(ctx, []string{"Terror", "Novela", "Poesía"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestRepository_List_OrderedByName(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.Seed(ctx, []string{"Terror", "Aventura", "Novela", "Misterio", "Clásicos"})
	require.NoError(t, err)

	genres, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 5)

	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}
	assert.True(t, sort.StringsAreSorted(names), "genres not sorted: %v", names)
	assert.Equal(t, "Aventura", names[0])
}

func TestRepository_List_Empty(t *testing.T) {
	repo := setupTestDB(t)

	genres, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, genres)
	assert.Empty(t, genres)
}

func TestRepository_CountByIDs(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.Seed(ctx, []string{"Terror", "Novela"})
	require.NoError(t, err)

	n, err := repo.CountByIDs(ctx, []uint{1, 2, 42})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CountByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
