package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/gapview/internal/database"
	"github.com/jask/gapview/internal/database/repository"
)

func setupRepos(t *testing.T) (*repository.ObservationRepo, *repository.ClusterRepo, *sql.DB, context.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.SeedDefaults(ctx, db))

	return repository.NewObservationRepo(db), repository.NewClusterRepo(db), db, ctx
}

func TestUpsertIsIdempotent(t *testing.T) {
	t.Parallel()
	obs, _, _, ctx := setupRepos(t)

	fert := 1.8
	o := repository.Observation{Country: "Norway", ClusterID: 1, Year: 2000, Pop: 4_492_400, LifeExpect: 78.6, Fertility: &fert}
	require.NoError(t, obs.Upsert(ctx, o))
	o.LifeExpect = 79.0
	require.NoError(t, obs.Upsert(ctx, o))

	n, err := obs.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := obs.Get(ctx, repository.ObservationID("Norway", 2000))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.InDelta(t, 79.0, got.LifeExpect, 1e-9)
	require.NotNil(t, got.Fertility)
	require.InDelta(t, 1.8, *got.Fertility, 1e-9)

	missing, err := obs.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestMeanLifeExpectByCluster(t *testing.T) {
	t.Parallel()
	obs, _, _, ctx := setupRepos(t)

	rows := []repository.Observation{
		{Country: "India", ClusterID: 0, Year: 2000, Pop: 1_000_000_000, LifeExpect: 62.0},
		{Country: "Nepal", ClusterID: 0, Year: 2000, Pop: 24_000_000, LifeExpect: 60.0},
		{Country: "France", ClusterID: 1, Year: 2000, Pop: 59_000_000, LifeExpect: 79.0},
		{Country: "France", ClusterID: 1, Year: 1995, Pop: 58_000_000, LifeExpect: 78.0},
	}
	for _, r := range rows {
		require.NoError(t, obs.Upsert(ctx, r))
	}

	means, err := obs.MeanLifeExpectByCluster(ctx, 2000)
	require.NoError(t, err)
	require.Len(t, means, 2)
	require.Equal(t, "South Asia", means[0].Label)
	require.InDelta(t, 61.0, means[0].LifeExpect, 1e-9)
	require.Equal(t, 2, means[0].Countries)
	require.Equal(t, "Europe & Central Asia", means[1].Label)
	require.InDelta(t, 79.0, means[1].LifeExpect, 1e-9)

	years, err := obs.Years(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1995, 2000}, years)

	countries, err := obs.CountriesForYear(ctx, 2000)
	require.NoError(t, err)
	require.Len(t, countries, 3)
	require.Equal(t, "France", countries[0].Country)
	require.Equal(t, "Europe & Central Asia", countries[0].Label)
}

func TestListFilters(t *testing.T) {
	t.Parallel()
	obs, _, _, ctx := setupRepos(t)

	require.NoError(t, obs.Upsert(ctx, repository.Observation{Country: "Chile", ClusterID: 3, Year: 2000, Pop: 15_000_000, LifeExpect: 77.3}))
	require.NoError(t, obs.Upsert(ctx, repository.Observation{Country: "China", ClusterID: 4, Year: 2000, Pop: 1_260_000_000, LifeExpect: 72.0}))
	require.NoError(t, obs.Upsert(ctx, repository.Observation{Country: "Chile", ClusterID: 3, Year: 2005, Pop: 16_000_000, LifeExpect: 78.5}))

	america := 3
	list, err := obs.List(ctx, repository.ObservationFilters{ClusterID: &america})
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = obs.List(ctx, repository.ObservationFilters{Year: 2000, Search: "Chi"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Nil(t, list[0].Fertility)
}

func TestClusterLookups(t *testing.T) {
	t.Parallel()
	_, clusters, _, ctx := setupRepos(t)

	c, err := clusters.ByLabel(ctx, "america")
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Equal(t, 3, c.ID)

	next, err := clusters.NextLabelID(ctx)
	require.NoError(t, err)
	require.Equal(t, repository.LabelIDBase, next)

	require.NoError(t, clusters.Upsert(ctx, repository.Cluster{ID: next, Label: "Oceania", SortOrder: next}))
	got, err := clusters.Get(ctx, next)
	require.NoError(t, err)
	require.Equal(t, "Oceania", got.Label)

	next, err = clusters.NextLabelID(ctx)
	require.NoError(t, err)
	require.Equal(t, repository.LabelIDBase+1, next)

	none, err := clusters.ByLabel(ctx, "Atlantis")
	require.NoError(t, err)
	require.Nil(t, none)
}
