package database

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/jask/gapview/internal/database/repository"
)

// gapminder cluster codes, in the order the dataset numbers them.
var defaultClusters = []string{
	"South Asia",
	"Europe & Central Asia",
	"Sub-Saharan Africa",
	"America",
	"East Asia & Pacific",
	"Middle East & North Africa",
}

// ClusterLabel names a numeric gapminder cluster code.
func ClusterLabel(code int) string {
	if code >= 0 && code < len(defaultClusters) {
		return defaultClusters[code]
	}
	return "cluster " + strconv.Itoa(code)
}

// DefaultClusters returns the seeded cluster rows.
func DefaultClusters() []repository.Cluster {
	out := make([]repository.Cluster, 0, len(defaultClusters))
	for code, label := range defaultClusters {
		out = append(out, repository.Cluster{ID: code, Label: label, SortOrder: code})
	}
	return out
}

// SeedDefaults ensures the gapminder clusters exist.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewClusterRepo(db)
	existing, err := repo.List(ctx)
	if err == nil && len(existing) >= len(defaultClusters) {
		return nil
	}
	for _, c := range DefaultClusters() {
		if err := repo.Upsert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
