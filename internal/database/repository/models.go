package repository

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Cluster represents a cluster row (a region grouping of countries).
type Cluster struct {
	ID        int
	Label     string
	SortOrder int
}

// Observation represents one country in one year.
type Observation struct {
	ID         string
	Country    string
	ClusterID  int
	Year       int
	Pop        int64
	LifeExpect float64
	Fertility  *float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ObservationID is stable for a country and year so re-imports overwrite instead of duplicating.
func ObservationID(country string, year int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("obs:"+country+"|"+strconv.Itoa(year))).String()
}
