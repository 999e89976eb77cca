package service

import (
	"context"
	"fmt"

	"github.com/jask/gapview/internal/database/repository"
)

// ClusterMean is one bar: the average life expectancy of a cluster's countries.
type ClusterMean struct {
	ClusterName string
	LifeExpect  float64
	Countries   int
}

func (c ClusterMean) Cluster() string { return c.ClusterName }

// CountryPoint is one scatter mark.
type CountryPoint struct {
	Country     string
	ClusterName string
	Pop         int64
	LifeExpect  float64
}

func (p CountryPoint) Cluster() string { return p.ClusterName }

// Snapshot is everything the dashboard draws for one year.
type Snapshot struct {
	Year      int
	Domain    []string // cluster labels in display order
	Means     []ClusterMean
	Countries []CountryPoint
}

// Aggregator computes the chart records from stored observations.
type Aggregator struct {
	Observations *repository.ObservationRepo
	Clusters     *repository.ClusterRepo
}

// ClusterMeans groups a year's observations by cluster and averages life expectancy.
func (a *Aggregator) ClusterMeans(ctx context.Context, year int) ([]ClusterMean, error) {
	rows, err := a.Observations.MeanLifeExpectByCluster(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("cluster means %d: %w", year, err)
	}
	out := make([]ClusterMean, 0, len(rows))
	for _, r := range rows {
		out = append(out, ClusterMean{ClusterName: r.Label, LifeExpect: r.LifeExpect, Countries: r.Countries})
	}
	return out, nil
}

func (a *Aggregator) Countries(ctx context.Context, year int) ([]CountryPoint, error) {
	rows, err := a.Observations.CountriesForYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("countries %d: %w", year, err)
	}
	out := make([]CountryPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, CountryPoint{Country: r.Country, ClusterName: r.Label, Pop: r.Pop, LifeExpect: r.LifeExpect})
	}
	return out, nil
}

func (a *Aggregator) Years(ctx context.Context) ([]int, error) {
	years, err := a.Observations.Years(ctx)
	if err != nil {
		return nil, fmt.Errorf("years: %w", err)
	}
	return years, nil
}

// Snapshot loads both record sequences for a year plus the cluster domain.
// The domain lists every known cluster so colours stay stable across years.
func (a *Aggregator) Snapshot(ctx context.Context, year int) (Snapshot, error) {
	means, err := a.ClusterMeans(ctx, year)
	if err != nil {
		return Snapshot{}, err
	}
	countries, err := a.Countries(ctx, year)
	if err != nil {
		return Snapshot{}, err
	}
	clusters, err := a.Clusters.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("clusters: %w", err)
	}
	domain := make([]string, 0, len(clusters))
	for _, c := range clusters {
		domain = append(domain, c.Label)
	}
	return Snapshot{Year: year, Domain: domain, Means: means, Countries: countries}, nil
}

// ObservationQuery narrows List. Zero fields match everything.
type ObservationQuery struct {
	Year    int
	Cluster string // label, case-insensitive
	Search  string // substring of the country name
}

// ObservationRow is a stored observation with its cluster label resolved.
type ObservationRow struct {
	repository.Observation
	ClusterName string
}

// List returns the stored observations matching q, ordered by year then country.
func (a *Aggregator) List(ctx context.Context, q ObservationQuery) ([]ObservationRow, error) {
	f := repository.ObservationFilters{Year: q.Year, Search: q.Search}
	if q.Cluster != "" {
		c, err := a.Clusters.ByLabel(ctx, q.Cluster)
		if err != nil {
			return nil, fmt.Errorf("cluster %q: %w", q.Cluster, err)
		}
		if c == nil {
			return nil, fmt.Errorf("unknown cluster %q", q.Cluster)
		}
		f.ClusterID = &c.ID
	}
	obs, err := a.Observations.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	clusters, err := a.Clusters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("clusters: %w", err)
	}
	labels := make(map[int]string, len(clusters))
	for _, c := range clusters {
		labels[c.ID] = c.Label
	}
	out := make([]ObservationRow, 0, len(obs))
	for _, o := range obs {
		out = append(out, ObservationRow{Observation: o, ClusterName: labels[o.ClusterID]})
	}
	return out, nil
}
