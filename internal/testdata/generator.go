package testdata

import (
	"context"
	"math"
	"math/rand"

	"github.com/jask/gapview/internal/database"
	"github.com/jask/gapview/internal/database/repository"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Clusters     *repository.ClusterRepo
	Observations *repository.ObservationRepo
}

// Years are the sample years Seed writes.
var Years = []int{1995, 2000, 2005}

type country struct {
	Name      string
	Cluster   int
	Pop2000   int64
	Life2000  float64
	Fert2000  float64
	LifeTrend float64 // years gained per five-year step
}

// Roughly the 2000 gapminder values; other years are extrapolated with a little noise.
var countries = []country{
	{"Afghanistan", 0, 23_898_198, 42.1, 7.48, 0.6},
	{"Bangladesh", 0, 130_406_594, 62.0, 3.22, 1.9},
	{"India", 0, 1_006_300_297, 62.9, 3.11, 1.3},
	{"Pakistan", 0, 146_342_958, 63.6, 4.0, 0.9},
	{"France", 1, 59_381_628, 79.6, 1.88, 0.9},
	{"Germany", 1, 82_187_909, 78.7, 1.35, 0.9},
	{"Norway", 1, 4_492_400, 78.9, 1.8, 0.8},
	{"Russia", 1, 146_001_176, 65.0, 1.25, -0.4},
	{"Kenya", 2, 30_689_622, 50.9, 5.0, -0.5},
	{"Nigeria", 2, 123_178_818, 46.6, 5.85, 0.4},
	{"South Africa", 2, 44_066_197, 53.4, 2.8, -3.0},
	{"Argentina", 3, 37_497_728, 74.3, 2.35, 0.7},
	{"Brazil", 3, 175_552_771, 71.0, 2.25, 1.3},
	{"Canada", 3, 31_278_097, 79.4, 1.52, 0.8},
	{"United States", 3, 282_338_631, 77.3, 2.04, 0.5},
	{"China", 4, 1_262_645_000, 72.0, 1.7, 0.9},
	{"Japan", 4, 126_771_662, 81.0, 1.29, 0.7},
	{"Indonesia", 4, 214_090_575, 68.6, 2.38, 1.1},
	{"Australia", 4, 19_164_620, 80.4, 1.75, 0.9},
	{"Egypt", 5, 70_492_342, 69.8, 3.17, 0.8},
	{"Iran", 5, 65_660_289, 69.5, 2.12, 1.1},
	{"Saudi Arabia", 5, 23_153_090, 71.6, 3.81, 0.7},
}

// Seed writes a deterministic sample dataset, creating any cluster row it needs.
func Seed(ctx context.Context, repos Repos) error {
	if err := ensureClusters(ctx, repos.Clusters); err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(2000))

	for _, c := range countries {
		for _, year := range Years {
			step := float64(year-2000) / 5
			life := c.Life2000 + step*c.LifeTrend + (rng.Float64()-0.5)*0.4
			pop := int64(float64(c.Pop2000) * math.Pow(1+0.01*(1+rng.Float64()), step*5))
			fert := math.Max(1.0, c.Fert2000-step*0.2+(rng.Float64()-0.5)*0.1)
			fert = math.Round(fert*100) / 100

			o := repository.Observation{
				Country:    c.Name,
				ClusterID:  c.Cluster,
				Year:       year,
				Pop:        pop,
				LifeExpect: math.Round(life*1000) / 1000,
				Fertility:  &fert,
			}
			if err := repos.Observations.Upsert(ctx, o); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureClusters(ctx context.Context, clusters *repository.ClusterRepo) error {
	seen := make(map[int]bool)
	for _, c := range countries {
		if seen[c.Cluster] {
			continue
		}
		seen[c.Cluster] = true
		existing, err := clusters.Get(ctx, c.Cluster)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		row := repository.Cluster{ID: c.Cluster, Label: database.ClusterLabel(c.Cluster), SortOrder: c.Cluster}
		if err := clusters.Upsert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// CountryCount reports how many countries Seed writes per year.
func CountryCount() int { return len(countries) }
