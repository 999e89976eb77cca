package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// ObservationFilters defines list filters.
type ObservationFilters struct {
	Year      int  // zero = every year
	ClusterID *int // nil = every cluster
	Search    string
}

// ObservationRepo handles observations.
type ObservationRepo struct {
	db *sql.DB
}

func NewObservationRepo(db *sql.DB) *ObservationRepo { return &ObservationRepo{db: db} }

// Upsert inserts the row or overwrites the existing row for the same country and year.
func (r *ObservationRepo) Upsert(ctx context.Context, o Observation) error {
	if o.ID == "" {
		o.ID = ObservationID(o.Country, o.Year)
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO observations(id, country, cluster_id, year, pop, life_expect, fertility, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 cluster_id=excluded.cluster_id,
	 pop=excluded.pop,
	 life_expect=excluded.life_expect,
	 fertility=excluded.fertility,
	 updated_at=CURRENT_TIMESTAMP;
	`, o.ID, o.Country, o.ClusterID, o.Year, o.Pop, o.LifeExpect, o.Fertility)
	return err
}

func (r *ObservationRepo) List(ctx context.Context, f ObservationFilters) ([]Observation, error) {
	var where []string
	var args []interface{}

	if f.Year != 0 {
		where = append(where, "year = ?")
		args = append(args, f.Year)
	}
	if f.ClusterID != nil {
		where = append(where, "cluster_id = ?")
		args = append(args, *f.ClusterID)
	}
	if f.Search != "" {
		where = append(where, "country LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	query := "SELECT id, country, cluster_id, year, pop, life_expect, fertility, created_at, updated_at FROM observations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY year, country"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *ObservationRepo) Get(ctx context.Context, id string) (*Observation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, country, cluster_id, year, pop, life_expect, fertility, created_at, updated_at FROM observations WHERE id = ?`, id)
	o, err := scanObservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *ObservationRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM observations`).Scan(&n)
	return n, err
}

// Years returns the distinct years present, ascending.
func (r *ObservationRepo) Years(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT year FROM observations ORDER BY year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

// ClusterMean is the per-cluster average for one year.
type ClusterMean struct {
	ClusterID  int
	Label      string
	SortOrder  int
	LifeExpect float64
	Countries  int
}

// MeanLifeExpectByCluster averages life expectancy per cluster for a year.
func (r *ObservationRepo) MeanLifeExpectByCluster(ctx context.Context, year int) ([]ClusterMean, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT c.id, c.label, c.sort_order, AVG(o.life_expect) AS mean, COUNT(*)
	FROM observations o
	JOIN clusters c ON c.id = o.cluster_id
	WHERE o.year = ?
	GROUP BY c.id, c.label, c.sort_order
	ORDER BY c.sort_order, c.id;
	`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ClusterMean
	for rows.Next() {
		var cm ClusterMean
		if err := rows.Scan(&cm.ClusterID, &cm.Label, &cm.SortOrder, &cm.LifeExpect, &cm.Countries); err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// CountryRow is one country for one year, joined with its cluster label.
type CountryRow struct {
	Country    string
	Label      string
	Pop        int64
	LifeExpect float64
}

func (r *ObservationRepo) CountriesForYear(ctx context.Context, year int) ([]CountryRow, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT o.country, c.label, o.pop, o.life_expect
	FROM observations o
	JOIN clusters c ON c.id = o.cluster_id
	WHERE o.year = ?
	ORDER BY o.country;
	`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CountryRow
	for rows.Next() {
		var cr CountryRow
		if err := rows.Scan(&cr.Country, &cr.Label, &cr.Pop, &cr.LifeExpect); err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

// scanObservation handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanObservation(row scanner) (Observation, error) {
	var o Observation
	var fertility sql.NullFloat64
	if err := row.Scan(&o.ID, &o.Country, &o.ClusterID, &o.Year, &o.Pop, &o.LifeExpect, &fertility, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return Observation{}, err
	}
	if fertility.Valid {
		o.Fertility = &fertility.Float64
	}
	return o, nil
}
