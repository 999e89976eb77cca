package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ClusterRepo handles clusters.
type ClusterRepo struct {
	db *sql.DB
}

func NewClusterRepo(db *sql.DB) *ClusterRepo {
	return &ClusterRepo{db: db}
}

func (r *ClusterRepo) Upsert(ctx context.Context, c Cluster) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO clusters(id, label, sort_order)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 label=excluded.label,
	 sort_order=excluded.sort_order;
	`, c.ID, c.Label, c.SortOrder)
	return err
}

func (r *ClusterRepo) List(ctx context.Context) ([]Cluster, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, label, sort_order FROM clusters ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Cluster
	for rows.Next() {
		var c Cluster
		if err := rows.Scan(&c.ID, &c.Label, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ClusterRepo) Get(ctx context.Context, id int) (*Cluster, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, label, sort_order FROM clusters WHERE id = ?`, id)
	return scanCluster(row)
}

func (r *ClusterRepo) ByLabel(ctx context.Context, label string) (*Cluster, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, label, sort_order FROM clusters WHERE label = ? COLLATE NOCASE`, label)
	return scanCluster(row)
}

// LabelIDBase is the first id handed to clusters imported by label.
// Numeric gapminder codes live below it.
const LabelIDBase = 1000

// NextLabelID returns the next free id in the label range.
func (r *ClusterRepo) NextLabelID(ctx context.Context) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), ? - 1) + 1 FROM clusters WHERE id >= ?`,
		LabelIDBase, LabelIDBase).Scan(&id)
	return id, err
}

func scanCluster(row *sql.Row) (*Cluster, error) {
	var c Cluster
	if err := row.Scan(&c.ID, &c.Label, &c.SortOrder); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
