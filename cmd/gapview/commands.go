package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jask/gapview/internal/config"
	"github.com/jask/gapview/internal/database/repository"
	"github.com/jask/gapview/internal/service"
	"github.com/jask/gapview/internal/testdata"
)

// withStore loads config, opens the database and runs fn with a stderr logger.
func withStore(cmd *cobra.Command, cfgPath string, fn func(ctx context.Context, cfg config.Config, db *sql.DB) error) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	db, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Debug("store ready", "db", cfg.Database.Path, "command", cmd.Name())
	return fn(cmd.Context(), cfg, db)
}

func importCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import gapminder rows from a .json or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return withStore(cmd, *cfgPath, func(ctx context.Context, cfg config.Config, db *sql.DB) error {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()

				svc := &service.IngestService{
					Observations: repository.NewObservationRepo(db),
					Clusters:     repository.NewClusterRepo(db),
				}
				var res service.IngestResult
				switch strings.ToLower(filepath.Ext(path)) {
				case ".json":
					res, err = svc.ImportJSON(ctx, f)
				case ".csv":
					res, err = svc.ImportCSV(ctx, f)
				default:
					return fmt.Errorf("import %s: unsupported file type (want .json or .csv)", path)
				}
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				for _, e := range res.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "skip: %v\n", e)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows, %d errors\n", res.Imported, len(res.Errors))
				return nil
			})
		},
	}
}

func seedCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a small sample dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, *cfgPath, func(ctx context.Context, cfg config.Config, db *sql.DB) error {
				repos := testdata.Repos{
					Clusters:     repository.NewClusterRepo(db),
					Observations: repository.NewObservationRepo(db),
				}
				if err := testdata.Seed(ctx, repos); err != nil {
					return fmt.Errorf("seed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d countries for %v\n", testdata.CountryCount(), testdata.Years)
				return nil
			})
		},
	}
}

func summaryCmd(cfgPath *string) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print mean life expectancy per cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, *cfgPath, func(ctx context.Context, cfg config.Config, db *sql.DB) error {
				if year == 0 {
					year = cfg.Dataset.Year
				}
				agg := &service.Aggregator{
					Observations: repository.NewObservationRepo(db),
					Clusters:     repository.NewClusterRepo(db),
				}
				means, err := agg.ClusterMeans(ctx, year)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(means) == 0 {
					fmt.Fprintf(out, "no observations for %d\n", year)
					return nil
				}
				t := table.New().
					Border(lipgloss.NormalBorder()).
					Headers("Cluster", "Mean life expectancy", "Countries")
				for _, m := range means {
					t.Row(m.Cluster(), strconv.FormatFloat(m.LifeExpect, 'f', 1, 64), strconv.Itoa(m.Countries))
				}
				fmt.Fprintf(out, "%d\n%s\n", year, t.Render())
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year to summarise (defaults to dataset.year)")
	return cmd
}

func countriesCmd(cfgPath *string) *cobra.Command {
	var q service.ObservationQuery
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List stored observations, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, *cfgPath, func(ctx context.Context, cfg config.Config, db *sql.DB) error {
				agg := &service.Aggregator{
					Observations: repository.NewObservationRepo(db),
					Clusters:     repository.NewClusterRepo(db),
				}
				rows, err := agg.List(ctx, q)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "no matching observations")
					return nil
				}
				t := table.New().
					Border(lipgloss.NormalBorder()).
					Headers("Country", "Cluster", "Year", "Population", "Life expectancy", "Fertility")
				for _, r := range rows {
					fert := "-"
					if r.Fertility != nil {
						fert = strconv.FormatFloat(*r.Fertility, 'f', 2, 64)
					}
					t.Row(r.Country, r.ClusterName, strconv.Itoa(r.Year), strconv.FormatInt(r.Pop, 10),
						strconv.FormatFloat(r.LifeExpect, 'f', 1, 64), fert)
				}
				fmt.Fprintln(out, t.Render())
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&q.Year, "year", 0, "only this year")
	cmd.Flags().StringVar(&q.Cluster, "cluster", "", "only this cluster label")
	cmd.Flags().StringVar(&q.Search, "search", "", "country name contains")
	return cmd
}

func resetCmd(cfgPath *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all observations and restore the default clusters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes all data; rerun with --yes")
			}
			return withStore(cmd, *cfgPath, func(ctx context.Context, cfg config.Config, db *sql.DB) error {
				m := &service.MaintenanceService{DB: db}
				if err := m.Reset(ctx); err != nil {
					return fmt.Errorf("reset: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "database reset")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func configCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the resolved configuration to the config path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(*cfgPath)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			written, err := config.Save(cfg, *cfgPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", written)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
