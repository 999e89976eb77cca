package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/gapview/internal/config"
	"github.com/jask/gapview/internal/database"
	"github.com/jask/gapview/internal/database/repository"
	"github.com/jask/gapview/internal/prefs"
	"github.com/jask/gapview/internal/service"
	"github.com/jask/gapview/internal/tui"
)

var runTUI = func(app *tui.App) error {
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func NewRoot() *cobra.Command {
	var (
		cfgPath string
		fresh   bool
	)
	root := &cobra.Command{
		Use:           "gapview",
		Short:         "Linked gapminder charts in the terminal",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger, closeLog, err := fileLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog()

			db, err := openStore(ctx, cfg)
			if err != nil {
				logger.Error("open store", "error", err)
				return err
			}
			defer db.Close()

			agg := &service.Aggregator{
				Observations: repository.NewObservationRepo(db),
				Clusters:     repository.NewClusterRepo(db),
			}
			var session prefs.Session
			if !fresh {
				if s, ok, err := prefs.LoadSession(); err != nil {
					logger.Warn("session not restored", "error", err)
				} else if ok {
					session = s
					if s.Year != 0 {
						cfg.Dataset.Year = s.Year
					}
				}
			}

			app := tui.New(ctx, cfg, agg, logger)
			defer app.Close()
			if session.Selected != "" {
				app.Selection().Toggle(session.Selected)
			}
			logger.Info("starting dashboard", "db", cfg.Database.Path, "year", cfg.Dataset.Year)
			if err := runTUI(app); err != nil {
				return err
			}

			cur, _ := app.Selection().Current()
			if err := prefs.SaveSession(prefs.Session{Year: app.Year(), Selected: cur}); err != nil {
				logger.Warn("session not saved", "error", err)
			}
			return nil
		},
	}
	root.Flags().BoolVar(&fresh, "fresh", false, "ignore the saved year and selection")
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (overrides $"+config.EnvPath+")")
	root.AddCommand(
		importCmd(&cfgPath),
		seedCmd(&cfgPath),
		summaryCmd(&cfgPath),
		countriesCmd(&cfgPath),
		resetCmd(&cfgPath),
		configCmd(&cfgPath),
	)
	return root
}

// openStore prepares the sqlite file: directory, migrations, default clusters.
func openStore(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	return db, nil
}

// fileLogger routes logs to a file while the TUI owns the terminal.
func fileLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := tea.LogToFile(cfg.Path, "gapview")
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	logger := newLogger(f, cfg.Level)
	slog.SetDefault(logger)
	return logger, func() { _ = f.Close() }, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
