// Package main implements the todo CLI and terminal UI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"minitodo/internal/config"
	"minitodo/internal/logging"
	"minitodo/internal/storage"
	"minitodo/internal/store"
	"minitodo/internal/ui"
	"minitodo/internal/view"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

type globalFlags struct {
	configPath string
	dbPath     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "A small task list for the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			return ui.Run(a.store, a.cfg, a.logger, a.firstLaunch)
		},
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default $TODO_CONFIG or the user config dir)")
	cmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "database file, overrides db_path from the config")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level, overrides log_level from the config")

	cmd.AddCommand(
		newListCmd(&flags),
		newAddCmd(&flags),
		newExportCmd(&flags),
		newImportCmd(&flags),
		newResetCmd(&flags),
	)
	return cmd
}

type app struct {
	cfg         config.Config
	firstLaunch bool
	logger      *log.Logger
	closeLog    func() error
	db          *storage.DB
	adapter     *storage.Adapter
	store       *store.Store
}

// openApp loads the config and wires logging, the database and the store.
func openApp(flags globalFlags) (*app, error) {
	configPath := flags.configPath
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	firstLaunch := false
	if _, err := os.Stat(configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	logger, closeLog, err := logging.Open(logging.Options{Path: cfg.LogPath, Level: cfg.LogLevel})
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("opened database", "path", cfg.DBPath, "config", configPath)

	adapter := storage.NewAdapter(db, logger,
		storage.WithPreferences(cfg.PersistView),
		storage.WithDefaultPrefs(cfg.Prefs()),
	)
	st := store.New(adapter,
		store.WithInitial(adapter.Load()),
		store.WithUndo(cfg.Undo),
		store.WithProjector(view.NewProjector(view.ParseLanguage(cfg.Locale))),
		store.WithLogger(logger),
	)
	return &app{
		cfg:         cfg,
		firstLaunch: firstLaunch,
		logger:      logger,
		closeLog:    closeLog,
		db:          db,
		adapter:     adapter,
		store:       st,
	}, nil
}

func (a *app) Close() error {
	return errors.Join(a.db.Close(), a.closeLog())
}
