package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kmsearch/internal/app"
	"github.com/kailas-cloud/kmsearch/internal/config"
	logpkg "github.com/kailas-cloud/kmsearch/internal/logger"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	env        string
	configPath string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "kmsearch",
		Short: "Khmer full-text search over published resources",
		Long: `kmsearch - Khmer full-text search
  - cascading phrase, word-split and segmented matching
  - zero-width-space aware normalization
  - SQLite storage with an optional Redis match cache`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.env, "env", config.GetEnv(), "environment: local, dev, prod, test")
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"config file (default: config/<env>.yaml)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "override database.path")

	root.AddCommand(
		newServeCmd(flags),
		newMigrateCmd(flags),
		newImportCmd(flags),
		newSearchCmd(flags),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and builds the logger.
func (f *globalFlags) load() (config.Config, *zap.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load(f.env)
	}
	if err != nil {
		return config.Config{}, nil, err
	}
	if f.dbPath != "" {
		cfg.Database.Path = f.dbPath
	}

	logger, err := logpkg.NewLogger(f.env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// newApp wires the application. migrate forces schema migration
// regardless of database.auto_migrate.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, migrate bool) (*app.App, error) {
	opts, err := app.OptionsFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	if migrate {
		opts.AutoMigrate = true
	}
	return app.New(ctx, opts)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
