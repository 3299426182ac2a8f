package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cppla/serene/config"
	"github.com/cppla/serene/store"
	"github.com/cppla/serene/utils"
)

var (
	configPath string
	appConfig  config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "serene",
	Short: "serene - gamified wellness tracking API",
	Long: `serene serves a JSON API for short wellness exercises and daily mood
check-ins, awarding XP, levels and daily streaks.

Configuration is read from .env, config/config.json and environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			config.DefaultPath = configPath
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		appConfig = cfg
		if err := utils.InitLogger(cfg); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = utils.Logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (default config/config.json)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStores connects to the configured database and brings the schema up to date.
func openStores(cmd *cobra.Command) (*store.Stores, error) {
	db, err := config.InitDatabase(appConfig)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(cmd.Context(), db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store.New(db), nil
}
