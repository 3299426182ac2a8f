package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/serene/config"
	"github.com/cppla/serene/middleware"
	"github.com/cppla/serene/routes"
	"github.com/cppla/serene/services"
	"github.com/cppla/serene/utils"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if servePort != "" {
			cfg.AppPort = servePort
			config.Set(cfg)
		}

		stores, err := openStores(cmd)
		if err != nil {
			return err
		}
		if count, err := stores.Catalog.Count(cmd.Context()); err != nil {
			return err
		} else if count == 0 {
			n, err := seedCatalog(cmd.Context(), stores, cfg.CatalogFile)
			if err != nil {
				return err
			}
			utils.Sugar.Infof("empty catalog, seeded %d exercises", n)
		}

		wellness := services.NewWellnessService(stores, cfg.DefaultTimezone)
		auth := services.NewAuthService(stores, cfg.DefaultTimezone, time.Duration(cfg.TokenTTLHours)*time.Hour)
		auth.ConfigureProviders(cfg)

		sched, err := services.StartScheduler(wellness, map[string]services.Sweeper{
			"rate_limiters":   middleware.SweepLimiters,
			"token_blacklist": utils.SweepBlacklist,
			"oauth_states":    utils.SweepStates,
		})
		if err != nil {
			return err
		}

		r := routes.SetupRouter(cfg, routes.Deps{Stores: stores, Auth: auth, Wellness: wellness})
		srv := utils.NewServer(":"+cfg.AppPort, r, utils.DefaultReadTimeout, utils.DefaultWriteTimeout)
		srv.OnShutdown(func(ctx context.Context) {
			if err := sched.Shutdown(); err != nil {
				utils.Logger.Warn("scheduler shutdown", zap.Error(err))
			}
			if err := utils.CloseRedis(); err != nil {
				utils.Logger.Warn("redis close", zap.Error(err))
			}
			if err := config.CloseDatabase(); err != nil {
				utils.Logger.Warn("database close", zap.Error(err))
			}
		})

		utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides AppPort)")
}
