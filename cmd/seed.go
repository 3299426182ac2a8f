package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cppla/serene/config"
	"github.com/cppla/serene/services"
	"github.com/cppla/serene/store"
	"github.com/cppla/serene/utils"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the exercise catalog into the database",
	Long: `seed upserts every exercise from a YAML catalog, keyed by slug. Without
--file it loads the built-in catalog. Running it twice is harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer func() { _ = config.CloseDatabase() }()
		stores, err := openStores(cmd)
		if err != nil {
			return err
		}
		path := seedFile
		if path == "" {
			path = appConfig.CatalogFile
		}
		n, err := seedCatalog(cmd.Context(), stores, path)
		if err != nil {
			return err
		}
		utils.Sugar.Infof("seeded %d exercises", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML catalog to load instead of the built-in one")
}

func seedCatalog(ctx context.Context, stores *store.Stores, path string) (int, error) {
	exercises, err := store.LoadCatalog(path)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}
	n, err := store.Seed(ctx, stores.Catalog, exercises)
	if err != nil {
		return n, fmt.Errorf("seed catalog: %w", err)
	}
	services.InvalidateCatalog()
	return n, nil
}
