package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cppla/serene/config"
	"github.com/cppla/serene/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer func() { _ = config.CloseDatabase() }()
		if _, err := openStores(cmd); err != nil {
			return err
		}
		utils.Sugar.Infof("schema migrated (driver=%s)", appConfig.DBDriver)
		return nil
	},
}
