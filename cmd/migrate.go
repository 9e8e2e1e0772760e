package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the schema and seed doctors and treatment items",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := openStore(); err != nil {
			return err
		}
		log.Info().Int("doctors", len(cfg.Doctors)).Msg("database migrated and seeded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
