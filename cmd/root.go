package cmd

import (
	"fmt"
	"os"

	"github.com/ariebrainware/clinic-reservation/config"
	"github.com/spf13/cobra"
)

var (
	catalogFile string
	cfg         *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "clinic-reservation",
	Short: "Clinic reservation calendar backend",
	Long:  `Books treatment reservations into capacity-bounded time slots per doctor.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "treatment item catalogue file (overrides ITEM_CATALOG_FILE)")
}

func initConfig() {
	cfg = config.LoadConfig()
	if catalogFile != "" {
		cfg.ItemCatalogFile = catalogFile
	}
	config.SetupLogger(cfg)
}
