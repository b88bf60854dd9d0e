package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"classroom-notes-go/config"
	"classroom-notes-go/logger"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "classnotes",
	Short: "Shared classroom notes backed by DynamoDB or Redis",
	Long: `classnotes serves a small JSON API for reading, saving and listing
the notes of each classroom. The notes table is provisioned on startup.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.AddCommand(serveCmd, provisionCmd)
}

// setup loads configuration and builds the process logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Options{
		Production: cfg.IsProduction(),
		FilePath:   cfg.App.LogFile,
	})
	return cfg, log, nil
}
