package main

import (
	"github.com/spf13/cobra"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the notes table if it does not exist and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		_, closeStore, err := openNotesRepository(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		closeStore()
		return nil
	},
}
