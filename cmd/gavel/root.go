package main

import (
	"strings"

	"github.com/spf13/cobra"

	"gavel/internal/config"
)

func newRootCommand() *cobra.Command {
	var addressFlag string
	var configFlag string

	client := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "gavel",
		Short:         "Gavel hearing transcription CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// config management works without a reachable daemon
			if cmd.Name() == "init" || cmd.Name() == "config" {
				return nil
			}
			address := strings.TrimSpace(addressFlag)
			if address == "" {
				cfg, _, _, err := config.Load(configFlag)
				if err != nil {
					return err
				}
				address = cfg.Paths.APIBind
			}
			client.baseURL = "http://" + address
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&addressFlag, "address", "", "Daemon API address (host:port)")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newHealthCommand(client))
	rootCmd.AddCommand(newSubmitCommand(client))
	rootCmd.AddCommand(newStatusCommand(client))
	rootCmd.AddCommand(newListCommand(client))
	rootCmd.AddCommand(newTranscriptCommand(client))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
