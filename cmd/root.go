package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nesventory/identifier/internal/config"
	"github.com/nesventory/identifier/internal/setup"
)

func NewRootCmd() *cobra.Command {
	var (
		configPath string
		cfg        *config.Config
	)
	getConfig := func() *config.Config { return cfg }

	cmd := &cobra.Command{
		Use:   "identifier",
		Short: "Department 56 collectible identification with AI vision models",
		Long: `Identifier sends photographs of Department 56 village pieces to a vision
model, lets a reviewer accept, reject or correct each candidate, and submits
the reviewed records to the inventory and training services.

It also includes a CLI for measuring identification accuracy against a
labelled set of photographs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = loaded
			setup.Logger(cfg)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config.yaml (default ./config.yaml if present)")

	cmd.AddCommand(newServeCmd(getConfig))
	cmd.AddCommand(newIdentifyCmd(getConfig))
	cmd.AddCommand(newEvalCmd(getConfig))

	return cmd
}
