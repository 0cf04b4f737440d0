package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nesventory/identifier/internal/evalcmd"
)

func newEvalCmd(cfg evalcmd.ConfigFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Identification accuracy evaluation tools",
		Long: `Evaluation tools for measuring how well a provider and model identify
collectibles in a labelled set of photographs.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd(cfg))
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())

	return cmd
}
