package main

import (
	"fmt"
	"os"

	"github.com/danmuck/stashctl/internal/observability"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "stashctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "stashctl",
		Short:         "Persist a payload across host cycles through two integer channels",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			observability.InitLogger("stashctl")
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a stashctl TOML config")

	root.AddCommand(
		newSimulateCmd(&configPath),
		newServeCmd(&configPath),
		newCodecCmd(),
	)
	return root
}
