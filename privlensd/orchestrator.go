package privlensd

import (
	"context"

	"github.com/absmach/supermq/pkg/server"
	"github.com/spf13/cobra"
)

var orchestratorCmd = []cobra.Command{
	{
		Use:   "start",
		Short: "Start orchestrator",
		Long:  `Start orchestrator.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := Config{
				LogLevel: "info",
				Server: server.Config{
					Port: "8060",
				},
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			if err := StartOrchestrator(ctx, cancel, cfg); err != nil {
				cmd.PrintErrf("failed to start orchestrator: %s", err.Error())
			}
			cancel()
		},
	},
}

func NewOrchestratorCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "orchestrator [start]",
		Short: "Orchestrator management",
		Long:  `Start the privlens orchestrator with default configuration.`,
	}

	for i := range orchestratorCmd {
		cmd.AddCommand(&orchestratorCmd[i])
	}

	return &cmd
}
