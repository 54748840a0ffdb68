package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/privlens/privlens"
	"github.com/privlens/privlens/cli"
	"github.com/privlens/privlens/pkg/sdk"
	"github.com/privlens/privlens/privlensd"
)

const defConfigPath = "privlens.toml"

func main() {
	configPath := defConfigPath

	rootCmd := &cobra.Command{
		Use:   "privlens-cli",
		Short: "PrivLens CLI",
		Long:  `PrivLens CLI is a command line interface for running privacy-versus-accuracy comparison experiments.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			sdkConf := sdk.Config{
				OrchestratorURL: cli.DefOrchestratorURL,
				TLSVerification: cli.DefTLSVerification,
			}

			cfg, err := privlens.LoadConfig(configPath)
			switch {
			case err == nil:
				if cfg.Orchestrator.URL != "" {
					sdkConf.OrchestratorURL = cfg.Orchestrator.URL
				}
			case cmd.Flags().Changed("config"):
				// The default file is optional, an explicit one is not.
				log.Fatal(err)
			}

			s := sdk.NewSDK(sdkConf)
			cli.SetSDK(s)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defConfigPath, "config file")

	rootCmd.AddCommand(cli.NewSessionsCmd())
	rootCmd.AddCommand(cli.NewExperimentsCmd())
	rootCmd.AddCommand(cli.NewCatalogCmd())
	rootCmd.AddCommand(privlensd.NewOrchestratorCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
