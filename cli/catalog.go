package cli

import (
	"github.com/spf13/cobra"
)

func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [datasets|models|aggregations]",
		Short: "Catalog browsing",
		Long:  `Browse the datasets, models, privacy budgets and aggregation methods the evaluation service supports.`,
	}

	datasetsCmd := &cobra.Command{
		Use:   "datasets",
		Short: "List datasets",
		Long:  `List datasets and the trained privacy budgets.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			c, err := psdk.Datasets()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, c)
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List models",
		Long:  `List model architectures.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			m, err := psdk.Models()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, m)
		},
	}

	aggregationsCmd := &cobra.Command{
		Use:   "aggregations",
		Short: "List aggregation methods",
		Long:  `List federated aggregation methods.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			m, err := psdk.AggregationMethods()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, m)
		},
	}

	cmd.AddCommand(datasetsCmd)
	cmd.AddCommand(modelsCmd)
	cmd.AddCommand(aggregationsCmd)

	return cmd
}
