package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/privlens/privlens/pkg/sdk"
)

var (
	dataset     string
	model       string
	strategy    string
	budget      float64
	method      string
	interactive bool

	watchTimeout time.Duration
)

func NewExperimentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiments [submit|watch]",
		Short: "Experiments management",
		Long:  `Submit baseline-versus-protected comparison runs and follow their progress.`,
	}

	submitCmd := &cobra.Command{
		Use:   "submit <session-id>",
		Short: "Submit experiment",
		Long: `Submit an experiment run cycle on a session.

Examples:
  # Unprotected baseline only
  privlens-cli experiments submit <id> --dataset diabetes --model neural-network

  # Differential privacy with a budget
  privlens-cli experiments submit <id> --dataset diabetes --model neural-network --strategy differential-privacy --budget 1.0

  # Federated learning
  privlens-cli experiments submit <id> --dataset adult-income --model logistic-regression --strategy federated --method fedavg

  # Interactive form
  privlens-cli experiments submit <id> -i`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			cfg := sdk.ExperimentConfig{
				Dataset: dataset,
				Model:   model,
				Strategy: sdk.Strategy{
					Kind:              strategy,
					Budget:            budget,
					AggregationMethod: method,
				},
			}

			if interactive {
				var err error
				cfg, err = promptExperiment()
				if err != nil {
					logErrorCmd(*cmd, err)

					return
				}
			}

			s, err := psdk.SubmitExperiment(args[0], cfg)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, s)
		},
	}

	submitCmd.Flags().StringVar(&dataset, "dataset", "diabetes", "Dataset to evaluate on")
	submitCmd.Flags().StringVar(&model, "model", "neural-network", "Model architecture")
	submitCmd.Flags().StringVar(&strategy, "strategy", "none", "Privacy strategy (none|differential-privacy|federated)")
	submitCmd.Flags().Float64Var(&budget, "budget", 0, "Privacy budget epsilon (differential privacy only)")
	submitCmd.Flags().StringVar(&method, "method", "", "Aggregation method (federated only)")
	submitCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Build the experiment in an interactive form")

	watchCmd := &cobra.Command{
		Use:   "watch <session-id>",
		Short: "Watch experiment",
		Long:  `Poll a session until its run cycle reaches a terminal phase.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			deadline := time.Now().Add(watchTimeout)
			last := ""
			for time.Now().Before(deadline) {
				s, err := psdk.GetSession(args[0])
				if err != nil {
					logErrorCmd(*cmd, err)

					return
				}

				if s.Phase != last {
					fmt.Fprintf(cmd.OutOrStdout(), "phase: %s\n", s.Phase)
					last = s.Phase
				}

				switch s.Phase {
				case "RunningBaseline", "RunningProtected":
					time.Sleep(500 * time.Millisecond)

					continue
				default:
					logJSONCmd(*cmd, s)

					return
				}
			}
			logErrorCmd(*cmd, fmt.Errorf("timed out after %s waiting for a terminal phase", watchTimeout))
		},
	}

	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 5*time.Minute, "How long to wait for a terminal phase")

	cmd.AddCommand(submitCmd)
	cmd.AddCommand(watchCmd)

	return cmd
}

func promptExperiment() (sdk.ExperimentConfig, error) {
	catalog, err := psdk.Datasets()
	if err != nil {
		return sdk.ExperimentConfig{}, err
	}
	models, err := psdk.Models()
	if err != nil {
		return sdk.ExperimentConfig{}, err
	}
	methods, err := psdk.AggregationMethods()
	if err != nil {
		return sdk.ExperimentConfig{}, err
	}

	datasetOpts := make([]huh.Option[string], 0, len(catalog.Datasets))
	for _, d := range catalog.Datasets {
		datasetOpts = append(datasetOpts, huh.NewOption(d.Name, d.ID))
	}
	modelOpts := make([]huh.Option[string], 0, len(models))
	for _, m := range models {
		modelOpts = append(modelOpts, huh.NewOption(m.Name, m.ID))
	}
	budgetOpts := make([]huh.Option[float64], 0, len(catalog.Budgets))
	for _, b := range catalog.Budgets {
		budgetOpts = append(budgetOpts, huh.NewOption(fmt.Sprintf("%.1f", b), b))
	}
	methodOpts := make([]huh.Option[string], 0, len(methods))
	for _, m := range methods {
		methodOpts = append(methodOpts, huh.NewOption(fmt.Sprintf("%s (%s)", m.ID, m.Mechanism), m.ID))
	}

	cfg := sdk.ExperimentConfig{}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Dataset").
				Options(datasetOpts...).
				Value(&cfg.Dataset),
			huh.NewSelect[string]().
				Title("Model").
				Options(modelOpts...).
				Value(&cfg.Model),
			huh.NewSelect[string]().
				Title("Privacy strategy").
				Options(
					huh.NewOption("None (baseline only)", "none"),
					huh.NewOption("Differential privacy", "differential-privacy"),
					huh.NewOption("Federated learning", "federated"),
				).
				Value(&cfg.Strategy.Kind),
		),
		huh.NewGroup(
			huh.NewSelect[float64]().
				Title("Privacy budget (epsilon)").
				Description("Lower budgets give stronger privacy and larger accuracy loss.").
				Options(budgetOpts...).
				Value(&cfg.Strategy.Budget),
		).WithHideFunc(func() bool {
			return cfg.Strategy.Kind != "differential-privacy"
		}),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Aggregation method").
				Options(methodOpts...).
				Value(&cfg.Strategy.AggregationMethod),
		).WithHideFunc(func() bool {
			return cfg.Strategy.Kind != "federated"
		}),
	)

	if err := form.Run(); err != nil {
		return sdk.ExperimentConfig{}, err
	}

	return cfg, nil
}
