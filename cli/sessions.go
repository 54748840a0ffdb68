package cli

import (
	"github.com/spf13/cobra"
)

func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions [create|view|list|delete|ack|defer]",
		Short: "Sessions management",
		Long:  `Create, view, list and delete comparison sessions, and resolve reflective prompts.`,
	}

	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create session",
		Long:  `Create a comparison session. Without a name, one is generated.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			s, err := psdk.CreateSession(name)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, s)
		},
	}

	viewCmd := &cobra.Command{
		Use:   "view <id>",
		Short: "View session",
		Long:  `View a session with its latest comparison and accuracy loss.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			s, err := psdk.GetSession(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, s)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Long:  `List sessions.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			page, err := psdk.ListSessions(defOffset, defLimit)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, page)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete session",
		Long:  `Delete session.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			if err := psdk.DeleteSession(args[0]); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logOKCmd(*cmd)
		},
	}

	ackCmd := &cobra.Command{
		Use:   "ack <id>",
		Short: "Acknowledge reflection",
		Long:  `Acknowledge the pending reflective prompt and return the session to idle.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			s, err := psdk.AcknowledgeReflection(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, s)
		},
	}

	deferCmd := &cobra.Command{
		Use:   "defer <id>",
		Short: "Defer reflection",
		Long:  `Dismiss the pending reflective prompt and return the session to idle.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			s, err := psdk.DeferReflection(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, s)
		},
	}

	cmd.AddCommand(createCmd)
	cmd.AddCommand(viewCmd)
	cmd.AddCommand(listCmd)
	cmd.AddCommand(deleteCmd)
	cmd.AddCommand(ackCmd)
	cmd.AddCommand(deferCmd)

	cmd.PersistentFlags().Uint64VarP(
		&defOffset,
		"offset",
		"o",
		defOffset,
		"Offset",
	)

	cmd.PersistentFlags().Uint64VarP(
		&defLimit,
		"limit",
		"l",
		defLimit,
		"Limit",
	)

	return cmd
}
