package client

import (
	"github.com/spf13/cobra"

	taskdclient "github.com/jona62/taskd/pkg/client"
)

// NewHealthCommand constructs the `health` command.
func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show daemon health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), func(cli *taskdclient.Client) error {
				h, err := cli.Health(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), h)
			})
		},
	}
}

// NewMetricsCommand constructs the `metrics` command.
func NewMetricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show daemon counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), func(cli *taskdclient.Client) error {
				m, err := cli.Metrics(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), m)
			})
		},
	}
}
