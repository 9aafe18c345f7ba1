package cli

import (
	"github.com/spf13/cobra"

	"github.com/syrm/podboard/backend"
	"github.com/syrm/podboard/tui"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show cluster statistics and node OS distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := backend.NewClient(a.cfg, a.logger)
			if err != nil {
				return err
			}

			return tui.NewDashboard(client, a.cfg.UI.Colors, a.logger).Run(cmd.Context())
		},
	}
}
