package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syrm/podboard/aggregator"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		listen     string
		kubeconfig string
		kubeCtx    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pods, nodes and stats API from the Kubernetes cluster",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			// the server has no TUI, logs go to stderr unless a file was asked for
			if !cmd.Flags().Changed("log-file") {
				a.cfg.Log.File = ""
				a.teardown()
				a.setupLogger()
			}
			if cmd.Flags().Changed("listen") {
				a.cfg.Server.Listen = listen
			}
			if cmd.Flags().Changed("kubeconfig") {
				a.cfg.Server.Kubeconfig = kubeconfig
			}
			if cmd.Flags().Changed("context") {
				a.cfg.Server.Context = kubeCtx
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			restCfg, err := aggregator.NewKubeConfig(a.cfg.Server.Kubeconfig, a.cfg.Server.Context, a.logger)
			if err != nil {
				return err
			}

			kube, metrics, err := aggregator.NewClients(restCfg)
			if err != nil {
				return err
			}

			collector := aggregator.NewCollector(kube, metrics, a.logger)
			server := aggregator.NewServer(a.cfg.Server.Listen, collector, a.cfg.Server.AllowedOrigins, aggregator.NewMetrics(), a.logger)

			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default :5000)")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "path to the kubeconfig file")
	cmd.Flags().StringVar(&kubeCtx, "context", "", "kubeconfig context to use")

	return cmd
}
