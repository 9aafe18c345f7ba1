package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/syrm/podboard/backend"
	"github.com/syrm/podboard/pods"
	"github.com/syrm/podboard/tui"
)

var errFetchFailed = errors.New("error fetching pods data")

func newPodsCmd(a *app) *cobra.Command {
	var (
		namespace string
		page      int
		plain     bool
	)

	cmd := &cobra.Command{
		Use:   "pods",
		Short: "List pods with namespace filter and pagination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := backend.NewClient(a.cfg, a.logger)
			if err != nil {
				return err
			}

			if plain || !a.isTerminal() {
				return a.printPods(cmd, client, namespace, page)
			}

			model := tui.NewPodsModel(cmd.Context(), client, tui.NewTheme(a.cfg.UI.Colors), a.logger)
			model.SelectNamespace(namespace)

			opts := []tea.ProgramOption{tea.WithContext(cmd.Context()), tea.WithOutput(a.stdout)}
			if a.cfg.UI.AltScreen {
				opts = append(opts, tea.WithAltScreen())
			}

			if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
				return fmt.Errorf("run pods view: %w", err)
			}

			a.logger.InfoContext(cmd.Context(), "podboard is over")

			return nil
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "n", pods.AllNamespaces, "namespace to show")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to print in plain mode")
	cmd.Flags().BoolVar(&plain, "plain", false, "print one page and exit instead of starting the interactive view")

	return cmd
}

func (a *app) printPods(cmd *cobra.Command, client *backend.Client, namespace string, page int) error {
	list, err := client.FetchPods(cmd.Context())
	if err != nil {
		a.logger.ErrorContext(cmd.Context(), "error fetching pods", slog.Any("error", err))
		return errFetchFailed
	}

	return tui.RenderPlain(a.stdout, list, namespace, page, time.Now())
}
