// Package cli wires configuration, logging and the podboard commands.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/syrm/podboard/config"
	"github.com/syrm/podboard/logging"
)

type app struct {
	configPath string
	backendURL string
	logLevel   string
	logFile    string
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer

	stdout io.Writer
	stderr io.Writer
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdout, os.Stderr)
}

func NewRootCommandWithIO(out, errOut io.Writer) *cobra.Command {
	return newRootCommand(out, errOut)
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{
		stdout: out,
		stderr: errOut,
	}

	podsCmd := newPodsCmd(a)

	cmd := &cobra.Command{
		Use:               "podboard",
		Short:             "Browse the pods of a Kubernetes cluster from the terminal",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
		RunE:              podsCmd.RunE,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the config file (default ~/.podboard/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.backendURL, "backend-url", "", "base URL of the podboard backend")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "write logs to this rotating file")
	cmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colors")

	cmd.Flags().AddFlagSet(podsCmd.Flags())

	cmd.AddCommand(
		podsCmd,
		newDashboardCmd(a),
		newServeCmd(a),
	)

	cmd.SetOut(out)
	cmd.SetErr(errOut)

	return cmd
}

// setup loads the config file, then env overrides, then flags, and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("backend-url") {
		cfg.Backend.URL = a.backendURL
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = a.logFile
	}
	if a.noColor {
		cfg.UI.Colors = false
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.setupLogger()

	return nil
}

func (a *app) setupLogger() {
	a.logger, a.closer = logging.New(a.cfg.Log, a.stderr)
}

func (a *app) teardown() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

func (a *app) isTerminal() bool {
	f, ok := a.stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
