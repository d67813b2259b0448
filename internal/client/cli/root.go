package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/storeit/internal/buildinfo"
	"github.com/dmitrijs2005/storeit/internal/client/config"
	"github.com/dmitrijs2005/storeit/internal/client/metrics"
	"github.com/spf13/cobra"
)

// EnvToken supplies the bearer credential to one-shot commands.
const EnvToken = config.EnvToken

// newAppFn is a test seam for NewApp.
var newAppFn = NewApp

// Execute runs the command line in args and returns the process exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	var app *App
	root := newRootCmd(in, out, &app)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if app != nil {
		app.Close()
	}
	if err != nil {
		if !isReported(err) {
			fmt.Fprintln(errOut, "Error:", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(in io.Reader, out io.Writer, app **App) *cobra.Command {
	var (
		token     string
		assumeYes bool
	)

	root := &cobra.Command{
		Use:   "storeit",
		Short: "Command-line client for the storeit file storage service",
		Long: "storeit uploads, lists, shares and searches files kept by a storeit backend.\n" +
			"Run without a command to start the interactive shell.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			cfg, err := config.LoadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			if token == "" {
				token = cfg.Token
			}
			a, err := newAppFn(cfg, Options{In: in, Out: out, Token: token, AssumeYes: assumeYes})
			if err != nil {
				return err
			}
			*app = a

			if cfg.MetricsAddr != "" {
				go func() {
					if err := metrics.Serve(cmd.Context(), cfg.MetricsAddr, a.Registry(), a.log); err != nil {
						a.log.Error(cmd.Context(), "metrics endpoint failed", "error", err)
					}
				}()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return (*app).Shell(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&token, "token", "", "bearer token for one-shot commands (default $"+EnvToken+")")
	root.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")

	get := func() *App { return *app }
	root.AddCommand(&cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return get().Shell(cmd.Context())
		},
	})
	root.AddCommand(fileCommands(get)...)
	root.AddCommand(versionCmd(func() { buildinfo.PrintBuildData(out) }))
	return root
}
