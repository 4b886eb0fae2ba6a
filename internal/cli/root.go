// Package cli defines the oxdash command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxprint/oxdash/internal/app"
	"github.com/oxprint/oxdash/internal/state"
	"github.com/oxprint/oxdash/internal/storage"
)

// errNotConnected makes `oxdash check` exit non-zero without extra output.
var errNotConnected = errors.New("backend not connected")

type rootFlags struct {
	configPath string
	apiURL     string
	pollEvery  time.Duration
}

func (f *rootFlags) options() app.Options {
	return app.Options{ConfigPath: f.configPath, APIURL: f.apiURL, PollEvery: f.pollEvery}
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errNotConnected) {
			fmt.Fprintf(os.Stderr, "oxdash: %v\n", err)
		}
		return 1
	}
	return 0
}

// NewRootCmd builds the oxdash command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "oxdash",
		Short: "Terminal dashboard for the OxPrint 3D printer backend",
		Long: `Terminal dashboard for the OxPrint 3D printer backend.

Polls the backend health endpoint and shows whether it is reachable.
Press r to refresh immediately, T to switch theme and q to quit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "override config path (optional)")
	pf.StringVar(&flags.apiURL, "api-url", "", "backend base URL (overrides config and OXPRINT_API_URL)")
	root.Flags().DurationVar(&flags.pollEvery, "poll", 0, "refresh interval (optional, defaults to 30s)")

	root.AddCommand(newCheckCmd(flags), newTokenCmd(flags))
	return root
}

func newCheckCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one health check and print the connection state",
		Example: `  # Exit status is zero only when the backend is healthy
  oxdash check && echo ok

  # Machine-readable output
  oxdash check --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := app.Setup(flags.options())
			if err != nil {
				return err
			}
			report, err := app.Check(cmd.Context(), deps.Client)
			if err != nil {
				return err
			}
			if err := app.WriteReport(cmd.OutOrStdout(), report, asJSON); err != nil {
				return err
			}
			if report.State != state.Connected {
				return errNotConnected
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newTokenCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored API token",
	}

	setCmd := &cobra.Command{
		Use:   "set <token>",
		Short: "Store the bearer token sent with every request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return fmt.Errorf("token is empty")
			}
			deps, err := app.Setup(flags.options())
			if err != nil {
				return err
			}
			if err := deps.Storage.Set(storage.TokenKey, token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token saved to %s\n", deps.Storage.Path())
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := app.Setup(flags.options())
			if err != nil {
				return err
			}
			if err := deps.Storage.Delete(storage.TokenKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "token cleared")
			return nil
		},
	}

	cmd.AddCommand(setCmd, clearCmd)
	return cmd
}
