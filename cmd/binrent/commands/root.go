// Package commands implements the binrent command line.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"binrent/internal/buildinfo"
	"binrent/internal/config"
	"binrent/internal/logging"
)

// app carries what PersistentPreRunE loaded to the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
}

// NewRootCmd builds a fresh command tree. Tests build their own so flag
// state never leaks between runs.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "binrent",
		Short: "Budgeted bin rental solver",
		Long: `binrent picks which bins to rent and which items to pack so that rental
cost minus optional profit is minimal under a rental budget.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			// stdout belongs to the report
			a.log = logging.NewWriter(cmd.ErrOrStderr(), "binrent", cfg.Log)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", os.Getenv("BINRENT_CONFIG"), "path to a YAML config file")

	root.AddCommand(
		newSolveCmd(a),
		newGenerateCmd(a),
		newBenchCmd(a),
		newTokenCmd(a),
		newVersionCmd(),
	)
	return root
}

func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	info := buildinfo.Info()
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("binrent"), info["version"])
	for _, k := range []string{"commit", "builtAt", "goVersion"} {
		if v := info[k]; v != "" {
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(k+":"), v)
		}
	}
}
