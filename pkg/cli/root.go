// Package cli implements the ads-harvest command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"ads-harvest/pkg/config"
	"ads-harvest/pkg/logger"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// app carries the state shared by all subcommands once the root pre-run has
// loaded configuration.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log logger.Logger
}

// NewRootCmd builds the ads-harvest command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ads-harvest",
		Short: "Harvest document listings and metadata from the Amtsdruckschriften archive",
		Long: `ads-harvest queries the Swiss Federal Archives' Amtsdruckschriften search
for a date range, splits the range into calendar months, parses the result
lists into document records and optionally reads the bibliographic trailer
printed on the last page of each PDF.

Example:
  ads-harvest search --fromdate 01.01.1990 --todate 31.03.1990 --searchstring Neutralität
  ads-harvest search --fromdate 01.01.1990 --todate 31.01.1990 --download --sink mongo`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (env ADS_* overrides)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	root.AddCommand(searchCmd(a))
	root.AddCommand(partitionCmd(a))
	root.AddCommand(urlsCmd(a))
	root.AddCommand(replicateCmd(a))

	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	opts := cfg.Logger()
	opts.Writer = cmd.ErrOrStderr()
	opts.Component = cmd.Name()

	a.cfg = cfg
	a.log = logger.New(opts)
	return nil
}

// Execute runs the root command until it finishes or the process is
// interrupted, and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}
