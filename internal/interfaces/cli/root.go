// Package cli implements the lexicon command line interface.  The serve
// command runs the full HTTP service; search, recommend and resolve run the
// engine in-process against a snapshot, which makes them useful for inspecting
// catalog data without a running server.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexicon-health/lexicon/internal/config"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	"github.com/lexicon-health/lexicon/internal/snapshot"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

type rootOptions struct {
	configPath   string
	snapshotPath string
	output       string
	verbose      bool
}

// NewRootCommand creates the root command with all global flags and
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "lexicon",
		Short:         "Lexicon — medical terminology search, clinical recommendations and claim resolution",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file path (default: environment only)")
	pf.StringVar(&opts.snapshotPath, "snapshot", "", "snapshot JSON file (default: built-in sample data)")
	pf.StringVarP(&opts.output, "output", "o", "table", "output format (table, json)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newSearchCmd(opts),
		newRecommendCmd(opts),
		newResolveCmd(opts),
		newServeCmd(opts),
	)

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
		return 1
	}
	return 0
}

// loadConfig resolves the service configuration: an explicit file when
// --config is set, otherwise LEXICON_* environment variables over defaults.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.Load(o.configPath)
	}
	return config.LoadFromEnv()
}

// logger builds a console logger for CLI usage.  Quiet by default so that
// command output stays parseable; --verbose turns on debug entries.
func (o *rootOptions) logger() (logging.Logger, error) {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return logging.New(logging.Config{
		Level:       level,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
}

// openStore loads the snapshot the local commands operate on: the --snapshot
// file when given, otherwise the built-in sample data.
func (o *rootOptions) openStore(cmd *cobra.Command) (*snapshot.Store, error) {
	var source snapshot.Source
	if o.snapshotPath != "" {
		source = snapshot.NewFileSource(o.snapshotPath)
	} else {
		source = snapshot.NewSampleSource()
	}

	store := snapshot.NewStore(nil)
	if err := store.Reload(cmd.Context(), source); err != nil {
		return nil, err
	}
	return store, nil
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
