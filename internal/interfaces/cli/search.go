package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lexicon-health/lexicon/internal/application/terminology"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/metrics"
	infraterm "github.com/lexicon-health/lexicon/internal/infrastructure/terminology"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the concept catalog by name, localized name or synonym",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log, err := opts.logger()
			if err != nil {
				return err
			}
			store, err := opts.openStore(cmd)
			if err != nil {
				return err
			}

			svc := terminology.NewService(store, infraterm.NewStaticMapper(store, 0),
				cfg.Engine.MinSimilarity, cfg.Engine.SearchLimit, metrics.New(), log)

			results, err := svc.Search(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return printJSON(cmd, results)
			}
			return printSearchResults(cmd, args[0], results)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	return cmd
}

func printSearchResults(cmd *cobra.Command, query string, results []terminology.ScoredConcept) error {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No concepts matched %q.\n", query)
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Rank", "Score", "ID", "Name", "Localized Name", "Type"})
	for i, r := range results {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.3f", r.Score),
			strconv.FormatInt(r.Concept.ID, 10),
			r.Concept.Name,
			r.Concept.LocalizedName,
			string(r.Concept.Type),
		})
	}
	table.Render()

	fmt.Fprintf(out, "\nTotal results: %d\n", len(results))
	return nil
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return strings.TrimSpace(s[:max-3]) + "..."
}
