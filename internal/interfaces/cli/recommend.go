package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lexicon-health/lexicon/internal/application/cds"
	"github.com/lexicon-health/lexicon/internal/domain/clinical"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/metrics"
)

func newRecommendCmd(opts *rootOptions) *cobra.Command {
	var location, season string

	cmd := &cobra.Command{
		Use:   "recommend <diagnosis-id>",
		Short: "List ranked clinical recommendations for a diagnosis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			diagnosisID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("diagnosis id must be an integer, got %q", args[0])
			}

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

			svc := cds.NewService(store, cfg.Engine.RelationConfidence, metrics.New(), log)

			set, err := svc.Recommend(cmd.Context(), diagnosisID, clinical.Context{
				Location: location,
				Season:   strings.ToUpper(season),
			})
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return printJSON(cmd, set)
			}
			return printRecommendations(cmd, set)
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "patient location used for contextual boosts (e.g. Manado)")
	cmd.Flags().StringVar(&season, "season", "", "season used for contextual boosts (WET or DRY)")
	return cmd
}

func printRecommendations(cmd *cobra.Command, set *cds.RecommendationSet) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recommendations for %s (%d)\n\n", set.Diagnosis.DisplayName(), set.Diagnosis.ID)

	if len(set.Recommendations) == 0 {
		fmt.Fprintln(out, "No related concepts found.")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Rank", "Priority", "Concept", "Relation", "Reason"})
	for i, r := range set.Recommendations {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.2f", r.PriorityScore),
			r.Concept.DisplayName(),
			string(r.RelationType),
			truncateString(r.Reason, 60),
		})
	}
	table.Render()

	fmt.Fprintf(out, "\nTotal recommendations: %d\n", len(set.Recommendations))
	return nil
}
