package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	appclaims "github.com/lexicon-health/lexicon/internal/application/claims"
	"github.com/lexicon-health/lexicon/internal/domain/claim"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/metrics"
	infraterm "github.com/lexicon-health/lexicon/internal/infrastructure/terminology"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var (
		claimID         string
		patientRef      string
		location        string
		serviceDate     string
		diagnosisCodes  []string
		procedureCodes  []string
		medicationCodes []string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Run a claim through the resolution pipeline",
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

			in := &claim.Input{
				ClaimID:          claimID,
				PatientReference: patientRef,
				PatientLocation:  location,
				DiagnosisCodes:   diagnosisCodes,
				ProcedureCodes:   procedureCodes,
				MedicationCodes:  medicationCodes,
			}
			if serviceDate != "" {
				d, err := time.Parse("2006-01-02", serviceDate)
				if err != nil {
					return fmt.Errorf("invalid --service-date %q: expected YYYY-MM-DD", serviceDate)
				}
				in.ServiceDate = d
			}

			mapper := infraterm.NewStaticMapper(store, 0)
			svc := appclaims.NewService(store, mapper, nil, appclaims.Config{
				RelationConfidence: cfg.Engine.RelationConfidence,
				WetMonths:          cfg.Engine.WetMonths,
				Thresholds: claim.Thresholds{
					AutoApprove: cfg.Engine.AutoApproveThreshold,
					Review:      cfg.Engine.ReviewThreshold,
				},
			}, nil, metrics.New(), log)

			resolution, err := svc.Resolve(cmd.Context(), in)
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return printJSON(cmd, resolution)
			}
			return printResolution(cmd, resolution)
		},
	}

	f := cmd.Flags()
	f.StringVar(&claimID, "claim-id", "", "claim identifier (required)")
	f.StringVar(&patientRef, "patient", "", "patient reference")
	f.StringVar(&location, "location", "", "patient location used for contextual boosts")
	f.StringVar(&serviceDate, "service-date", "", "service date (YYYY-MM-DD, default: today)")
	f.StringSliceVar(&diagnosisCodes, "diagnosis-codes", nil, "ICD-10 diagnosis codes (required)")
	f.StringSliceVar(&procedureCodes, "procedure-codes", nil, "procedure codes")
	f.StringSliceVar(&medicationCodes, "medication-codes", nil, "medication codes")
	_ = cmd.MarkFlagRequired("claim-id")
	_ = cmd.MarkFlagRequired("diagnosis-codes")

	return cmd
}

func printResolution(cmd *cobra.Command, r *claim.Resolution) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Claim %s\n", r.ClaimID)
	fmt.Fprintf(out, "Decision:   %s\n", colorizeDecision(r.Decision))
	fmt.Fprintf(out, "Confidence: %.3f\n", r.ConfidenceScore)
	if r.Validation != nil {
		fmt.Fprintf(out, "Validation: valid=%t confidence=%.2f\n", r.Validation.Valid, r.Validation.Confidence)
	} else {
		fmt.Fprintln(out, "Validation: not performed")
	}

	if len(r.MappedConcepts) > 0 {
		fmt.Fprintln(out, "\nMapped concepts:")
		table := tablewriter.NewWriter(out)
		table.Header([]string{"Code", "Concept", "Confidence"})
		for _, m := range r.MappedConcepts {
			table.Append([]string{m.SourceCode, m.Concept.DisplayName(), fmt.Sprintf("%.2f", m.Confidence)})
		}
		table.Render()
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(out, "\nRecommendations:")
		table := tablewriter.NewWriter(out)
		table.Header([]string{"Priority", "Concept", "Relation"})
		for _, rec := range r.Recommendations {
			table.Append([]string{
				fmt.Sprintf("%.2f", rec.PriorityScore),
				rec.Concept.DisplayName(),
				string(rec.RelationType),
			})
		}
		table.Render()
	}

	return nil
}

func colorizeDecision(d claim.Decision) string {
	switch d {
	case claim.DecisionAutoApprove:
		return color.GreenString(string(d))
	case claim.DecisionReviewRequired:
		return color.YellowString(string(d))
	case claim.DecisionManualReview:
		return color.RedString(string(d))
	default:
		return string(d)
	}
}
