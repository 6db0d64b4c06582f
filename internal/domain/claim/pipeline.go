package claim

import (
	"context"
	"time"

	"github.com/lexicon-health/lexicon/internal/domain/clinical"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// CodeSystemICD10 is the code system claims carry their diagnosis codes in.
const CodeSystemICD10 = "icd10"

// neutralValidationConfidence stands in for the validation component of the
// overall confidence when no validation ran.
const neutralValidationConfidence = 0.5

// Thresholds are the decision cut-offs for a resolved claim.
type Thresholds struct {
	AutoApprove float64
	Review      float64
}

// Resolver runs the claim resolution pipeline.  Each step is independently
// failable: a mapper or validator outage degrades the result instead of
// aborting it, and only a malformed claim is a hard error.
type Resolver struct {
	engine     *clinical.Engine
	mapper     CodeMapper
	validator  TreatmentValidator
	wetMonths  []int
	thresholds Thresholds
	log        logging.Logger
	now        func() time.Time
}

// NewResolver wires the pipeline.  validator may be nil, in which case every
// claim ends in MANUAL_REVIEW per the decision policy.
func NewResolver(
	engine *clinical.Engine,
	mapper CodeMapper,
	validator TreatmentValidator,
	wetMonths []int,
	thresholds Thresholds,
	log logging.Logger,
) *Resolver {
	return &Resolver{
		engine:     engine,
		mapper:     mapper,
		validator:  validator,
		wetMonths:  wetMonths,
		thresholds: thresholds,
		log:        log,
		now:        time.Now,
	}
}

// Resolve maps the claim's diagnosis codes, gathers recommendations for the
// primary diagnosis, validates the treatment plan when procedures are listed
// and derives the decision and confidence score.  It always produces a
// Resolution for a well-formed claim.
func (r *Resolver) Resolve(ctx context.Context, in *Input) (*Resolution, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := r.now()
	res := &Resolution{
		ClaimID:        in.ClaimID,
		MappedConcepts: r.mapCodes(ctx, in),
		Timestamp:      now,
	}

	if primary := res.PrimaryDiagnosis(); primary != nil {
		clinCtx := clinical.Context{
			Location: in.PatientLocation,
			Season:   clinical.SeasonForMonth(r.serviceMonth(in, now), r.wetMonths),
		}
		res.Recommendations = r.engine.Recommend(primary.ID, clinCtx)
		res.Validation = r.validateTreatment(ctx, in, primary.ID)
	}

	res.Decision = r.decide(res.Validation)
	res.ConfidenceScore = r.confidence(res.MappedConcepts, res.Validation)

	r.log.Info("claim resolved",
		logging.String("claim_id", in.ClaimID),
		logging.Int("mapped", len(res.MappedConcepts)),
		logging.Int("recommendations", len(res.Recommendations)),
		logging.String("decision", string(res.Decision)),
		logging.Float64("confidence", res.ConfidenceScore),
	)
	return res, nil
}

// mapCodes resolves every diagnosis code it can.  Unknown codes and mapper
// outages shrink the mapped set; they never fail the claim.
func (r *Resolver) mapCodes(ctx context.Context, in *Input) []MappedConcept {
	mapped := make([]MappedConcept, 0, len(in.DiagnosisCodes))
	for _, code := range in.DiagnosisCodes {
		m, err := r.mapper.MapCode(ctx, CodeSystemICD10, code)
		if err != nil {
			if apperrors.IsNotFound(err) {
				r.log.Debug("diagnosis code has no concept mapping",
					logging.String("claim_id", in.ClaimID), logging.String("code", code))
			} else {
				r.log.Warn("code mapping lookup failed, treating code as unmapped",
					logging.String("claim_id", in.ClaimID), logging.String("code", code), logging.Err(err))
			}
			continue
		}
		mapped = append(mapped, MappedConcept{
			SourceCode: code,
			Concept:    m.Concept,
			Confidence: m.Confidence,
		})
	}
	return mapped
}

// validateTreatment runs the external validator when the claim lists
// procedures.  A nil result is a valid terminal state.
func (r *Resolver) validateTreatment(ctx context.Context, in *Input, diagnosisID int64) *ValidationResult {
	if len(in.ProcedureCodes) == 0 || r.validator == nil {
		return nil
	}

	v, err := r.validator.ValidateTreatment(ctx, TreatmentPlan{
		DiagnosisID:     diagnosisID,
		ProcedureCodes:  in.ProcedureCodes,
		MedicationCodes: in.MedicationCodes,
	})
	if err != nil {
		r.log.Warn("treatment validation failed, resolving without validation",
			logging.String("claim_id", in.ClaimID), logging.Err(err))
		return nil
	}
	return v
}

// decide applies the decision policy in order: no validation means manual
// review, a valid high-confidence validation auto-approves, a mid-confidence
// one requests review, anything else falls back to manual review.
func (r *Resolver) decide(v *ValidationResult) Decision {
	switch {
	case v == nil:
		return DecisionManualReview
	case v.Valid && v.Confidence > r.thresholds.AutoApprove:
		return DecisionAutoApprove
	case v.Confidence > r.thresholds.Review:
		return DecisionReviewRequired
	default:
		return DecisionManualReview
	}
}

// confidence is 0 for a claim with no mapped concepts; otherwise the mean of
// the average mapping confidence and the validation confidence (neutral 0.5
// when validation did not run).
func (r *Resolver) confidence(mapped []MappedConcept, v *ValidationResult) float64 {
	if len(mapped) == 0 {
		return 0
	}

	var sum float64
	for _, m := range mapped {
		sum += m.Confidence
	}
	mappingMean := sum / float64(len(mapped))

	validation := neutralValidationConfidence
	if v != nil {
		validation = v.Confidence
	}
	return (mappingMean + validation) / 2
}

func (r *Resolver) serviceMonth(in *Input, now time.Time) int {
	if !in.ServiceDate.IsZero() {
		return int(in.ServiceDate.Month())
	}
	return int(now.Month())
}
