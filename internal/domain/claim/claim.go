// Package claim implements claim resolution: mapping external diagnosis
// codes onto catalog concepts, retrieving recommendations for the primary
// diagnosis, validating the proposed treatment and aggregating everything
// into a single decision with a confidence score.
package claim

import (
	"time"

	"github.com/lexicon-health/lexicon/internal/domain/clinical"
	"github.com/lexicon-health/lexicon/internal/domain/concept"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Decision is the processing outcome for a resolved claim.
type Decision string

// Decisions, from least to most human involvement.
const (
	DecisionAutoApprove    Decision = "AUTO_APPROVE"
	DecisionReviewRequired Decision = "REVIEW_REQUIRED"
	DecisionManualReview   Decision = "MANUAL_REVIEW"
)

// Input is a claim as submitted for resolution.  Diagnosis codes are ICD-10;
// procedure and medication codes follow whatever systems the external
// validator understands and are passed through untouched.
type Input struct {
	ClaimID          string    `json:"claim_id"`
	PatientReference string    `json:"patient_reference,omitempty"`
	PatientLocation  string    `json:"patient_location,omitempty"`
	DiagnosisCodes   []string  `json:"diagnosis_codes"`
	ProcedureCodes   []string  `json:"procedure_codes,omitempty"`
	MedicationCodes  []string  `json:"medication_codes,omitempty"`
	ServiceDate      time.Time `json:"service_date,omitempty"` // zero means "now"
}

// Validate rejects structurally unusable claims.  This is the only hard
// failure in the pipeline; everything downstream degrades instead of failing.
func (in *Input) Validate() error {
	if in.ClaimID == "" {
		return apperrors.New(apperrors.ErrCodeClaimInvalid, "claim id must not be empty")
	}
	if len(in.DiagnosisCodes) == 0 {
		return apperrors.New(apperrors.ErrCodeClaimEmptyDiagnoses, "claim must carry at least one diagnosis code").
			WithDetail(in.ClaimID)
	}
	for _, code := range in.DiagnosisCodes {
		if code == "" {
			return apperrors.New(apperrors.ErrCodeClaimInvalid, "claim diagnosis codes must not be empty").
				WithDetail(in.ClaimID)
		}
	}
	return nil
}

// MappedConcept ties a claim's source code to the catalog concept it resolved
// to and the confidence of that mapping.
type MappedConcept struct {
	SourceCode string           `json:"source_code"`
	Concept    *concept.Concept `json:"concept"`
	Confidence float64          `json:"confidence"`
}

// ValidationResult is the external validator's verdict on a treatment plan.
type ValidationResult struct {
	Valid      bool    `json:"valid"`
	Confidence float64 `json:"confidence"`
}

// Resolution is the aggregate outcome for one claim.  It is built once and
// never mutated; Validation is nil when the claim listed no procedures or no
// primary diagnosis could be established, which is a valid terminal state.
type Resolution struct {
	ClaimID         string                    `json:"claim_id"`
	MappedConcepts  []MappedConcept           `json:"mapped_concepts"`
	Recommendations []clinical.Recommendation `json:"recommendations"`
	Validation      *ValidationResult         `json:"validation,omitempty"`
	Decision        Decision                  `json:"decision"`
	ConfidenceScore float64                   `json:"confidence_score"`
	Timestamp       time.Time                 `json:"timestamp"`
}

// PrimaryDiagnosis returns the concept treated as the claim's primary
// diagnosis: the first successfully mapped code in input order.  This policy
// deliberately ignores mapping confidence.
func (r *Resolution) PrimaryDiagnosis() *concept.Concept {
	if len(r.MappedConcepts) == 0 {
		return nil
	}
	return r.MappedConcepts[0].Concept
}
