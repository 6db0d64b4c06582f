package claim

import (
	"context"

	"github.com/lexicon-health/lexicon/internal/domain/concept"
)

// Mapping is a successful external-code lookup.
type Mapping struct {
	Concept    *concept.Concept
	Confidence float64
}

// CodeMapper resolves an external code (e.g. ICD-10 "A90") to a catalog
// concept.  Implementations return a MappingNotFound error for unknown codes;
// the pipeline treats every mapper failure as "unmapped" and continues.
type CodeMapper interface {
	MapCode(ctx context.Context, system, code string) (*Mapping, error)
}

// TreatmentPlan is the candidate treatment set validated against a diagnosis.
type TreatmentPlan struct {
	DiagnosisID     int64
	ProcedureCodes  []string
	MedicationCodes []string
}

// TreatmentValidator judges whether a treatment plan is appropriate for its
// diagnosis.  Failures are treated as "no validation", never as a pipeline
// error.
type TreatmentValidator interface {
	ValidateTreatment(ctx context.Context, plan TreatmentPlan) (*ValidationResult, error)
}
