// Package clinical holds the relationship graph between concepts and the
// recommendation engine that ranks related concepts for a diagnosis under a
// patient context.
package clinical

import (
	"fmt"
	"strings"

	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// RelationType classifies an edge between two concepts.
type RelationType string

// Relation types.
const (
	RelationHasDiagnosticTest   RelationType = "HAS_DIAGNOSTIC_TEST"
	RelationHasTreatment        RelationType = "HAS_TREATMENT"
	RelationHasSymptom          RelationType = "HAS_SYMPTOM"
	RelationContraindicatedWith RelationType = "CONTRAINDICATED_WITH"
)

// ParseRelationType converts a raw string into a RelationType.
func ParseRelationType(raw string) (RelationType, error) {
	switch RelationType(strings.ToUpper(strings.TrimSpace(raw))) {
	case RelationHasDiagnosticTest:
		return RelationHasDiagnosticTest, nil
	case RelationHasTreatment:
		return RelationHasTreatment, nil
	case RelationHasSymptom:
		return RelationHasSymptom, nil
	case RelationContraindicatedWith:
		return RelationContraindicatedWith, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeRelationInvalid, "unknown relation type").
			WithDetail(raw)
	}
}

// Valid reports whether t is one of the defined relation types.
func (t RelationType) Valid() bool {
	switch t {
	case RelationHasDiagnosticTest, RelationHasTreatment, RelationHasSymptom, RelationContraindicatedWith:
		return true
	}
	return false
}

// Relationship is a directed, weighted edge from a source concept (typically
// a diagnosis) to a target concept.  ContextBoosts maps a context key, either
// "{location}_{season}" or a bare season, to an additive priority boost.
type Relationship struct {
	SourceID      int64              `json:"source_id"`
	TargetID      int64              `json:"target_id"`
	Type          RelationType       `json:"type"`
	BasePriority  float64            `json:"base_priority"`
	ContextBoosts map[string]float64 `json:"context_boosts,omitempty"`
}

// Validate checks the structural invariants of a relationship.  Base priority
// must sit in [0,1]; boosted priorities may exceed 1 before the engine's cap.
func (r *Relationship) Validate() error {
	if r.SourceID <= 0 || r.TargetID <= 0 {
		return apperrors.New(apperrors.ErrCodeRelationInvalid, "relationship source and target ids must be positive")
	}
	if !r.Type.Valid() {
		return apperrors.New(apperrors.ErrCodeRelationInvalid, "relationship type is invalid").
			WithDetail(fmt.Sprintf("%d->%d type=%s", r.SourceID, r.TargetID, r.Type))
	}
	if r.BasePriority < 0 || r.BasePriority > 1 {
		return apperrors.New(apperrors.ErrCodeRelationInvalid, "relationship base priority is out of range [0, 1]").
			WithDetail(fmt.Sprintf("%d->%d priority=%.3f", r.SourceID, r.TargetID, r.BasePriority))
	}
	return nil
}

// boost resolves the single applicable boost for ctx: an exact
// "{location}_{season}" match wins, a bare-season match is the fallback, and
// no match applies nothing.
func (r Relationship) boost(ctx Context) float64 {
	if len(r.ContextBoosts) == 0 {
		return 0
	}
	if b, ok := r.ContextBoosts[ctx.Key()]; ok {
		return b
	}
	if ctx.Season != "" {
		if b, ok := r.ContextBoosts[ctx.Season]; ok {
			return b
		}
	}
	return 0
}
