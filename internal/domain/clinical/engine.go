package clinical

import (
	"fmt"
	"sort"

	"github.com/lexicon-health/lexicon/internal/domain/concept"
)

// Recommendation is a ranked related concept for a diagnosis: the target
// concept, its context-adjusted priority, the engine's confidence in the
// relationship itself, and a human-readable reason.
type Recommendation struct {
	Concept       *concept.Concept `json:"concept"`
	RelationType  RelationType     `json:"relation_type"`
	PriorityScore float64          `json:"priority_score"`
	Confidence    float64          `json:"confidence"`
	Reason        string           `json:"reason"`
}

// reasonRule appends a contextual qualifier to a reason.  Rules are evaluated
// in order and the first match wins, so an exact location+season rule must
// precede its season-only fallback.
type reasonRule struct {
	matches func(Context) bool
	suffix  func(Context) string
}

var defaultReasonRules = []reasonRule{
	{
		matches: func(c Context) bool { return c.Location == "Manado" && c.Season == SeasonWet },
		suffix:  func(c Context) string { return fmt.Sprintf(" - tinggi di %s saat musim hujan", c.Location) },
	},
	{
		matches: func(c Context) bool { return c.Season == SeasonWet },
		suffix:  func(Context) string { return " - penting saat musim hujan" },
	},
}

var reasonTemplates = map[RelationType]string{
	RelationHasDiagnosticTest: "%s penting untuk monitoring kondisi pasien",
	RelationHasTreatment:      "%s efektif untuk penanganan simptomatik",
}

const defaultReasonTemplate = "%s direkomendasikan"

// Engine ranks related concepts for a diagnosis.  It is read-only over the
// catalog and graph and safe for concurrent use.
type Engine struct {
	catalog    *concept.Catalog
	graph      *Graph
	confidence float64
	rules      []reasonRule
}

// NewEngine builds a recommendation engine.  confidence is attached verbatim
// to every recommendation; it is a stand-in until a learned model exists.
func NewEngine(catalog *concept.Catalog, graph *Graph, confidence float64) *Engine {
	return &Engine{
		catalog:    catalog,
		graph:      graph,
		confidence: confidence,
		rules:      defaultReasonRules,
	}
}

// Recommend returns the recommendations for diagnosisID under ctx, sorted by
// descending priority with declaration order breaking ties.  A diagnosis with
// no relationships yields an empty slice, not an error.
func (e *Engine) Recommend(diagnosisID int64, ctx Context) []Recommendation {
	relations := e.graph.Relations(diagnosisID)
	if len(relations) == 0 {
		return nil
	}

	recs := make([]Recommendation, 0, len(relations))
	for _, rel := range relations {
		target, err := e.catalog.Get(rel.TargetID)
		if err != nil {
			// NewGraph guarantees targets resolve; a miss here means the
			// catalog and graph are from different snapshots, so skip.
			continue
		}

		priority := rel.BasePriority + rel.boost(ctx)
		if priority > 1.0 {
			priority = 1.0
		}
		if priority < 0 {
			priority = 0
		}

		recs = append(recs, Recommendation{
			Concept:       target,
			RelationType:  rel.Type,
			PriorityScore: priority,
			Confidence:    e.confidence,
			Reason:        e.reason(target, rel.Type, ctx),
		})
	}

	sort.SliceStable(recs, func(a, b int) bool {
		return recs[a].PriorityScore > recs[b].PriorityScore
	})
	return recs
}

// reason renders the templated reasoning text for a recommendation.
func (e *Engine) reason(target *concept.Concept, relType RelationType, ctx Context) string {
	tmpl, ok := reasonTemplates[relType]
	if !ok {
		tmpl = defaultReasonTemplate
	}
	text := fmt.Sprintf(tmpl, target.DisplayName())

	for _, rule := range e.rules {
		if rule.matches(ctx) {
			text += rule.suffix(ctx)
			break
		}
	}
	return text
}
