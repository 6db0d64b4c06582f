package clinical

import (
	"strconv"

	"github.com/lexicon-health/lexicon/internal/domain/concept"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Graph is an immutable adjacency index over relationships, keyed by source
// concept id.  Declaration order per source is preserved: the engine uses it
// as the ranking tie-break.
type Graph struct {
	bySource map[int64][]Relationship
	size     int
}

// NewGraph validates the relationships against the catalog and builds the
// adjacency index.  Every source and target id must exist in the catalog.
func NewGraph(relationships []Relationship, catalog *concept.Catalog) (*Graph, error) {
	bySource := make(map[int64][]Relationship)
	for i := range relationships {
		r := relationships[i]
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, err := catalog.Get(r.SourceID); err != nil {
			return nil, apperrors.New(apperrors.ErrCodeRelationInvalid, "relationship source concept is not in the catalog").
				WithDetail(strconv.FormatInt(r.SourceID, 10))
		}
		if _, err := catalog.Get(r.TargetID); err != nil {
			return nil, apperrors.New(apperrors.ErrCodeRelationInvalid, "relationship target concept is not in the catalog").
				WithDetail(strconv.FormatInt(r.TargetID, 10))
		}
		bySource[r.SourceID] = append(bySource[r.SourceID], r)
	}
	return &Graph{bySource: bySource, size: len(relationships)}, nil
}

// Relations returns the relationships originating at sourceID in declaration
// order.  An unknown source yields an empty slice, not an error.
func (g *Graph) Relations(sourceID int64) []Relationship {
	return g.bySource[sourceID]
}

// Len returns the total number of relationships in the graph.
func (g *Graph) Len() int {
	return g.size
}
