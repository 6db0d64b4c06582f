package concept

import (
	"strconv"

	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Catalog is an immutable, insertion-ordered collection of concepts.  Order
// matters: the similarity index uses catalog position as the ranking
// tie-break, so two builds from the same concept list always rank identically.
type Catalog struct {
	concepts []Concept
	byID     map[int64]int
}

// NewCatalog builds a catalog from the given concepts.  Every concept must be
// structurally valid and IDs must be unique; the input slice is copied so the
// caller may reuse it.
func NewCatalog(concepts []Concept) (*Catalog, error) {
	if len(concepts) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeCatalogEmpty, "catalog must contain at least one concept")
	}

	byID := make(map[int64]int, len(concepts))
	for i := range concepts {
		if err := concepts[i].Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[concepts[i].ID]; dup {
			return nil, apperrors.New(apperrors.ErrCodeConflict, "duplicate concept id").
				WithDetail(strconv.FormatInt(concepts[i].ID, 10))
		}
		byID[concepts[i].ID] = i
	}

	return &Catalog{
		concepts: append([]Concept(nil), concepts...),
		byID:     byID,
	}, nil
}

// Get returns the concept with the given id.
func (c *Catalog) Get(id int64) (*Concept, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeConceptNotFound, "concept not found").
			WithDetail(strconv.FormatInt(id, 10))
	}
	return &c.concepts[i], nil
}

// Len returns the number of concepts in the catalog.
func (c *Catalog) Len() int {
	return len(c.concepts)
}

// Concepts returns the concepts in catalog order.  The returned slice is a
// copy; mutating it does not affect the catalog.
func (c *Catalog) Concepts() []Concept {
	return append([]Concept(nil), c.concepts...)
}

// at returns the concept at position i without copying.  Callers must not
// mutate the result.
func (c *Catalog) at(i int) *Concept {
	return &c.concepts[i]
}
