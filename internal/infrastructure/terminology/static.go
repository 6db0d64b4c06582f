// Package terminology provides the external-code capabilities the claim
// pipeline depends on: code-to-concept mapping and treatment validation.
// Two mapper implementations exist: a static table derived from the active
// snapshot's code annotations (demo mode) and an HTTP client for a real
// terminology service.
package terminology

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexicon-health/lexicon/internal/domain/claim"
	"github.com/lexicon-health/lexicon/internal/snapshot"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// DefaultStaticConfidence is the mapping confidence reported by the static
// table; code annotations in the catalog carry no per-code confidence.
const DefaultStaticConfidence = 0.95

// StaticMapper resolves external codes against the code annotations of the
// concepts in the active snapshot.  It follows snapshot reloads automatically
// because it reads the store on every lookup.
type StaticMapper struct {
	store      *snapshot.Store
	confidence float64
}

// NewStaticMapper creates a snapshot-backed mapper.  A confidence of 0 falls
// back to DefaultStaticConfidence.
func NewStaticMapper(store *snapshot.Store, confidence float64) *StaticMapper {
	if confidence <= 0 {
		confidence = DefaultStaticConfidence
	}
	return &StaticMapper{store: store, confidence: confidence}
}

// MapCode implements claim.CodeMapper against the catalog's code annotations.
func (m *StaticMapper) MapCode(_ context.Context, system, code string) (*claim.Mapping, error) {
	snap := m.store.Current()
	if snap == nil {
		return nil, apperrors.New(apperrors.ErrCodeMapperUnavailable, "no snapshot loaded")
	}

	for _, c := range snap.Catalog.Concepts() {
		if strings.EqualFold(c.Code(system), code) && code != "" {
			resolved, err := snap.Catalog.Get(c.ID)
			if err != nil {
				return nil, err
			}
			return &claim.Mapping{Concept: resolved, Confidence: m.confidence}, nil
		}
	}

	return nil, apperrors.New(apperrors.ErrCodeMappingNotFound, "no concept mapped to code").
		WithDetail(fmt.Sprintf("%s/%s", system, code))
}
