// Package snapshot builds and holds the immutable in-memory view the service
// answers requests from: the concept catalog, its similarity index and the
// relationship graph.  A snapshot is built once from a Source and swapped
// atomically, so readers always observe a consistent catalog/index/graph
// triple.
package snapshot

import (
	"time"

	"github.com/lexicon-health/lexicon/internal/domain/clinical"
	"github.com/lexicon-health/lexicon/internal/domain/concept"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Data is the raw snapshot payload as produced by a Source.
type Data struct {
	Concepts      []concept.Concept       `json:"concepts"`
	Relationships []clinical.Relationship `json:"relationships"`
}

// Snapshot is a fully built, immutable view over one Data payload.
type Snapshot struct {
	Catalog  *concept.Catalog
	Index    *concept.Index
	Graph    *clinical.Graph
	LoadedAt time.Time
}

// Build validates data and constructs the catalog, index and graph.  Any
// structural problem in the payload fails the whole build; a snapshot is
// either complete or absent.
func Build(data *Data) (*Snapshot, error) {
	if data == nil {
		return nil, apperrors.New(apperrors.ErrCodeSnapshotInvalid, "snapshot data must not be nil")
	}

	catalog, err := concept.NewCatalog(data.Concepts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotInvalid, "snapshot concepts are invalid")
	}

	index, err := concept.BuildIndex(catalog)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotInvalid, "snapshot index build failed")
	}

	graph, err := clinical.NewGraph(data.Relationships, catalog)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotInvalid, "snapshot relationships are invalid")
	}

	return &Snapshot{
		Catalog:  catalog,
		Index:    index,
		Graph:    graph,
		LoadedAt: time.Now(),
	}, nil
}
