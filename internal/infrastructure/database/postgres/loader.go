package postgres

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexicon-health/lexicon/internal/domain/clinical"
	"github.com/lexicon-health/lexicon/internal/domain/concept"
	"github.com/lexicon-health/lexicon/internal/snapshot"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

const (
	selectConcepts = `
		SELECT id, name, localized_name, concept_type, synonyms, codes
		FROM concepts
		ORDER BY position`

	selectRelationships = `
		SELECT source_id, target_id, relation_type, base_priority, context_boosts
		FROM concept_relationships
		ORDER BY position`
)

// Source loads snapshot data from PostgreSQL.  Row order follows the
// position columns so a rebuilt snapshot ranks identically to the previous
// one for unchanged data.
type Source struct {
	pool *pgxpool.Pool
}

// NewSource creates a PostgreSQL-backed snapshot source.
func NewSource(pool *pgxpool.Pool) *Source {
	return &Source{pool: pool}
}

// Load implements snapshot.Source.
func (s *Source) Load(ctx context.Context) (*snapshot.Data, error) {
	concepts, err := s.loadConcepts(ctx)
	if err != nil {
		return nil, err
	}
	relationships, err := s.loadRelationships(ctx)
	if err != nil {
		return nil, err
	}
	return &snapshot.Data{Concepts: concepts, Relationships: relationships}, nil
}

func (s *Source) loadConcepts(ctx context.Context) ([]concept.Concept, error) {
	rows, err := s.pool.Query(ctx, selectConcepts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "concept query failed")
	}
	defer rows.Close()

	var out []concept.Concept
	for rows.Next() {
		var (
			c        concept.Concept
			rawType  string
			rawCodes []byte
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.LocalizedName, &rawType, &c.Synonyms, &rawCodes); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "concept row scan failed")
		}
		if c.Type, err = concept.ParseType(rawType); err != nil {
			return nil, err
		}
		if len(rawCodes) > 0 {
			if err := json.Unmarshal(rawCodes, &c.Codes); err != nil {
				return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "concept codes are not valid JSON").
					WithDetail(strconv.FormatInt(c.ID, 10))
			}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "concept row iteration failed")
	}
	return out, nil
}

func (s *Source) loadRelationships(ctx context.Context) ([]clinical.Relationship, error) {
	rows, err := s.pool.Query(ctx, selectRelationships)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "relationship query failed")
	}
	defer rows.Close()

	var out []clinical.Relationship
	for rows.Next() {
		var (
			r         clinical.Relationship
			rawType   string
			rawBoosts []byte
		)
		if err := rows.Scan(&r.SourceID, &r.TargetID, &rawType, &r.BasePriority, &rawBoosts); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "relationship row scan failed")
		}
		if r.Type, err = clinical.ParseRelationType(rawType); err != nil {
			return nil, err
		}
		if len(rawBoosts) > 0 {
			if err := json.Unmarshal(rawBoosts, &r.ContextBoosts); err != nil {
				return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "relationship context boosts are not valid JSON")
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "relationship row iteration failed")
	}
	return out, nil
}
