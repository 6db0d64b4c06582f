// Package neo4j loads the concept vocabulary and relationship graph from a
// Neo4j database, where the graph-shaped relationship data naturally lives.
package neo4j

import (
	"context"
	"fmt"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/lexicon-health/lexicon/internal/config"
	"github.com/lexicon-health/lexicon/internal/domain/clinical"
	"github.com/lexicon-health/lexicon/internal/domain/concept"
	"github.com/lexicon-health/lexicon/internal/snapshot"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

const (
	conceptQuery = `
		MATCH (c:Concept)
		RETURN c.id AS id, c.name AS name, c.localized_name AS localized_name,
		       c.concept_type AS concept_type, c.synonyms AS synonyms,
		       c.code_systems AS code_systems, c.code_values AS code_values
		ORDER BY c.position`

	relationshipQuery = `
		MATCH (s:Concept)-[r:RELATES_TO]->(t:Concept)
		RETURN s.id AS source_id, t.id AS target_id, r.relation_type AS relation_type,
		       r.base_priority AS base_priority,
		       r.boost_keys AS boost_keys, r.boost_values AS boost_values
		ORDER BY r.position`
)

// Source loads snapshot data from Neo4j.  Concepts are :Concept nodes,
// relationships are :RELATES_TO edges; map-valued properties are stored as
// parallel key/value list properties because Neo4j properties cannot hold
// maps.
type Source struct {
	driver   neo4j.DriverWithContext
	database string
}

// Connect creates a driver for cfg and verifies connectivity.
func Connect(ctx context.Context, cfg config.Neo4jConfig) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "cannot create neo4j driver")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "cannot connect to neo4j")
	}
	return driver, nil
}

// NewSource creates a Neo4j-backed snapshot source.
func NewSource(driver neo4j.DriverWithContext, database string) *Source {
	return &Source{driver: driver, database: database}
}

// Load implements snapshot.Source.
func (s *Source) Load(ctx context.Context) (*snapshot.Data, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	concepts, err := s.loadConcepts(ctx, session)
	if err != nil {
		return nil, err
	}
	relationships, err := s.loadRelationships(ctx, session)
	if err != nil {
		return nil, err
	}
	return &snapshot.Data{Concepts: concepts, Relationships: relationships}, nil
}

func (s *Source) loadConcepts(ctx context.Context, session neo4j.SessionWithContext) ([]concept.Concept, error) {
	result, err := session.Run(ctx, conceptQuery, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "concept query failed")
	}

	var out []concept.Concept
	for result.Next(ctx) {
		rec := result.Record()
		c := concept.Concept{
			ID:            intValue(rec, "id"),
			Name:          stringValue(rec, "name"),
			LocalizedName: stringValue(rec, "localized_name"),
			Synonyms:      stringSlice(rec, "synonyms"),
		}
		if c.Type, err = concept.ParseType(stringValue(rec, "concept_type")); err != nil {
			return nil, err
		}
		systems := stringSlice(rec, "code_systems")
		values := stringSlice(rec, "code_values")
		if len(systems) != len(values) {
			return nil, apperrors.New(apperrors.ErrCodeSnapshotInvalid,
				"concept code_systems and code_values lengths differ").
				WithDetail(strconv.FormatInt(c.ID, 10))
		}
		if len(systems) > 0 {
			c.Codes = make(map[string]string, len(systems))
			for i, sys := range systems {
				c.Codes[sys] = values[i]
			}
		}
		out = append(out, c)
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "concept result iteration failed")
	}
	return out, nil
}

func (s *Source) loadRelationships(ctx context.Context, session neo4j.SessionWithContext) ([]clinical.Relationship, error) {
	result, err := session.Run(ctx, relationshipQuery, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "relationship query failed")
	}

	var out []clinical.Relationship
	for result.Next(ctx) {
		rec := result.Record()
		r := clinical.Relationship{
			SourceID:     intValue(rec, "source_id"),
			TargetID:     intValue(rec, "target_id"),
			BasePriority: floatValue(rec, "base_priority"),
		}
		if r.Type, err = clinical.ParseRelationType(stringValue(rec, "relation_type")); err != nil {
			return nil, err
		}
		keys := stringSlice(rec, "boost_keys")
		values := floatSlice(rec, "boost_values")
		if len(keys) != len(values) {
			return nil, apperrors.New(apperrors.ErrCodeSnapshotInvalid,
				"relationship boost_keys and boost_values lengths differ").
				WithDetail(fmt.Sprintf("%d->%d", r.SourceID, r.TargetID))
		}
		if len(keys) > 0 {
			r.ContextBoosts = make(map[string]float64, len(keys))
			for i, k := range keys {
				r.ContextBoosts[k] = values[i]
			}
		}
		out = append(out, r)
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "relationship result iteration failed")
	}
	return out, nil
}

func stringValue(rec *neo4j.Record, key string) string {
	if v, ok := rec.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func intValue(rec *neo4j.Record, key string) int64 {
	if v, ok := rec.Get(key); ok {
		if n, ok := v.(int64); ok {
			return n
		}
	}
	return 0
}

func floatValue(rec *neo4j.Record, key string) float64 {
	if v, ok := rec.Get(key); ok {
		switch n := v.(type) {
		case float64:
			return n
		case int64:
			return float64(n)
		}
	}
	return 0
}

func stringSlice(rec *neo4j.Record, key string) []string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func floatSlice(rec *neo4j.Record, key string) []float64 {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, item := range raw {
		switch n := item.(type) {
		case float64:
			out = append(out, n)
		case int64:
			out = append(out, float64(n))
		}
	}
	return out
}
