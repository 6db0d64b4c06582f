//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexicon-health/lexicon/internal/config"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	"github.com/lexicon-health/lexicon/internal/snapshot"
)

// Requires a running PostgreSQL, e.g.:
//
//	docker run --rm -e POSTGRES_PASSWORD=lexicon -e POSTGRES_USER=lexicon \
//	  -e POSTGRES_DB=lexicon_test -p 5432:5432 postgres:16
//	go test -tags integration ./internal/infrastructure/database/postgres/
//
// Connection parameters come from LEXICON_TEST_DB_* variables with the
// defaults above.
func testDatabaseConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()

	getenv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	port, err := strconv.Atoi(getenv("LEXICON_TEST_DB_PORT", "5432"))
	require.NoError(t, err)

	return config.DatabaseConfig{
		Host:            getenv("LEXICON_TEST_DB_HOST", "localhost"),
		Port:            port,
		User:            getenv("LEXICON_TEST_DB_USER", "lexicon"),
		Password:        getenv("LEXICON_TEST_DB_PASSWORD", "lexicon"),
		DBName:          getenv("LEXICON_TEST_DB_NAME", "lexicon_test"),
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		ConnMaxLifetime: time.Minute,
		MigrationPath:   "../../../../migrations",
	}
}

func TestSourceLoad_RoundTrip(t *testing.T) {
	cfg := testDatabaseConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, Migrate(cfg, logging.NewNop()))

	pool, err := NewPool(ctx, cfg)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `TRUNCATE concept_relationships, concepts`)
	require.NoError(t, err)

	data := snapshot.SampleData()
	for _, c := range data.Concepts {
		codes, err := json.Marshal(c.Codes)
		require.NoError(t, err)
		_, err = pool.Exec(ctx,
			`INSERT INTO concepts (id, name, localized_name, concept_type, synonyms, codes)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.Name, c.LocalizedName, string(c.Type), c.Synonyms, codes)
		require.NoError(t, err)
	}
	for _, r := range data.Relationships {
		boosts, err := json.Marshal(r.ContextBoosts)
		require.NoError(t, err)
		_, err = pool.Exec(ctx,
			`INSERT INTO concept_relationships (source_id, target_id, relation_type, base_priority, context_boosts)
			 VALUES ($1, $2, $3, $4, $5)`,
			r.SourceID, r.TargetID, string(r.Type), r.BasePriority, boosts)
		require.NoError(t, err)
	}

	loaded, err := NewSource(pool).Load(ctx)
	require.NoError(t, err)

	require.Len(t, loaded.Concepts, len(data.Concepts))
	for i, c := range data.Concepts {
		assert.Equal(t, c.ID, loaded.Concepts[i].ID)
		assert.Equal(t, c.Name, loaded.Concepts[i].Name)
		assert.Equal(t, c.LocalizedName, loaded.Concepts[i].LocalizedName)
		assert.Equal(t, c.Type, loaded.Concepts[i].Type)
		assert.Equal(t, c.Synonyms, loaded.Concepts[i].Synonyms)
		assert.Equal(t, c.Codes, loaded.Concepts[i].Codes)
	}

	require.Len(t, loaded.Relationships, len(data.Relationships))
	for i, r := range data.Relationships {
		assert.Equal(t, r.SourceID, loaded.Relationships[i].SourceID)
		assert.Equal(t, r.TargetID, loaded.Relationships[i].TargetID)
		assert.Equal(t, r.Type, loaded.Relationships[i].Type)
		assert.InDelta(t, r.BasePriority, loaded.Relationships[i].BasePriority, 1e-9)
		assert.Equal(t, r.ContextBoosts, loaded.Relationships[i].ContextBoosts)
	}

	// The loaded data must build a working snapshot.
	snap, err := snapshot.Build(loaded)
	require.NoError(t, err)
	assert.Equal(t, len(data.Concepts), snap.Catalog.Len())
}
