// Package config defines all configuration structures for the lexicon
// terminology service.  No I/O or parsing logic lives here, only plain data
// types and validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
}

// EngineConfig holds the clinical engine tunables.  Everything here is a
// behavioural constant of the core that must be overridable without code
// changes: the search similarity floor, the fixed relationship confidence,
// the wet-season month set and the claim decision thresholds.
type EngineConfig struct {
	MinSimilarity        float64 `mapstructure:"min_similarity"`
	RelationConfidence   float64 `mapstructure:"relation_confidence"`
	WetMonths            []int   `mapstructure:"wet_months"`
	AutoApproveThreshold float64 `mapstructure:"auto_approve_threshold"`
	ReviewThreshold      float64 `mapstructure:"review_threshold"`
	SearchLimit          int     `mapstructure:"search_limit"`
}

// SnapshotConfig selects where the concept catalog and relationship graph are
// loaded from at startup.
type SnapshotConfig struct {
	// Source is one of "file", "postgres", "minio", "neo4j" or "sample".
	Source string `mapstructure:"source"`
	// Path is the snapshot JSON file when Source is "file"; also the watched
	// path for hot reload.
	Path string `mapstructure:"path"`
	// Watch enables rebuild-and-swap when the snapshot file changes on disk.
	Watch bool `mapstructure:"watch"`
	// Object is the object key when Source is "minio".
	Object string `mapstructure:"object"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the mapping cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MappingTTL   time.Duration `mapstructure:"mapping_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds claim-event publishing parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	Acks         string        `mapstructure:"acks"` // "none" | "one" | "all"
	MaxRetries   int           `mapstructure:"max_retries"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Neo4jConfig holds relationship-graph source connection parameters.
type Neo4jConfig struct {
	URI               string        `mapstructure:"uri"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
}

// OpenSearchConfig holds the concept mirror index parameters.
type OpenSearchConfig struct {
	Enabled            bool     `mapstructure:"enabled"`
	Addresses          []string `mapstructure:"addresses"`
	User               string   `mapstructure:"user"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	Index              string   `mapstructure:"index"`
	BulkBatchSize      int      `mapstructure:"bulk_batch_size"`
}

// MinIOConfig holds object-storage snapshot source parameters.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// TerminologyConfig holds the external code-mapping / treatment-validation
// service parameters.  When BaseURL is empty the built-in static table is
// used instead (demo mode).
type TerminologyConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config is the root configuration for the service.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Engine      EngineConfig      `mapstructure:"engine"`
	Snapshot    SnapshotConfig    `mapstructure:"snapshot"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Neo4j       Neo4jConfig       `mapstructure:"neo4j"`
	OpenSearch  OpenSearchConfig  `mapstructure:"opensearch"`
	MinIO       MinIOConfig       `mapstructure:"minio"`
	Terminology TerminologyConfig `mapstructure:"terminology"`
}

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start the service.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Engine.MinSimilarity < 0 || c.Engine.MinSimilarity >= 1 {
		return fmt.Errorf("config: engine.min_similarity %.3f is out of range [0, 1)", c.Engine.MinSimilarity)
	}
	if c.Engine.RelationConfidence < 0 || c.Engine.RelationConfidence > 1 {
		return fmt.Errorf("config: engine.relation_confidence %.3f is out of range [0, 1]", c.Engine.RelationConfidence)
	}
	if c.Engine.AutoApproveThreshold <= c.Engine.ReviewThreshold {
		return fmt.Errorf("config: engine.auto_approve_threshold %.2f must be greater than engine.review_threshold %.2f",
			c.Engine.AutoApproveThreshold, c.Engine.ReviewThreshold)
	}
	for _, m := range c.Engine.WetMonths {
		if m < 1 || m > 12 {
			return fmt.Errorf("config: engine.wet_months contains invalid month %d", m)
		}
	}

	switch c.Snapshot.Source {
	case "file", "postgres", "minio", "neo4j", "sample":
	default:
		return fmt.Errorf("config: snapshot.source %q is invalid; expected file|postgres|minio|neo4j|sample", c.Snapshot.Source)
	}
	if c.Snapshot.Source == "file" && c.Snapshot.Path == "" {
		return fmt.Errorf("config: snapshot.path is required when snapshot.source is file")
	}

	if c.Snapshot.Source == "postgres" {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required for the postgres snapshot source")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka is enabled")
		}
	}
	if c.OpenSearch.Enabled && len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("config: opensearch.addresses must contain at least one address")
	}

	return nil
}
