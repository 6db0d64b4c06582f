// Package config provides configuration loading, defaults and validation for
// the lexicon terminology service.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all service settings.
const envPrefix = "LEXICON"

// newViper builds a pre-configured viper instance: YAML file type, LEXICON_
// env prefix, automatic env binding, and a key replacer mapping "." to "_" so
// that nested keys like "engine.min_similarity" resolve to
// "LEXICON_ENGINE_MIN_SIMILARITY".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Viper only consults the environment for keys it already knows about, so
	// every configurable key is bound explicitly; otherwise LoadFromEnv would
	// silently ignore LEXICON_* variables that are absent from the file.
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// configKeys lists every key reachable through the Config struct.
var configKeys = []string{
	"server.port", "server.read_timeout", "server.write_timeout",
	"server.idle_timeout", "server.shutdown_timeout",
	"log.level", "log.format",
	"engine.min_similarity", "engine.relation_confidence", "engine.wet_months",
	"engine.auto_approve_threshold", "engine.review_threshold", "engine.search_limit",
	"snapshot.source", "snapshot.path", "snapshot.watch", "snapshot.object",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns",
	"database.min_conns", "database.conn_max_lifetime", "database.migration_path",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.mapping_ttl", "redis.key_prefix",
	"kafka.enabled", "kafka.brokers", "kafka.topic", "kafka.acks",
	"kafka.max_retries", "kafka.batch_timeout", "kafka.write_timeout",
	"neo4j.uri", "neo4j.user", "neo4j.password", "neo4j.database",
	"neo4j.connection_timeout",
	"opensearch.enabled", "opensearch.addresses", "opensearch.user",
	"opensearch.password", "opensearch.insecure_skip_verify",
	"opensearch.index", "opensearch.bulk_batch_size",
	"minio.endpoint", "minio.access_key", "minio.secret_key",
	"minio.bucket", "minio.use_ssl",
	"terminology.base_url", "terminology.api_key", "terminology.timeout",
}

// Load reads the YAML file at configPath, merges LEXICON_* environment
// overrides, applies defaults for unset fields and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from LEXICON_* environment variables
// with no config file, the preferred strategy for containerised deployments.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)
	restoreExplicitZeros(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// restoreExplicitZeros puts back threshold values the operator explicitly set
// to zero.  ApplyDefaults cannot tell an unset float from a deliberate 0 (a
// valid setting for these fields, e.g. min_similarity 0 keeps every match),
// but viper can, so zeros that came from the file or environment win over the
// defaults.
func restoreExplicitZeros(v *viper.Viper, cfg *Config) {
	zeroable := []struct {
		key string
		dst *float64
	}{
		{"engine.min_similarity", &cfg.Engine.MinSimilarity},
		{"engine.relation_confidence", &cfg.Engine.RelationConfidence},
		{"engine.auto_approve_threshold", &cfg.Engine.AutoApproveThreshold},
		{"engine.review_threshold", &cfg.Engine.ReviewThreshold},
	}
	for _, z := range zeroable {
		if v.IsSet(z.key) && v.GetFloat64(z.key) == 0 {
			*z.dst = 0
		}
	}
}

// MustLoad wraps Load and panics on error.  Intended for main() where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
