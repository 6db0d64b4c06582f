package config

import "time"

// Default value constants.
const (
	DefaultServerPort = 8080

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// DefaultMinSimilarity is the floor below which fuzzy search matches are
	// discarded.
	DefaultMinSimilarity = 0.1

	// DefaultRelationConfidence is the fixed confidence attached to every
	// recommendation until a learned model replaces it.
	DefaultRelationConfidence = 0.9

	DefaultAutoApproveThreshold = 0.8
	DefaultReviewThreshold      = 0.6

	DefaultSearchLimit = 10

	DefaultSnapshotSource = "sample"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "lexicon"
	DefaultDBMaxConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "lexicon:"

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "lexicon.claims.resolved"

	DefaultNeo4jURI = "bolt://localhost:7687"

	DefaultOpenSearchIndex = "lexicon-concepts"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "lexicon-snapshots"
)

// DefaultWetMonths is the wet-season month set for the season derivation:
// November through April.
var DefaultWetMonths = []int{11, 12, 1, 2, 3, 4}

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins.  It must run after unmarshalling and before
// Validate so defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Engine.MinSimilarity == 0 {
		cfg.Engine.MinSimilarity = DefaultMinSimilarity
	}
	if cfg.Engine.RelationConfidence == 0 {
		cfg.Engine.RelationConfidence = DefaultRelationConfidence
	}
	if len(cfg.Engine.WetMonths) == 0 {
		cfg.Engine.WetMonths = append([]int(nil), DefaultWetMonths...)
	}
	if cfg.Engine.AutoApproveThreshold == 0 {
		cfg.Engine.AutoApproveThreshold = DefaultAutoApproveThreshold
	}
	if cfg.Engine.ReviewThreshold == 0 {
		cfg.Engine.ReviewThreshold = DefaultReviewThreshold
	}
	if cfg.Engine.SearchLimit == 0 {
		cfg.Engine.SearchLimit = DefaultSearchLimit
	}

	if cfg.Snapshot.Source == "" {
		cfg.Snapshot.Source = DefaultSnapshotSource
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.MappingTTL == 0 {
		cfg.Redis.MappingTTL = 12 * time.Hour
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.Acks == "" {
		cfg.Kafka.Acks = "one"
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = "neo4j"
	}

	if cfg.OpenSearch.Index == "" {
		cfg.OpenSearch.Index = DefaultOpenSearchIndex
	}
	if cfg.OpenSearch.BulkBatchSize == 0 {
		cfg.OpenSearch.BulkBatchSize = 500
	}

	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	if cfg.Terminology.Timeout == 0 {
		cfg.Terminology.Timeout = 5 * time.Second
	}
}
