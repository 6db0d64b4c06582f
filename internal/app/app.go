// Package app assembles the service from configuration: snapshot source,
// external capabilities, application services, HTTP transport and the
// background reloader.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/lexicon-health/lexicon/internal/application/cds"
	"github.com/lexicon-health/lexicon/internal/application/claims"
	appterm "github.com/lexicon-health/lexicon/internal/application/terminology"
	"github.com/lexicon-health/lexicon/internal/config"
	"github.com/lexicon-health/lexicon/internal/domain/claim"
	"github.com/lexicon-health/lexicon/internal/infrastructure/database/neo4j"
	"github.com/lexicon-health/lexicon/internal/infrastructure/database/postgres"
	"github.com/lexicon-health/lexicon/internal/infrastructure/database/redis"
	"github.com/lexicon-health/lexicon/internal/infrastructure/messaging/kafka"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/metrics"
	"github.com/lexicon-health/lexicon/internal/infrastructure/search/opensearch"
	"github.com/lexicon-health/lexicon/internal/infrastructure/storage/minio"
	infraterm "github.com/lexicon-health/lexicon/internal/infrastructure/terminology"
	httpx "github.com/lexicon-health/lexicon/internal/interfaces/http"
	"github.com/lexicon-health/lexicon/internal/snapshot"
)

// App is the fully wired service.
type App struct {
	cfg      *config.Config
	log      logging.Logger
	metrics  *metrics.Metrics
	store    *snapshot.Store
	server   *httpx.Server
	reloader *snapshot.Reloader
	closers  []func()
}

// New builds the service for cfg.  The initial snapshot is loaded before New
// returns, so a successfully constructed App is ready to serve.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	a := &App{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		store:   snapshot.NewStore(nil),
	}

	source, err := a.buildSource(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	if err := a.store.Reload(ctx, source); err != nil {
		a.close()
		return nil, err
	}
	snap := a.store.Current()
	a.metrics.SnapshotConcepts.Set(float64(snap.Catalog.Len()))
	log.Info("snapshot loaded",
		logging.String("source", cfg.Snapshot.Source),
		logging.Int("concepts", snap.Catalog.Len()),
		logging.Int("relationships", snap.Graph.Len()),
	)

	mapper, validator, err := a.buildTerminology(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	publisher, err := a.buildPublisher()
	if err != nil {
		a.close()
		return nil, err
	}

	a.mirrorSnapshot(ctx, snap)

	router := httpx.NewRouter(httpx.RouterDeps{
		Terminology: appterm.NewService(a.store, mapper,
			cfg.Engine.MinSimilarity, cfg.Engine.SearchLimit, a.metrics, log),
		CDS: cds.NewService(a.store, cfg.Engine.RelationConfidence, a.metrics, log),
		Claims: claims.NewService(a.store, mapper, validator, claims.Config{
			RelationConfidence: cfg.Engine.RelationConfidence,
			WetMonths:          cfg.Engine.WetMonths,
			Thresholds: claim.Thresholds{
				AutoApprove: cfg.Engine.AutoApproveThreshold,
				Review:      cfg.Engine.ReviewThreshold,
			},
		}, publisher, a.metrics, log),
		Store:   a.store,
		Metrics: a.metrics,
		Log:     log,
	})
	a.server = httpx.NewServer(cfg.Server, router, log)

	if cfg.Snapshot.Watch && cfg.Snapshot.Source == "file" {
		reloader, err := snapshot.NewReloader(a.store, source, cfg.Snapshot.Path, log)
		if err != nil {
			a.close()
			return nil, err
		}
		reloader.OnReload(func(err error) {
			a.metrics.ObserveReload(err)
			if err == nil {
				if s := a.store.Current(); s != nil {
					a.metrics.SnapshotConcepts.Set(float64(s.Catalog.Len()))
				}
			}
		})
		a.reloader = reloader
	}

	return a, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.reloader != nil {
		go func() {
			if err := a.reloader.Run(ctx); err != nil {
				a.log.Warn("snapshot reloader stopped", logging.Err(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	err := a.server.Shutdown(shutdownCtx)
	a.close()
	return err
}

func (a *App) buildSource(ctx context.Context) (snapshot.Source, error) {
	switch a.cfg.Snapshot.Source {
	case "sample":
		return snapshot.NewSampleSource(), nil

	case "file":
		return snapshot.NewFileSource(a.cfg.Snapshot.Path), nil

	case "postgres":
		if err := postgres.Migrate(a.cfg.Database, a.log); err != nil {
			return nil, err
		}
		pool, err := postgres.NewPool(ctx, a.cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		return postgres.NewSource(pool), nil

	case "minio":
		client, err := minio.Connect(a.cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return minio.NewSource(client, a.cfg.MinIO.Bucket, a.cfg.Snapshot.Object), nil

	case "neo4j":
		driver, err := neo4j.Connect(ctx, a.cfg.Neo4j)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = driver.Close(closeCtx)
		})
		return neo4j.NewSource(driver, a.cfg.Neo4j.Database), nil

	default:
		return nil, fmt.Errorf("app: unknown snapshot source %q", a.cfg.Snapshot.Source)
	}
}

// buildTerminology selects the code mapper and treatment validator.  With no
// external service configured the static snapshot-backed mapper is used and
// validation is disabled.
func (a *App) buildTerminology(ctx context.Context) (claim.CodeMapper, claim.TreatmentValidator, error) {
	var mapper claim.CodeMapper
	var validator claim.TreatmentValidator

	if a.cfg.Terminology.BaseURL != "" {
		client := infraterm.NewClient(a.cfg.Terminology.BaseURL, a.cfg.Terminology.APIKey,
			a.cfg.Terminology.Timeout, a.store)
		mapper = client
		validator = client
	} else {
		mapper = infraterm.NewStaticMapper(a.store, 0)
	}

	if a.cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, a.cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })

		cache := redis.NewMappingCache(mapper, client,
			a.cfg.Redis.MappingTTL, a.cfg.Redis.KeyPrefix, a.log)
		cache.OnHit = a.metrics.MappingCacheHits.Inc
		cache.OnMiss = a.metrics.MappingCacheMiss.Inc
		mapper = cache
	}

	return mapper, validator, nil
}

func (a *App) buildPublisher() (claims.Publisher, error) {
	if !a.cfg.Kafka.Enabled {
		return nil, nil
	}
	writer := kafka.NewWriter(a.cfg.Kafka)
	a.closers = append(a.closers, func() { _ = writer.Close() })
	return kafka.NewPublisher(writer, a.log), nil
}

// mirrorSnapshot pushes the loaded catalog into the OpenSearch mirror.  The
// mirror is best-effort: a failure is logged and the service starts anyway.
func (a *App) mirrorSnapshot(ctx context.Context, snap *snapshot.Snapshot) {
	if !a.cfg.OpenSearch.Enabled {
		return
	}
	client, err := opensearch.Connect(a.cfg.OpenSearch)
	if err != nil {
		a.log.Warn("opensearch mirror unavailable", logging.Err(err))
		return
	}
	indexer := opensearch.NewIndexer(client, a.cfg.OpenSearch.Index,
		a.cfg.OpenSearch.BulkBatchSize, a.log)
	if err := indexer.IndexSnapshot(ctx, snap); err != nil {
		a.log.Warn("concept mirror indexing failed", logging.Err(err))
	}
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
