// Package opensearch mirrors the concept catalog into an OpenSearch index
// for ad-hoc analytics and cross-service lookups.  The mirror is write-only
// from this service's point of view: request-path concept search always runs
// against the in-memory similarity index, never against OpenSearch.
package opensearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/lexicon-health/lexicon/internal/config"
	"github.com/lexicon-health/lexicon/internal/domain/concept"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	"github.com/lexicon-health/lexicon/internal/snapshot"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Connect creates an OpenSearch client for cfg.
func Connect(cfg config.OpenSearchConfig) (*opensearchgo.Client, error) {
	clientCfg := opensearchgo.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.User,
		Password:  cfg.Password,
	}
	if cfg.InsecureSkipVerify {
		clientCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	client, err := opensearchgo.NewClient(clientCfg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExternalService, "cannot create opensearch client")
	}
	return client, nil
}

// conceptDocument is the indexed representation of a concept.
type conceptDocument struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	LocalizedName string            `json:"localized_name,omitempty"`
	Type          string            `json:"type"`
	Synonyms      []string          `json:"synonyms,omitempty"`
	Codes         map[string]string `json:"codes,omitempty"`
}

// Indexer bulk-writes catalog concepts into an OpenSearch index.
type Indexer struct {
	client    *opensearchgo.Client
	index     string
	batchSize int
	log       logging.Logger
}

// NewIndexer creates a mirror indexer.
func NewIndexer(client *opensearchgo.Client, index string, batchSize int, log logging.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Indexer{client: client, index: index, batchSize: batchSize, log: log}
}

// IndexSnapshot mirrors every concept of the snapshot.  Documents are keyed
// by concept id, so re-indexing an updated snapshot overwrites in place.
func (ix *Indexer) IndexSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	concepts := snap.Catalog.Concepts()
	for start := 0; start < len(concepts); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(concepts) {
			end = len(concepts)
		}
		if err := ix.indexBatch(ctx, concepts[start:end]); err != nil {
			return err
		}
	}
	ix.log.Info("concept mirror indexed",
		logging.String("index", ix.index), logging.Int("concepts", len(concepts)))
	return nil
}

func (ix *Indexer) indexBatch(ctx context.Context, batch []concept.Concept) error {
	var body bytes.Buffer
	for _, c := range batch {
		meta := fmt.Sprintf(`{"index":{"_index":%q,"_id":"%d"}}`, ix.index, c.ID)
		body.WriteString(meta)
		body.WriteByte('\n')

		doc, err := json.Marshal(conceptDocument{
			ID:            c.ID,
			Name:          c.Name,
			LocalizedName: c.LocalizedName,
			Type:          string(c.Type),
			Synonyms:      c.Synonyms,
			Codes:         c.Codes,
		})
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "cannot encode concept document").
				WithDetail(strconv.FormatInt(c.ID, 10))
		}
		body.Write(doc)
		body.WriteByte('\n')
	}

	req := opensearchapi.BulkRequest{Body: strings.NewReader(body.String())}
	resp, err := req.Do(ctx, ix.client)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "bulk index request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		raw, _ := io.ReadAll(resp.Body)
		return apperrors.Newf(apperrors.ErrCodeExternalService,
			"bulk index returned status %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "cannot decode bulk response")
	}
	if result.Errors {
		return apperrors.New(apperrors.ErrCodeExternalService, "bulk index reported item-level failures")
	}
	return nil
}
