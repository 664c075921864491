// Package search mirrors categories into an Elasticsearch index so the
// storefront can search by name and by any ancestor in the path.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"go.uber.org/zap"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"name": { "type": "text" },
			"slug": { "type": "keyword" },
			"parent_id": { "type": "keyword" },
			"level": { "type": "integer" },
			"path": { "type": "text" },
			"path_slugs": { "type": "keyword" },
			"is_active": { "type": "boolean" },
			"is_featured": { "type": "boolean" },
			"seo_title": { "type": "text" },
			"updated_at": { "type": "date" }
		}
	}
}`

func NewClient(cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}

type ElasticIndexer struct {
	es     *elasticsearch.Client
	index  string
	logger logger.ZapLogger
}

var _ category.Indexer = (*ElasticIndexer)(nil)

func NewElasticIndexer(es *elasticsearch.Client, index string, log logger.ZapLogger) *ElasticIndexer {
	return &ElasticIndexer{es: es, index: index, logger: log}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (i *ElasticIndexer) EnsureIndex(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.index}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.es.Indices.Create(i.index,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", i.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", i.index, res.String())
	}
	i.logger.Info("search index created", zap.String("index", i.index))
	return nil
}

func (i *ElasticIndexer) Index(ctx context.Context, docs []model.CategoryDocument) error {
	if len(docs) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		if err := enc.Encode(bulkAction{Index: &bulkTarget{ID: d.ID}}); err != nil {
			return err
		}
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode document %s: %w", d.ID, err)
		}
	}
	return i.bulk(ctx, &buf, len(docs))
}

func (i *ElasticIndexer) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, id := range ids {
		if err := enc.Encode(bulkAction{Delete: &bulkTarget{ID: id}}); err != nil {
			return err
		}
	}
	return i.bulk(ctx, &buf, len(ids))
}

type bulkAction struct {
	Index  *bulkTarget `json:"index,omitempty"`
	Delete *bulkTarget `json:"delete,omitempty"`
}

type bulkTarget struct {
	ID string `json:"_id"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

func (i *ElasticIndexer) bulk(ctx context.Context, body io.Reader, n int) error {
	res, err := i.es.Bulk(body,
		i.es.Bulk.WithContext(ctx),
		i.es.Bulk.WithIndex(i.index),
	)
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk request: %s", res.String())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if parsed.Errors {
		for _, item := range parsed.Items {
			for op, result := range item {
				// Deleting a document that was never indexed is fine.
				if op == "delete" && result.Status == http.StatusNotFound {
					continue
				}
				if result.Error != nil {
					return fmt.Errorf("bulk %s %s: %s: %s", op, result.ID, result.Error.Type, result.Error.Reason)
				}
			}
		}
	}

	i.logger.Debug("search index updated", zap.String("index", i.index), zap.Int("operations", n))
	return nil
}
