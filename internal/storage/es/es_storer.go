package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/result"
	"github.com/google/uuid"
)

type Storer struct {
	client       *elasticsearch.TypedClient
	indexName    string
	indexBuilder *IndexBuilder
}

func NewStorer(ctx context.Context, config ClientConfig) (*Storer, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	s := &Storer{
		client:       client,
		indexName:    config.IndexName,
		indexBuilder: NewIndexBuilder(),
	}

	if err := s.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return s, nil
}

func prepare(m memory.Memory, now time.Time) memory.Memory {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	return m
}

func (s *Storer) Put(ctx context.Context, m memory.Memory) (string, error) {
	doc := toDocument(prepare(m, time.Now()))

	res, err := s.client.Index(s.indexName).Id(doc.ID).Document(doc).Do(ctx)
	if err != nil {
		return "", classify("put memory", err)
	}

	slog.Debug("Memory indexed", "id", doc.ID, "index", s.indexName, "result", res.Result)
	return doc.ID, nil
}

func (s *Storer) PutBulk(ctx context.Context, ms []memory.Memory) error {
	if len(ms) == 0 {
		return nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         s.indexName,
		Client:        s.client,
		NumWorkers:    4,
		FlushBytes:    5e+6,
		FlushInterval: 30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	var successful, failed atomic.Int64
	now := time.Now()

	for _, m := range ms {
		doc := toDocument(prepare(m, now))

		docBytes, err := json.Marshal(doc)
		if err != nil {
			slog.Error("failed to marshal document", "error", err, "id", doc.ID)
			failed.Add(1)
			continue
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID,
			Body:       bytes.NewReader(docBytes),
			OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
				successful.Add(1)
			},
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
				if err != nil {
					slog.Error("bulk index error", "error", err, "id", item.DocumentID)
				} else {
					slog.Error("bulk index error", "status", res.Status, "error", res.Error.Type, "reason", res.Error.Reason, "id", item.DocumentID)
				}
			},
		})
		if err != nil {
			failed.Add(1)
			slog.Error("failed to add document to bulk indexer", "error", err, "id", doc.ID)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return classify("bulk index memories", err)
	}

	slog.Info("Bulk indexing completed",
		"successful", successful.Load(),
		"failed", failed.Load(),
		"total", len(ms),
		"index", s.indexName)

	if n := failed.Load(); n > 0 {
		return storage.NewError(storage.KindUnknown, "bulk index memories", fmt.Errorf("failed to index %d out of %d memories", n, len(ms)))
	}
	return nil
}

func (s *Storer) Get(ctx context.Context, id string) (memory.Memory, error) {
	res, err := s.client.Get(s.indexName, id).Do(ctx)
	if err != nil {
		return memory.Memory{}, classify("get memory", err)
	}
	if !res.Found {
		return memory.Memory{}, storage.NewError(storage.KindNotFound, "get memory", nil)
	}

	var doc Document
	if err := json.Unmarshal(res.Source_, &doc); err != nil {
		return memory.Memory{}, fmt.Errorf("failed to decode memory %s: %w", id, err)
	}
	return doc.toMemory(), nil
}

func (s *Storer) Delete(ctx context.Context, id string) error {
	res, err := s.client.Delete(s.indexName, id).Do(ctx)
	if err != nil {
		return classify("delete memory", err)
	}
	if res.Result == result.Notfound {
		return storage.NewError(storage.KindNotFound, "delete memory", nil)
	}
	return nil
}

func (s *Storer) Query(ctx context.Context, constraints []storage.Constraint) (*storage.Page, error) {
	plan, err := storage.Compile(constraints)
	if err != nil {
		return nil, err
	}

	req, err := buildSearch(plan)
	if err != nil {
		return nil, storage.NewError(storage.KindValidation, "query memories", err)
	}

	searchReq := s.client.Search().
		Index(s.indexName).
		Query(req.Query).
		Sort(req.Sort...).
		Size(req.Size)
	if len(req.SearchAfter) > 0 {
		searchReq = searchReq.SearchAfter(req.SearchAfter...)
	}

	res, err := searchReq.Do(ctx)
	if err != nil {
		slog.Error("Elasticsearch query failed", "error", err, "cursor", plan.StartAfter != nil)
		return nil, classify("query memories", err)
	}

	docs := make([]memory.Memory, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc Document
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode hit: %w", err)
		}
		docs = append(docs, doc.toMemory())
	}

	page := &storage.Page{Docs: docs}
	if len(docs) > 0 {
		page.Last = storage.NewCursor(docs[len(docs)-1], plan.OrderField)
	}
	return page, nil
}

// Refresh makes recent writes visible to search.
func (s *Storer) Refresh(ctx context.Context) error {
	_, err := s.client.Indices.Refresh().Index(s.indexName).Do(ctx)
	return classify("refresh index", err)
}

func (s *Storer) Healthy(ctx context.Context) bool {
	ok, err := s.client.Ping().Do(ctx)
	if err != nil {
		slog.Warn("Elasticsearch health check failed", "error", err)
		return false
	}
	return ok
}

func (s *Storer) EnsureIndex(ctx context.Context) error {
	exists, err := s.client.Indices.Exists(s.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	if exists {
		slog.Info("Index already exists", "index", s.indexName)
		return nil
	}

	settings := s.indexBuilder.buildSettings()
	mappings := s.indexBuilder.buildMapping()

	createRes, err := s.client.Indices.Create(s.indexName).
		Settings(&settings).
		Mappings(&mappings).
		Do(ctx)
	if err != nil {
		var esErr *types.ElasticsearchError
		if errors.As(err, &esErr) && esErr.ErrorCause.Type == "resource_already_exists_exception" {
			return nil
		}
		return fmt.Errorf("failed to create index: %w", err)
	}
	if !createRes.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("Index created successfully", "index", s.indexName)
	return nil
}

var _ storage.Store = (*Storer)(nil)
