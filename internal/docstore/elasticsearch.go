package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"seoul-news-harvester/internal/models"
	"seoul-news-harvester/pkg/logger"
)

const defaultIndexTimeout = 10 * time.Second

// ElasticsearchConfig configures the article index.
type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string
	Index     string
}

// ElasticsearchStore indexes articles with the article ID as document ID.
type ElasticsearchStore struct {
	client *es.Client
	index  string
	logger logger.Logger
}

// NewElasticsearchStore builds a client from cfg.
func NewElasticsearchStore(cfg ElasticsearchConfig, log logger.Logger) (*ElasticsearchStore, error) {
	client, err := es.NewClient(es.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return NewElasticsearchStoreWithClient(client, cfg.Index, log), nil
}

// NewElasticsearchStoreWithClient wraps an existing client.
func NewElasticsearchStoreWithClient(client *es.Client, index string, log logger.Logger) *ElasticsearchStore {
	if index == "" {
		index = "articles"
	}
	return &ElasticsearchStore{client: client, index: index, logger: log}
}

type esArticle struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	RunID     string    `json:"run_id,omitempty"`
	CrawledAt time.Time `json:"crawled_at"`
}

func (s *ElasticsearchStore) PutArticle(ctx context.Context, a models.Article) error {
	if a.ID == "" {
		return ErrEmptyID
	}
	ctx, cancel := context.WithTimeout(ctx, defaultIndexTimeout)
	defer cancel()

	body, err := json.Marshal(esArticle{Title: a.Title, URL: a.URL, RunID: a.RunID, CrawledAt: a.CrawledAt})
	if err != nil {
		return fmt.Errorf("marshal article %s: %w", a.ID, err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(a.ID),
	)
	if err != nil {
		return fmt.Errorf("index article %s: %w", a.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index article %s: %s", a.ID, res.String())
	}

	s.logger.Debug("article indexed",
		logger.String("index", s.index),
		logger.String("article_id", a.ID))
	return nil
}
