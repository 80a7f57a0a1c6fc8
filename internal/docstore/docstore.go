// Package docstore records article metadata in a document store.
package docstore

import (
	"context"
	"errors"

	"seoul-news-harvester/internal/models"
)

// ErrEmptyID is returned when an article has no identifier.
var ErrEmptyID = errors.New("article id is empty")

// ArticleStore writes one record per article, keyed by article ID. Writes are
// unconditional overwrites.
type ArticleStore interface {
	PutArticle(ctx context.Context, a models.Article) error
}
