package pipeline

import (
	"context"
	"errors"
	"fmt"

	"seoul-news-harvester/internal/crawler"
	"seoul-news-harvester/internal/models"
	"seoul-news-harvester/internal/storage"
	"seoul-news-harvester/pkg/logger"
)

var (
	// ErrDuplicate means the composite key was already uploaded in this run.
	// It is a deliberate skip, not a failure.
	ErrDuplicate = errors.New("already uploaded in this run")
	// ErrUnavailable means the asset URL answered with a non-2xx status.
	ErrUnavailable = errors.New("asset unavailable")
)

// AssetFetcher downloads a binary asset.
type AssetFetcher interface {
	FetchAsset(ctx context.Context, rawURL string) (*crawler.Asset, error)
}

// Uploader fetches assets and stores each composite key at most once per run.
type Uploader struct {
	fetcher    AssetFetcher
	store      storage.ObjectStore
	dedup      *Dedup
	checkFirst bool
	logger     logger.Logger
}

// NewUploader binds an uploader to a run's dedup set. With checkFirst the
// dedup key is consulted before the asset is downloaded; otherwise the asset
// is downloaded first and the duplicate is discovered afterwards.
func NewUploader(f AssetFetcher, s storage.ObjectStore, d *Dedup, checkFirst bool, log logger.Logger) *Uploader {
	return &Uploader{fetcher: f, store: s, dedup: d, checkFirst: checkFirst, logger: log}
}

// Upload stores ref and returns its public URL. It returns ErrDuplicate for a
// key already uploaded this run and ErrUnavailable for non-2xx responses.
func (u *Uploader) Upload(ctx context.Context, ref models.AssetRef) (string, error) {
	filename, err := Filename(ref.URL, ref.Index)
	if err != nil {
		return "", err
	}
	key := DedupKey(ref.ArticleID, filename)

	if u.checkFirst && u.dedup.Has(key) {
		return "", u.skip(key)
	}

	asset, err := u.fetcher.FetchAsset(ctx, ref.URL)
	if err != nil {
		var se *crawler.StatusError
		if errors.As(err, &se) {
			return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return "", fmt.Errorf("fetch %s: %w", ref.URL, err)
	}

	if u.dedup.Has(key) {
		return "", u.skip(key)
	}

	objectKey := ObjectKey(ref.Kind, ref.ArticleID, filename)
	publicURL, err := u.store.Put(ctx, objectKey, asset.Data, asset.ContentType)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", objectKey, err)
	}
	u.dedup.Add(key)

	u.logger.Info("upload complete", logger.String("url", publicURL))
	return publicURL, nil
}

func (u *Uploader) skip(key string) error {
	u.logger.Info("duplicate skipped", logger.String("key", key))
	return ErrDuplicate
}
