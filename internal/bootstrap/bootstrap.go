// Package bootstrap performs the one-time startup wiring shared by the CLI
// and the HTTP server. Anything that fails here is a StartupError.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"seoul-news-harvester/internal/classifier"
	"seoul-news-harvester/internal/config"
	"seoul-news-harvester/internal/crawler"
	"seoul-news-harvester/internal/credentials"
	"seoul-news-harvester/internal/docstore"
	"seoul-news-harvester/internal/models"
	"seoul-news-harvester/internal/parser"
	"seoul-news-harvester/internal/pipeline"
	"seoul-news-harvester/internal/storage"
	"seoul-news-harvester/pkg/logger"
)

// ErrStartup matches every StartupError through errors.Is.
var ErrStartup = errors.New("startup failed")

// StartupError reports a failure before any page was fetched: configuration,
// credentials or client construction.
type StartupError struct {
	Stage string
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup: %s: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

func (e *StartupError) Is(target error) bool { return target == ErrStartup }

func startupErr(stage string, err error) error {
	return &StartupError{Stage: stage, Err: err}
}

// Options adjust startup.
type Options struct {
	// DryRun swaps in in-memory object and document stores and skips
	// credential loading.
	DryRun bool
	// Logger overrides the logger built from configuration.
	Logger logger.Logger
	// Credentials overrides the configured credential source.
	Credentials credentials.Source
}

// App holds the long-lived collaborators of the harvester.
type App struct {
	Config *config.Config
	Logger logger.Logger
	Deps   pipeline.Deps

	closers []io.Closer
}

// New wires the harvester from cfg.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, startupErr("config", errors.New("nil config"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, startupErr("config", err)
	}

	log := opts.Logger
	if log == nil {
		l, err := logger.New(logger.Config{
			Level:       cfg.Logging.Level,
			Encoding:    cfg.Logging.Encoding,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, startupErr("logger", err)
		}
		log = l
	}

	app := &App{Config: cfg, Logger: log}

	selector, ok := parser.SelectorByName(cfg.Site.LinkSelector, cfg.Site.HeadingClass, cfg.Site.ArticleMarker, cfg.Site.CategoryMarker)
	if !ok {
		return nil, startupErr("config", config.ErrInvalidLinkSelector)
	}
	ids, ok := pipeline.IDStrategyByName(cfg.Site.IDStrategy)
	if !ok {
		return nil, startupErr("config", config.ErrInvalidIDStrategy)
	}

	app.Deps = pipeline.Deps{
		Fetcher: crawler.NewHTTPClient(
			cfg.Crawl.Timeout,
			cfg.Crawl.DialTimeout,
			cfg.Crawl.PageSizeCap,
			cfg.Crawl.AssetSizeCap,
			cfg.Crawl.UserAgent,
		),
		Parser:   parser.New(),
		Selector: selector,
		IDs:      ids,
		Filter:   classifier.New(cfg.Site.ExtraChromePatterns...),
		Pacer:    pipeline.NewPacer(cfg.Crawl.Interval),
		Logger:   log,
	}

	if opts.DryRun {
		log.Info("dry run: using in-memory stores")
		app.Deps.Store = storage.NewMemoryStore("")
		app.Deps.Docs = docstore.NewMemoryStore()
		return app, nil
	}

	src := opts.Credentials
	if src == nil {
		src = credentialSource(cfg)
	}
	bundle, err := src.Load(ctx)
	if err != nil {
		return nil, startupErr("credentials", err)
	}

	store, err := newObjectStore(cfg, bundle, log)
	if err != nil {
		return nil, startupErr("object store", err)
	}
	app.Deps.Store = store

	docs, err := app.newArticleStore(ctx, cfg, bundle, log)
	if err != nil {
		app.Close()
		return nil, startupErr("document store", err)
	}
	app.Deps.Docs = docs

	log.Info("harvester ready",
		logger.String("bucket", cfg.Storage.Bucket),
		logger.String("documents", cfg.Documents.Backend),
		logger.String("selector", cfg.Site.LinkSelector),
	)
	return app, nil
}

func credentialSource(cfg *config.Config) credentials.Source {
	switch strings.ToLower(cfg.Credentials.Source) {
	case "file":
		return credentials.FileSource{Path: cfg.Credentials.Path}
	case "secretmanager":
		return credentials.SecretManagerSource{Project: cfg.Credentials.Project, Secret: cfg.Credentials.Secret}
	default:
		return credentials.Static{}
	}
}

func newObjectStore(cfg *config.Config, b *credentials.Bundle, log logger.Logger) (*storage.MinioStore, error) {
	return storage.NewMinioStore(storage.MinioConfig{
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     firstNonEmpty(cfg.Storage.AccessKey, b.Storage.AccessKey),
		SecretKey:     firstNonEmpty(cfg.Storage.SecretKey, b.Storage.SecretKey),
		UseSSL:        cfg.Storage.UseSSL,
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		UploadTimeout: cfg.Storage.UploadTimeout,
	}, log)
}

// newArticleStore returns nil for the "none" backend.
func (a *App) newArticleStore(ctx context.Context, cfg *config.Config, b *credentials.Bundle, log logger.Logger) (docstore.ArticleStore, error) {
	switch strings.ToLower(cfg.Documents.Backend) {
	case "elasticsearch":
		return docstore.NewElasticsearchStore(docstore.ElasticsearchConfig{
			Addresses: cfg.Documents.Elasticsearch.Addresses,
			Username:  b.Elasticsearch.Username,
			Password:  b.Elasticsearch.Password,
			APIKey:    b.Elasticsearch.APIKey,
			Index:     cfg.Documents.Elasticsearch.Index,
		}, log)
	case "postgres":
		dsn := firstNonEmpty(cfg.Documents.Postgres.DSN, b.Postgres.DSN)
		if dsn == "" {
			return nil, errors.New("postgres dsn is empty")
		}
		pg, err := docstore.OpenPostgres(ctx, dsn, cfg.Documents.Postgres.Table)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg)
		return pg, nil
	default:
		return nil, nil
	}
}

// NewRunner starts a fresh run over pages [start, end]. Non-positive bounds
// fall back to the configured range.
func (a *App) NewRunner(start, end int, onArticle func(models.ArticleResult)) *pipeline.Runner {
	if start <= 0 {
		start = a.Config.Site.StartPage
	}
	if end <= 0 {
		end = a.Config.Site.EndPage
	}
	return pipeline.NewRunner(a.Deps, pipeline.Options{
		ListingURL:            a.Config.Site.ListingURL,
		StartPage:             start,
		EndPage:               end,
		Untitled:              a.Config.Site.UntitledPlaceholder,
		CheckDedupBeforeFetch: a.Config.Crawl.CheckDedupBeforeFetch,
		OnArticle:             onArticle,
	})
}

// Close releases connections opened during startup and flushes the logger.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
