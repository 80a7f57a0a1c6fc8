// Package pipeline drives one harvest run: listing pages, article pages,
// asset uploads and metadata writes, with a dedup set owned by the run.
package pipeline

import (
	"context"
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"seoul-news-harvester/internal/classifier"
	"seoul-news-harvester/internal/crawler"
	"seoul-news-harvester/internal/docstore"
	"seoul-news-harvester/internal/models"
	"seoul-news-harvester/internal/parser"
	"seoul-news-harvester/internal/storage"
	"seoul-news-harvester/pkg/logger"
)

// DefaultUntitled is stored when an article has no title.
const DefaultUntitled = "제목 없음"

// ErrInvalidRange is returned by Run when the page range is empty or starts
// below page 1.
var ErrInvalidRange = errors.New("start page must be >= 1 and <= end page")

// PageFetcher fetches an HTML page. *crawler.HTTPClient satisfies it.
type PageFetcher interface {
	FetchPage(ctx context.Context, rawURL string) (*crawler.Page, error)
}

// Fetcher covers both page and asset downloads.
type Fetcher interface {
	PageFetcher
	AssetFetcher
}

// Deps are the collaborators shared by every run. Docs may be nil, in which
// case no metadata is written.
type Deps struct {
	Fetcher  Fetcher
	Parser   *parser.Parser
	Selector parser.LinkSelector
	IDs      IDStrategy
	Filter   classifier.ImageFilter
	Store    storage.ObjectStore
	Docs     docstore.ArticleStore
	Pacer    Pacer
	Logger   logger.Logger
}

// Options control a single run.
type Options struct {
	// ListingURL maps a page number to its listing URL.
	ListingURL            func(page int) string
	StartPage             int
	EndPage               int
	Untitled              string
	CheckDedupBeforeFetch bool
	// OnArticle, when set, receives every article result as it completes.
	OnArticle func(models.ArticleResult)
}

// Runner executes one harvest run. Its dedup set lives exactly as long as the
// Runner; create a new Runner for every run.
type Runner struct {
	deps     Deps
	opts     Options
	runID    string
	dedup    *Dedup
	uploader *Uploader
	logger   logger.Logger
	summary  models.Summary
}

func NewRunner(deps Deps, opts Options) *Runner {
	if deps.Parser == nil {
		deps.Parser = parser.New()
	}
	if deps.Selector == nil {
		deps.Selector = parser.HeadingSelector{}
	}
	if deps.IDs == nil {
		deps.IDs = ArchiveID{}
	}
	if deps.Filter == nil {
		deps.Filter = classifier.New()
	}
	if deps.Pacer == nil {
		deps.Pacer = NewPacer(0)
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if opts.Untitled == "" {
		opts.Untitled = DefaultUntitled
	}

	runID := uuid.NewString()
	log := deps.Logger.With(logger.String("run_id", runID))
	dedup := NewDedup()
	return &Runner{
		deps:     deps,
		opts:     opts,
		runID:    runID,
		dedup:    dedup,
		uploader: NewUploader(deps.Fetcher, deps.Store, dedup, opts.CheckDedupBeforeFetch, log),
		logger:   log,
		summary:  models.Summary{RunID: runID},
	}
}

func (r *Runner) RunID() string { return r.runID }

// Dedup exposes the run's key set.
func (r *Runner) Dedup() *Dedup { return r.dedup }

// Uploader exposes the run's uploader, bound to the run's dedup set.
func (r *Runner) Uploader() *Uploader { return r.uploader }

// Summary returns the totals accumulated so far.
func (r *Runner) Summary() models.Summary {
	s := r.summary
	s.UniqueKeys = r.dedup.Len()
	return s
}

// Run crawls every listing page in the configured inclusive range. Page and
// article failures are logged and counted; only cancellation stops the run
// early, and it is reported as the returned error.
func (r *Runner) Run(ctx context.Context) (models.Summary, error) {
	if r.opts.ListingURL == nil {
		return r.Summary(), errors.New("pipeline: no listing url function")
	}
	if r.opts.StartPage < 1 || r.opts.StartPage > r.opts.EndPage {
		return r.Summary(), fmt.Errorf("%w: %d..%d", ErrInvalidRange, r.opts.StartPage, r.opts.EndPage)
	}
	r.summary.Started = time.Now()

	for page := r.opts.StartPage; page <= r.opts.EndPage; page++ {
		if err := ctx.Err(); err != nil {
			return r.finish(), err
		}
		if err := r.crawlPage(ctx, r.opts.ListingURL(page)); err != nil {
			if ctx.Err() != nil {
				return r.finish(), ctx.Err()
			}
			r.summary.FailedPages++
			r.logger.Warn("page skipped",
				logger.Int("page", page),
				logger.Error(err),
			)
		}
	}
	return r.finish(), nil
}

// CrawlURLs crawls an explicit list of article URLs with the run's dedup set.
func (r *Runner) CrawlURLs(ctx context.Context, urls []string) (models.Summary, error) {
	r.summary.Started = time.Now()

	for _, u := range urls {
		if err := r.visit(ctx, parser.ArticleLink{URL: u}); err != nil {
			return r.finish(), err
		}
	}
	return r.finish(), nil
}

func (r *Runner) finish() models.Summary {
	r.summary.Finished = time.Now()
	s := r.Summary()
	r.logger.Info("run complete",
		logger.Int("pages", s.Pages),
		logger.Int("articles", s.Articles),
		logger.Int("images", s.Images),
		logger.Int("pdfs", s.PDFs),
		logger.Int("unique_keys", s.UniqueKeys),
	)
	return s
}

func (r *Runner) crawlPage(ctx context.Context, pageURL string) error {
	r.logger.Info("crawling page", logger.String("url", pageURL))

	page, err := r.deps.Fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("fetch listing: %w", err)
	}
	r.logger.Debug("listing fetched", logger.String("url", page.FinalURL), logger.Duration("elapsed", page.Elapsed))
	links, err := r.deps.Parser.Links(bytes.NewReader(page.Body), page.FinalURL, r.deps.Selector)
	if err != nil {
		return fmt.Errorf("parse listing: %w", err)
	}
	r.summary.Pages++
	r.logger.Info("articles found", logger.String("url", pageURL), logger.Int("count", len(links)))

	for _, link := range links {
		if err := r.visit(ctx, link); err != nil {
			return err
		}
	}
	return nil
}

// visit paces, crawls and accounts one article. It only fails on cancellation.
func (r *Runner) visit(ctx context.Context, link parser.ArticleLink) error {
	if err := r.deps.Pacer.Wait(ctx); err != nil {
		return err
	}
	res := r.CrawlArticle(ctx, link)
	if err := ctx.Err(); err != nil {
		return err
	}

	r.summary.Articles++
	if res.Error != "" {
		r.summary.FailedArticles++
	}
	r.summary.Images += res.Images
	r.summary.PDFs += res.PDFs
	if r.opts.OnArticle != nil {
		r.opts.OnArticle(res)
	}
	return nil
}

// CrawlArticle fetches one article page, records its metadata and uploads
// its content images and PDF attachments. Failures are logged and reported
// in the result with zero counts; they never propagate.
func (r *Runner) CrawlArticle(ctx context.Context, link parser.ArticleLink) models.ArticleResult {
	log := r.logger.With(logger.String("article", link.URL))
	res := models.ArticleResult{URL: link.URL, Title: link.Title}
	fail := func(msg string, err error) models.ArticleResult {
		log.Error(msg, logger.Error(err))
		res.Error = err.Error()
		return res
	}

	log.Info("crawling article", logger.String("title", link.Title))

	page, err := r.deps.Fetcher.FetchPage(ctx, link.URL)
	if err != nil {
		return fail("article fetch failed", err)
	}
	log.Debug("article fetched", logger.Duration("elapsed", page.Elapsed), logger.Int("bytes", len(page.Body)))
	assets, err := r.deps.Parser.Assets(bytes.NewReader(page.Body), page.FinalURL)
	if err != nil {
		return fail("article parse failed", err)
	}

	articleID := r.deps.IDs.ArticleID(link.URL)
	res.ArticleID = articleID

	if r.deps.Docs != nil {
		title := link.Title
		if title == "" {
			title = r.opts.Untitled
		}
		err := r.deps.Docs.PutArticle(ctx, models.Article{
			ID:        articleID,
			Title:     title,
			URL:       link.URL,
			RunID:     r.runID,
			CrawledAt: time.Now().UTC(),
		})
		if err != nil {
			return fail("article metadata write failed", err)
		}
	}

	for _, img := range assets.Images {
		if !classifier.IsImageURL(img.URL) || !r.deps.Filter.Allow(img.URL) {
			continue
		}
		ref := models.AssetRef{URL: img.URL, Kind: models.KindImage, ArticleID: articleID, Index: img.Index}
		if r.upload(ctx, log, ref) {
			res.Images++
		}
	}
	for _, pdf := range assets.PDFs {
		ref := models.AssetRef{URL: pdf, Kind: models.KindPDF, ArticleID: articleID}
		if r.upload(ctx, log, ref) {
			res.PDFs++
		}
	}

	log.Info("article complete",
		logger.String("article_id", articleID),
		logger.Int("images", res.Images),
		logger.Int("pdfs", res.PDFs),
	)
	return res
}

func (r *Runner) upload(ctx context.Context, log logger.Logger, ref models.AssetRef) bool {
	_, err := r.uploader.Upload(ctx, ref)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrDuplicate):
	case errors.Is(err, ErrUnavailable):
		log.Warn("asset unavailable", logger.String("url", ref.URL), logger.Error(err))
	default:
		log.Error("asset upload failed", logger.String("url", ref.URL), logger.Error(err))
	}
	return false
}
