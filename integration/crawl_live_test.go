//go:build integration

package integration

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoul-news-harvester/internal/bootstrap"
	"seoul-news-harvester/internal/config"
	"seoul-news-harvester/internal/crawler"
	"seoul-news-harvester/internal/parser"
	"seoul-news-harvester/pkg/logger"
)

// TestLiveListingPage crawls the first listing page of the real site into
// in-memory stores. It skips when the site is unreachable.
func TestLiveListingPage(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	client := crawler.NewHTTPClient(cfg.Crawl.Timeout, cfg.Crawl.DialTimeout, cfg.Crawl.PageSizeCap, cfg.Crawl.AssetSizeCap, "")
	page, err := client.FetchPage(ctx, cfg.Site.ListingURL(1))
	if err != nil {
		t.Skipf("skipping: listing page unreachable: %v", err)
	}
	links, err := parser.New().Links(bytes.NewReader(page.Body), page.FinalURL, parser.HeadingSelector{})
	require.NoError(t, err)
	if len(links) == 0 {
		t.Skip("skipping: no article links found, markup may have changed")
	}

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{DryRun: true, Logger: logger.NewNop()})
	require.NoError(t, err)
	defer app.Close()

	runner := app.NewRunner(1, 1, nil)
	sum, err := runner.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Pages)
	assert.Equal(t, len(links), sum.Articles)
	assert.Equal(t, sum.Images+sum.PDFs, sum.UniqueKeys)
}
