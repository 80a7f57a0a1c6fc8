package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seoul-news-harvester/internal/bootstrap"
	"seoul-news-harvester/internal/config"
	"seoul-news-harvester/internal/ioformats"
	"seoul-news-harvester/internal/models"
	"seoul-news-harvester/pkg/logger"
)

func newCrawlCmd() *cobra.Command {
	var (
		input      string
		reportPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the configured listing pages and upload their assets",
		Long: `Crawl walks listing pages start-page..end-page, visits every article,
uploads content images and PDF attachments to the object store and writes the
article title and URL to the document store. With --input it visits the
article URLs listed in a CSV or NDJSON file instead of the listing pages.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(cfgFile)
			if err != nil {
				return &bootstrap.StartupError{Stage: "config", Err: err}
			}
			for key, flag := range map[string]string{
				"site.start_page":                "start-page",
				"site.end_page":                  "end-page",
				"site.link_selector":             "selector",
				"crawl.interval":                 "interval",
				"crawl.check_dedup_before_fetch": "check-before-fetch",
			} {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return fmt.Errorf("bind --%s: %w", flag, err)
				}
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			var urls []string
			if input != "" {
				if urls, err = ioformats.ReadURLs(input); err != nil {
					return &bootstrap.StartupError{Stage: "input", Err: err}
				}
			}

			ctx := cmd.Context()
			app, err := bootstrap.New(ctx, cfg, bootstrap.Options{DryRun: dryRun})
			if err != nil {
				return err
			}
			defer app.Close()

			var (
				report    *ioformats.Report
				onArticle func(models.ArticleResult)
			)
			if reportPath != "" {
				f, err := os.Create(reportPath)
				if err != nil {
					return &bootstrap.StartupError{Stage: "report", Err: err}
				}
				defer f.Close()
				report = ioformats.NewReport(f)
				onArticle = report.Article
			}

			runner := app.NewRunner(cfg.Site.StartPage, cfg.Site.EndPage, onArticle)
			app.Logger.Info("run started",
				logger.String("run_id", runner.RunID()),
				logger.Int("start_page", cfg.Site.StartPage),
				logger.Int("end_page", cfg.Site.EndPage),
				logger.Int("input_urls", len(urls)),
				logger.Bool("dry_run", dryRun),
			)

			var sum models.Summary
			if len(urls) > 0 {
				sum, err = runner.CrawlURLs(ctx, urls)
			} else {
				sum, err = runner.Run(ctx)
			}

			if report != nil {
				if rerr := report.Close(sum); rerr != nil {
					app.Logger.Error("report write failed", logger.String("path", reportPath), logger.Error(rerr))
				}
			}
			ioformats.RenderSummary(cmd.OutOrStdout(), sum)
			return err
		},
	}

	f := cmd.Flags()
	f.Int("start-page", 0, "first listing page (default from config, 1)")
	f.Int("end-page", 0, "last listing page, inclusive (default from config, 1)")
	f.String("selector", "", "article link selector: heading or path")
	f.Duration("interval", 0, "minimum interval between article fetches (default from config, 500ms)")
	f.Bool("check-before-fetch", false, "skip downloading assets whose key was already uploaded this run")
	f.StringVar(&input, "input", "", "crawl article URLs from a CSV (url column) or NDJSON file")
	f.StringVar(&reportPath, "report", "", "write an NDJSON per-article report to this file")
	f.BoolVar(&dryRun, "dry-run", false, "use in-memory stores instead of the bucket and document store")
	return cmd
}
