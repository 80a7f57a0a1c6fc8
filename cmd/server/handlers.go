package main

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"seoul-news-harvester/internal/ioformats"
	"seoul-news-harvester/internal/models"
	"seoul-news-harvester/internal/pipeline"
	"seoul-news-harvester/pkg/logger"
)

// runnerFactory starts fresh runs. *bootstrap.App satisfies it.
type runnerFactory interface {
	NewRunner(start, end int, onArticle func(models.ArticleResult)) *pipeline.Runner
}

type runReq struct {
	StartPage int      `json:"start_page"`
	EndPage   int      `json:"end_page"`
	URLs      []string `json:"urls"`
}

var errBusy = errors.New("a run is already in progress")

// handler serves one run at a time.
type handler struct {
	runs runnerFactory
	log  logger.Logger
	mu   sync.Mutex
}

func newHandler(runs runnerFactory, log logger.Logger) *handler {
	return &handler{runs: runs, log: log}
}

func (h *handler) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLog())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/runs", h.startRun)
	r.POST("/runs/upload", h.uploadRun)
	return r
}

// startRun runs a crawl over a page range, or over explicit article URLs,
// and answers with the run summary.
func (h *handler) startRun(c *gin.Context) {
	var req runReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}
	if req.StartPage < 0 || req.EndPage < 0 || (req.StartPage > 0 && req.EndPage > 0 && req.StartPage > req.EndPage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_page must be >= 1 and <= end_page"})
		return
	}

	if !h.mu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": errBusy.Error()})
		return
	}
	defer h.mu.Unlock()

	runner := h.runs.NewRunner(req.StartPage, req.EndPage, nil)
	var (
		sum models.Summary
		err error
	)
	if len(req.URLs) > 0 {
		sum, err = runner.CrawlURLs(c.Request.Context(), req.URLs)
	} else {
		sum, err = runner.Run(c.Request.Context())
	}
	if errors.Is(err, pipeline.ErrInvalidRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "summary": sum})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// uploadRun takes a multipart URL list (field "file", CSV or NDJSON) and
// streams one NDJSON line per article followed by the summary line.
func (h *handler) uploadRun(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file part 'file' required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload"})
		return
	}
	urls, err := ioformats.ParseURLs(f, fh.Filename)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.mu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": errBusy.Error()})
		return
	}
	defer h.mu.Unlock()

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)
	report := ioformats.NewReport(flushWriter{c.Writer})

	runner := h.runs.NewRunner(0, 0, report.Article)
	sum, err := runner.CrawlURLs(c.Request.Context(), urls)
	if err != nil {
		_ = c.Error(err)
	}
	if err := report.Close(sum); err != nil {
		h.log.Warn("report stream failed", logger.String("run_id", sum.RunID), logger.Error(err))
	}
}

type flushWriter struct {
	w gin.ResponseWriter
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	fw.w.Flush()
	return n, err
}

func (h *handler) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logger.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			h.log.Error("request", fields...)
			return
		}
		h.log.Info("request", fields...)
	}
}
