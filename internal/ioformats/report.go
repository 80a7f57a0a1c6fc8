package ioformats

import (
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"seoul-news-harvester/internal/models"
)

// Report streams one NDJSON line per article result, then a final summary
// line. Write errors are sticky and returned by Close.
type Report struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

func NewReport(w io.Writer) *Report {
	return &Report{w: w}
}

type reportLine struct {
	Type    string                `json:"type"`
	Article *models.ArticleResult `json:"article,omitempty"`
	Summary *models.Summary       `json:"summary,omitempty"`
}

// Article records one article result. It matches pipeline.Options.OnArticle.
func (r *Report) Article(res models.ArticleResult) {
	r.write(reportLine{Type: "article", Article: &res})
}

// Close writes the summary line and reports the first write error.
func (r *Report) Close(sum models.Summary) error {
	r.write(reportLine{Type: "summary", Summary: &sum})
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Report) write(line reportLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	r.err = WriteNDJSON(r.w, line)
}

// RenderSummary prints the run totals as a table.
func RenderSummary(w io.Writer, sum models.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Run " + sum.RunID)

	t.AppendHeader(table.Row{"Metric", "Count"})
	t.AppendRows([]table.Row{
		{"Listing pages", sum.Pages},
		{"Failed pages", sum.FailedPages},
		{"Articles", sum.Articles},
		{"Failed articles", sum.FailedArticles},
		{"Images uploaded", sum.Images},
		{"PDFs uploaded", sum.PDFs},
		{"Unique keys", sum.UniqueKeys},
	})
	if !sum.Started.IsZero() && !sum.Finished.IsZero() {
		t.AppendRow(table.Row{"Elapsed", sum.Finished.Sub(sum.Started).Round(time.Millisecond).String()})
	}
	t.Render()
}
