package models

import "time"

// AssetKind tags an asset and doubles as the top-level storage prefix.
type AssetKind string

const (
	KindImage AssetKind = "images"
	KindPDF   AssetKind = "pdfs"
)

// Article is the metadata record kept per crawled article.
type Article struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	URL       string    `json:"url" db:"url"`
	RunID     string    `json:"run_id,omitempty" db:"run_id"`
	CrawledAt time.Time `json:"crawled_at" db:"crawled_at"`
}

// AssetRef points at an image or attachment discovered on an article page.
// Index is 1-based and only set for images; zero means no index.
type AssetRef struct {
	URL       string    `json:"url"`
	Kind      AssetKind `json:"kind"`
	ArticleID string    `json:"articleId,omitempty"`
	Index     int       `json:"index,omitempty"`
}

// ArticleResult reports what one article contributed to a run.
type ArticleResult struct {
	URL       string `json:"url"`
	ArticleID string `json:"articleId,omitempty"`
	Title     string `json:"title,omitempty"`
	Images    int    `json:"images"`
	PDFs      int    `json:"pdfs"`
	Error     string `json:"error,omitempty"`
}

// Summary is the run total printed at the end of a crawl.
type Summary struct {
	RunID          string    `json:"runId"`
	Pages          int       `json:"pages"`
	FailedPages    int       `json:"failedPages"`
	Articles       int       `json:"articles"`
	FailedArticles int       `json:"failedArticles"`
	Images         int       `json:"images"`
	PDFs           int       `json:"pdfs"`
	UniqueKeys     int       `json:"uniqueKeys"`
	Started        time.Time `json:"started"`
	Finished       time.Time `json:"finished"`
}
