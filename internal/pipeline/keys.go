package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"seoul-news-harvester/internal/models"
)

// ErrNoFilename is returned when a URL path has no usable basename.
var ErrNoFilename = errors.New("url has no file name")

// UnknownArticleID is used when ArchiveID finds no numeric segment.
const UnknownArticleID = "unknown"

// Filename derives the stored file name of an asset from the URL path as it
// appears on the wire; percent-escapes are kept. With an index it is the
// zero-padded ordinal plus the path extension, ".jpg" when the path has none.
// Without an index it is the path basename.
func Filename(rawURL string, index int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse asset url: %w", err)
	}
	p := u.EscapedPath()
	if index > 0 {
		ext := path.Ext(p)
		if ext == "" {
			ext = ".jpg"
		}
		return fmt.Sprintf("%03d%s", index, ext), nil
	}
	if p == "" || strings.HasSuffix(p, "/") {
		return "", fmt.Errorf("%w: %s", ErrNoFilename, rawURL)
	}
	return path.Base(p), nil
}

// DedupKey is the composite key checked against the run's Dedup set.
func DedupKey(articleID, filename string) string {
	if articleID == "" {
		return filename
	}
	return articleID + "/" + filename
}

// ObjectKey is the storage path of an asset.
func ObjectKey(kind models.AssetKind, articleID, filename string) string {
	if articleID == "" {
		return string(kind) + "/" + filename
	}
	return string(kind) + "/" + articleID + "/" + filename
}

// IDStrategy derives an article identifier from its URL.
type IDStrategy interface {
	ArticleID(articleURL string) string
}

var archiveIDRe = regexp.MustCompile(`/archives/(\d+)`)

// ArchiveID extracts the numeric segment after /archives/, or "unknown".
type ArchiveID struct{}

func (ArchiveID) ArticleID(articleURL string) string {
	if m := archiveIDRe.FindStringSubmatch(articleURL); m != nil {
		return m[1]
	}
	return UnknownArticleID
}

// LastSegment takes the last non-empty path segment of the URL.
type LastSegment struct{}

func (LastSegment) ArticleID(articleURL string) string {
	trimmed := strings.TrimRight(articleURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// IDStrategyByName maps the configured strategy name to an implementation.
func IDStrategyByName(name string) (IDStrategy, bool) {
	switch strings.ToLower(name) {
	case "", "archive":
		return ArchiveID{}, true
	case "segment":
		return LastSegment{}, true
	default:
		return nil, false
	}
}
