// Package classifier decides which discovered image URLs are article content
// and which are site furniture (icons, buttons, theme assets).
package classifier

import (
	"net/url"
	"path"
	"strings"
)

// ImageFilter reports whether an absolute image URL should be harvested.
type ImageFilter interface {
	Allow(rawURL string) bool
}

// FilterFunc adapts a plain predicate to ImageFilter.
type FilterFunc func(rawURL string) bool

func (f FilterFunc) Allow(rawURL string) bool { return f(rawURL) }

// DefaultChromePatterns are substrings that mark site-furniture assets on the
// news site: the tag icon, the back-to-top button, the branding banner and
// anything served from theme or shared asset directories.
var DefaultChromePatterns = []string{
	"icon_tag.gif",
	"btn_top.png",
	"img-seoultalk.png",
	"common/",
	"themes/",
	"wp-content/",
}

// Blacklist rejects any URL containing one of its patterns.
//
// This is a substring heuristic, not a structural classifier: a content image
// whose path happens to contain a pattern is rejected, and chrome that matches
// nothing is accepted.
type Blacklist struct {
	patterns []string
}

// New returns the default blacklist extended with extra patterns.
func New(extra ...string) *Blacklist {
	patterns := make([]string, 0, len(DefaultChromePatterns)+len(extra))
	patterns = append(patterns, DefaultChromePatterns...)
	for _, p := range extra {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return &Blacklist{patterns: patterns}
}

func (b *Blacklist) Allow(rawURL string) bool {
	for _, p := range b.patterns {
		if strings.Contains(rawURL, p) {
			return false
		}
	}
	return true
}

// Patterns returns a copy of the active patterns.
func (b *Blacklist) Patterns() []string {
	return append([]string(nil), b.patterns...)
}

var imageExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

// IsImageURL reports whether the lowercased URL path ends in a known raster
// image extension. Query strings and fragments are ignored.
func IsImageURL(rawURL string) bool {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	_, ok := imageExts[path.Ext(strings.ToLower(p))]
	return ok
}

// IsPDFURL reports whether the lowercased URL ends in ".pdf".
func IsPDFURL(rawURL string) bool {
	return strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
}
