package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkSelector finds article entries on a listing page, in document order.
type LinkSelector interface {
	Select(doc *goquery.Document, base *url.URL) []ArticleLink
}

// HeadingSelector takes the first anchor inside every h3 carrying Class.
// The anchor text becomes the article title.
type HeadingSelector struct {
	Class string
}

func (h HeadingSelector) Select(doc *goquery.Document, base *url.URL) []ArticleLink {
	class := h.Class
	if class == "" {
		class = "tit"
	}
	var links []ArticleLink
	doc.Find("h3." + class).Each(func(_ int, s *goquery.Selection) {
		a := s.Find("a").First()
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		abs, ok := resolve(base, href)
		if !ok {
			return
		}
		links = append(links, ArticleLink{URL: abs, Title: cleanText(a.Text())})
	})
	return links
}

// PathSelector takes every anchor whose href contains ArticleMarker and not
// CategoryMarker. Titles are left empty; duplicates on the same page are
// dropped by resolved URL.
type PathSelector struct {
	ArticleMarker  string
	CategoryMarker string
}

func (p PathSelector) Select(doc *goquery.Document, base *url.URL) []ArticleLink {
	article, category := p.ArticleMarker, p.CategoryMarker
	if article == "" {
		article = "/env/archives/"
	}
	if category == "" {
		category = "/archives/category/"
	}

	seen := make(map[string]struct{})
	var links []ArticleLink
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(href, article) || strings.Contains(href, category) {
			return
		}
		abs, ok := resolve(base, href)
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, ArticleLink{URL: abs})
	})
	return links
}

// SelectorByName maps the configured selector name to an implementation.
func SelectorByName(name, headingClass, articleMarker, categoryMarker string) (LinkSelector, bool) {
	switch strings.ToLower(name) {
	case "", "heading":
		return HeadingSelector{Class: headingClass}, true
	case "path":
		return PathSelector{ArticleMarker: articleMarker, CategoryMarker: categoryMarker}, true
	default:
		return nil, false
	}
}
