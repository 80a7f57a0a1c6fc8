package parser

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Parser turns fetched HTML into goquery documents and pulls out the links
// and assets the harvester cares about.
type Parser struct{}

func New() *Parser { return &Parser{} }

var whitespaceRe = regexp.MustCompile(`\s+`)

// ArticleLink is one article entry found on a listing page.
type ArticleLink struct {
	URL   string
	Title string
}

// ImageCandidate is an <img> with a src attribute. Index is the 1-based
// position of the tag among all <img> tags on the page.
type ImageCandidate struct {
	Index int
	URL   string
}

// ArticleAssets holds the raw image and PDF candidates of an article page.
type ArticleAssets struct {
	Images []ImageCandidate
	PDFs   []string
}

// Parse decodes r as UTF-8 regardless of what the server declared and builds
// a document.
func (p *Parser) Parse(r io.Reader) (*goquery.Document, error) {
	utf8r, err := charset.NewReaderLabel("utf-8", r)
	if err != nil {
		return nil, fmt.Errorf("utf-8 reader: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(utf8r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Links runs sel over the listing page read from r.
func (p *Parser) Links(r io.Reader, pageURL string, sel LinkSelector) ([]ArticleLink, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("page url: %w", err)
	}
	doc, err := p.Parse(r)
	if err != nil {
		return nil, err
	}
	return sel.Select(doc, base), nil
}

// Assets collects every <img src> and every <a href> that resolves to a PDF.
func (p *Parser) Assets(r io.Reader, articleURL string) (ArticleAssets, error) {
	base, err := url.Parse(articleURL)
	if err != nil {
		return ArticleAssets{}, fmt.Errorf("article url: %w", err)
	}
	doc, err := p.Parse(r)
	if err != nil {
		return ArticleAssets{}, err
	}

	var out ArticleAssets
	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}
		if abs, ok := resolve(base, src); ok {
			out.Images = append(out.Images, ImageCandidate{Index: i + 1, URL: abs})
		}
	})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs, ok := resolve(base, href)
		if ok && strings.HasSuffix(strings.ToLower(abs), ".pdf") {
			out.PDFs = append(out.PDFs, abs)
		}
	})
	return out, nil
}

func resolve(base *url.URL, ref string) (string, bool) {
	u, err := base.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
