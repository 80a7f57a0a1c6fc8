package crawler

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultUserAgent = "seoul-news-harvester/1.0 (+https://news.seoul.go.kr)"

var (
	// ErrInvalidURL is returned for URLs without a scheme or host.
	ErrInvalidURL = errors.New("invalid url")
	// ErrNonHTML is returned by FetchPage when the server declares a non-HTML body.
	ErrNonHTML = errors.New("non-html content")
	// ErrTooLarge is returned when a body exceeds the page or asset cap.
	ErrTooLarge = errors.New("body exceeds size cap")
)

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d for %s", e.Code, e.URL)
}

// Page is a fully read HTML response.
type Page struct {
	Body     []byte
	FinalURL string
	Elapsed  time.Duration
}

// Asset is a fully read binary response.
type Asset struct {
	Data        []byte
	ContentType string
	FinalURL    string
}

type HTTPClient struct {
	client    *http.Client
	pageCap   int64
	assetCap  int64
	userAgent string
}

func NewHTTPClient(timeout, dialTimeout time.Duration, pageCap, assetCap int64, userAgent string) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		pageCap:   pageCap,
		assetCap:  assetCap,
		userAgent: userAgent,
	}
}

func (h *HTTPClient) get(ctx context.Context, rawURL, accept string, gz bool) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if gz {
		req.Header.Set("Accept-Encoding", "gzip")
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	return resp, nil
}

// FetchPage GETs an HTML page and reads it fully. A body larger than the
// page cap is an ErrTooLarge rather than a truncated document.
func (h *HTTPClient) FetchPage(ctx context.Context, rawURL string) (*Page, error) {
	start := time.Now()
	resp, err := h.get(ctx, rawURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// an absent Content-Type is parsed as HTML
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "" && !strings.Contains(mediaType, "text/html") && !strings.Contains(mediaType, "application/xhtml+xml") {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNonHTML, rawURL, mediaType)
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		defer gz.Close()
		body = gz
	}

	data, err := readCapped(body, h.pageCap)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", rawURL, err)
	}
	return &Page{
		Body:     data,
		FinalURL: resp.Request.URL.String(),
		Elapsed:  time.Since(start),
	}, nil
}

// FetchAsset GETs a binary asset and reads it fully into memory.
func (h *HTTPClient) FetchAsset(ctx context.Context, rawURL string) (*Asset, error) {
	resp, err := h.get(ctx, rawURL, "*/*", false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readCapped(resp.Body, h.assetCap)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", rawURL, err)
	}

	return &Asset{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// readCapped reads r fully, failing with ErrTooLarge past limit bytes.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if n > limit {
		return nil, ErrTooLarge
	}
	return buf.Bytes(), nil
}
