package ioformats

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoul-news-harvester/internal/models"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestReadURLsCSV(t *testing.T) {
	p := writeFile(t, "urls.csv", "id,URL\n1,https://news.seoul.go.kr/env/archives/1\n2, \n3,https://news.seoul.go.kr/env/archives/3\n")
	urls, err := ReadURLs(p)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://news.seoul.go.kr/env/archives/1",
		"https://news.seoul.go.kr/env/archives/3",
	}, urls)
}

func TestReadURLsNDJSON(t *testing.T) {
	p := writeFile(t, "urls.ndjson", `{"url":"https://a/1"}

https://a/2
{"other":"x"}
`)
	urls, err := ReadURLs(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a/1", "https://a/2", `{"other":"x"}`}, urls)
}

func TestReadURLsUnknownExtension(t *testing.T) {
	p := writeFile(t, "urls.txt", "https://a/1\nhttps://a/2\n")
	urls, err := ReadURLs(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a/1", "https://a/2"}, urls)
}

func TestParseCSVErrors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("id,link\n1,x\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoURLs)

	_, err = ParseNDJSON(strings.NewReader("\n\n"))
	assert.ErrorIs(t, err, ErrNoURLs)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport(&buf)
	r.Article(models.ArticleResult{URL: "https://a/archives/1", ArticleID: "1", Images: 2})
	r.Article(models.ArticleResult{URL: "https://a/archives/2", Error: "http status 404"})
	require.NoError(t, r.Close(models.Summary{RunID: "run-1", Articles: 2, Images: 2}))

	var lines []map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 3)
	assert.Equal(t, "article", lines[0]["type"])
	assert.Equal(t, "summary", lines[2]["type"])
	summary := lines[2]["summary"].(map[string]any)
	assert.Equal(t, "run-1", summary["runId"])
	assert.EqualValues(t, 2, summary["images"])
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	RenderSummary(&buf, models.Summary{
		RunID:      "run-1",
		Pages:      3,
		Images:     12,
		PDFs:       4,
		UniqueKeys: 16,
		Started:    start,
		Finished:   start.Add(90 * time.Second),
	})
	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Images uploaded")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "1m30s")
}
