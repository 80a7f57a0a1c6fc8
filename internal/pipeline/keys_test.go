package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoul-news-harvester/internal/models"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		url   string
		index int
		want  string
	}{
		{"https://x/y/photo.jpeg", 5, "005.jpeg"},
		{"https://x/y/photo", 12, "012.jpg"},
		{"https://x/y/photo.PNG?w=300", 1, "001.PNG"},
		{"https://x/y/foo.png", 0, "foo.png"},
		{"https://x/files/%EB%B3%B4%EA%B3%A0%EC%84%9C.pdf", 0, "%EB%B3%B4%EA%B3%A0%EC%84%9C.pdf"},
		{"https://x/files/2024%2Freport.pdf", 0, "2024%2Freport.pdf"},
	}
	for _, tt := range tests {
		got, err := Filename(tt.url, tt.index)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got, tt.url)
	}
}

func TestEncodedNamesKeepDistinctKeys(t *testing.T) {
	a, err := Filename("https://x/files/2024%2Freport.pdf", 0)
	require.NoError(t, err)
	b, err := Filename("https://x/files/2023%2Freport.pdf", 0)
	require.NoError(t, err)

	assert.NotEqual(t, DedupKey("1", a), DedupKey("1", b))
}

func TestFilenameWithoutBasename(t *testing.T) {
	for _, u := range []string{"https://x/files/", "https://x"} {
		_, err := Filename(u, 0)
		if !errors.Is(err, ErrNoFilename) {
			t.Errorf("Filename(%q) error = %v, want ErrNoFilename", u, err)
		}
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "12345/001.jpg", DedupKey("12345", "001.jpg"))
	assert.Equal(t, "foo.png", DedupKey("", "foo.png"))
	assert.Equal(t, "images/12345/001.jpg", ObjectKey(models.KindImage, "12345", "001.jpg"))
	assert.Equal(t, "pdfs/report.pdf", ObjectKey(models.KindPDF, "", "report.pdf"))
}

func TestArchiveID(t *testing.T) {
	var s ArchiveID
	assert.Equal(t, "12345", s.ArticleID("https://news.seoul.go.kr/env/archives/12345"))
	assert.Equal(t, "12345", s.ArticleID("https://news.seoul.go.kr/env/archives/12345/"))
	assert.Equal(t, UnknownArticleID, s.ArticleID("https://example.org/post/abc"))
}

func TestLastSegment(t *testing.T) {
	var s LastSegment
	assert.Equal(t, "abc", s.ArticleID("https://news.seoul.go.kr/env/archives/abc/"))
	assert.Equal(t, "12345", s.ArticleID("https://news.seoul.go.kr/env/archives/12345"))
}

func TestIDStrategyByName(t *testing.T) {
	s, ok := IDStrategyByName("archive")
	require.True(t, ok)
	assert.IsType(t, ArchiveID{}, s)

	s, ok = IDStrategyByName("Segment")
	require.True(t, ok)
	assert.IsType(t, LastSegment{}, s)

	_, ok = IDStrategyByName("hash")
	assert.False(t, ok)
}

func TestDedup(t *testing.T) {
	d := NewDedup()
	assert.Equal(t, 0, d.Len())
	d.Add("1/001.jpg")
	d.Add("1/001.jpg")
	assert.True(t, d.Has("1/001.jpg"))
	assert.False(t, d.Has("2/001.jpg"))
	assert.Equal(t, 1, d.Len())
}
