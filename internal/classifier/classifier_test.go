package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlacklistAllow(t *testing.T) {
	cl := New()
	tests := []struct {
		url  string
		want bool
	}{
		{"https://news.seoul.go.kr/env/files/2024/05/photo.png", true},
		{"https://news.seoul.go.kr/env/wp-content/uploads/2024/05/photo.jpg", false},
		{"https://news.seoul.go.kr/wp-content/photo.webp", false},
		{"https://news.seoul.go.kr/env/common/img/icon_tag.gif", false},
		{"https://news.seoul.go.kr/img/btn_top.png", false},
		{"https://news.seoul.go.kr/img/img-seoultalk.png", false},
		{"https://news.seoul.go.kr/themes/seoul/logo.png", false},
	}
	for _, tt := range tests {
		if got := cl.Allow(tt.url); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestBlacklistExtraPatterns(t *testing.T) {
	cl := New("banner_", "  ")
	assert.False(t, cl.Allow("https://example.com/banner_01.png"))
	assert.True(t, New().Allow("https://example.com/banner_01.png"))
	assert.Len(t, cl.Patterns(), len(DefaultChromePatterns)+1)
}

func TestFilterFunc(t *testing.T) {
	var f ImageFilter = FilterFunc(func(string) bool { return false })
	assert.False(t, f.Allow("https://example.com/a.png"))
}

func TestIsImageURL(t *testing.T) {
	assert.True(t, IsImageURL("https://example.com/a/b/PHOTO.JPEG"))
	assert.True(t, IsImageURL("https://example.com/a.webp?w=300"))
	assert.False(t, IsImageURL("https://example.com/a.svg"))
	assert.False(t, IsImageURL("https://example.com/image"))
}

func TestIsPDFURL(t *testing.T) {
	assert.True(t, IsPDFURL("https://example.com/files/Report.PDF"))
	assert.False(t, IsPDFURL("https://example.com/files/report.pdf?dl=1"))
}
