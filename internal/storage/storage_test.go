package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoul-news-harvester/pkg/logger"
)

func TestMinioStorePut(t *testing.T) {
	type captured struct {
		method, path, acl, contentType, body string
	}
	var got captured
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = captured{
			method:      r.Method,
			path:        r.URL.Path,
			acl:         r.Header.Get("X-Amz-Acl"),
			contentType: r.Header.Get("Content-Type"),
			body:        string(b),
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	endpoint := strings.TrimPrefix(ts.URL, "http://")
	store, err := NewMinioStore(MinioConfig{
		Endpoint:  endpoint,
		AccessKey: "AK",
		SecretKey: "SK",
		Region:    "us-east-1",
		Bucket:    "news",
	}, logger.NewNop())
	require.NoError(t, err)

	publicURL, err := store.Put(context.Background(), "images/12345/001.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/news/images/12345/001.jpg", got.path)
	assert.Equal(t, "public-read", got.acl)
	assert.Equal(t, "image/jpeg", got.contentType)
	assert.Equal(t, "jpeg", got.body)
	assert.Equal(t, "http://"+endpoint+"/news/images/12345/001.jpg", publicURL)
}

func TestMinioConfigValidate(t *testing.T) {
	assert.Error(t, MinioConfig{Bucket: "b", AccessKey: "a", SecretKey: "s"}.Validate())
	assert.Error(t, MinioConfig{Endpoint: "e", AccessKey: "a", SecretKey: "s"}.Validate())
	assert.Error(t, MinioConfig{Endpoint: "e", Bucket: "b"}.Validate())
	assert.NoError(t, MinioConfig{Endpoint: "e", Bucket: "b", AccessKey: "a", SecretKey: "s"}.Validate())
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/bucket.app",
		publicBaseURL(MinioConfig{Endpoint: "storage.googleapis.com", UseSSL: true, Bucket: "bucket.app"}))
	assert.Equal(t, "https://cdn.example.com/b",
		publicBaseURL(MinioConfig{Endpoint: "s3", Bucket: "b", PublicBaseURL: "https://cdn.example.com/"}))
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore("")
	u, err := m.Put(context.Background(), "pdfs/1/보고서 2024.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "memory://harvest/pdfs/1/%EB%B3%B4%EA%B3%A0%EC%84%9C%202024.pdf", u)

	obj, ok := m.Get("pdfs/1/보고서 2024.pdf")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, 1, m.Keys())

	_, err = m.Put(context.Background(), "", nil, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}
