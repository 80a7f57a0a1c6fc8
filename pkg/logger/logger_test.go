package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoul-news-harvester/pkg/logger"
)

func TestNew_WritesStructuredFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	l, err := logger.New(logger.Config{Level: "info", Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.With(logger.String("run_id", "r-1")).Info("uploaded", logger.String("key", "images/1/001.jpg"))
	l.Debug("filtered out by level")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"uploaded"`)
	assert.Contains(t, out, `"run_id":"r-1"`)
	assert.Contains(t, out, `"key":"images/1/001.jpg"`)
	assert.NotContains(t, out, "filtered out by level")
}

func TestNop(t *testing.T) {
	l := logger.NewNop()
	l.Info("ignored", logger.Int("n", 1))
	assert.Equal(t, l, l.With(logger.String("k", "v")))
	assert.NoError(t, l.Sync())
}
