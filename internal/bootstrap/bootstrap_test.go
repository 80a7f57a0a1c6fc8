package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoul-news-harvester/internal/config"
	"seoul-news-harvester/internal/credentials"
	"seoul-news-harvester/internal/docstore"
	"seoul-news-harvester/internal/storage"
	"seoul-news-harvester/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func withKeys() credentials.Static {
	var b credentials.Bundle
	b.Storage.AccessKey = "GOOG1EXAMPLE"
	b.Storage.SecretKey = "secret"
	return credentials.Static{Bundle: b}
}

func TestStartupErrorMatching(t *testing.T) {
	err := startupErr("credentials", credentials.ErrEmptyPayload)

	assert.ErrorIs(t, err, ErrStartup)
	assert.ErrorIs(t, err, credentials.ErrEmptyPayload)

	var se *StartupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "credentials", se.Stage)
	assert.Contains(t, err.Error(), "startup: credentials")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Site.StartPage, cfg.Site.EndPage = 3, 1

	_, err := New(context.Background(), cfg, Options{Logger: logger.NewNop()})
	assert.ErrorIs(t, err, ErrStartup)
	assert.ErrorIs(t, err, config.ErrInvalidPageRange)

	_, err = New(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrStartup)
}

func TestNewDryRun(t *testing.T) {
	cfg := testConfig(t)

	app, err := New(context.Background(), cfg, Options{DryRun: true, Logger: logger.NewNop()})
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &storage.MemoryStore{}, app.Deps.Store)
	assert.IsType(t, &docstore.MemoryStore{}, app.Deps.Docs)

	r := app.NewRunner(0, 0, nil)
	assert.NotEmpty(t, r.RunID())
	assert.Equal(t, 0, r.Dedup().Len())

	// every runner owns a fresh dedup set
	assert.NotSame(t, r.Dedup(), app.NewRunner(1, 1, nil).Dedup())
}

func TestNewCredentialFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Credentials.Source = "file"
	cfg.Credentials.Path = filepath.Join(t.TempDir(), "missing.json")

	_, err := New(context.Background(), cfg, Options{Logger: logger.NewNop()})

	var se *StartupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "credentials", se.Stage)
}

func TestNewMissingStorageKeys(t *testing.T) {
	cfg := testConfig(t)
	cfg.Documents.Backend = "none"

	_, err := New(context.Background(), cfg, Options{Logger: logger.NewNop(), Credentials: credentials.Static{}})

	var se *StartupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "object store", se.Stage)
}

func TestNewWithoutDocumentStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Documents.Backend = "none"

	app, err := New(context.Background(), cfg, Options{Logger: logger.NewNop(), Credentials: withKeys()})
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &storage.MinioStore{}, app.Deps.Store)
	assert.Nil(t, app.Deps.Docs)
}

func TestNewElasticsearchBackend(t *testing.T) {
	cfg := testConfig(t)

	app, err := New(context.Background(), cfg, Options{Logger: logger.NewNop(), Credentials: withKeys()})
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &docstore.ElasticsearchStore{}, app.Deps.Docs)
}

func TestNewPostgresWithoutDSN(t *testing.T) {
	cfg := testConfig(t)
	cfg.Documents.Backend = "postgres"

	_, err := New(context.Background(), cfg, Options{Logger: logger.NewNop(), Credentials: withKeys()})

	var se *StartupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "document store", se.Stage)
}
