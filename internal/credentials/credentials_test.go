package credentials

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundleJSON = `{
  "storage": {"access_key": "GOOG1EXAMPLE", "secret_key": "s3cr3t"},
  "elasticsearch": {"username": "elastic", "password": "pw"},
  "postgres": {"dsn": "postgres://u:p@db/news?sslmode=disable"}
}`

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(bundleJSON), 0o600))

	b, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GOOG1EXAMPLE", b.Storage.AccessKey)
	assert.Equal(t, "s3cr3t", b.Storage.SecretKey)
	assert.Equal(t, "elastic", b.Elasticsearch.Username)
	assert.Equal(t, "postgres://u:p@db/news?sslmode=disable", b.Postgres.DSN)
}

func TestFileSourceMissing(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = Parse([]byte("{not json"))
	assert.Error(t, err)
}

func TestSecretManagerName(t *testing.T) {
	s := SecretManagerSource{Project: "zeromap-8b449", Secret: "firebase-service-account"}
	assert.Equal(t, "projects/zeromap-8b449/secrets/firebase-service-account/versions/latest", s.Name())

	s.Version = "3"
	assert.Equal(t, "projects/zeromap-8b449/secrets/firebase-service-account/versions/3", s.Name())
}

func TestStatic(t *testing.T) {
	var b Bundle
	b.Storage.AccessKey = "ak"
	got, err := Static{Bundle: b}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ak", got.Storage.AccessKey)
}
