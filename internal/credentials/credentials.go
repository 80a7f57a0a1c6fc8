// Package credentials loads the credential bundle used to reach the object
// store and the document store.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrEmptyPayload is returned when a source yields no bytes.
var ErrEmptyPayload = errors.New("credential payload is empty")

// Bundle is the JSON document held in the secret or the local file.
type Bundle struct {
	Storage struct {
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
	} `json:"storage"`
	Elasticsearch struct {
		Username string `json:"username"`
		Password string `json:"password"`
		APIKey   string `json:"api_key"`
	} `json:"elasticsearch"`
	Postgres struct {
		DSN string `json:"dsn"`
	} `json:"postgres"`
}

// Source yields a credential bundle.
type Source interface {
	Load(ctx context.Context) (*Bundle, error)
}

// Parse decodes a JSON bundle.
func Parse(data []byte) (*Bundle, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode credential bundle: %w", err)
	}
	return &b, nil
}

// FileSource reads the bundle from a local JSON file.
type FileSource struct {
	Path string
}

func (f FileSource) Load(context.Context) (*Bundle, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	return Parse(data)
}

// Static returns a fixed bundle. Used when credentials come from config or
// the environment rather than a secret.
type Static struct {
	Bundle Bundle
}

func (s Static) Load(context.Context) (*Bundle, error) {
	b := s.Bundle
	return &b, nil
}
