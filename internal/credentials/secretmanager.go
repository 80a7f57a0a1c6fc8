package credentials

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretManagerSource reads the latest version of a Google Cloud Secret
// Manager secret and decodes it as a Bundle.
type SecretManagerSource struct {
	Project string
	Secret  string
	Version string // defaults to "latest"
}

// Name is the full resource name of the secret version.
func (s SecretManagerSource) Name() string {
	version := s.Version
	if version == "" {
		version = "latest"
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", s.Project, s.Secret, version)
}

func (s SecretManagerSource) Load(ctx context.Context) (*Bundle, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: s.Name()})
	if err != nil {
		return nil, fmt.Errorf("access secret %s: %w", s.Name(), err)
	}
	return Parse(resp.GetPayload().GetData())
}
