package diagramconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuthConfig enables client-credentials authentication against the diagram
// configuration service. The client id and secret come either inline or from
// CredentialsFile.
type OAuthConfig struct {
	ClientID        string   `json:"clientId,omitempty" yaml:"clientId" toml:"client-id"`
	ClientSecret    string   `json:"-" yaml:"clientSecret" toml:"client-secret"`
	TokenURL        string   `json:"tokenUrl,omitempty" yaml:"tokenUrl" toml:"token-url"`
	Scopes          []string `json:"scopes,omitempty" yaml:"scopes" toml:"scopes"`
	CredentialsFile string   `json:"credentialsFile,omitempty" yaml:"credentialsFile" toml:"credentials-file"`
}

// ClientCredentials is the on-disk form of an OAuth client id and secret.
type ClientCredentials struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// Enabled reports whether requests should be authenticated.
func (c OAuthConfig) Enabled() bool { return c.TokenURL != "" }

// TokenSource returns a caching token source for the configured client.
func (c OAuthConfig) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	creds := ClientCredentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
	if creds.ClientID == "" && c.CredentialsFile != "" {
		loaded, err := LoadClientCredentials(c.CredentialsFile)
		if err != nil {
			return nil, err
		}
		creds = loaded
	}
	if creds.ClientID == "" {
		return nil, fmt.Errorf("oauth: client id is required when tokenUrl is set")
	}

	cc := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     c.TokenURL,
		Scopes:       c.Scopes,
	}
	return cc.TokenSource(ctx), nil
}

// SaveClientCredentials writes creds to path, readable by the owner only.
func SaveClientCredentials(path string, creds ClientCredentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadClientCredentials reads credentials saved by SaveClientCredentials.
func LoadClientCredentials(path string) (ClientCredentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientCredentials{}, fmt.Errorf("oauth credentials: %w", err)
	}
	var creds ClientCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return ClientCredentials{}, fmt.Errorf("oauth credentials %s: %w", filepath.Base(path), err)
	}
	return creds, nil
}
