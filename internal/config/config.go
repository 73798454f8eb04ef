// Package config loads the signing proxy configuration from .env files
// and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lestrrat-go/ocisig"
	"github.com/sirupsen/logrus"
)

const (
	EnvTenancyOCID     = "OCI_TENANCY_OCID"
	EnvUserOCID        = "OCI_USER_OCID"
	EnvFingerprint     = "OCI_FINGERPRINT"
	EnvPrivateKey      = "OCI_PRIVATE_KEY"
	EnvService         = "OCI_SERVICE"
	EnvRegion          = "OCI_REGION"
	EnvDomain          = "OCI_DOMAIN"
	EnvListenAddr      = "LISTEN_ADDR"
	EnvLogLevel        = "LOG_LEVEL"
	EnvUpstreamTimeout = "UPSTREAM_TIMEOUT"
)

const (
	DefaultListenAddr      = ":8080"
	DefaultUpstreamTimeout = 30 * time.Second
)

// Config holds the proxy configuration
type Config struct {
	TenancyOCID string
	UserOCID    string
	Fingerprint string
	// PrivateKey is the PEM encoded RSA key. Literal "\n" sequences are
	// accepted in place of newlines.
	PrivateKey string

	Service string
	Region  string
	Domain  string

	ListenAddr      string
	LogLevel        logrus.Level
	UpstreamTimeout time.Duration
}

// Load reads the given .env files, then the process environment. Values
// in the environment take precedence over the files, and earlier files
// take precedence over later ones. Missing files are skipped. The process
// environment is never modified.
func Load(files ...string) (*Config, error) {
	vars := make(map[string]string)
	for i := len(files) - 1; i >= 0; i-- {
		m, err := godotenv.Read(files[i])
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", files[i], err)
		}
		for k, v := range m {
			vars[k] = v
		}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return Parse(vars)
}

// Parse builds a Config from a set of variables
func Parse(vars map[string]string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(vars[key]); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		TenancyOCID: get(EnvTenancyOCID, ""),
		UserOCID:    get(EnvUserOCID, ""),
		Fingerprint: get(EnvFingerprint, ""),
		PrivateKey:  get(EnvPrivateKey, ""),
		Service:     get(EnvService, ocisig.DefaultService),
		Region:      get(EnvRegion, ocisig.DefaultRegion),
		Domain:      get(EnvDomain, ocisig.DefaultDomain),
		ListenAddr:  get(EnvListenAddr, DefaultListenAddr),
	}

	var missing []string
	for _, kv := range [][2]string{
		{EnvTenancyOCID, cfg.TenancyOCID},
		{EnvUserOCID, cfg.UserOCID},
		{EnvFingerprint, cfg.Fingerprint},
		{EnvPrivateKey, cfg.PrivateKey},
	} {
		if kv[1] == "" {
			missing = append(missing, kv[0])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	level, err := logrus.ParseLevel(get(EnvLogLevel, "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
	}
	cfg.LogLevel = level

	timeout, err := time.ParseDuration(get(EnvUpstreamTimeout, DefaultUpstreamTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvUpstreamTimeout, err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("invalid %s: must not be negative", EnvUpstreamTimeout)
	}
	cfg.UpstreamTimeout = timeout

	return cfg, nil
}

func (c *Config) KeyID() ocisig.KeyID {
	return ocisig.KeyID{
		Tenancy:     c.TenancyOCID,
		User:        c.UserOCID,
		Fingerprint: c.Fingerprint,
	}
}

// Credentials parses the private key and returns signing credentials.
func (c *Config) Credentials() (*ocisig.Credentials, error) {
	return ocisig.NewCredentials(c.KeyID(), c.PrivateKey)
}

// Endpoint returns the default endpoint for proxied calls.
func (c *Config) Endpoint() ocisig.Endpoint {
	return ocisig.Endpoint{
		Service: c.Service,
		Region:  c.Region,
		Domain:  c.Domain,
	}
}
