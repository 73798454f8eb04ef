package ocisig

import (
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// KeyID is the identity triple OCI uses to look up the public key that
// verifies a signature.
type KeyID struct {
	Tenancy     string
	User        string
	Fingerprint string
}

// String returns the keyId value, "<tenancy>/<user>/<fingerprint>".
func (k KeyID) String() string {
	return k.Tenancy + "/" + k.User + "/" + k.Fingerprint
}

// Validate returns a *ConfigurationError naming every missing component.
func (k KeyID) Validate() error {
	var missing []string
	if k.Tenancy == "" {
		missing = append(missing, "tenancy")
	}
	if k.User == "" {
		missing = append(missing, "user")
	}
	if k.Fingerprint == "" {
		missing = append(missing, "fingerprint")
	}
	if len(missing) > 0 {
		return newConfigurationError(nil, "key id is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Credentials holds the key identity and the private key used to sign
// requests. A Credentials value is immutable once created and may be
// shared between goroutines.
type Credentials struct {
	keyID string
	key   *rsa.PrivateKey
}

// NewCredentials validates the key identity and parses the PEM encoded
// RSA private key.
func NewCredentials(id KeyID, privateKeyPEM string) (*Credentials, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	key, err := ParsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	return &Credentials{keyID: id.String(), key: key}, nil
}

// NewCredentialsFromKey creates credentials from an opaque key id and an
// already parsed private key.
func NewCredentialsFromKey(keyID string, key *rsa.PrivateKey) (*Credentials, error) {
	if keyID == "" {
		return nil, newConfigurationError(nil, "key id is required")
	}
	if key == nil {
		return nil, newConfigurationError(nil, "private key is required")
	}
	return &Credentials{keyID: keyID, key: key}, nil
}

func (c *Credentials) KeyID() string {
	return c.keyID
}

// PublicKey returns the public half of the signing key.
func (c *Credentials) PublicKey() *rsa.PublicKey {
	return &c.key.PublicKey
}

func (c *Credentials) validate() error {
	if c == nil {
		return newConfigurationError(nil, "credentials are required")
	}
	if c.keyID == "" {
		return newConfigurationError(nil, "key id is required")
	}
	if c.key == nil {
		return newConfigurationError(nil, "private key is required")
	}
	return nil
}

// NormalizePEM turns literal "\n" escape sequences into real newlines and
// trims surrounding whitespace. Keys stored in environment variables are
// commonly flattened this way.
func NormalizePEM(src string) string {
	return strings.TrimSpace(strings.ReplaceAll(src, `\n`, "\n"))
}

// ParsePrivateKey parses a PKCS#1 or PKCS#8 PEM encoded RSA private key.
// Every failure is reported as a *ConfigurationError.
func ParsePrivateKey(src string) (*rsa.PrivateKey, error) {
	src = NormalizePEM(src)
	if src == "" {
		return nil, newConfigurationError(nil, "private key is required")
	}

	key, err := jwk.ParseKey([]byte(src), jwk.WithPEM(true))
	if err != nil {
		return nil, newConfigurationError(err, "failed to parse private key")
	}

	if _, ok := key.(jwk.RSAPrivateKey); !ok {
		return nil, newConfigurationError(nil, "expected an RSA private key, got %s", describeKey(key))
	}

	var raw rsa.PrivateKey
	if err := jwk.Export(key, &raw); err != nil {
		return nil, newConfigurationError(err, "failed to export RSA private key")
	}
	return &raw, nil
}

func describeKey(key jwk.Key) string {
	if _, ok := key.(jwk.RSAPublicKey); ok {
		return "an RSA public key"
	}
	return fmt.Sprintf("a %s key", key.KeyType())
}
