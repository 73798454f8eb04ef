package authorization

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// Scheme is the authentication scheme that prefixes the value
	Scheme = "Signature"
	// Version is the only signature version OCI defines
	Version = "1"
)

// Value represents the parameters of an "Authorization: Signature ..."
// header value. A Value must contain:
//   - a key ID (the identifier for the key material used to sign)
//   - an algorithm (the algorithm used to sign)
//   - the list of signed headers, in signing string order
//   - the signature itself
type Value struct {
	version   string
	keyid     string
	algorithm string
	headers   []string
	signature []byte
}

// Builder helps build Value objects
type Builder struct {
	value *Value
}

// NewBuilder creates a new Builder. The version defaults to "1".
func NewBuilder() *Builder {
	return &Builder{
		value: &Value{
			version: Version,
		},
	}
}

// Version sets the signature version
func (b *Builder) Version(version string) *Builder {
	b.value.version = version
	return b
}

// KeyID sets the key identifier
func (b *Builder) KeyID(keyid string) *Builder {
	b.value.keyid = keyid
	return b
}

// Algorithm sets the signature algorithm
func (b *Builder) Algorithm(algorithm string) *Builder {
	b.value.algorithm = algorithm
	return b
}

// Headers sets the signed header names
func (b *Builder) Headers(headers ...string) *Builder {
	b.value.headers = append([]string(nil), headers...)
	return b
}

// Signature sets the raw (not base64 encoded) signature
func (b *Builder) Signature(signature []byte) *Builder {
	b.value.signature = append([]byte(nil), signature...)
	return b
}

// Build creates the Value with validation
func (b *Builder) Build() (*Value, error) {
	v := b.value
	if v.version == "" {
		return nil, fmt.Errorf("version is required")
	}
	if v.keyid == "" {
		return nil, fmt.Errorf("keyId is required")
	}
	if v.algorithm == "" {
		return nil, fmt.Errorf("algorithm is required")
	}
	if len(v.headers) == 0 {
		return nil, fmt.Errorf("at least one header is required")
	}
	for _, h := range v.headers {
		if h == "" || strings.ContainsAny(h, " \t") {
			return nil, fmt.Errorf("invalid header name %q", h)
		}
	}
	if len(v.signature) == 0 {
		return nil, fmt.Errorf("signature is required")
	}

	// hand out a copy so the builder can be reused
	built := *v
	built.headers = append([]string(nil), v.headers...)
	built.signature = append([]byte(nil), v.signature...)
	return &built, nil
}

// MustBuild creates the Value and panics if validation fails
func (b *Builder) MustBuild() *Value {
	v, err := b.Build()
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Value) Version() string {
	return v.version
}

func (v *Value) KeyID() string {
	return v.keyid
}

func (v *Value) Algorithm() string {
	return v.algorithm
}

// Headers returns the signed header names, in signing string order
func (v *Value) Headers() []string {
	return append([]string(nil), v.headers...)
}

// Signature returns the raw signature bytes
func (v *Value) Signature() []byte {
	return append([]byte(nil), v.signature...)
}

// EncodedSignature returns the signature as standard base64
func (v *Value) EncodedSignature() string {
	return base64.StdEncoding.EncodeToString(v.signature)
}

func (v *Value) String() string {
	buf, err := v.MarshalText()
	if err != nil {
		return fmt.Sprintf("<invalid authorization value: %s>", err)
	}
	return string(buf)
}
