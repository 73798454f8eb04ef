package ocisig

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/lestrrat-go/blackmagic"
	"github.com/lestrrat-go/jwx/v3/jws/jwsbb"
	"github.com/lestrrat-go/ocisig/authorization"
	"github.com/lestrrat-go/ocisig/component"
	"github.com/lestrrat-go/ocisig/sigbase"
)

// KeyResolver allows resolving verification keys by their key id
type KeyResolver interface {
	ResolveKey(keyID string) (any, error)
}

// Verify checks the OCI signature of a received request. body must be the
// exact request body (nil if there is none).
//
// keyOrResolver is either a KeyResolver or an RSA key (*rsa.PublicKey,
// or *rsa.PrivateKey whose public half is used).
//
// On success the parsed Authorization value is returned.
func Verify(req *http.Request, body []byte, keyOrResolver any, options ...VerifyOption) (*authorization.Value, error) {
	var clock Clock = SystemClock{}
	var maxSkew time.Duration
	for _, option := range options {
		switch option.Ident() {
		case identClock{}:
			if err := blackmagic.AssignIfCompatible(&clock, option.Value()); err != nil {
				return nil, fmt.Errorf(`ocisig.Verify: failed to retrieve clock option value: %w`, err)
			}
		case identMaxClockSkew{}:
			if err := blackmagic.AssignIfCompatible(&maxSkew, option.Value()); err != nil {
				return nil, fmt.Errorf(`ocisig.Verify: failed to retrieve max clock skew option value: %w`, err)
			}
		}
	}

	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	hdr := req.Header.Get(AuthorizationHeader)
	if hdr == "" {
		return nil, fmt.Errorf("missing %s header", AuthorizationHeader)
	}

	value, err := authorization.Parse([]byte(hdr))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s header: %w", AuthorizationHeader, err)
	}
	if value.Version() != authorization.Version {
		return nil, fmt.Errorf("unsupported signature version %q", value.Version())
	}
	if !strings.EqualFold(value.Algorithm(), AlgorithmRSASHA256) {
		return nil, fmt.Errorf("unsupported signature algorithm %q", value.Algorithm())
	}

	key, err := resolveKey(keyOrResolver, value.KeyID())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve key %q: %w", value.KeyID(), err)
	}

	components, err := component.Parse(value.Headers()...)
	if err != nil {
		return nil, fmt.Errorf("invalid headers parameter: %w", err)
	}

	names := component.Names(components...)
	for _, required := range component.Names(component.RequestTarget(), component.Date(), component.Host()) {
		if !slices.Contains(names, required) {
			return nil, fmt.Errorf("signature does not cover %q", required)
		}
	}

	base, err := sigbase.Request(component.RequestInfoFromHTTP(req)).Components(components...).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild signing string: %w", err)
	}

	if err := jwsbb.Verify(key, jwsAlgorithm, base, value.Signature()); err != nil {
		return nil, fmt.Errorf("signature verification failed: %w", err)
	}

	if err := verifyBody(req, body, names); err != nil {
		return nil, err
	}

	if maxSkew > 0 {
		date, err := http.ParseTime(req.Header.Get(DateHeader))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s header: %w", DateHeader, err)
		}
		skew := clock.Now().Sub(date)
		if skew < 0 {
			skew = -skew
		}
		if skew > maxSkew {
			return nil, fmt.Errorf("%s header is %s away from the current time (max %s)", DateHeader, skew, maxSkew)
		}
	}

	return value, nil
}

// verifyBody checks that a body sent with a mutating method is covered by
// the signature and matches the signed digest.
func verifyBody(req *http.Request, body []byte, names []string) error {
	signed := slices.Contains(names, component.ContentSHA256().Name())
	if !signed {
		if HasBody(req.Method) && len(body) > 0 {
			return fmt.Errorf("request body is not covered by the signature")
		}
		return nil
	}

	for _, required := range component.Names(component.ContentType(), component.ContentLength()) {
		if !slices.Contains(names, required) {
			return fmt.Errorf("signature covers %q but not %q", ContentSHA256Header, required)
		}
	}

	if got, want := req.Header.Get(ContentSHA256Header), Digest(body); got != want {
		return fmt.Errorf("%s mismatch: header has %q, body digests to %q", ContentSHA256Header, got, want)
	}
	return nil
}

func resolveKey(keyOrResolver any, keyID string) (*rsa.PublicKey, error) {
	key := keyOrResolver
	if resolver, ok := keyOrResolver.(KeyResolver); ok {
		resolved, err := resolver.ResolveKey(keyID)
		if err != nil {
			return nil, err
		}
		key = resolved
	}

	switch k := key.(type) {
	case *rsa.PublicKey:
		if k == nil {
			return nil, fmt.Errorf("nil public key")
		}
		return k, nil
	case rsa.PublicKey:
		return &k, nil
	case *rsa.PrivateKey:
		if k == nil {
			return nil, fmt.Errorf("nil private key")
		}
		return &k.PublicKey, nil
	default:
		return nil, fmt.Errorf("unsupported key type %T", key)
	}
}
