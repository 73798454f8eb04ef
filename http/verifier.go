package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lestrrat-go/ocisig"
	"github.com/lestrrat-go/ocisig/authorization"
	"github.com/sirupsen/logrus"
)

// ErrMissingSignature is returned by VerifyRequest when the request has no
// Authorization header.
var ErrMissingSignature = errors.New("missing Authorization header")

// KeyResolver resolves keys for signature verification.
// It can return the key directly or use a KeyID-based lookup.
type KeyResolver = ocisig.KeyResolver

// KeyResolverFunc is a function adapter for KeyResolver.
type KeyResolverFunc func(keyID string) (any, error)

func (f KeyResolverFunc) ResolveKey(keyID string) (any, error) {
	return f(keyID)
}

// StaticKeyResolver provides a single static key for all verifications.
type StaticKeyResolver struct {
	Key any
}

func (s *StaticKeyResolver) ResolveKey(string) (any, error) {
	return s.Key, nil
}

// MapKeyResolver provides key lookup from a map keyed by keyId.
type MapKeyResolver struct {
	Keys map[string]any
}

func (m *MapKeyResolver) ResolveKey(keyID string) (any, error) {
	if key, exists := m.Keys[keyID]; exists {
		return key, nil
	}
	return nil, fmt.Errorf("key not found: %s", keyID)
}

// Verifier verifies the OCI signature of incoming requests.
type Verifier struct {
	resolver      KeyResolver
	errorHandler  http.Handler
	skipOnMissing bool
	clock         ocisig.Clock
	maxClockSkew  time.Duration
	logger        logrus.FieldLogger
}

// NewVerifier creates a new Verifier with the given key resolver.
func NewVerifier(resolver KeyResolver, options ...VerifierOption) *Verifier {
	v := &Verifier{
		resolver:     resolver,
		errorHandler: DefaultErrorHandler(),
		clock:        ocisig.SystemClock{},
		logger:       discardLogger(),
	}

	for _, option := range options {
		switch option.Ident() {
		case identErrorHandler{}:
			if h, ok := option.Value().(http.Handler); ok && h != nil {
				v.errorHandler = h
			}
		case identSkipOnMissing{}:
			v.skipOnMissing = option.Value().(bool)
		case identMaxClockSkew{}:
			v.maxClockSkew = option.Value().(time.Duration)
		case identClock{}:
			if c, ok := option.Value().(ocisig.Clock); ok && c != nil {
				v.clock = c
			}
		case identLogger{}:
			if l, ok := option.Value().(logrus.FieldLogger); ok && l != nil {
				v.logger = l
			}
		}
	}
	return v
}

// VerifyRequest verifies the signature of r. The body is read in full and
// replaced, so handlers can still consume it.
func (v *Verifier) VerifyRequest(r *http.Request) (*authorization.Value, error) {
	if r.Header.Get(ocisig.AuthorizationHeader) == "" {
		return nil, ErrMissingSignature
	}

	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	return ocisig.Verify(r, body, v.resolver,
		ocisig.WithClock(v.clock),
		ocisig.WithMaxClockSkew(v.maxClockSkew),
	)
}

// handleError calls the configured error handler with err stored in the
// request context.
func (v *Verifier) handleError(w http.ResponseWriter, r *http.Request, err error) {
	v.logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Warn("signature verification failed")

	r = r.WithContext(WithVerificationError(r.Context(), err))
	v.errorHandler.ServeHTTP(w, r)
}

// DefaultErrorHandler returns a handler that responds with 401 Unauthorized
// and includes the error message in the response body.
func DefaultErrorHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := VerificationErrorFromContext(r.Context())
		errorMsg := "Signature verification failed"
		if err != nil {
			errorMsg = err.Error()
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintf(w, "401 Unauthorized: %s\n", errorMsg)
	})
}
