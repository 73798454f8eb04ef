package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/lestrrat-go/ocisig"
	"github.com/sirupsen/logrus"
)

// SigningTransport is an http.RoundTripper that signs requests for OCI.
//
// The request body is read in full and signed as-is, so the digest covers
// exactly the bytes that are sent. Callers are expected to send JSON.
type SigningTransport struct {
	transport http.RoundTripper
	creds     *ocisig.Credentials
	clock     ocisig.Clock
	endpoint  ocisig.Endpoint
	requestID func() string
	logger    logrus.FieldLogger
}

// NewSigningTransport creates a new SigningTransport that signs with creds.
func NewSigningTransport(creds *ocisig.Credentials, options ...TransportOption) *SigningTransport {
	t := &SigningTransport{
		transport: http.DefaultTransport,
		creds:     creds,
		clock:     ocisig.SystemClock{},
		endpoint:  ocisig.DefaultEndpoint(),
		requestID: uuid.NewString,
		logger:    discardLogger(),
	}

	for _, option := range options {
		switch option.Ident() {
		case identTransport{}:
			if v, ok := option.Value().(http.RoundTripper); ok && v != nil {
				t.transport = v
			}
		case identClock{}:
			if v, ok := option.Value().(ocisig.Clock); ok && v != nil {
				t.clock = v
			}
		case identEndpoint{}:
			t.endpoint = option.Value().(ocisig.Endpoint)
		case identRequestIDFunc{}:
			if v, ok := option.Value().(func() string); ok && v != nil {
				t.requestID = v
			}
		case identLogger{}:
			if v, ok := option.Value().(logrus.FieldLogger); ok && v != nil {
				t.logger = v
			}
		}
	}
	return t
}

// NewClient creates an http.Client that signs requests with creds.
// This is similar to oauth2.NewClient() in approach.
func NewClient(creds *ocisig.Credentials, options ...TransportOption) *http.Client {
	return &http.Client{
		Transport: NewSigningTransport(creds, options...),
	}
}

// RoundTrip implements http.RoundTripper by signing the request before sending it.
func (t *SigningTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("ocisig/http: failed to read request body: %w", err)
		}
	}

	host := req.Host
	if host == "" {
		host = req.URL.Host
	}

	sreq := &ocisig.Request{
		Method: req.Method,
		Path:   req.URL.RequestURI(),
		Host:   host,
	}
	if len(body) > 0 {
		sreq.Body = body
	}

	hdrs, err := ocisig.Sign(sreq, t.creds, ocisig.WithClock(t.clock), ocisig.WithEndpoint(t.endpoint))
	if err != nil {
		return nil, fmt.Errorf("ocisig/http: failed to sign request: %w", err)
	}

	// Clone the request to avoid modifying the original
	signed := req.Clone(req.Context())
	hdrs.Apply(signed.Header)
	signed.Header.Del(ocisig.HostHeader)
	signed.Host = hdrs.Host()
	if req.URL.Host == "" {
		signed.URL.Host = hdrs.Host()
	}

	if ocisig.HasBody(req.Method) {
		// only the signed bytes may be sent
		body = hdrs.Body()
	}
	setBody(signed, body)

	if signed.Header.Get(RequestIDHeader) == "" {
		id := RequestIDFromContext(req.Context())
		if id == "" {
			id = t.requestID()
		}
		signed.Header.Set(RequestIDHeader, id)
	}

	t.logger.WithFields(logrus.Fields{
		"method":         signed.Method,
		"host":           signed.Host,
		"path":           sreq.Path,
		"signed_headers": hdrs.SignedHeaderNames(),
		RequestIDHeader:  signed.Header.Get(RequestIDHeader),
	}).Debug("signed request")

	return t.transport.RoundTrip(signed)
}

func setBody(req *http.Request, body []byte) {
	if len(body) == 0 {
		req.Body = http.NoBody
		req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
		req.ContentLength = 0
		return
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	req.ContentLength = int64(len(body))
}
