// Package ocisig signs HTTP requests for Oracle Cloud Infrastructure APIs.
//
// OCI uses the draft-cavage HTTP signature scheme: a signing string is
// built from a fixed list of pseudo-headers and headers, signed with
// RSASSA-PKCS1-v1_5 over SHA-256, and the result is sent in an
// "Authorization: Signature ..." header.
package ocisig

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/blackmagic"
	"github.com/lestrrat-go/jwx/v3/jws/jwsbb"
	"github.com/lestrrat-go/ocisig/authorization"
	"github.com/lestrrat-go/ocisig/component"
	"github.com/lestrrat-go/ocisig/sigbase"
)

const (
	AuthorizationHeader = "Authorization"
	DateHeader          = "Date"
	HostHeader          = "Host"
	ContentTypeHeader   = "Content-Type"
	ContentLengthHeader = "Content-Length"
	ContentSHA256Header = "x-content-sha256"

	// AlgorithmRSASHA256 is the only algorithm supported by this package
	AlgorithmRSASHA256 = "rsa-sha256"

	// JSONContentType is the content type signed for request bodies
	JSONContentType = "application/json"

	// jwsAlgorithm is the JWS name of RSASSA-PKCS1-v1_5 with SHA-256
	jwsAlgorithm = "RS256"
)

var allowedMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
}

// Request describes an outbound call to be signed.
type Request struct {
	// Method is the HTTP method. It is matched case-insensitively and only
	// lowercased inside the (request-target) line.
	Method string

	// Path is the request target, starting with "/". It may include a
	// query string.
	Path string

	// Host is the fully qualified host name. When empty, it is derived
	// from the Endpoint given with WithEndpoint (or DefaultEndpoint).
	Host string

	// Body is the request payload. It is only signed and sent for POST,
	// PUT and PATCH. See SerializeBody for how it is turned into bytes.
	Body any

	// Date is the signing time. When zero, the clock is consulted.
	Date time.Time
}

// Validate checks that the method and path are present and well formed.
func (r *Request) Validate() error {
	if r == nil {
		return newValidationError("request", "request is required")
	}
	if r.Method == "" {
		return newValidationError("method", "method is required")
	}
	if _, ok := allowedMethods[strings.ToUpper(r.Method)]; !ok {
		return newValidationError("method", "unsupported method %q", r.Method)
	}
	if r.Path == "" {
		return newValidationError("path", "path is required")
	}
	if !strings.HasPrefix(r.Path, "/") {
		return newValidationError("path", "%q must start with '/'", r.Path)
	}
	if strings.ContainsAny(r.Path, " \t\r\n") {
		return newValidationError("path", "%q contains whitespace", r.Path)
	}
	return nil
}

// Sign computes the signed headers for req using creds.
//
// It fails with a *ValidationError when the method or path is missing,
// with a *ConfigurationError when the credentials are unusable, and with
// a *CryptoError when the signature cannot be computed. Signing never
// proceeds with partial inputs.
func Sign(req *Request, creds *Credentials, options ...SignOption) (*SignedHeaders, error) {
	var clock Clock = SystemClock{}
	endpoint := DefaultEndpoint()
	for _, option := range options {
		switch option.Ident() {
		case identClock{}:
			if err := blackmagic.AssignIfCompatible(&clock, option.Value()); err != nil {
				return nil, fmt.Errorf(`ocisig.Sign: failed to retrieve clock option value: %w`, err)
			}
		case identEndpoint{}:
			if err := blackmagic.AssignIfCompatible(&endpoint, option.Value()); err != nil {
				return nil, fmt.Errorf(`ocisig.Sign: failed to retrieve endpoint option value: %w`, err)
			}
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}

	host, err := ResolveHost(req.Host, endpoint)
	if err != nil {
		return nil, err
	}

	date := req.Date
	if date.IsZero() {
		date = clock.Now()
	}

	hdrs := newSignedHeaders()
	hdrs.set(DateHeader, date.UTC().Format(http.TimeFormat))
	hdrs.set(HostHeader, host)

	components := []component.Identifier{
		component.RequestTarget(),
		component.Date(),
		component.Host(),
	}

	if HasBody(req.Method) {
		body, err := SerializeBody(req.Body)
		if err != nil {
			return nil, err
		}
		if body != nil {
			hdrs.set(ContentTypeHeader, JSONContentType)
			hdrs.set(ContentLengthHeader, strconv.Itoa(len(body)))
			hdrs.set(ContentSHA256Header, Digest(body))
			hdrs.body = body
			components = append(components,
				component.ContentSHA256(),
				component.ContentType(),
				component.ContentLength(),
			)
		}
	}

	info := &component.RequestInfo{
		Header:        hdrs.Header(),
		Method:        req.Method,
		Path:          req.Path,
		Host:          host,
		ContentLength: -1,
	}
	base, err := sigbase.Request(info).Components(components...).Build()
	if err != nil {
		return nil, fmt.Errorf(`ocisig.Sign: failed to build signing string: %w`, err)
	}

	signature, err := jwsbb.Sign(creds.key, jwsAlgorithm, base, nil)
	if err != nil {
		return nil, &CryptoError{Message: "failed to sign", Err: err}
	}

	names := component.Names(components...)
	value, err := authorization.NewBuilder().
		KeyID(creds.keyID).
		Algorithm(AlgorithmRSASHA256).
		Headers(names...).
		Signature(signature).
		Build()
	if err != nil {
		return nil, fmt.Errorf(`ocisig.Sign: failed to build authorization value: %w`, err)
	}
	text, err := value.MarshalText()
	if err != nil {
		return nil, newConfigurationError(err, "key id cannot be encoded")
	}
	hdrs.set(AuthorizationHeader, string(text))

	hdrs.signingString = string(base)
	hdrs.signedNames = names
	return hdrs, nil
}
