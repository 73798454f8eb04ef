package http

import (
	"net/http"
	"time"

	"github.com/lestrrat-go/ocisig"
	"github.com/lestrrat-go/ocisig/ocr"
	"github.com/lestrrat-go/option"
	"github.com/sirupsen/logrus"
)

type Option = option.Interface

// Identifier types for options
type identVerifier struct{}

func (identVerifier) String() string { return "WithVerifier" }

type identSkipOnMissing struct{}

func (identSkipOnMissing) String() string { return "WithSkipOnMissing" }

type identErrorHandler struct{}

func (identErrorHandler) String() string { return "WithErrorHandler" }

type identMaxClockSkew struct{}

func (identMaxClockSkew) String() string { return "WithMaxClockSkew" }

type identTransport struct{}

func (identTransport) String() string { return "WithTransport" }

type identClock struct{}

func (identClock) String() string { return "WithClock" }

type identLogger struct{}

func (identLogger) String() string { return "WithLogger" }

type identEndpoint struct{}

func (identEndpoint) String() string { return "WithEndpoint" }

type identRequestIDFunc struct{}

func (identRequestIDFunc) String() string { return "WithRequestIDFunc" }

type identScheme struct{}

func (identScheme) String() string { return "WithScheme" }

type identReconstructor struct{}

func (identReconstructor) String() string { return "WithReconstructor" }

type identTimeout struct{}

func (identTimeout) String() string { return "WithTimeout" }

// TransportOption configures a SigningTransport.
type TransportOption interface {
	Option
	transportOption()
}

// VerifierOption configures a Verifier.
type VerifierOption interface {
	Option
	verifierOption()
}

// MiddlewareOption configures the handler returned by Wrap.
type MiddlewareOption interface {
	Option
	middlewareOption()
}

// ProxyOption configures a Proxy.
type ProxyOption interface {
	Option
	proxyOption()
}

// TransportProxyOption can be used with both NewSigningTransport and
// NewProxy.
type TransportProxyOption interface {
	TransportOption
	ProxyOption
}

// CommonOption can be used with NewSigningTransport, NewVerifier and
// NewProxy.
type CommonOption interface {
	TransportOption
	VerifierOption
	ProxyOption
}

type verifierOption struct {
	Option
}

func (verifierOption) verifierOption() {}

type middlewareOption struct {
	Option
}

func (middlewareOption) middlewareOption() {}

type proxyOption struct {
	Option
}

func (proxyOption) proxyOption() {}

type transportProxyOption struct {
	Option
}

func (transportProxyOption) transportOption() {}
func (transportProxyOption) proxyOption()     {}

type commonOption struct {
	Option
}

func (commonOption) transportOption() {}
func (commonOption) verifierOption()  {}
func (commonOption) proxyOption()     {}

// WithVerifier specifies the verifier used by Wrap.
func WithVerifier(verifier *Verifier) MiddlewareOption {
	return middlewareOption{option.New(identVerifier{}, verifier)}
}

// WithSkipOnMissing configures whether requests without an Authorization
// header are passed through unverified.
func WithSkipOnMissing(skip bool) VerifierOption {
	return verifierOption{option.New(identSkipOnMissing{}, skip)}
}

// WithErrorHandler configures the handler invoked when verification
// fails. The error is available through VerificationErrorFromContext.
func WithErrorHandler(handler http.Handler) VerifierOption {
	return verifierOption{option.New(identErrorHandler{}, handler)}
}

// WithMaxClockSkew rejects requests whose Date header is further than d
// from the current time.
func WithMaxClockSkew(d time.Duration) VerifierOption {
	return verifierOption{option.New(identMaxClockSkew{}, d)}
}

// WithTransport sets the underlying transport.
func WithTransport(transport http.RoundTripper) TransportProxyOption {
	return transportProxyOption{option.New(identTransport{}, transport)}
}

// WithEndpoint sets the endpoint defaults used to derive host names.
func WithEndpoint(ep ocisig.Endpoint) TransportProxyOption {
	return transportProxyOption{option.New(identEndpoint{}, ep)}
}

// WithRequestIDFunc sets the generator for opc-request-id values.
func WithRequestIDFunc(fn func() string) TransportProxyOption {
	return transportProxyOption{option.New(identRequestIDFunc{}, fn)}
}

func WithClock(clock ocisig.Clock) CommonOption {
	return commonOption{option.New(identClock{}, clock)}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger logrus.FieldLogger) CommonOption {
	return commonOption{option.New(identLogger{}, logger)}
}

// WithScheme sets the scheme used to reach upstream hosts. The default
// is "https".
func WithScheme(scheme string) ProxyOption {
	return proxyOption{option.New(identScheme{}, scheme)}
}

// WithReconstructor sets the reconstructor used to build rawText.
func WithReconstructor(r *ocr.Reconstructor) ProxyOption {
	return proxyOption{option.New(identReconstructor{}, r)}
}

// WithTimeout bounds the time spent on a single upstream call.
func WithTimeout(d time.Duration) ProxyOption {
	return proxyOption{option.New(identTimeout{}, d)}
}
