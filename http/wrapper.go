package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Middleware wraps an http.Handler to add signature verification.
type Middleware struct {
	handler  http.Handler
	verifier *Verifier
}

// Wrap wraps an HTTP handler with signature verification.
//
// Every request gets a request id in its context, taken from the
// opc-request-id header or generated, and echoed in the response.
func Wrap(h http.Handler, options ...MiddlewareOption) http.Handler {
	w := &Middleware{
		handler: h,
	}

	for _, opt := range options {
		switch opt.Ident() {
		case identVerifier{}:
			w.verifier, _ = opt.Value().(*Verifier)
		}
	}

	return w
}

// ServeHTTP implements http.Handler.
func (wrp *Middleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)
	r = r.WithContext(WithRequestID(r.Context(), id))

	if verifier := wrp.verifier; verifier != nil {
		value, err := verifier.VerifyRequest(r)
		switch {
		case errors.Is(err, ErrMissingSignature) && verifier.skipOnMissing:
		case err != nil:
			verifier.handleError(w, r, err)
			return
		default:
			r = r.WithContext(WithAuthorization(r.Context(), value))
		}
	}

	wrp.handler.ServeHTTP(w, r)
}
