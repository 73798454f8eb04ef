package ocisig

import (
	"net/http"
	"strings"
)

// SignedHeaders is the ordered set of headers produced by Sign, along with
// the material that went into the signature.
type SignedHeaders struct {
	names         []string
	values        map[string]string
	body          []byte
	signingString string
	signedNames   []string
}

func newSignedHeaders() *SignedHeaders {
	return &SignedHeaders{
		values: make(map[string]string),
	}
}

func (h *SignedHeaders) set(name, value string) {
	key := strings.ToLower(name)
	if _, ok := h.values[key]; !ok {
		h.names = append(h.names, name)
	}
	h.values[key] = value
}

// Get returns the value of the named header. Names are matched
// case-insensitively.
func (h *SignedHeaders) Get(name string) (string, bool) {
	v, ok := h.values[strings.ToLower(name)]
	return v, ok
}

// Keys returns the header names in the order they were produced:
// Date, Host, then Content-Type, Content-Length and x-content-sha256 when
// a body was signed, and Authorization last.
func (h *SignedHeaders) Keys() []string {
	return append([]string(nil), h.names...)
}

func (h *SignedHeaders) Len() int {
	return len(h.names)
}

// Host returns the host the request was signed for.
func (h *SignedHeaders) Host() string {
	v, _ := h.Get(HostHeader)
	return v
}

// Authorization returns the Authorization header value.
func (h *SignedHeaders) Authorization() string {
	v, _ := h.Get(AuthorizationHeader)
	return v
}

// Digest returns the body digest, if a body was signed.
func (h *SignedHeaders) Digest() (string, bool) {
	return h.Get(ContentSHA256Header)
}

// Body returns the exact bytes that were digested. These are the bytes
// that must be transmitted; nil when no body was signed.
func (h *SignedHeaders) Body() []byte {
	if h.body == nil {
		return nil
	}
	return append([]byte(nil), h.body...)
}

// SigningString returns the canonical string the signature was computed
// over.
func (h *SignedHeaders) SigningString() string {
	return h.signingString
}

// SignedHeaderNames returns the header names listed in the Authorization
// value, in signing string order.
func (h *SignedHeaders) SignedHeaderNames() []string {
	return append([]string(nil), h.signedNames...)
}

// Apply sets every header on dst, replacing existing values. Note that
// net/http takes the Host and Content-Length of an outgoing request from
// the http.Request fields rather than from its Header.
func (h *SignedHeaders) Apply(dst http.Header) {
	for _, name := range h.names {
		dst.Set(name, h.values[strings.ToLower(name)])
	}
}

// Header returns the headers as a new http.Header.
func (h *SignedHeaders) Header() http.Header {
	hdr := make(http.Header, len(h.names))
	h.Apply(hdr)
	return hdr
}
