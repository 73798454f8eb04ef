package component

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// RequestInfo contains the discrete values needed to resolve components
// of a request signature
type RequestInfo struct {
	Header http.Header
	Method string
	// Path is the request target as it appears on the request line,
	// including any query string.
	Path string
	// Host is used for the "host" component when Header has no Host
	// field, which is the case for requests received by net/http servers.
	Host string
	// ContentLength is used for the "content-length" component when Header
	// has no Content-Length field. Negative means unknown.
	ContentLength int64
}

// RequestInfoFromHTTP creates a RequestInfo from an http.Request
func RequestInfoFromHTTP(req *http.Request) *RequestInfo {
	if req == nil || req.URL == nil {
		return nil
	}

	host := req.Host
	if host == "" {
		host = req.URL.Host
	}

	return &RequestInfo{
		Header:        req.Header,
		Method:        req.Method,
		Path:          req.URL.RequestURI(),
		Host:          host,
		ContentLength: req.ContentLength,
	}
}

// Resolve returns the value of the component for the given request.
func Resolve(info *RequestInfo, comp Identifier) (string, error) {
	if info == nil {
		return "", fmt.Errorf("no request information available")
	}

	switch comp.name {
	case requestTarget.name:
		if info.Method == "" {
			return "", fmt.Errorf("%s requires a method", comp.name)
		}
		if info.Path == "" {
			return "", fmt.Errorf("%s requires a path", comp.name)
		}
		return strings.ToLower(info.Method) + " " + info.Path, nil
	case host.name:
		if v := info.Header.Get("Host"); v != "" {
			return v, nil
		}
		if info.Host != "" {
			return info.Host, nil
		}
		return "", fmt.Errorf("header field %q not found", comp.name)
	case contentLength.name:
		if v := info.Header.Get("Content-Length"); v != "" {
			return v, nil
		}
		if info.ContentLength >= 0 {
			return strconv.FormatInt(info.ContentLength, 10), nil
		}
		return "", fmt.Errorf("header field %q not found", comp.name)
	}

	if comp.IsPseudo() {
		return "", fmt.Errorf("unsupported pseudo-header: %s", comp.name)
	}
	return resolveHeader(comp, info.Header)
}

func resolveHeader(comp Identifier, hdr http.Header) (string, error) {
	values := hdr.Values(comp.name)
	if len(values) == 0 {
		return "", fmt.Errorf("header field %q not found", comp.name)
	}

	// Multiple instances of a field are combined the same way a proxy
	// would fold them.
	trimmed := make([]string, len(values))
	for i, v := range values {
		trimmed[i] = strings.TrimSpace(v)
	}
	return strings.Join(trimmed, ", "), nil
}
