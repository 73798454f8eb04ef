package component

import (
	"fmt"
	"strings"
)

var (
	requestTarget = New("(request-target)")
	date          = New("date")
	host          = New("host")
	contentSHA256 = New("x-content-sha256")
	contentType   = New("content-type")
	contentLength = New("content-length")
)

// RequestTarget is the "(request-target)" pseudo-header: the lowercased
// method followed by the request path.
func RequestTarget() Identifier {
	return requestTarget
}

func Date() Identifier {
	return date
}

func Host() Identifier {
	return host
}

// ContentSHA256 is the header carrying the base64 encoded SHA-256 digest
// of the request body.
func ContentSHA256() Identifier {
	return contentSHA256
}

func ContentType() Identifier {
	return contentType
}

func ContentLength() Identifier {
	return contentLength
}

// Identifier names one line of a signing string. It is either a
// parenthesized pseudo-header such as "(request-target)" or a lowercased
// HTTP header field name.
type Identifier struct {
	name string
}

// New creates a new Identifier with the given name. Names are
// case-insensitive and stored lowercased.
func New(name string) Identifier {
	return Identifier{name: strings.ToLower(strings.TrimSpace(name))}
}

func (c Identifier) Name() string {
	return c.name
}

// IsPseudo reports whether the identifier is a pseudo-header that is
// derived from the request rather than read from a header field.
func (c Identifier) IsPseudo() bool {
	return strings.HasPrefix(c.name, "(")
}

// Line formats a signing string line for this identifier.
func (c Identifier) Line(value string) string {
	return c.name + ": " + value
}

// Names returns the names of the given identifiers, in order.
func Names(ids ...Identifier) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.name
	}
	return names
}

// Parse converts a list of header names, as found in the "headers"
// parameter of an Authorization value, into identifiers.
func Parse(names ...string) ([]Identifier, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one component is required")
	}
	ids := make([]Identifier, 0, len(names))
	for _, name := range names {
		id := New(name)
		if id.name == "" {
			return nil, fmt.Errorf("empty component name")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
