package sigbase

import (
	"fmt"
	"strings"

	"github.com/lestrrat-go/ocisig/component"
)

// RequestBuilder is a builder for constructing the signing string of an
// HTTP request.
// byteSlice, err := sigbase.Request(info).Components(...ids).Build()
type RequestBuilder struct {
	info       *component.RequestInfo
	components []component.Identifier

	err error
}

func Request(info *component.RequestInfo) *RequestBuilder {
	if info == nil {
		return &RequestBuilder{err: fmt.Errorf("request information is required")}
	}
	return &RequestBuilder{
		info: info,
	}
}

// Components sets the list of components to include in the signing
// string, in order
func (rb *RequestBuilder) Components(components ...component.Identifier) *RequestBuilder {
	if rb.err != nil {
		return rb
	}
	rb.components = components
	return rb
}

// Build constructs the signing string: one "name: value" line per
// component, joined by a single newline, with no trailing newline.
// The order of the lines is the order of the components, and the
// verifying side must use the same order.
func (rb *RequestBuilder) Build() ([]byte, error) {
	if rb.err != nil {
		return nil, rb.err
	}

	if len(rb.components) == 0 {
		return nil, fmt.Errorf("at least one component is required")
	}

	var output strings.Builder
	seen := make(map[string]struct{}, len(rb.components))
	for i, comp := range rb.components {
		if _, ok := seen[comp.Name()]; ok {
			return nil, fmt.Errorf("duplicate component identifier: %s", comp.Name())
		}
		seen[comp.Name()] = struct{}{}

		value, err := component.Resolve(rb.info, comp)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve component %q: %w", comp.Name(), err)
		}
		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("value of component %q contains a line break", comp.Name())
		}

		if i > 0 {
			output.WriteByte('\n')
		}
		output.WriteString(comp.Line(value))
	}

	return []byte(output.String()), nil
}
