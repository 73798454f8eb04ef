package authorization

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/lestrrat-go/sfv"
)

// parameter names as they appear on the wire
const (
	paramVersion   = "version"
	paramKeyID     = "keyId"
	paramAlgorithm = "algorithm"
	paramHeaders   = "headers"
	paramSignature = "signature"
)

// MarshalText renders the value as
//
//	Signature version="1",keyId="...",algorithm="...",headers="...",signature="..."
//
// Parameters are always emitted in this order, separated by a bare comma.
func (v *Value) MarshalText() ([]byte, error) {
	params := []struct {
		name  string
		value string
	}{
		{paramVersion, v.version},
		{paramKeyID, v.keyid},
		{paramAlgorithm, v.algorithm},
		{paramHeaders, strings.Join(v.headers, " ")},
		{paramSignature, v.EncodedSignature()},
	}

	var buf bytes.Buffer
	buf.WriteString(Scheme)
	buf.WriteByte(' ')
	for i, p := range params {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(p.name)
		buf.WriteByte('=')
		if err := quote(&buf, p.value); err != nil {
			return nil, fmt.Errorf("failed to encode parameter %q: %w", p.name, err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalText parses an Authorization header value into v
func (v *Value) UnmarshalText(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

// quote writes s as a quoted string, escaping '"' and '\'.
func quote(dst *bytes.Buffer, s string) error {
	enc := sfv.NewEncoder(dst)
	enc.SetParameterSpacing("")
	return enc.Encode(sfv.String(s))
}

// unquote reads a quoted string previously produced by quote.
func unquote(src string) (string, error) {
	item, err := sfv.ParseItem([]byte(src))
	if err != nil {
		return "", fmt.Errorf("failed to parse quoted string: %w", err)
	}
	var s string
	if err := item.GetValue(&s); err != nil {
		return "", fmt.Errorf("expected a string: %w", err)
	}
	return s, nil
}

// Parse parses an Authorization header value of the Signature scheme.
// Parameter names are matched case-insensitively. The "version" parameter
// defaults to "1" and "headers" defaults to "date" when absent.
func Parse(data []byte) (*Value, error) {
	src := strings.TrimSpace(string(data))
	scheme, rest, ok := strings.Cut(src, " ")
	if !ok || !strings.EqualFold(scheme, Scheme) {
		return nil, fmt.Errorf("authorization value must use the %q scheme", Scheme)
	}

	params, err := parseParams(rest)
	if err != nil {
		return nil, err
	}

	b := NewBuilder()
	if version, ok := params[strings.ToLower(paramVersion)]; ok {
		b.Version(version)
	}
	b.KeyID(params[strings.ToLower(paramKeyID)])
	b.Algorithm(params[strings.ToLower(paramAlgorithm)])

	headers := "date"
	if h, ok := params[paramHeaders]; ok {
		headers = h
	}
	b.Headers(strings.Fields(headers)...)

	encoded, ok := params[paramSignature]
	if !ok {
		return nil, fmt.Errorf("signature parameter is required")
	}
	signature, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}
	b.Signature(signature)

	return b.Build()
}

// parseParams splits `name="value",name="value"` into a map keyed by the
// lowercased parameter name.
func parseParams(src string) (map[string]string, error) {
	params := make(map[string]string)
	for {
		src = strings.TrimLeft(src, " \t")
		if src == "" {
			break
		}

		eq := strings.IndexByte(src, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("malformed parameter near %q", src)
		}
		name := strings.ToLower(strings.TrimSpace(src[:eq]))
		src = strings.TrimLeft(src[eq+1:], " \t")

		end, err := quotedEnd(src)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		value, err := unquote(src[:end])
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		if _, dup := params[name]; dup {
			return nil, fmt.Errorf("duplicate parameter %q", name)
		}
		params[name] = value

		src = strings.TrimLeft(src[end:], " \t")
		if src == "" {
			break
		}
		if src[0] != ',' {
			return nil, fmt.Errorf("expected ',' after parameter %q", name)
		}
		src = src[1:]
	}
	return params, nil
}

// quotedEnd returns the index just past the closing quote of the quoted
// string at the start of src.
func quotedEnd(src string) (int, error) {
	if src == "" || src[0] != '"' {
		return 0, fmt.Errorf("value must be a quoted string")
	}
	for i := 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '"':
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated quoted string")
}
