package ocisig

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// SerializeBody returns the exact bytes that are digested and sent for
// body. []byte, json.RawMessage and string values are used verbatim;
// anything else is encoded as compact JSON without HTML escaping, the
// same text JSON.stringify produces for it. A nil body, or one that
// serializes to nothing or to a falsy JSON value (null, false, 0 or ""),
// yields nil. A Go string is only treated as absent when it is empty.
//
// Serialization is deterministic: calling SerializeBody twice on the same
// value returns identical bytes.
func SerializeBody(body any) ([]byte, error) {
	var buf []byte
	switch v := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		buf = v
	case []byte:
		buf = v
	case string:
		if len(strings.TrimSpace(v)) == 0 {
			return nil, nil
		}
		return []byte(v), nil
	default:
		encoded, err := json.MarshalNoEscape(v)
		if err != nil {
			return nil, newValidationError("body", "failed to serialize: %s", err)
		}
		buf = encoded
	}

	if isFalsy(bytes.TrimSpace(buf)) {
		return nil, nil
	}
	return buf, nil
}

func isFalsy(v []byte) bool {
	switch string(v) {
	case "", "null", "false", `""`:
		return true
	}
	if v[0] != '-' && (v[0] < '0' || v[0] > '9') {
		return false
	}
	if !json.Valid(v) {
		return false
	}
	n, err := strconv.ParseFloat(string(v), 64)
	return err == nil && n == 0
}

// Digest returns base64(sha256(body)), the value of the x-content-sha256
// header.
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// HasBody reports whether requests with the given method carry a signed
// body. Only POST, PUT and PATCH do.
func HasBody(method string) bool {
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH":
		return true
	default:
		return false
	}
}
