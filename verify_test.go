package ocisig_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/ocisig"
	"github.com/stretchr/testify/require"
)

// testKeyResolver implements KeyResolver for testing
type testKeyResolver struct {
	keys map[string]any
}

func (r *testKeyResolver) ResolveKey(keyID string) (any, error) {
	key, exists := r.keys[keyID]
	if !exists {
		return nil, fmt.Errorf("key %q not found", keyID)
	}
	return key, nil
}

// signedRequest signs req and turns it into a request as a server would
// receive it.
func signedRequest(t *testing.T, creds *ocisig.Credentials, req *ocisig.Request) (*http.Request, []byte) {
	t.Helper()
	hdrs, err := ocisig.Sign(req, creds)
	require.NoError(t, err)

	body := hdrs.Body()
	r := httptest.NewRequest(req.Method, "http://"+hdrs.Host()+req.Path, bytes.NewReader(body))
	hdrs.Apply(r.Header)
	return r, body
}

func TestVerify(t *testing.T) {
	t.Parallel()
	creds := testCredentials(t)

	t.Run("GET with public key", func(t *testing.T) {
		t.Parallel()
		r, body := signedRequest(t, creds, &ocisig.Request{Method: "GET", Path: "/n/ns/b/bucket/o?limit=10", Date: testDate})
		value, err := ocisig.Verify(r, body, creds.PublicKey())
		require.NoError(t, err)
		require.Equal(t, testKeyID, value.KeyID())
	})

	t.Run("POST with resolver", func(t *testing.T) {
		t.Parallel()
		r, body := signedRequest(t, creds, &ocisig.Request{
			Method: "POST",
			Path:   "/20221109/actions/analyzeDocument",
			Host:   "document.ap-singapore-1.oci.oraclecloud.com",
			Body:   map[string]any{"features": []map[string]string{{"featureType": "TEXT_EXTRACTION"}}},
			Date:   testDate,
		})
		resolver := &testKeyResolver{keys: map[string]any{testKeyID: testKey}}
		value, err := ocisig.Verify(r, body, resolver)
		require.NoError(t, err)
		require.Len(t, value.Headers(), 6)
	})

	t.Run("Unknown key id", func(t *testing.T) {
		t.Parallel()
		r, body := signedRequest(t, creds, &ocisig.Request{Method: "GET", Path: "/", Date: testDate})
		_, err := ocisig.Verify(r, body, &testKeyResolver{keys: map[string]any{}})
		require.Error(t, err)
	})

	t.Run("Wrong key", func(t *testing.T) {
		t.Parallel()
		r, body := signedRequest(t, creds, &ocisig.Request{Method: "GET", Path: "/", Date: testDate})
		_, err := ocisig.Verify(r, body, &generateKey().PublicKey)
		require.Error(t, err)
	})

	t.Run("Unsupported key type", func(t *testing.T) {
		t.Parallel()
		r, body := signedRequest(t, creds, &ocisig.Request{Method: "GET", Path: "/", Date: testDate})
		_, err := ocisig.Verify(r, body, []byte("secret"))
		require.Error(t, err)
	})

	t.Run("Tampered path", func(t *testing.T) {
		t.Parallel()
		r, body := signedRequest(t, creds, &ocisig.Request{Method: "GET", Path: "/a", Date: testDate})
		r.URL.Path = "/b"
		_, err := ocisig.Verify(r, body, creds.PublicKey())
		require.Error(t, err)
	})

	t.Run("Tampered body", func(t *testing.T) {
		t.Parallel()
		r, _ := signedRequest(t, creds, &ocisig.Request{Method: "PUT", Path: "/a", Body: `{"x":1}`, Date: testDate})
		_, err := ocisig.Verify(r, []byte(`{"x":2}`), creds.PublicKey())
		require.Error(t, err)
		require.Contains(t, err.Error(), "x-content-sha256 mismatch")
	})

	t.Run("Unsigned body", func(t *testing.T) {
		t.Parallel()
		r, _ := signedRequest(t, creds, &ocisig.Request{Method: "POST", Path: "/a", Date: testDate})
		_, err := ocisig.Verify(r, []byte(`{"smuggled":true}`), creds.PublicKey())
		require.Error(t, err)
	})

	t.Run("Missing Authorization", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
		_, err := ocisig.Verify(r, nil, creds.PublicKey())
		require.Error(t, err)
	})

	t.Run("Signature must cover the base headers", func(t *testing.T) {
		t.Parallel()
		r, body := signedRequest(t, creds, &ocisig.Request{Method: "GET", Path: "/", Date: testDate})
		r.Header.Set("Authorization", `Signature version="1",keyId="k",algorithm="rsa-sha256",headers="date",signature="aGVsbG8="`)
		_, err := ocisig.Verify(r, body, creds.PublicKey())
		require.Error(t, err)
		require.Contains(t, err.Error(), "does not cover")
	})

	t.Run("Unsupported algorithm", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
		r.Header.Set("Authorization", `Signature version="1",keyId="k",algorithm="hmac-sha256",headers="date",signature="aGVsbG8="`)
		_, err := ocisig.Verify(r, nil, creds.PublicKey())
		require.Error(t, err)
	})

	t.Run("Clock skew", func(t *testing.T) {
		t.Parallel()
		r, body := signedRequest(t, creds, &ocisig.Request{Method: "GET", Path: "/", Date: testDate})

		_, err := ocisig.Verify(r, body, creds.PublicKey(),
			ocisig.WithClock(ocisig.FixedClock(testDate.Add(4*time.Minute))),
			ocisig.WithMaxClockSkew(5*time.Minute),
		)
		require.NoError(t, err)

		_, err = ocisig.Verify(r, body, creds.PublicKey(),
			ocisig.WithClock(ocisig.FixedClock(testDate.Add(-6*time.Minute))),
			ocisig.WithMaxClockSkew(5*time.Minute),
		)
		require.Error(t, err)
	})
}
