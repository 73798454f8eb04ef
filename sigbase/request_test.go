package sigbase_test

import (
	"net/http"
	"testing"

	"github.com/lestrrat-go/ocisig/component"
	"github.com/lestrrat-go/ocisig/sigbase"
	"github.com/stretchr/testify/require"
)

func TestRequestBuilder(t *testing.T) {
	t.Parallel()

	info := &component.RequestInfo{
		Method: "POST",
		Path:   "/20221109/actions/analyzeDocument",
		Header: http.Header{
			"Date":             []string{"Thu, 05 Jan 2014 21:31:40 GMT"},
			"Host":             []string{"document.ap-singapore-1.oci.oraclecloud.com"},
			"X-Content-Sha256": []string{"V9Z20US+awiYH4wH4zBXQYNc7fb7HcmWTDDdu8k5y8M="},
			"Content-Type":     []string{"application/json"},
			"Content-Length":   []string{"316"},
		},
	}

	t.Run("Mandatory components only", func(t *testing.T) {
		t.Parallel()
		base, err := sigbase.Request(info).
			Components(component.RequestTarget(), component.Date(), component.Host()).
			Build()
		require.NoError(t, err, "Failed to build signing string")

		expected := "(request-target): post /20221109/actions/analyzeDocument\n" +
			"date: Thu, 05 Jan 2014 21:31:40 GMT\n" +
			"host: document.ap-singapore-1.oci.oraclecloud.com"
		require.Equal(t, expected, string(base))
	})

	t.Run("With body components", func(t *testing.T) {
		t.Parallel()
		base, err := sigbase.Request(info).
			Components(
				component.RequestTarget(),
				component.Date(),
				component.Host(),
				component.ContentSHA256(),
				component.ContentType(),
				component.ContentLength(),
			).
			Build()
		require.NoError(t, err, "Failed to build signing string")

		expected := "(request-target): post /20221109/actions/analyzeDocument\n" +
			"date: Thu, 05 Jan 2014 21:31:40 GMT\n" +
			"host: document.ap-singapore-1.oci.oraclecloud.com\n" +
			"x-content-sha256: V9Z20US+awiYH4wH4zBXQYNc7fb7HcmWTDDdu8k5y8M=\n" +
			"content-type: application/json\n" +
			"content-length: 316"
		require.Equal(t, expected, string(base))
	})

	t.Run("Order follows components", func(t *testing.T) {
		t.Parallel()
		base, err := sigbase.Request(info).
			Components(component.Host(), component.RequestTarget()).
			Build()
		require.NoError(t, err)
		require.Equal(t, "host: document.ap-singapore-1.oci.oraclecloud.com\n(request-target): post /20221109/actions/analyzeDocument", string(base))
	})

	t.Run("Errors", func(t *testing.T) {
		t.Parallel()
		_, err := sigbase.Request(nil).Components(component.Date()).Build()
		require.Error(t, err, "nil request information")

		_, err = sigbase.Request(info).Build()
		require.Error(t, err, "no components")

		_, err = sigbase.Request(info).Components(component.Date(), component.Date()).Build()
		require.Error(t, err, "duplicate components")

		_, err = sigbase.Request(info).Components(component.New("x-missing")).Build()
		require.Error(t, err, "missing header")

		broken := &component.RequestInfo{
			Method: "GET",
			Path:   "/",
			Header: http.Header{"Date": []string{"a\nb"}},
		}
		_, err = sigbase.Request(broken).Components(component.Date()).Build()
		require.Error(t, err, "line break in value")
	})
}
