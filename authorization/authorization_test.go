package authorization_test

import (
	"testing"

	"github.com/lestrrat-go/ocisig/authorization"
	"github.com/stretchr/testify/require"
)

const testKeyID = "ocid1.tenancy.oc1..aaaaaaaaba3pv6wkcr4jqae5f15p2b2m2yt2j6rx32uzr4h25vqstifsfdsq/ocid1.user.oc1..aaaaaaaat5nvwcna5j6aqzjcaty5eqbb6qt2jvpkanghtgdaqedqw3rynjq/20:3b:97:13:55:1c:5b:0d:d3:37:d8:50:4e:c5:3a:34"

func TestBuilder(t *testing.T) {
	t.Parallel()

	t.Run("Build", func(t *testing.T) {
		t.Parallel()
		v, err := authorization.NewBuilder().
			KeyID(testKeyID).
			Algorithm("rsa-sha256").
			Headers("(request-target)", "date", "host").
			Signature([]byte("hello")).
			Build()
		require.NoError(t, err)
		require.Equal(t, "1", v.Version())
		require.Equal(t, testKeyID, v.KeyID())
		require.Equal(t, "rsa-sha256", v.Algorithm())
		require.Equal(t, []string{"(request-target)", "date", "host"}, v.Headers())
		require.Equal(t, []byte("hello"), v.Signature())
		require.Equal(t, "aGVsbG8=", v.EncodedSignature())
	})

	testcases := []struct {
		name    string
		builder *authorization.Builder
	}{
		{
			name:    "missing keyId",
			builder: authorization.NewBuilder().Algorithm("rsa-sha256").Headers("date").Signature([]byte("x")),
		},
		{
			name:    "missing algorithm",
			builder: authorization.NewBuilder().KeyID("k").Headers("date").Signature([]byte("x")),
		},
		{
			name:    "missing headers",
			builder: authorization.NewBuilder().KeyID("k").Algorithm("rsa-sha256").Signature([]byte("x")),
		},
		{
			name:    "header with space",
			builder: authorization.NewBuilder().KeyID("k").Algorithm("rsa-sha256").Headers("da te").Signature([]byte("x")),
		},
		{
			name:    "missing signature",
			builder: authorization.NewBuilder().KeyID("k").Algorithm("rsa-sha256").Headers("date"),
		},
		{
			name:    "empty version",
			builder: authorization.NewBuilder().Version("").KeyID("k").Algorithm("rsa-sha256").Headers("date").Signature([]byte("x")),
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tc.builder.Build()
			require.Error(t, err)
			require.Panics(t, func() { tc.builder.MustBuild() })
		})
	}
}

func TestMarshalText(t *testing.T) {
	t.Parallel()

	v := authorization.NewBuilder().
		KeyID(testKeyID).
		Algorithm("rsa-sha256").
		Headers("(request-target)", "date", "host", "x-content-sha256", "content-type", "content-length").
		Signature([]byte{0xde, 0xad, 0xbe, 0xef}).
		MustBuild()

	buf, err := v.MarshalText()
	require.NoError(t, err)

	expected := `Signature version="1",keyId="` + testKeyID + `",algorithm="rsa-sha256",` +
		`headers="(request-target) date host x-content-sha256 content-type content-length",` +
		`signature="3q2+7w=="`
	require.Equal(t, expected, string(buf))
	require.Equal(t, expected, v.String())
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("Round trip", func(t *testing.T) {
		t.Parallel()
		v := authorization.NewBuilder().
			KeyID(testKeyID).
			Algorithm("rsa-sha256").
			Headers("(request-target)", "date", "host").
			Signature([]byte("signature bytes")).
			MustBuild()

		buf, err := v.MarshalText()
		require.NoError(t, err)

		parsed, err := authorization.Parse(buf)
		require.NoError(t, err)
		require.Equal(t, v, parsed)

		var u authorization.Value
		require.NoError(t, u.UnmarshalText(buf))
		require.Equal(t, v, &u)
	})

	t.Run("Lenient spacing and casing", func(t *testing.T) {
		t.Parallel()
		src := `signature keyid="k", Algorithm="rsa-sha256", headers="date host" , signature="aGVsbG8="`
		v, err := authorization.Parse([]byte(src))
		require.NoError(t, err)
		require.Equal(t, "1", v.Version(), "version defaults to 1")
		require.Equal(t, "k", v.KeyID())
		require.Equal(t, []string{"date", "host"}, v.Headers())
		require.Equal(t, []byte("hello"), v.Signature())
	})

	t.Run("Headers default to date", func(t *testing.T) {
		t.Parallel()
		v, err := authorization.Parse([]byte(`Signature keyId="k",algorithm="rsa-sha256",signature="aGVsbG8="`))
		require.NoError(t, err)
		require.Equal(t, []string{"date"}, v.Headers())
	})

	t.Run("Escaped quotes", func(t *testing.T) {
		t.Parallel()
		v := authorization.NewBuilder().
			KeyID(`a"b\c`).
			Algorithm("rsa-sha256").
			Headers("date").
			Signature([]byte("x")).
			MustBuild()
		buf, err := v.MarshalText()
		require.NoError(t, err)
		require.Contains(t, string(buf), `keyId="a\"b\\c"`)

		parsed, err := authorization.Parse(buf)
		require.NoError(t, err)
		require.Equal(t, `a"b\c`, parsed.KeyID())
	})

	errorcases := []struct {
		name string
		src  string
	}{
		{name: "wrong scheme", src: `Bearer token`},
		{name: "no parameters", src: `Signature`},
		{name: "unquoted value", src: `Signature keyId=k,algorithm="rsa-sha256",signature="aGVsbG8="`},
		{name: "unterminated value", src: `Signature keyId="k,algorithm="rsa-sha256"`},
		{name: "missing comma", src: `Signature keyId="k" algorithm="rsa-sha256",signature="aGVsbG8="`},
		{name: "duplicate parameter", src: `Signature keyId="k",keyId="j",algorithm="rsa-sha256",signature="aGVsbG8="`},
		{name: "missing signature", src: `Signature keyId="k",algorithm="rsa-sha256"`},
		{name: "bad base64", src: `Signature keyId="k",algorithm="rsa-sha256",signature="!!!"`},
		{name: "missing keyId", src: `Signature algorithm="rsa-sha256",signature="aGVsbG8="`},
	}
	for _, tc := range errorcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := authorization.Parse([]byte(tc.src))
			require.Error(t, err)
		})
	}
}
