package config_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/ocisig/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func requiredVars(t *testing.T) map[string]string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemStr := string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))

	return map[string]string{
		config.EnvTenancyOCID: "ocid1.tenancy.oc1..t",
		config.EnvUserOCID:    "ocid1.user.oc1..u",
		config.EnvFingerprint: "aa:bb",
		config.EnvPrivateKey:  strings.ReplaceAll(pemStr, "\n", `\n`),
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("Defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.Parse(requiredVars(t))
		require.NoError(t, err)
		require.Equal(t, "objectstorage", cfg.Service)
		require.Equal(t, "ap-singapore-1", cfg.Region)
		require.Equal(t, "oraclecloud.com", cfg.Domain)
		require.Equal(t, config.DefaultListenAddr, cfg.ListenAddr)
		require.Equal(t, logrus.InfoLevel, cfg.LogLevel)
		require.Equal(t, config.DefaultUpstreamTimeout, cfg.UpstreamTimeout)
		require.Equal(t, "objectstorage.ap-singapore-1.oraclecloud.com", cfg.Endpoint().Host())

		creds, err := cfg.Credentials()
		require.NoError(t, err)
		require.Equal(t, "ocid1.tenancy.oc1..t/ocid1.user.oc1..u/aa:bb", creds.KeyID())
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Parallel()
		vars := requiredVars(t)
		vars[config.EnvService] = "document"
		vars[config.EnvRegion] = "us-ashburn-1"
		vars[config.EnvListenAddr] = "127.0.0.1:9000"
		vars[config.EnvLogLevel] = "debug"
		vars[config.EnvUpstreamTimeout] = "5s"

		cfg, err := config.Parse(vars)
		require.NoError(t, err)
		require.Equal(t, "document.us-ashburn-1.oraclecloud.com", cfg.Endpoint().Host())
		require.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
		require.Equal(t, logrus.DebugLevel, cfg.LogLevel)
		require.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	})

	t.Run("Missing credentials", func(t *testing.T) {
		t.Parallel()
		_, err := config.Parse(map[string]string{config.EnvUserOCID: "u"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "OCI_TENANCY_OCID, OCI_FINGERPRINT, OCI_PRIVATE_KEY")
	})

	t.Run("Invalid values", func(t *testing.T) {
		t.Parallel()
		for key, value := range map[string]string{
			config.EnvLogLevel:        "loud",
			config.EnvUpstreamTimeout: "soon",
		} {
			vars := requiredVars(t)
			vars[key] = value
			_, err := config.Parse(vars)
			require.Error(t, err, key)
		}
	})

	t.Run("Bad key surfaces when building credentials", func(t *testing.T) {
		t.Parallel()
		vars := requiredVars(t)
		vars[config.EnvPrivateKey] = "not a key"
		cfg, err := config.Parse(vars)
		require.NoError(t, err)
		_, err = cfg.Credentials()
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	vars := requiredVars(t)
	dir := t.TempDir()

	var sb strings.Builder
	for k, v := range vars {
		sb.WriteString(k + "=\"" + v + "\"\n")
	}
	sb.WriteString(config.EnvRegion + "=from-file\n")
	sb.WriteString(config.EnvService + "=document\n")
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(sb.String()), 0o600))

	t.Setenv(config.EnvRegion, "from-env")

	cfg, err := config.Load(filepath.Join(dir, "missing.env"), envFile)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Region, "environment wins over files")
	require.Equal(t, "document", cfg.Service)

	_, err = cfg.Credentials()
	require.NoError(t, err)

	_, isSet := os.LookupEnv(config.EnvService)
	require.False(t, isSet, "files do not leak into the environment")
}
