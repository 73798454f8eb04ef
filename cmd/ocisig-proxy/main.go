// Command ocisig-proxy serves the OCI signing proxy.
//
// Configuration is read from .env and the environment; see
// internal/config for the variables.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ocihttp "github.com/lestrrat-go/ocisig/http"
	"github.com/lestrrat-go/ocisig/internal/config"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := run(logger); err != nil {
		logger.WithError(err).Fatal("ocisig-proxy exited")
	}
}

func run(logger *logrus.Logger) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)

	creds, err := cfg.Credentials()
	if err != nil {
		return err
	}

	proxy := ocihttp.NewProxy(creds,
		ocihttp.WithEndpoint(cfg.Endpoint()),
		ocihttp.WithTimeout(cfg.UpstreamTimeout),
		ocihttp.WithLogger(logger),
	)

	mux := http.NewServeMux()
	mux.Handle("/api/sign-oci", ocihttp.Wrap(proxy))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":     cfg.ListenAddr,
			"endpoint": cfg.Endpoint().Host(),
			"key_id":   creds.KeyID(),
		}).Info("ocisig-proxy listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
