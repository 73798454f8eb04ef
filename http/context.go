package http

import (
	"context"
	"io"

	"github.com/lestrrat-go/ocisig/authorization"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request id OCI uses to correlate calls.
const RequestIDHeader = "opc-request-id"

// Context key types for storing values in request context
type verificationErrorKey struct{}
type authorizationKey struct{}
type requestIDKey struct{}

// WithVerificationError adds a verification error to the context.
func WithVerificationError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, verificationErrorKey{}, err)
}

// VerificationErrorFromContext retrieves a verification error from the context.
func VerificationErrorFromContext(ctx context.Context) error {
	if err, ok := ctx.Value(verificationErrorKey{}).(error); ok {
		return err
	}
	return nil
}

// WithAuthorization adds a verified Authorization value to the context.
func WithAuthorization(ctx context.Context, v *authorization.Value) context.Context {
	return context.WithValue(ctx, authorizationKey{}, v)
}

// AuthorizationFromContext retrieves the verified Authorization value,
// which carries the keyId of the caller.
func AuthorizationFromContext(ctx context.Context) *authorization.Value {
	if v, ok := ctx.Value(authorizationKey{}).(*authorization.Value); ok {
		return v
	}
	return nil
}

// WithRequestID adds a request id to the context. SigningTransport sends
// it as the opc-request-id header.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
