package ocisig

import (
	"errors"
	"fmt"
)

// ValidationError is returned when a required signing input, such as the
// HTTP method or the request path, is missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConfigurationError is returned when key identity or private key material
// is absent or cannot be used.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func newConfigurationError(err error, format string, args ...any) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...), Err: err}
}

// CryptoError is returned when the signing operation itself fails.
type CryptoError struct {
	Message string
	Err     error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crypto error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("crypto error: %s", e.Message)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsConfigurationError reports whether err is, or wraps, a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsCryptoError reports whether err is, or wraps, a *CryptoError.
func IsCryptoError(err error) bool {
	var target *CryptoError
	return errors.As(err, &target)
}
