package ocisig

import (
	"time"

	"github.com/lestrrat-go/option"
)

type Option = option.Interface

// SignOption configures Sign
type SignOption interface {
	Option
	signOption()
}

type signOption struct {
	Option
}

func (signOption) signOption() {}

// VerifyOption configures Verify
type VerifyOption interface {
	Option
	verifyOption()
}

type verifyOption struct {
	Option
}

func (verifyOption) verifyOption() {}

// SignVerifyOption can be used with both Sign and Verify
type SignVerifyOption interface {
	Option
	signOption()
	verifyOption()
}

type signVerifyOption struct {
	Option
}

func (signVerifyOption) signOption()   {}
func (signVerifyOption) verifyOption() {}

type identClock struct{}

func (identClock) String() string { return "WithClock" }

type identEndpoint struct{}

func (identEndpoint) String() string { return "WithEndpoint" }

type identMaxClockSkew struct{}

func (identMaxClockSkew) String() string { return "WithMaxClockSkew" }

// WithClock sets the clock used to generate the Date header when signing,
// and to evaluate clock skew when verifying.
func WithClock(clock Clock) SignVerifyOption {
	return signVerifyOption{option.New(identClock{}, clock)}
}

// WithEndpoint sets the endpoint used to derive the host when the
// request does not carry an explicit one.
func WithEndpoint(ep Endpoint) SignOption {
	return signOption{option.New(identEndpoint{}, ep)}
}

// WithMaxClockSkew rejects requests whose Date header differs from the
// current time by more than d. Zero disables the check.
func WithMaxClockSkew(d time.Duration) VerifyOption {
	return verifyOption{option.New(identMaxClockSkew{}, d)}
}

// Clock provides the current time for timestamp operations.
type Clock interface {
	Now() time.Time
}

// SystemClock uses the system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type fixedClock struct {
	time time.Time
}

func (c fixedClock) Now() time.Time {
	return c.time
}

// FixedClock returns a Clock that always returns the same time.
// This is useful for testing to ensure deterministic signatures.
func FixedClock(t time.Time) Clock {
	return fixedClock{time: t}
}
