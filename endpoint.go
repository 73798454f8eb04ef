package ocisig

import (
	"strings"
)

const (
	DefaultService = "objectstorage"
	DefaultRegion  = "ap-singapore-1"
	DefaultDomain  = "oraclecloud.com"
)

// Endpoint describes an OCI service endpoint. The host name is derived
// as "<service>.<region>.<domain>".
type Endpoint struct {
	Service string
	Region  string
	Domain  string
}

// DefaultEndpoint returns the endpoint used when neither an explicit host
// nor endpoint fields are given.
func DefaultEndpoint() Endpoint {
	return Endpoint{
		Service: DefaultService,
		Region:  DefaultRegion,
		Domain:  DefaultDomain,
	}
}

// Merge returns a copy of e with every non-empty field of other applied.
func (e Endpoint) Merge(other Endpoint) Endpoint {
	if other.Service != "" {
		e.Service = other.Service
	}
	if other.Region != "" {
		e.Region = other.Region
	}
	if other.Domain != "" {
		e.Domain = other.Domain
	}
	return e
}

// Host returns the fully qualified host name. Empty fields fall back to
// the package defaults.
func (e Endpoint) Host() string {
	e = DefaultEndpoint().Merge(e)
	return e.Service + "." + e.Region + "." + e.Domain
}

// ResolveHost returns the host to sign and send to. An explicit host
// always takes precedence over the one derived from ep.
func ResolveHost(host string, ep Endpoint) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		host = ep.Host()
	}
	if strings.ContainsAny(host, "/ \t\r\n") {
		return "", newValidationError("host", "%q is not a host name", host)
	}
	return host, nil
}
