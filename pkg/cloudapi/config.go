package cloudapi

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
)

// RequestSigner signs outbound requests and can switch between the secret
// sources backing its credential. *httpsigner.Signer satisfies it.
type RequestSigner interface {
	// SignRequest attaches an Authorization header to the request.
	SignRequest(req *http.Request) error

	// CanSwap reports whether an alternate secret source is available
	// for the same key identifier.
	CanSwap() bool

	// SwapSource toggles to the alternate secret source, reporting
	// whether a swap happened.
	SwapSource() bool
}

// Config describes one datacenter session.
type Config struct {
	// Location selects the API endpoint, either as a key into
	// KnownLocations, a fully qualified hostname, or a bare name that is
	// suffixed with the public cloud domain.
	Location string

	// BaseURL overrides Location entirely when set.
	// Example: "https://us-west-1.api.joyentcloud.com"
	BaseURL string

	// Login is the account path requests are scoped to. Empty means the
	// authenticated caller's own account, resolved on the first
	// successful account fetch.
	Login string

	// KnownLocations maps location keys to endpoint URLs. Defaults to
	// the Joyent public cloud mapping.
	KnownLocations map[string]string

	// Headers are sent with every request. Per-call headers win on
	// conflict.
	Headers map[string]string

	// APIVersion is sent as X-Api-Version. Defaults to APIVersion.
	APIVersion string

	// UserAgent identifies this client. Defaults to defaultUserAgent.
	UserAgent string

	// TLSVerify controls server certificate verification. Defaults to
	// true; disable only against development endpoints.
	TLSVerify *bool

	// Timeout bounds each HTTP request. Default: 30 seconds.
	Timeout time.Duration

	// Signer authenticates requests. Nil leaves requests unsigned; the
	// server decides whether an unsigned request is acceptable.
	Signer RequestSigner

	// Logger receives per-request debug logging. Defaults to a no-op
	// logger.
	Logger hclog.Logger
}

// DefaultConfig returns a Config for the default public cloud location.
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		Location:       DefaultLocation,
		KnownLocations: KnownLocations(),
		APIVersion:     APIVersion,
		UserAgent:      defaultUserAgent,
		TLSVerify:      &tlsVerify,
		Timeout:        30 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.By(validateEndpointURL)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

func validateEndpointURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// resolveBaseURL turns the configured location into an endpoint URL: an
// explicit BaseURL wins, then the known-locations mapping, then a
// fully-qualified name, and finally the bare name is suffixed with the
// public cloud domain.
func resolveBaseURL(location string, known map[string]string) string {
	if u, ok := known[location]; ok {
		return u
	}
	if strings.Contains(location, ".") || location == "localhost" ||
		strings.Contains(location, ":") {
		return "https://" + location
	}
	return "https://" + location + apiHostSuffix
}

// NewHTTPClient builds the HTTP client used for all requests.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}
	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
