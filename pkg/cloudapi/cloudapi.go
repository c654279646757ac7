// Package cloudapi is a client for the SmartDataCenter CloudAPI: account,
// key, image, package, network, machine, and snapshot management for one
// datacenter endpoint.
//
// A Client owns the endpoint URL, the login scope, default headers, and an
// optional request signer. All resource accessors are thin translations to
// single REST calls through the Client's request primitive; Machine and
// Snapshot values cache the last-fetched server state and can be refreshed
// or polled on demand.
package cloudapi

const (
	// APIVersion is the CloudAPI version requested via the X-Api-Version
	// header.
	APIVersion = "7.0"

	// DefaultLocation is used when no location or base URL is configured.
	DefaultLocation = "us-west-1"

	// sentinelLogin scopes requests to the authenticated caller's own
	// account until the real login name is learned from the first
	// successful account fetch.
	sentinelLogin = "my"

	// apiHostSuffix turns a bare location name into an API hostname.
	apiHostSuffix = ".api.joyentcloud.com"

	defaultUserAgent = "smartdc-go"

	// defaultQueryLimit is the server's page size when a listing request
	// does not name one.
	defaultQueryLimit = 1000
)

// KnownLocations returns the default mapping from location keys to API
// endpoints for the Joyent public cloud. Callers pointing at a private
// cloud supply their own mapping in the Config.
func KnownLocations() map[string]string {
	return map[string]string{
		"us-east-1": "https://us-east-1.api.joyentcloud.com",
		"us-sw-1":   "https://us-sw-1.api.joyentcloud.com",
		"us-west-1": "https://us-west-1.api.joyentcloud.com",
		"eu-ams-1":  "https://eu-ams-1.api.joyentcloud.com",
	}
}
