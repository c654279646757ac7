// Package httpsigner signs outbound HTTP requests with the Signature
// authentication scheme used by the CloudAPI: the request's Date header is
// signed with an RSA key identified by a key ID, and the result is carried
// in the Authorization header.
//
// A Signer is backed by exactly one secret source at a time: a PEM private
// key file on disk, or a running ssh-agent that holds the same key. The
// active source can be toggled with SwapSource, which the API client uses
// as its single recovery step after an unauthorized response.
package httpsigner

import (
	"errors"
)

// Source identifies which secret source currently backs a Signer.
type Source int

const (
	// SourceFile signs with a private key read from disk.
	SourceFile Source = iota

	// SourceAgent signs through a running ssh-agent without ever loading
	// the private key into this process.
	SourceAgent
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceAgent:
		return "agent"
	default:
		return "unknown"
	}
}

// Credential names a signing key and where its secret may be found.
// The key ID is the value placed in the Authorization header's keyId
// parameter (for the CloudAPI, "/:account/keys/:name"); switching secret
// sources never changes it.
type Credential struct {
	// KeyID is the identifier the server uses to look up the public key.
	KeyID string

	// KeyPath is the path to a PEM-encoded RSA private key. A leading
	// "~/" is expanded to the user's home directory.
	KeyPath string

	// Fingerprint optionally pins the agent identity to use, in the
	// "SHA256:..." form produced by ssh-keygen -lf.
	Fingerprint string

	// AllowAgent permits signing through the ssh-agent named by
	// SSH_AUTH_SOCK.
	AllowAgent bool
}

// Sentinel errors.
var (
	// ErrNoKeyMaterial is returned when neither the key file nor an agent
	// identity can produce a signature for the credential.
	ErrNoKeyMaterial = errors.New("httpsigner: no usable key material")

	// ErrAgentUnavailable is returned when no ssh-agent can be reached.
	ErrAgentUnavailable = errors.New("httpsigner: ssh agent unavailable")
)
