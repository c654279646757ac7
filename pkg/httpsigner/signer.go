package httpsigner

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

const signatureAlgorithm = "rsa-sha256"

// Signer produces Authorization headers for one Credential. It is safe to
// share between requests but SwapSource mutates the active source, so
// concurrent callers must coordinate externally.
type Signer struct {
	cred Credential
	fs   afero.Fs
	dial AgentDialer

	mu      sync.Mutex
	source  Source
	fileKey *rsa.PrivateKey
}

// Option adjusts Signer construction.
type Option func(*Signer)

// WithFs overrides the filesystem used to read the private key file.
func WithFs(fs afero.Fs) Option {
	return func(s *Signer) { s.fs = fs }
}

// WithAgentDialer overrides how the ssh-agent connection is established.
func WithAgentDialer(d AgentDialer) Option {
	return func(s *Signer) { s.dial = d }
}

// New builds a Signer for the credential. The file source is preferred when
// a key path is configured; otherwise the agent is the initial source. An
// error is returned when the credential names no source at all.
func New(cred Credential, opts ...Option) (*Signer, error) {
	if cred.KeyID == "" {
		return nil, errors.New("httpsigner: key id is required")
	}

	var probe *multierror.Error
	if cred.KeyPath == "" {
		probe = multierror.Append(probe, errors.New("no private key path configured"))
	}
	if !cred.AllowAgent {
		probe = multierror.Append(probe, errors.New("agent lookup disabled"))
	}
	if probe != nil && len(probe.Errors) == 2 {
		return nil, fmt.Errorf("%w: %v", ErrNoKeyMaterial, probe)
	}

	s := &Signer{
		cred: cred,
		fs:   afero.NewOsFs(),
		dial: dialEnvAgent,
	}
	if cred.KeyPath == "" {
		s.source = SourceAgent
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// KeyID returns the credential's key identifier.
func (s *Signer) KeyID() string {
	return s.cred.KeyID
}

// Source returns the currently active secret source.
func (s *Signer) Source() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// SignRequest signs req's Date header (setting it first if absent) and
// attaches the Authorization header. The signing string is "date: <value>",
// hashed with SHA-256 and signed with the active source's RSA key.
func (s *Signer) SignRequest(req *http.Request) error {
	if req.Header.Get("Date") == "" {
		req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	}
	msg := []byte("date: " + req.Header.Get("Date"))

	sig, err := s.sign(msg)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", fmt.Sprintf(
		"Signature keyId=%q,algorithm=%q,signature=%q",
		s.cred.KeyID, signatureAlgorithm,
		base64.StdEncoding.EncodeToString(sig)))
	return nil
}

// CanSwap reports whether the alternate secret source could serve the
// credential right now. For the file source this means a matching agent
// identity is reachable; for the agent source, that a key path is set.
func (s *Signer) CanSwap() bool {
	s.mu.Lock()
	src := s.source
	s.mu.Unlock()

	if src == SourceFile {
		_, err := s.lookupAgentKey()
		return err == nil
	}
	return s.cred.KeyPath != ""
}

// SwapSource toggles between the file and agent sources for the same key
// identifier. It reports whether a swap happened; when the alternate source
// is unavailable the active source is left untouched.
func (s *Signer) SwapSource() bool {
	if !s.CanSwap() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == SourceFile {
		s.source = SourceAgent
	} else {
		s.source = SourceFile
	}
	return true
}

func (s *Signer) sign(msg []byte) ([]byte, error) {
	s.mu.Lock()
	src := s.source
	s.mu.Unlock()

	switch src {
	case SourceFile:
		key, err := s.loadFileKey()
		if err != nil {
			return nil, err
		}
		digest := sha256.Sum256(msg)
		sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
		if err != nil {
			return nil, fmt.Errorf("httpsigner: signing with key file: %w", err)
		}
		return sig, nil
	case SourceAgent:
		return s.agentSign(msg)
	default:
		return nil, ErrNoKeyMaterial
	}
}
