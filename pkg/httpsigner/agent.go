package httpsigner

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// AgentDialer opens a connection to an ssh-agent. The returned closer tears
// the connection down once the signing operation is finished.
type AgentDialer func() (agent.ExtendedAgent, io.Closer, error)

// dialEnvAgent connects to the agent named by SSH_AUTH_SOCK.
func dialEnvAgent() (agent.ExtendedAgent, io.Closer, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, nil, fmt.Errorf("%w: SSH_AUTH_SOCK is not set", ErrAgentUnavailable)
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}
	return agent.NewClient(conn), conn, nil
}

// agentSign signs msg through the ssh-agent, requesting an rsa-sha2-256
// signature so the result matches what the file source would produce.
func (s *Signer) agentSign(msg []byte) ([]byte, error) {
	if !s.cred.AllowAgent {
		return nil, fmt.Errorf("%w: agent lookup disabled", ErrNoKeyMaterial)
	}
	ag, closer, err := s.dial()
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer.Close()
	}

	key, err := selectIdentity(ag, s.cred, s.filePublicKey())
	if err != nil {
		return nil, err
	}

	sig, err := ag.SignWithFlags(key, msg, agent.SignatureFlagRsaSha256)
	if err != nil {
		return nil, fmt.Errorf("httpsigner: agent signing: %w", err)
	}
	return sig.Blob, nil
}

// lookupAgentKey reports whether the agent holds an identity usable for the
// credential, without signing anything.
func (s *Signer) lookupAgentKey() (*agent.Key, error) {
	if !s.cred.AllowAgent {
		return nil, fmt.Errorf("%w: agent lookup disabled", ErrNoKeyMaterial)
	}
	ag, closer, err := s.dial()
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer.Close()
	}
	return selectIdentity(ag, s.cred, s.filePublicKey())
}

// filePublicKey derives the public half of the file key when it has already
// been loaded. Used to recognize the same key identifier in the agent.
func (s *Signer) filePublicKey() ssh.PublicKey {
	s.mu.Lock()
	key := s.fileKey
	s.mu.Unlock()
	if key == nil {
		return nil
	}
	pub, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		return nil
	}
	return pub
}

// selectIdentity picks the agent identity matching the credential: an
// explicit fingerprint wins, then the public half of the configured key
// file, then a fingerprint embedded in the key ID. A lone identity is used
// as a last resort.
func selectIdentity(ag agent.ExtendedAgent, cred Credential, filePub ssh.PublicKey) (*agent.Key, error) {
	keys, err := ag.List()
	if err != nil {
		return nil, fmt.Errorf("%w: listing identities: %v", ErrAgentUnavailable, err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: agent holds no identities", ErrNoKeyMaterial)
	}

	for _, k := range keys {
		fp := ssh.FingerprintSHA256(k)
		if cred.Fingerprint != "" && fp == cred.Fingerprint {
			return k, nil
		}
		if filePub != nil && bytes.Equal(k.Marshal(), filePub.Marshal()) {
			return k, nil
		}
		if cred.Fingerprint == "" && strings.Contains(cred.KeyID, fp) {
			return k, nil
		}
	}

	if cred.Fingerprint == "" && filePub == nil && len(keys) == 1 {
		return keys[0], nil
	}
	return nil, fmt.Errorf("%w: no agent identity matches key id %q", ErrNoKeyMaterial, cred.KeyID)
}
