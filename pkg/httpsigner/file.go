package httpsigner

import (
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"
)

// loadFileKey reads and caches the PEM private key named by the credential.
func (s *Signer) loadFileKey() (*rsa.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fileKey != nil {
		return s.fileKey, nil
	}

	path, err := expandHome(s.cred.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving key path: %v", ErrNoKeyMaterial, err)
	}

	pemBytes, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrNoKeyMaterial, path, err)
	}

	raw, err := ssh.ParseRawPrivateKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrNoKeyMaterial, path, err)
	}

	key, ok := raw.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds a %T, want an RSA key", ErrNoKeyMaterial, path, raw)
	}

	s.fileKey = key
	return key, nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
