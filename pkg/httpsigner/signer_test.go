package httpsigner

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"io"
	"net/http"
	"regexp"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

var authHeaderRe = regexp.MustCompile(
	`^Signature keyId="([^"]+)",algorithm="rsa-sha256",signature="([^"]+)"$`)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func writeKeyPEM(t *testing.T, fs afero.Fs, path string, key *rsa.PrivateKey) {
	t.Helper()
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, afero.WriteFile(fs, path, pemBytes, 0o600))
}

// keyringDialer returns a dialer backed by an in-process agent keyring.
func keyringDialer(t *testing.T, keys ...*rsa.PrivateKey) AgentDialer {
	t.Helper()
	kr := agent.NewKeyring()
	for _, k := range keys {
		require.NoError(t, kr.Add(agent.AddedKey{PrivateKey: k, Comment: "test-key"}))
	}
	ext, ok := kr.(agent.ExtendedAgent)
	require.True(t, ok)
	return func() (agent.ExtendedAgent, io.Closer, error) {
		return ext, nil, nil
	}
}

// verifySignature checks that req carries a valid signature over its Date
// header for the given public key, and returns the keyId parameter.
func verifySignature(t *testing.T, req *http.Request, pub *rsa.PublicKey) string {
	t.Helper()
	auth := req.Header.Get("Authorization")
	m := authHeaderRe.FindStringSubmatch(auth)
	require.NotNil(t, m, "unexpected Authorization header: %q", auth)

	sig, err := base64.StdEncoding.DecodeString(m[2])
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("date: " + req.Header.Get("Date")))
	require.NoError(t, rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig))
	return m[1]
}

func TestNew_RequiresASource(t *testing.T) {
	_, err := New(Credential{KeyID: "/acct/keys/work"})
	require.ErrorIs(t, err, ErrNoKeyMaterial)

	_, err = New(Credential{KeyPath: "/keys/id_rsa"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key id")
}

func TestSignRequest_FileSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	key := generateKey(t)
	writeKeyPEM(t, fs, "/keys/id_rsa", key)

	s, err := New(Credential{
		KeyID:   "/acct/keys/work",
		KeyPath: "/keys/id_rsa",
	}, WithFs(fs))
	require.NoError(t, err)
	assert.Equal(t, SourceFile, s.Source())

	req, err := http.NewRequest(http.MethodGet, "https://us-west-1.api.example.com/acct/machines", nil)
	require.NoError(t, err)

	require.NoError(t, s.SignRequest(req))
	assert.NotEmpty(t, req.Header.Get("Date"))
	keyID := verifySignature(t, req, &key.PublicKey)
	assert.Equal(t, "/acct/keys/work", keyID)
}

func TestSignRequest_KeepsExistingDate(t *testing.T) {
	fs := afero.NewMemMapFs()
	key := generateKey(t)
	writeKeyPEM(t, fs, "/keys/id_rsa", key)

	s, err := New(Credential{KeyID: "k", KeyPath: "/keys/id_rsa"}, WithFs(fs))
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	require.NoError(t, err)
	req.Header.Set("Date", "Mon, 02 Jan 2006 15:04:05 GMT")

	require.NoError(t, s.SignRequest(req))
	assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 GMT", req.Header.Get("Date"))
	verifySignature(t, req, &key.PublicKey)
}

func TestSignRequest_MalformedKeyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/keys/id_rsa", []byte("not a key"), 0o600))

	s, err := New(Credential{KeyID: "k", KeyPath: "/keys/id_rsa"}, WithFs(fs))
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	err = s.SignRequest(req)
	require.ErrorIs(t, err, ErrNoKeyMaterial)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestSignRequest_MissingKeyFile(t *testing.T) {
	s, err := New(Credential{KeyID: "k", KeyPath: "/keys/nope"}, WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	require.ErrorIs(t, s.SignRequest(req), ErrNoKeyMaterial)
}

func TestSignRequest_AgentSource(t *testing.T) {
	key := generateKey(t)

	s, err := New(Credential{
		KeyID:      "/acct/keys/work",
		AllowAgent: true,
	}, WithAgentDialer(keyringDialer(t, key)))
	require.NoError(t, err)
	assert.Equal(t, SourceAgent, s.Source())

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	require.NoError(t, s.SignRequest(req))
	verifySignature(t, req, &key.PublicKey)
}

func TestSignRequest_AgentPicksFingerprint(t *testing.T) {
	decoy := generateKey(t)
	wanted := generateKey(t)

	pub, err := ssh.NewPublicKey(&wanted.PublicKey)
	require.NoError(t, err)

	s, err := New(Credential{
		KeyID:       "/acct/keys/work",
		AllowAgent:  true,
		Fingerprint: ssh.FingerprintSHA256(pub),
	}, WithAgentDialer(keyringDialer(t, decoy, wanted)))
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	require.NoError(t, s.SignRequest(req))
	verifySignature(t, req, &wanted.PublicKey)
}

func TestSignRequest_AgentAmbiguous(t *testing.T) {
	s, err := New(Credential{
		KeyID:      "/acct/keys/work",
		AllowAgent: true,
	}, WithAgentDialer(keyringDialer(t, generateKey(t), generateKey(t))))
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	require.ErrorIs(t, s.SignRequest(req), ErrNoKeyMaterial)
}

func TestSwapSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	key := generateKey(t)
	writeKeyPEM(t, fs, "/keys/id_rsa", key)

	s, err := New(Credential{
		KeyID:      "/acct/keys/work",
		KeyPath:    "/keys/id_rsa",
		AllowAgent: true,
	}, WithFs(fs), WithAgentDialer(keyringDialer(t, key)))
	require.NoError(t, err)

	// First signature loads the file key, which lets the agent identity be
	// matched by public key afterwards.
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	require.NoError(t, s.SignRequest(req))

	require.True(t, s.CanSwap())
	require.True(t, s.SwapSource())
	assert.Equal(t, SourceAgent, s.Source())

	req2, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	require.NoError(t, s.SignRequest(req2))
	verifySignature(t, req2, &key.PublicKey)

	// Swapping again returns to the file source.
	require.True(t, s.SwapSource())
	assert.Equal(t, SourceFile, s.Source())
}

func TestSwapSource_NoAgent(t *testing.T) {
	fs := afero.NewMemMapFs()
	key := generateKey(t)
	writeKeyPEM(t, fs, "/keys/id_rsa", key)

	s, err := New(Credential{
		KeyID:   "/acct/keys/work",
		KeyPath: "/keys/id_rsa",
	}, WithFs(fs))
	require.NoError(t, err)

	assert.False(t, s.CanSwap())
	assert.False(t, s.SwapSource())
	assert.Equal(t, SourceFile, s.Source())
}

func TestSwapSource_AgentEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	key := generateKey(t)
	writeKeyPEM(t, fs, "/keys/id_rsa", key)

	s, err := New(Credential{
		KeyID:      "/acct/keys/work",
		KeyPath:    "/keys/id_rsa",
		AllowAgent: true,
	}, WithFs(fs), WithAgentDialer(keyringDialer(t)))
	require.NoError(t, err)

	assert.False(t, s.SwapSource())
	assert.Equal(t, SourceFile, s.Source())
}
