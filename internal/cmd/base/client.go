package base

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/smartdc-forge/smartdc/internal/config"
	"github.com/smartdc-forge/smartdc/pkg/cloudapi"
	"github.com/smartdc-forge/smartdc/pkg/httpsigner"
)

// ClientFlags holds the connection flags shared by every command that
// talks to the API. Flag values override profile values, which override
// the SDC_* environment variables.
type ClientFlags struct {
	flagConfig      string
	flagProfile     string
	flagLocation    string
	flagURL         string
	flagLogin       string
	flagKeyID       string
	flagKeyPath     string
	flagFingerprint string
	flagAllowAgent  bool
	flagInsecure    bool
}

// Register adds the connection flags to f.
func (cf *ClientFlags) Register(f *FlagSet) {
	f.StringVar(
		&cf.flagConfig, "config", defaultConfigPath(),
		"Path to the sdc configuration file",
	)
	f.StringVar(
		&cf.flagProfile, "profile", "",
		"Named profile from the configuration file",
	)
	f.StringVar(
		&cf.flagLocation, "location", "",
		"Datacenter name or hostname",
	)
	f.StringVar(
		&cf.flagURL, "url", "",
		"[SDC_URL] Explicit API endpoint, overrides -location",
	)
	f.StringVar(
		&cf.flagLogin, "login", "",
		"[SDC_ACCOUNT] Account login name",
	)
	f.StringVar(
		&cf.flagKeyID, "key-id", "",
		"[SDC_KEY_ID] Key identifier, e.g. /login/keys/id_rsa",
	)
	f.StringVar(
		&cf.flagKeyPath, "key-path", "",
		"Path to the private key file",
	)
	f.StringVar(
		&cf.flagFingerprint, "fingerprint", "",
		"Public key fingerprint used to pick an agent identity",
	)
	f.BoolVar(
		&cf.flagAllowAgent, "allow-agent", false,
		"Sign with a key held by the running ssh-agent",
	)
	f.BoolVar(
		&cf.flagInsecure, "insecure", false,
		"Skip TLS certificate verification",
	)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sdc", "config.hcl")
}

// resolve merges the profile and environment into the flag values.
func (cf *ClientFlags) resolve(c *Command) (*config.Profile, error) {
	p := &config.Profile{}
	if cf.flagConfig != "" {
		cfg, err := config.Load(cf.flagConfig)
		if err != nil {
			// A missing default config file is not an error unless a
			// profile was requested by name.
			if cf.flagProfile != "" {
				return nil, err
			}
			c.Log.Debug("no configuration file", "path", cf.flagConfig, "error", err)
		} else {
			p, err = cfg.Profile(cf.flagProfile)
			if err != nil {
				return nil, err
			}
		}
	}

	merge := func(flagValue, profileValue, envKey string) string {
		if flagValue != "" {
			return flagValue
		}
		if profileValue != "" {
			return profileValue
		}
		return os.Getenv(envKey)
	}

	resolved := &config.Profile{
		Location:    merge(cf.flagLocation, p.Location, ""),
		URL:         merge(cf.flagURL, p.URL, "SDC_URL"),
		Login:       merge(cf.flagLogin, p.Login, "SDC_ACCOUNT"),
		KeyID:       merge(cf.flagKeyID, p.KeyID, "SDC_KEY_ID"),
		KeyPath:     merge(cf.flagKeyPath, p.KeyPath, ""),
		Fingerprint: merge(cf.flagFingerprint, p.Fingerprint, ""),
		AllowAgent:  cf.flagAllowAgent || p.AllowAgent,
		Insecure:    cf.flagInsecure || p.Insecure,
	}
	return resolved, nil
}

// Client builds an API client from the resolved connection settings.
func (cf *ClientFlags) Client(c *Command) (*cloudapi.Client, error) {
	p, err := cf.resolve(c)
	if err != nil {
		return nil, err
	}
	if p.KeyID == "" {
		return nil, fmt.Errorf("a key id is required (-key-id, profile key_id, or SDC_KEY_ID)")
	}

	signer, err := httpsigner.New(httpsigner.Credential{
		KeyID:       p.KeyID,
		KeyPath:     p.KeyPath,
		Fingerprint: p.Fingerprint,
		AllowAgent:  p.AllowAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("building request signer: %w", err)
	}

	cfg := cloudapi.DefaultConfig()
	cfg.Location = p.Location
	cfg.BaseURL = p.URL
	cfg.Login = p.Login
	cfg.Signer = signer
	cfg.Logger = c.Log
	if p.Insecure {
		verify := false
		cfg.TLSVerify = &verify
	}

	return cloudapi.NewClient(cfg)
}
