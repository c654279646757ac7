package cloudapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantError bool
		errorMsg  string
	}{
		{
			name:   "Defaults",
			config: DefaultConfig(),
		},
		{
			name:   "Explicit base URL",
			config: &Config{BaseURL: "https://sdc.internal.example.com"},
		},
		{
			name:      "Bad scheme",
			config:    &Config{BaseURL: "ftp://sdc.example.com"},
			wantError: true,
			errorMsg:  "scheme",
		},
		{
			name:      "Missing host",
			config:    &Config{BaseURL: "https://"},
			wantError: true,
			errorMsg:  "host",
		},
		{
			name:      "Negative timeout",
			config:    &Config{Timeout: -time.Second},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError {
				require.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewClient_ResolvesLocation(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantURL string
	}{
		{
			name:    "Known location key",
			config:  &Config{Location: "eu-ams-1"},
			wantURL: "https://eu-ams-1.api.joyentcloud.com",
		},
		{
			name: "Custom known locations",
			config: &Config{
				Location: "lab",
				KnownLocations: map[string]string{
					"lab": "https://sdc.lab.example.com",
				},
			},
			wantURL: "https://sdc.lab.example.com",
		},
		{
			name:    "Fully qualified hostname",
			config:  &Config{Location: "api.private.example.com"},
			wantURL: "https://api.private.example.com",
		},
		{
			name:    "Localhost",
			config:  &Config{Location: "localhost"},
			wantURL: "https://localhost",
		},
		{
			name:    "Bare name gets public cloud suffix",
			config:  &Config{Location: "us-sw-1x"},
			wantURL: "https://us-sw-1x.api.joyentcloud.com",
		},
		{
			name:    "Default location",
			config:  &Config{},
			wantURL: "https://us-west-1.api.joyentcloud.com",
		},
		{
			name:    "Base URL wins over location",
			config:  &Config{Location: "us-east-1", BaseURL: "https://override.example.com/"},
			wantURL: "https://override.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, c.BaseURL())
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(nil)
	require.NoError(t, err)
	assert.Equal(t, sentinelLogin, c.Login())
	assert.Equal(t, "https://us-west-1.api.joyentcloud.com", c.BaseURL())
}

func TestNewClient_RejectsInvalidConfig(t *testing.T) {
	_, err := NewClient(&Config{BaseURL: "ftp://nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
