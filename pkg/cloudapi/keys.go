package cloudapi

import (
	"context"
	"net/http"
	"net/url"
)

// Key is a public SSH key on record for the account.
type Key struct {
	Name        string
	Fingerprint string
	Key         string
}

// ListKeys returns all public keys on record for the account.
func (c *Client) ListKeys(ctx context.Context) ([]Key, error) {
	var keys []Key
	if _, err := c.Request(ctx, http.MethodGet, "keys", nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// Key returns a single key record by name.
func (c *Client) Key(ctx context.Context, name string) (*Key, error) {
	var key Key
	if _, err := c.Request(ctx, http.MethodGet, "keys/"+url.PathEscape(name), nil, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// AddKey uploads a public key, registering it under the given name.
func (c *Client) AddKey(ctx context.Context, name, material string) (*Key, error) {
	body := map[string]string{
		"name": name,
		"key":  material,
	}
	var key Key
	if _, err := c.Request(ctx, http.MethodPost, "keys", &RequestOptions{Body: body}, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// DeleteKey removes the named key from the account.
func (c *Client) DeleteKey(ctx context.Context, name string) error {
	_, err := c.Request(ctx, http.MethodDelete, "keys/"+url.PathEscape(name), nil, nil)
	return err
}
