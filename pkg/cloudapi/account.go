package cloudapi

import (
	"context"
	"net/http"
	"time"
)

// Account is the server-side record for the authenticated account.
type Account struct {
	ID          string
	Login       string
	Email       string
	CompanyName string
	FirstName   string
	LastName    string
	Address     string
	City        string
	State       string
	Country     string
	Phone       string
	Created     time.Time
	Updated     time.Time
}

// Account fetches the authenticated account. On an unscoped client the
// login scope is pinned to the returned account name, so later requests
// address the account by name instead of the "my" sentinel.
func (c *Client) Account(ctx context.Context) (*Account, error) {
	var record map[string]interface{}
	if _, err := c.Request(ctx, http.MethodGet, "", nil, &record); err != nil {
		return nil, err
	}

	var acct Account
	if err := decodeRecord(record, &acct); err != nil {
		return nil, err
	}

	if c.login == sentinelLogin && acct.Login != "" {
		c.login = acct.Login
	}
	return &acct, nil
}

// API fetches the endpoint's self-description: a mapping of operation
// names to HTTP verbs and URL templates. It is served outside the login
// scope and needs no authentication.
func (c *Client) API(ctx context.Context) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if _, err := c.RequestUnscoped(ctx, http.MethodGet, "", nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
