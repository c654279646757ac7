package cloudapi

import (
	"context"
	"net/http"
	"net/url"
)

// Network is a network a machine can be attached to.
type Network struct {
	ID          string
	Name        string
	Public      bool
	Description string
}

func (n Network) identify(resourceKind) (string, error) {
	return n.ID, nil
}

// NetworkListOptions filters a network listing locally, the listing
// endpoint having no server-side filters.
type NetworkListOptions struct {
	// Search is a case-insensitive regular expression matched against
	// the fields below.
	Search string

	// Fields names the record fields searched. Defaults to name.
	Fields []string
}

// ListNetworks returns the networks available in this datacenter.
func (c *Client) ListNetworks(ctx context.Context, opts *NetworkListOptions) ([]Network, error) {
	var records []map[string]interface{}
	if _, err := c.Request(ctx, http.MethodGet, "networks", nil, &records); err != nil {
		return nil, err
	}

	if opts != nil && opts.Search != "" {
		fields := opts.Fields
		if len(fields) == 0 {
			fields = []string{"name"}
		}
		filtered, err := searchRecords(records, opts.Search, fields)
		if err != nil {
			return nil, err
		}
		records = filtered
	}
	return decodeRecords[Network](records)
}

// Network fetches a single network by identifier.
func (c *Client) Network(ctx context.Context, id Identifier) (*Network, error) {
	name, err := resolveIdentifier(id, kindNetwork)
	if err != nil {
		return nil, err
	}
	var network Network
	if _, err := c.Request(ctx, http.MethodGet, "networks/"+url.PathEscape(name), nil, &network); err != nil {
		return nil, err
	}
	return &network, nil
}
