package cloudapi

import (
	"context"
	"net/http"
)

// Datacenters returns every datacenter this cloud knows about, as a
// mapping from location key to endpoint URL. The result is merged into the
// client's known-locations table so Datacenter can resolve the new keys.
func (c *Client) Datacenters(ctx context.Context) (map[string]string, error) {
	var locations map[string]string
	if _, err := c.Request(ctx, http.MethodGet, "datacenters", nil, &locations); err != nil {
		return nil, err
	}
	for k, v := range locations {
		c.known[k] = v
	}
	return locations, nil
}
