package cloudapi

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Image is a provisionable machine image.
type Image struct {
	ID          string
	Name        string
	OS          string
	Version     string
	Type        string
	State       string
	Owner       string
	Public      bool
	Description string
	Created     time.Time
	Updated     time.Time
}

func (i Image) identify(resourceKind) (string, error) {
	return i.ID, nil
}

// ImageListOptions are the server-side filters for an image listing. Zero
// values are omitted from the request so the server applies its own
// defaults.
type ImageListOptions struct {
	Name    string
	OS      string
	Version string
}

func (o *ImageListOptions) query() url.Values {
	if o == nil {
		return nil
	}
	q := url.Values{}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if o.OS != "" {
		q.Set("os", o.OS)
	}
	if o.Version != "" {
		q.Set("version", o.Version)
	}
	if len(q) == 0 {
		return nil
	}
	return q
}

// ListImages returns the machine images available in this datacenter.
func (c *Client) ListImages(ctx context.Context, opts *ImageListOptions) ([]Image, error) {
	var images []Image
	reqOpts := &RequestOptions{Query: opts.query()}
	if _, err := c.Request(ctx, http.MethodGet, "images", reqOpts, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// Image fetches a single image by identifier.
func (c *Client) Image(ctx context.Context, id Identifier) (*Image, error) {
	name, err := resolveIdentifier(id, kindImage)
	if err != nil {
		return nil, err
	}
	var image Image
	if _, err := c.Request(ctx, http.MethodGet, "images/"+url.PathEscape(name), nil, &image); err != nil {
		return nil, err
	}
	return &image, nil
}
