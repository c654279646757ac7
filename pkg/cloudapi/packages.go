package cloudapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Package is a named cluster of resource values (memory, disk, swap,
// virtual CPUs) that a machine can be provisioned or resized with.
type Package struct {
	ID      string
	Name    string
	Version string
	Group   string
	Memory  int
	Disk    int
	Swap    int
	VCPUs   int
	Default bool
}

func (p Package) identify(resourceKind) (string, error) {
	if p.Name != "" {
		return p.Name, nil
	}
	return p.ID, nil
}

// PackageListOptions are the server-side filters for a package listing.
// Zero values are omitted from the request.
type PackageListOptions struct {
	Name    string
	Memory  int
	Disk    int
	Swap    int
	Version string
	VCPUs   int
	Group   string
}

func (o *PackageListOptions) query() url.Values {
	if o == nil {
		return nil
	}
	q := url.Values{}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if o.Memory > 0 {
		q.Set("memory", strconv.Itoa(o.Memory))
	}
	if o.Disk > 0 {
		q.Set("disk", strconv.Itoa(o.Disk))
	}
	if o.Swap > 0 {
		q.Set("swap", strconv.Itoa(o.Swap))
	}
	if o.Version != "" {
		q.Set("version", o.Version)
	}
	if o.VCPUs > 0 {
		q.Set("vcpus", strconv.Itoa(o.VCPUs))
	}
	if o.Group != "" {
		q.Set("group", o.Group)
	}
	if len(q) == 0 {
		return nil
	}
	return q
}

// ListPackages returns the packages available in this datacenter.
func (c *Client) ListPackages(ctx context.Context, opts *PackageListOptions) ([]Package, error) {
	var packages []Package
	reqOpts := &RequestOptions{Query: opts.query()}
	if _, err := c.Request(ctx, http.MethodGet, "packages", reqOpts, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

// Package fetches a single package by name.
func (c *Client) Package(ctx context.Context, id Identifier) (*Package, error) {
	name, err := resolveIdentifier(id, kindPackage)
	if err != nil {
		return nil, err
	}
	var pkg Package
	if _, err := c.Request(ctx, http.MethodGet, "packages/"+url.PathEscape(name), nil, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// DefaultPackage returns the datacenter's default package, or nil when no
// default is defined.
func (c *Client) DefaultPackage(ctx context.Context) (*Package, error) {
	packages, err := c.ListPackages(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, pkg := range packages {
		if pkg.Default {
			return &pkg, nil
		}
	}
	return nil, nil
}
