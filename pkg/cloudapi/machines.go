package cloudapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
)

// machineNamePattern is the server's constraint on machine names, checked
// locally so a bad name fails before the network call.
var machineNamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-.]*[a-zA-Z0-9])?$`)

// MachineListOptions are the server-side filters and paging controls for a
// machine listing. Zero values are omitted from the request so the server
// applies its own defaults.
type MachineListOptions struct {
	// Type filters on "virtualmachine" or "smartmachine".
	Type string

	// Name finds a machine by its label.
	Name string

	// Dataset filters on the provisioned dataset, by ID or URN.
	Dataset Identifier

	// State filters on the current running state.
	State string

	// Memory filters on the RAM size in MiB.
	Memory int

	// Tombstone includes machines destroyed in the last N minutes.
	Tombstone int

	// Tags filters on the machines' tag space.
	Tags map[string]string

	// Credentials asks the server to include generated credentials.
	Credentials bool

	// Paged returns exactly one page instead of transparently collecting
	// every page.
	Paged bool

	// Limit and Offset are the API's raw paging controls.
	Limit  int
	Offset int
}

func (o *MachineListOptions) query() (url.Values, error) {
	if o == nil {
		return nil, nil
	}
	q := url.Values{}
	if o.Type != "" {
		q.Set("type", o.Type)
	}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if o.Dataset != nil {
		ds, err := o.Dataset.identify(kindDataset)
		if err != nil {
			return nil, err
		}
		q.Set("dataset", ds)
	}
	if o.State != "" {
		q.Set("state", o.State)
	}
	if o.Memory > 0 {
		q.Set("memory", strconv.Itoa(o.Memory))
	}
	if o.Tombstone > 0 {
		q.Set("tombstone", strconv.Itoa(o.Tombstone))
	}
	for k, v := range o.Tags {
		q.Set("tag."+k, v)
	}
	if o.Credentials {
		q.Set("credentials", "true")
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if len(q) == 0 {
		return nil, nil
	}
	return q, nil
}

// ListMachines queries for machines matching the options. Unless Paged is
// set, every page is collected by following the x-resource-count and
// x-query-limit response headers, advancing the offset by the server's
// page size until the reported count is covered; server order is
// preserved.
func (c *Client) ListMachines(ctx context.Context, opts *MachineListOptions) ([]*Machine, error) {
	q, err := opts.query()
	if err != nil {
		return nil, err
	}

	limit := defaultQueryLimit
	offset := 0
	paged := false
	if opts != nil {
		paged = opts.Paged
		if opts.Limit > 0 {
			limit = opts.Limit
		}
		offset = opts.Offset
	}

	var records []map[string]interface{}
	for {
		var page []map[string]interface{}
		resp, err := c.Request(ctx, http.MethodGet, "machines", &RequestOptions{Query: q}, &page)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)

		if paged || len(page) == 0 {
			break
		}

		queryLimit := headerInt(resp.Header, "X-Query-Limit", limit)
		resourceCount := headerInt(resp.Header, "X-Resource-Count", len(records))
		offset += queryLimit
		if offset >= resourceCount {
			break
		}
		if q == nil {
			q = url.Values{}
		}
		q.Set("offset", strconv.Itoa(offset))
	}

	machines := make([]*Machine, 0, len(records))
	for _, record := range records {
		m, err := newMachine(c, record)
		if err != nil {
			return nil, err
		}
		machines = append(machines, m)
	}
	return machines, nil
}

// CountMachines returns the number of machines matching the filter
// options without transferring the records, using the x-resource-count
// header of a HEAD request.
func (c *Client) CountMachines(ctx context.Context, opts *MachineListOptions) (int, error) {
	q, err := opts.query()
	if err != nil {
		return 0, err
	}
	resp, err := c.Request(ctx, http.MethodHead, "machines", &RequestOptions{Query: q}, nil)
	if err != nil {
		return 0, err
	}
	return headerInt(resp.Header, "X-Resource-Count", 0), nil
}

// GetMachine fetches a machine by UUID.
func (c *Client) GetMachine(ctx context.Context, id Identifier) (*Machine, error) {
	machineID, err := resolveIdentifier(id, kindMachine)
	if err != nil {
		return nil, err
	}
	record, err := c.rawMachine(ctx, machineID, false)
	if err != nil {
		return nil, err
	}
	return newMachine(c, record)
}

// rawMachine fetches a machine's current record.
func (c *Client) rawMachine(ctx context.Context, machineID string, credentials bool) (map[string]interface{}, error) {
	var q url.Values
	if credentials {
		q = url.Values{"credentials": []string{"true"}}
	}
	var record map[string]interface{}
	path := "machines/" + url.PathEscape(machineID)
	if _, err := c.Request(ctx, http.MethodGet, path, &RequestOptions{Query: q}, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// CreateMachineOptions describes a machine to provision. Every field is
// optional; the datacenter assigns defaults for whatever is omitted.
type CreateMachineOptions struct {
	// Name is a human-readable label for the machine.
	Name string

	// Package names the resource bundle to provision with.
	Package Identifier

	// Image identifies the base operating system image.
	Image Identifier

	// Dataset is the deprecated predecessor of Image, ignored when Image
	// is set.
	Dataset Identifier

	// Metadata is arbitrary supplementary data made available inside the
	// machine.
	Metadata map[string]interface{}

	// Tags is arbitrary identifying data usable as listing filters.
	Tags map[string]string

	// Networks attaches the machine to specific networks.
	Networks []string

	// BootScriptPath names a local file uploaded as the machine's
	// user-script, executed on boot.
	BootScriptPath string
}

func (o *CreateMachineOptions) body() (map[string]interface{}, error) {
	body := map[string]interface{}{}
	if o == nil {
		return body, nil
	}
	if o.Name != "" {
		if !machineNamePattern.MatchString(o.Name) {
			return nil, fmt.Errorf("cloudapi: illegal machine name %q", o.Name)
		}
		body["name"] = o.Name
	}
	if o.Package != nil {
		pkg, err := o.Package.identify(kindPackage)
		if err != nil {
			return nil, err
		}
		body["package"] = pkg
	}
	if o.Image != nil {
		image, err := o.Image.identify(kindImage)
		if err != nil {
			return nil, err
		}
		body["image"] = image
	}
	if o.Dataset != nil && o.Image == nil {
		ds, err := o.Dataset.identify(kindDataset)
		if err != nil {
			return nil, err
		}
		body["dataset"] = ds
	}
	for k, v := range o.Metadata {
		body["metadata."+k] = v
	}
	for k, v := range o.Tags {
		body["tag."+k] = v
	}
	if o.BootScriptPath != "" {
		script, err := os.ReadFile(o.BootScriptPath)
		if err != nil {
			return nil, fmt.Errorf("cloudapi: reading boot script: %w", err)
		}
		body["metadata.user-script"] = string(script)
	}
	if len(o.Networks) > 0 {
		body["networks"] = o.Networks
	}
	return body, nil
}

// CreateMachine provisions a machine. Any non-2xx response surfaces as an
// *APIError carrying the server's error payload.
func (c *Client) CreateMachine(ctx context.Context, opts *CreateMachineOptions) (*Machine, error) {
	body, err := opts.body()
	if err != nil {
		return nil, err
	}
	var record map[string]interface{}
	if _, err := c.Request(ctx, http.MethodPost, "machines", &RequestOptions{Body: body}, &record); err != nil {
		return nil, err
	}
	return newMachine(c, record)
}

// DeleteMachine destroys a machine. The machine must be stopped first.
func (c *Client) DeleteMachine(ctx context.Context, id Identifier) error {
	machineID, err := resolveIdentifier(id, kindMachine)
	if err != nil {
		return err
	}
	_, err = c.Request(ctx, http.MethodDelete, "machines/"+url.PathEscape(machineID), nil, nil)
	return err
}

// machineAction posts one of the fixed machine actions (start, stop,
// reboot, resize, rename), which the API takes as query parameters.
func (c *Client) machineAction(ctx context.Context, machineID, action string, extra url.Values) error {
	q := url.Values{"action": []string{action}}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	path := "machines/" + url.PathEscape(machineID)
	_, err := c.Request(ctx, http.MethodPost, path, &RequestOptions{Query: q}, nil)
	return err
}

// headerInt parses an integer response header, falling back when the
// header is absent or malformed.
func headerInt(h http.Header, name string, fallback int) int {
	v := h.Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
