package cloudapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// Dataset is an operating system template, the legacy predecessor of
// Image. The listing endpoint has no server-side filters, so filtering is
// a local regular-expression search as with the networks listing.
type Dataset struct {
	ID           string
	URN          string
	Name         string
	OS           string
	Version      string
	Type         string
	Description  string
	Default      bool
	Requirements map[string]interface{}
	Created      time.Time
}

func (d Dataset) identify(resourceKind) (string, error) {
	if d.ID != "" {
		return d.ID, nil
	}
	return d.URN, nil
}

// DatasetListOptions filters a dataset listing locally.
type DatasetListOptions struct {
	// Search is a case-insensitive regular expression matched against
	// the fields below.
	Search string

	// Fields names the record fields searched. Defaults to description
	// and urn.
	Fields []string
}

// ListDatasets returns the datasets available in this datacenter,
// optionally filtered locally by a regular-expression search.
func (c *Client) ListDatasets(ctx context.Context, opts *DatasetListOptions) ([]Dataset, error) {
	var records []map[string]interface{}
	if _, err := c.Request(ctx, http.MethodGet, "datasets", nil, &records); err != nil {
		return nil, err
	}

	if opts != nil && opts.Search != "" {
		fields := opts.Fields
		if len(fields) == 0 {
			fields = []string{"description", "urn"}
		}
		filtered, err := searchRecords(records, opts.Search, fields)
		if err != nil {
			return nil, err
		}
		records = filtered
	}
	return decodeRecords[Dataset](records)
}

// Dataset fetches a single dataset by unique ID or URN.
func (c *Client) Dataset(ctx context.Context, id Identifier) (*Dataset, error) {
	name, err := resolveIdentifier(id, kindDataset)
	if err != nil {
		return nil, err
	}
	var record map[string]interface{}
	if _, err := c.Request(ctx, http.MethodGet, "datasets/"+url.PathEscape(name), nil, &record); err != nil {
		return nil, err
	}
	var ds Dataset
	if err := decodeRecord(record, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// searchRecords keeps the records where the pattern matches at least one of
// the named string fields.
func searchRecords(records []map[string]interface{}, pattern string, fields []string) ([]map[string]interface{}, error) {
	matcher, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("cloudapi: invalid search pattern: %w", err)
	}
	var out []map[string]interface{}
	for _, record := range records {
		for _, f := range fields {
			s, _ := record[f].(string)
			if s != "" && matcher.MatchString(s) {
				out = append(out, record)
				break
			}
		}
	}
	return out, nil
}
