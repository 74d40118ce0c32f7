package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// defaultPerPage is the largest page size GitHub accepts on list endpoints.
const defaultPerPage = 100

// CollectPages fetches every page of a GET endpoint relative to the client's
// base URL and returns the concatenated items.
//
// The path must not start with a slash (go-github resolves it against the
// base URL, which may carry an /api/v3 prefix on GHES). Both page-number
// pagination (repo and org alert endpoints) and cursor pagination (the
// enterprise alert endpoints, which only advertise an "after" cursor in
// their Link header) are followed transparently.
func CollectPages[T any](ctx context.Context, c *Client, path string, params url.Values) ([]T, error) {
	if ctx == nil {
		return nil, fmt.Errorf("CollectPages: nil context")
	}
	if c == nil || c.Client == nil {
		return nil, fmt.Errorf("CollectPages: nil client (use NewClient)")
	}
	if path == "" {
		return nil, fmt.Errorf("CollectPages: empty path")
	}

	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if q.Get("per_page") == "" {
		q.Set("per_page", strconv.Itoa(defaultPerPage))
	}

	var all []T
	for {
		req, err := c.Client.NewRequest("GET", path+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}

		var page []T
		resp, err := c.Client.Do(ctx, req, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		switch {
		case resp.NextPage != 0:
			q.Set("page", strconv.Itoa(resp.NextPage))
		case resp.After != "":
			q.Del("page")
			q.Set("after", resp.After)
		default:
			return all, nil
		}
	}
}
