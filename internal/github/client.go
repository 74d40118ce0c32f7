package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

type Client struct {
	Client *github.Client
	HTTP   *http.Client
}

type options struct {
	verbose bool
	// writer controls where verbose HTTP logs are written (typically stderr) so
	// the report output on stdout stays clean and tests can capture logs.
	writer io.Writer

	// baseURL overrides the REST API base URL (GHES / GHAE deployments).
	baseURL string

	// GitHub App installation credentials. When appID is non-zero these take
	// precedence over the bearer token.
	appID          int64
	installationID int64
	privateKey     []byte
}

type Option func(*options)

func WithVerbose(enabled bool, writer io.Writer) Option {
	return func(o *options) {
		o.verbose = enabled
		o.writer = writer
	}
}

// WithBaseURL points the client at a non-github.com REST endpoint, e.g.
// https://ghes.example.com/api/v3. The URL is used as-is (plus a trailing
// slash); no path components are appended.
func WithBaseURL(endpoint string) Option {
	return func(o *options) {
		o.baseURL = endpoint
	}
}

// WithAppAuth authenticates as a GitHub App installation instead of a bearer
// token.
func WithAppAuth(appID, installationID int64, privateKey []byte) Option {
	return func(o *options) {
		o.appID = appID
		o.installationID = installationID
		o.privateKey = privateKey
	}
}

// loggingRoundTripper wraps an underlying transport and emits one line per
// request and response (including latency) when verbose logging is enabled.
type loggingRoundTripper struct {
	base http.RoundTripper
	w    io.Writer
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	if t.w != nil {
		_, _ = fmt.Fprintf(t.w, "[verbose] github api: %s %s\n", req.Method, req.URL.String())
	}
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start)
	if t.w != nil {
		if err != nil {
			_, _ = fmt.Fprintf(t.w, "[verbose] github api: error after %s: %v\n", dur.Truncate(time.Millisecond), err)
		} else {
			_, _ = fmt.Fprintf(t.w, "[verbose] github api: %d %s (%s)\n", resp.StatusCode, http.StatusText(resp.StatusCode), dur.Truncate(time.Millisecond))
		}
	}
	return resp, err
}

func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("github client: ctx is nil")
	}

	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.verbose && o.writer == nil {
		o.writer = os.Stderr
	}

	transport := http.DefaultTransport
	if o.verbose {
		transport = &loggingRoundTripper{base: transport, w: o.writer}
	}

	switch {
	case o.appID != 0:
		itr, err := ghinstallation.New(transport, o.appID, o.installationID, o.privateKey)
		if err != nil {
			return nil, fmt.Errorf("github client: app transport: %w", err)
		}
		if o.baseURL != "" {
			itr.BaseURL = strings.TrimSuffix(o.baseURL, "/")
		}
		transport = itr
	case token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	// Always provide an http.Client so verbose logging works even without a token.
	tc := &http.Client{Transport: transport}

	client := github.NewClient(tc)
	if o.baseURL != "" {
		base, err := parseBaseURL(o.baseURL)
		if err != nil {
			return nil, err
		}
		client.BaseURL = base
		client.UploadURL = base
	}

	return &Client{
		Client: client,
		HTTP:   tc,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("github client: invalid API endpoint %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("github client: invalid API endpoint %q: scheme must be http or https", raw)
	}
	return u, nil
}
