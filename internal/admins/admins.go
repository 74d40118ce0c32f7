// Package admins resolves the administrator logins of repositories via the
// collaborators endpoint.
package admins

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/go-github/v66/github"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	gh "ghasreport/internal/github"
)

// Resolver fetches and caches per-repository admin logins. A repository is
// fetched at most once per run; concurrent lookups of the same repository
// share a single in-flight request.
type Resolver struct {
	client *gh.Client
	cache  sync.Map // repo full name -> []string
	group  singleflight.Group
}

func NewResolver(client *gh.Client) *Resolver {
	return &Resolver{client: client}
}

// Lookup returns the admin logins for "owner/repo", fetching them on first
// use. Any non-2xx collaborators response propagates as an error.
func (r *Resolver) Lookup(ctx context.Context, fullName string) ([]string, error) {
	if ctx == nil {
		return nil, fmt.Errorf("Lookup: nil context")
	}
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("Lookup: nil resolver client (use NewResolver)")
	}

	if cached, ok := r.cache.Load(fullName); ok {
		return cached.([]string), nil
	}

	v, err, _ := r.group.Do(fullName, func() (interface{}, error) {
		logins, err := r.fetch(ctx, fullName)
		if err != nil {
			return nil, err
		}
		r.cache.Store(fullName, logins)
		return logins, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Known returns previously resolved logins without issuing a request. The
// CSV writer uses this after the engine has warmed the cache.
func (r *Resolver) Known(fullName string) []string {
	if cached, ok := r.cache.Load(fullName); ok {
		return cached.([]string)
	}
	return nil
}

// ResolveAll warms the cache for every listed repository, fetching at most
// concurrency repositories in parallel. The first failure cancels the rest.
func (r *Resolver) ResolveAll(ctx context.Context, fullNames []string, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, fullName := range fullNames {
		fullName := fullName // per-iteration copy; module originally targeted go >= 1.22
		g.Go(func() error {
			_, err := r.Lookup(gctx, fullName)
			return err
		})
	}
	return g.Wait()
}

func (r *Resolver) fetch(ctx context.Context, fullName string) ([]string, error) {
	owner, name, err := splitFullName(fullName)
	if err != nil {
		return nil, err
	}

	opts := &github.ListCollaboratorsOptions{
		Affiliation: "admin",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var logins []string
	for {
		users, resp, err := r.client.Client.Repositories.ListCollaborators(ctx, owner, name, opts)
		if err != nil {
			return nil, fmt.Errorf("list collaborators for %s: %w", fullName, err)
		}
		for _, u := range users {
			if u.GetPermissions()["admin"] {
				logins = append(logins, u.GetLogin())
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return logins, nil
}

func splitFullName(fullName string) (owner string, name string, err error) {
	parts := strings.Split(strings.TrimSpace(fullName), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository name %q; expected owner/name", fullName)
	}
	return parts[0], parts[1], nil
}
