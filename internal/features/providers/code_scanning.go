package providers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ghasreport/internal/alerts"
	"ghasreport/internal/config"
	"ghasreport/internal/features"
	gh "ghasreport/internal/github"
	"ghasreport/internal/report"
)

type codeScanningFetcher struct{}

func (f *codeScanningFetcher) Key() features.Key { return features.CodeScanning }

func (f *codeScanningFetcher) Title() string { return "Code scanning" }

func (f *codeScanningFetcher) Fetch(ctx context.Context, target features.Target, deps *features.Deps) ([]*report.Record, error) {
	switch target.Scope {
	case config.ScopeRepository:
		return f.fetchPath(ctx, deps, target.Scope, "repos/"+target.Name+"/code-scanning/alerts")
	case config.ScopeOrganization:
		return f.fetchPath(ctx, deps, target.Scope, "orgs/"+target.Name+"/code-scanning/alerts")
	case config.ScopeEnterprise:
		return f.fetchEnterprise(ctx, target, deps)
	default:
		return nil, fmt.Errorf("code scanning: unsupported scope %q", target.Scope)
	}
}

func (f *codeScanningFetcher) fetchPath(ctx context.Context, deps *features.Deps, scope config.Scope, path string) ([]*report.Record, error) {
	items, err := gh.CollectPages[alerts.CodeScanningAlert](ctx, deps.Client, path, nil)
	if err != nil {
		return nil, features.ClassifyFetchError(features.CodeScanning, scope, err)
	}

	records := make([]*report.Record, 0, len(items))
	for i := range items {
		records = append(records, items[i].Flatten())
	}
	return records, nil
}

// fetchEnterprise picks a strategy based on the server version: GHES older
// than 3.7 has no enterprise-level endpoint, so alerts are gathered one
// repository at a time from the server's all-repositories report.
func (f *codeScanningFetcher) fetchEnterprise(ctx context.Context, target features.Target, deps *features.Deps) ([]*report.Record, error) {
	version, err := installedVersion(ctx, deps)
	if err != nil {
		return nil, err
	}

	if !useRepoLoop(version) {
		return f.fetchPath(ctx, deps, target.Scope, "enterprises/"+target.Name+"/code-scanning/alerts")
	}

	repos, err := enterpriseRepoInventory(ctx, deps)
	if err != nil {
		return nil, err
	}
	return f.fetchRepoLoop(ctx, deps, repos)
}

// fetchRepoLoop fans out across repositories, bounded by the configured
// concurrency. Repositories with code scanning turned off are skipped;
// any other failure aborts the whole fetch. Results keep inventory order.
func (f *codeScanningFetcher) fetchRepoLoop(ctx context.Context, deps *features.Deps, repos []string) ([]*report.Record, error) {
	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	perRepo := make([][]*report.Record, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, repo := range repos {
		i, repo := i, repo // per-iteration copies; module originally targeted go >= 1.22
		g.Go(func() error {
			records, err := f.fetchPath(gctx, deps, config.ScopeRepository, "repos/"+repo+"/code-scanning/alerts")
			if err != nil {
				if features.IsDisabled(err) {
					return nil
				}
				return fmt.Errorf("code scanning for %s: %w", repo, err)
			}
			perRepo[i] = alerts.WithRepository(records, repo)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*report.Record
	for _, records := range perRepo {
		all = append(all, records...)
	}
	return all, nil
}

func init() {
	features.Register(&codeScanningFetcher{})
}
