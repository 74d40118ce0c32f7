package providers

import (
	"context"
	"fmt"

	"ghasreport/internal/alerts"
	"ghasreport/internal/config"
	"ghasreport/internal/features"
	gh "ghasreport/internal/github"
	"ghasreport/internal/report"
)

type dependabotFetcher struct{}

func (f *dependabotFetcher) Key() features.Key { return features.Dependabot }

func (f *dependabotFetcher) Title() string { return "Dependabot" }

func (f *dependabotFetcher) Fetch(ctx context.Context, target features.Target, deps *features.Deps) ([]*report.Record, error) {
	var path string
	switch target.Scope {
	case config.ScopeRepository:
		path = "repos/" + target.Name + "/dependabot/alerts"
	case config.ScopeOrganization:
		path = "orgs/" + target.Name + "/dependabot/alerts"
	case config.ScopeEnterprise:
		path = "enterprises/" + target.Name + "/dependabot/alerts"
	default:
		return nil, fmt.Errorf("dependabot: unsupported scope %q", target.Scope)
	}

	items, err := gh.CollectPages[alerts.DependabotAlert](ctx, deps.Client, path, nil)
	if err != nil {
		return nil, features.ClassifyFetchError(features.Dependabot, target.Scope, err)
	}

	records := make([]*report.Record, 0, len(items))
	for i := range items {
		records = append(records, items[i].Flatten())
	}
	return records, nil
}

func init() {
	features.Register(&dependabotFetcher{})
}
