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

type secretScanningFetcher struct{}

func (f *secretScanningFetcher) Key() features.Key { return features.SecretScanning }

func (f *secretScanningFetcher) Title() string { return "Secret scanning" }

func (f *secretScanningFetcher) Fetch(ctx context.Context, target features.Target, deps *features.Deps) ([]*report.Record, error) {
	var path string
	switch target.Scope {
	case config.ScopeRepository:
		path = "repos/" + target.Name + "/secret-scanning/alerts"
	case config.ScopeOrganization:
		path = "orgs/" + target.Name + "/secret-scanning/alerts"
	case config.ScopeEnterprise:
		path = "enterprises/" + target.Name + "/secret-scanning/alerts"
	default:
		return nil, fmt.Errorf("secret scanning: unsupported scope %q", target.Scope)
	}

	items, err := gh.CollectPages[alerts.SecretScanningAlert](ctx, deps.Client, path, nil)
	if err != nil {
		return nil, features.ClassifyFetchError(features.SecretScanning, target.Scope, err)
	}

	records := make([]*report.Record, 0, len(items))
	for i := range items {
		records = append(records, items[i].Flatten())
	}
	return records, nil
}

func init() {
	features.Register(&secretScanningFetcher{})
}
