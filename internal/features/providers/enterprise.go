package providers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/mod/semver"

	"ghasreport/internal/features"
)

// GHES gained the enterprise-level code-scanning alerts endpoint in 3.7;
// older servers only expose the per-repository endpoint.
const enterpriseCodeScanningMinVersion = "v3.7.0"

// installedVersion probes /meta for the server's installed version. Cloud
// deployments return none; the empty string means "not a versioned server".
func installedVersion(ctx context.Context, deps *features.Deps) (string, error) {
	meta, _, err := deps.Client.Client.Meta.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("probe server version: %w", err)
	}
	return meta.GetInstalledVersion(), nil
}

// useRepoLoop reports whether enterprise code scanning must be fetched one
// repository at a time. True only for GHES versions older than 3.7; cloud
// (no version) and unparsable versions use the enterprise-wide endpoint.
func useRepoLoop(version string) bool {
	v := strings.TrimSpace(version)
	if v == "" {
		return false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare(v, enterpriseCodeScanningMinVersion) < 0
}

// enterpriseRepoInventory downloads the GHES all-repositories site report
// and returns the repository full names it lists. The report is served from
// the web UI host, not the API endpoint.
func enterpriseRepoInventory(ctx context.Context, deps *features.Deps) ([]string, error) {
	if deps.ServerURL == "" {
		return nil, fmt.Errorf("enterprise repo inventory: server URL not configured")
	}

	reportURL := strings.TrimRight(deps.ServerURL, "/") + "/stafftools/reports/all_repositories.csv"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("enterprise repo inventory: %w", err)
	}

	resp, err := deps.Client.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enterprise repo inventory: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("enterprise repo inventory: %s returned %d: %s", reportURL, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseRepoReport(resp.Body)
}

// parseRepoReport extracts owner/name pairs from the all-repositories CSV.
// Column positions vary across GHES versions, so columns are located by
// header name rather than index.
func parseRepoReport(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("parse repo report header: %w", err)
	}
	ownerIdx, nameIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "owner_name", "owner":
			ownerIdx = i
		case "name", "repo_name":
			nameIdx = i
		}
	}
	if ownerIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("parse repo report: owner/name columns not found in header %v", header)
	}

	var repos []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse repo report: %w", err)
		}
		if ownerIdx >= len(row) || nameIdx >= len(row) {
			continue
		}
		owner := strings.TrimSpace(row[ownerIdx])
		name := strings.TrimSpace(row[nameIdx])
		if owner == "" || name == "" {
			continue
		}
		repos = append(repos, owner+"/"+name)
	}
	return repos, nil
}
