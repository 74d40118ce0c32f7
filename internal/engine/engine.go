// Package engine orchestrates one report run: it resolves admins, invokes
// the registered feature fetchers for the configured scope, and writes one
// CSV per feature.
package engine

import (
	"context"
	"sort"

	"ghasreport/internal/admins"
	"ghasreport/internal/config"
	"ghasreport/internal/features"
	gh "ghasreport/internal/github"
	"ghasreport/internal/report"
)

// Exit code contract:
// 0 = report complete (features skipped as disabled are still a success)
// 1 = a feature fetch or write failed; earlier CSVs are kept
// 3 = invalid configuration or auth (run did not start; used by the CLI)
const (
	ExitOK          = 0
	ExitRunFailed   = 1
	ExitConfigError = 3
)

// FeatureOutcome records what happened to one requested feature.
type FeatureOutcome struct {
	Feature    string
	File       string
	Rows       int
	Skipped    bool
	SkipReason string
}

// Summary describes a finished (or aborted) run, for the console footer and
// the optional Slack notification.
type Summary struct {
	Scope     config.Scope
	ScopeName string
	Outcomes  []FeatureOutcome
}

// SkippedCount returns how many features were skipped as disabled.
func (s *Summary) SkippedCount() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Skipped {
			n++
		}
	}
	return n
}

// TotalRows returns the number of alert rows written across all features.
func (s *Summary) TotalRows() int {
	n := 0
	for _, o := range s.Outcomes {
		n += o.Rows
	}
	return n
}

type Engine struct {
	client  *gh.Client
	console *report.Console
}

func New(client *gh.Client, console *report.Console) *Engine {
	if console == nil {
		console = report.NewConsole(nil)
	}
	return &Engine{client: client, console: console}
}

// Run executes the report for an already-validated config. Features run in
// canonical order for every scope. A disabled feature is skipped; any other
// failure aborts the run and leaves earlier CSVs in place.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) (*Summary, int) {
	summary := &Summary{Scope: cfg.Report.Scope, ScopeName: cfg.Report.ScopeName}

	e.console.Infof("Starting GitHub security report for %s %q...", cfg.Report.Scope, cfg.Report.ScopeName)
	for _, dropped := range cfg.Report.DroppedFeatures {
		e.console.Warnf("Invalid feature: %q. Proceeding without it.", dropped)
	}

	resolver := admins.NewResolver(e.client)
	deps := &features.Deps{
		Client:      e.client,
		ServerURL:   cfg.API.ServerURL,
		Concurrency: cfg.Runtime.Concurrency,
	}
	target := features.Target{Scope: cfg.Report.Scope, Name: cfg.Report.ScopeName}

	// In repository scope the scope name is itself the only repository;
	// resolve its admins up front so rows without a repository field get
	// attributed to it.
	if cfg.Report.Scope == config.ScopeRepository {
		if _, err := resolver.Lookup(ctx, cfg.Report.ScopeName); err != nil {
			e.console.Errorf("Failed to fetch admins for %s: %v", cfg.Report.ScopeName, err)
			return summary, ExitRunFailed
		}
	}

	for _, name := range cfg.Report.Features {
		fetcher, ok := features.Resolve(features.Key(name))
		if !ok {
			e.console.Warnf("No fetcher registered for feature %q; skipping.", name)
			continue
		}

		e.console.Infof("Fetching %s alerts...", fetcher.Title())
		records, err := fetcher.Fetch(ctx, target, deps)
		if err != nil {
			if features.IsDisabled(err) {
				e.console.Skipf("Skipping %s: %v", fetcher.Title(), err)
				summary.Outcomes = append(summary.Outcomes, FeatureOutcome{
					Feature:    name,
					Skipped:    true,
					SkipReason: err.Error(),
				})
				continue
			}
			e.console.Errorf("Failed to fetch %s alerts: %v", fetcher.Title(), err)
			return summary, ExitRunFailed
		}

		if err := resolver.ResolveAll(ctx, distinctRepositories(records), cfg.Runtime.Concurrency); err != nil {
			e.console.Errorf("Failed to fetch repository admins: %v", err)
			return summary, ExitRunFailed
		}

		path := report.FileName(cfg.Report.OutDir, string(cfg.Report.Scope), name)
		rows, err := report.WriteCSV(path, records, func(repo string) []string {
			if repo == "" {
				repo = cfg.Report.ScopeName
			}
			return resolver.Known(repo)
		})
		if err != nil {
			e.console.Errorf("Failed to write %s: %v", path, err)
			return summary, ExitRunFailed
		}

		if rows == 0 {
			e.console.Infof("No %s alerts found; nothing written.", fetcher.Title())
		} else {
			e.console.Successf("Wrote %d %s alert(s) to %s", rows, fetcher.Title(), path)
		}
		summary.Outcomes = append(summary.Outcomes, FeatureOutcome{Feature: name, File: path, Rows: rows})
	}

	e.console.Successf("Report complete: %d alert(s) across %d feature(s), %d skipped.",
		summary.TotalRows(), len(summary.Outcomes), summary.SkippedCount())
	return summary, ExitOK
}

// distinctRepositories returns the sorted set of repository full names
// carried by the records. Records without a repository field resolve
// through the scope-name fallback instead.
func distinctRepositories(records []*report.Record) []string {
	seen := make(map[string]bool)
	var repos []string
	for _, r := range records {
		repo := r.Repository()
		if repo == "" || seen[repo] {
			continue
		}
		seen[repo] = true
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	return repos
}
