package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ghasreport/internal/config"
	"ghasreport/internal/features"
	gh "ghasreport/internal/github"
)

func newTestDeps(t *testing.T, handler http.Handler) (*features.Deps, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := gh.NewClient(context.Background(), "tok", gh.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return &features.Deps{Client: client, ServerURL: server.URL, Concurrency: 2}, server
}

func TestSecretScanning_OrgScope(t *testing.T) {
	deps, _ := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orgs/acme/secret-scanning/alerts" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `[
			{"number": 1, "state": "open", "secret_type": "github_pat", "repository": {"full_name": "acme/widgets"}},
			{"number": 2, "state": "resolved", "secret_type": "slack_token", "repository": {"full_name": "acme/gadgets"}}
		]`)
	}))

	f, ok := features.Resolve(features.SecretScanning)
	if !ok {
		t.Fatal("secret scanning fetcher not registered")
	}
	records, err := f.Fetch(context.Background(), features.Target{Scope: config.ScopeOrganization, Name: "acme"}, deps)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Repository() != "acme/widgets" {
		t.Fatalf("repository = %q", records[0].Repository())
	}
}

func TestSecretScanning_DisabledIsClassified(t *testing.T) {
	deps, _ := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Secret scanning is disabled on this repository."}`)
	}))

	f, _ := features.Resolve(features.SecretScanning)
	_, err := f.Fetch(context.Background(), features.Target{Scope: config.ScopeRepository, Name: "acme/widgets"}, deps)
	if err == nil {
		t.Fatal("expected error")
	}
	if !features.IsDisabled(err) {
		t.Fatalf("expected FeatureDisabledError, got %v", err)
	}
}

func TestDependabot_GenericErrorNotClassified(t *testing.T) {
	deps, _ := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message": "upstream unavailable"}`)
	}))

	f, _ := features.Resolve(features.Dependabot)
	_, err := f.Fetch(context.Background(), features.Target{Scope: config.ScopeRepository, Name: "acme/widgets"}, deps)
	if err == nil {
		t.Fatal("expected error")
	}
	if features.IsDisabled(err) {
		t.Fatalf("502 must not be treated as feature-disabled: %v", err)
	}
}

func TestUseRepoLoop(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"3.5.9", true},
		{"3.6.1", true},
		{"3.7.0", false},
		{"3.9.0", false},
		{"", false},        // cloud: no installed version
		{"garbage", false}, // unparsable: assume modern endpoint
	}
	for _, tt := range tests {
		if got := useRepoLoop(tt.version); got != tt.want {
			t.Errorf("useRepoLoop(%q) = %v, want %v", tt.version, got, tt.want)
		}
	}
}

func TestCodeScanning_EnterpriseModernServerUsesEnterpriseEndpoint(t *testing.T) {
	var enterpriseHits int
	deps, _ := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/meta":
			fmt.Fprint(w, `{"installed_version": "3.9.0"}`)
		case r.URL.Path == "/enterprises/bigcorp/code-scanning/alerts":
			enterpriseHits++
			fmt.Fprint(w, `[{"number": 5, "state": "open", "rule": {"id": "go/sqli"}, "repository": {"full_name": "acme/widgets"}}]`)
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	f, _ := features.Resolve(features.CodeScanning)
	records, err := f.Fetch(context.Background(), features.Target{Scope: config.ScopeEnterprise, Name: "bigcorp"}, deps)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if enterpriseHits != 1 {
		t.Fatalf("enterprise endpoint hits = %d, want 1", enterpriseHits)
	}
	if len(records) != 1 || records[0].Repository() != "acme/widgets" {
		t.Fatalf("unexpected records: %d", len(records))
	}
}

func TestCodeScanning_EnterpriseOldServerLoopsRepos(t *testing.T) {
	var mu sync.Mutex
	repoHits := map[string]int{}

	deps, _ := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/meta":
			fmt.Fprint(w, `{"installed_version": "3.6.1"}`)
		case r.URL.Path == "/stafftools/reports/all_repositories.csv":
			fmt.Fprint(w, "created_at,owner_name,name,visibility\n2025-01-01,acme,widgets,private\n2025-02-01,acme,gadgets,public\n")
		case strings.HasPrefix(r.URL.Path, "/repos/") && strings.HasSuffix(r.URL.Path, "/code-scanning/alerts"):
			mu.Lock()
			repoHits[r.URL.Path]++
			mu.Unlock()
			if strings.Contains(r.URL.Path, "gadgets") {
				// One repo has code scanning turned off; the loop must skip it.
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Code scanning is not enabled for this repository"}`)
				return
			}
			fmt.Fprint(w, `[{"number": 9, "state": "open", "rule": {"id": "js/xss"}}]`)
		case r.URL.Path == "/enterprises/bigcorp/code-scanning/alerts":
			t.Error("enterprise endpoint must not be used on GHES 3.6")
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))

	f, _ := features.Resolve(features.CodeScanning)
	records, err := f.Fetch(context.Background(), features.Target{Scope: config.ScopeEnterprise, Name: "bigcorp"}, deps)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(repoHits) != 2 {
		t.Fatalf("repo endpoints hit = %v, want both repos", repoHits)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1 (disabled repo skipped)", len(records))
	}
	if records[0].Repository() != "acme/widgets" {
		t.Fatalf("repository = %q, want stamped full name", records[0].Repository())
	}
}

func TestCodeScanning_EnterpriseLoopAbortsOnGenericError(t *testing.T) {
	deps, _ := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/meta":
			fmt.Fprint(w, `{"installed_version": "3.5.2"}`)
		case r.URL.Path == "/stafftools/reports/all_repositories.csv":
			fmt.Fprint(w, "owner_name,name\nacme,widgets\n")
		default:
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message": "boom"}`)
		}
	}))

	f, _ := features.Resolve(features.CodeScanning)
	_, err := f.Fetch(context.Background(), features.Target{Scope: config.ScopeEnterprise, Name: "bigcorp"}, deps)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "acme/widgets") {
		t.Fatalf("error should name the failing repo: %v", err)
	}
}

func TestParseRepoReport(t *testing.T) {
	csvBody := "created_at,owner_id,owner_name,id,name\n" +
		"2025-01-01,1,acme,10,widgets\n" +
		"2025-01-02,1,acme,11,gadgets\n" +
		"2025-01-03,2,,12,orphan\n" // missing owner skipped

	repos, err := parseRepoReport(strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("parseRepoReport: %v", err)
	}
	want := []string{"acme/widgets", "acme/gadgets"}
	if len(repos) != 2 || repos[0] != want[0] || repos[1] != want[1] {
		t.Fatalf("repos = %v, want %v", repos, want)
	}
}

func TestParseRepoReport_MissingColumns(t *testing.T) {
	if _, err := parseRepoReport(strings.NewReader("a,b,c\n1,2,3\n")); err == nil {
		t.Fatal("expected error for unrecognized header")
	}
}
