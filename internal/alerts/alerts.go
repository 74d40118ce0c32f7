// Package alerts defines the wire shapes of GitHub security alerts and
// flattens them into ordered report records.
//
// Only the fields that end up in the CSV are decoded. Timestamps stay as the
// API's RFC 3339 strings; the report reproduces them verbatim.
package alerts

import (
	"strconv"

	"ghasreport/internal/report"
)

// Repository is the owning-repository stub embedded in org- and
// enterprise-level alert listings. Repo-level listings omit it.
type Repository struct {
	FullName string `json:"full_name"`
}

type SecretScanningAlert struct {
	Number                int         `json:"number"`
	State                 string      `json:"state"`
	SecretType            string      `json:"secret_type"`
	SecretTypeDisplayName string      `json:"secret_type_display_name"`
	Resolution            string      `json:"resolution"`
	CreatedAt             string      `json:"created_at"`
	ResolvedAt            string      `json:"resolved_at"`
	HTMLURL               string      `json:"html_url"`
	Repository            *Repository `json:"repository,omitempty"`
}

func (a *SecretScanningAlert) Flatten() *report.Record {
	r := &report.Record{}
	r.Add("number", strconv.Itoa(a.Number))
	r.Add("state", a.State)
	r.Add("secret_type", a.SecretType)
	r.Add("secret_type_display_name", a.SecretTypeDisplayName)
	r.Add("resolution", a.Resolution)
	r.Add("created_at", a.CreatedAt)
	r.Add("resolved_at", a.ResolvedAt)
	r.Add("html_url", a.HTMLURL)
	addRepository(r, a.Repository)
	return r
}

type CodeScanningRule struct {
	ID                    string `json:"id"`
	Severity              string `json:"severity"`
	SecuritySeverityLevel string `json:"security_severity_level"`
	Description           string `json:"description"`
}

type CodeScanningTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type CodeScanningAlert struct {
	Number      int              `json:"number"`
	State       string           `json:"state"`
	CreatedAt   string           `json:"created_at"`
	DismissedAt string           `json:"dismissed_at"`
	FixedAt     string           `json:"fixed_at"`
	Rule        CodeScanningRule `json:"rule"`
	Tool        CodeScanningTool `json:"tool"`
	HTMLURL     string           `json:"html_url"`
	Repository  *Repository      `json:"repository,omitempty"`
}

func (a *CodeScanningAlert) Flatten() *report.Record {
	r := &report.Record{}
	r.Add("number", strconv.Itoa(a.Number))
	r.Add("state", a.State)
	r.Add("rule_id", a.Rule.ID)
	r.Add("rule_severity", a.Rule.Severity)
	r.Add("rule_security_severity_level", a.Rule.SecuritySeverityLevel)
	r.Add("rule_description", a.Rule.Description)
	r.Add("tool_name", a.Tool.Name)
	r.Add("created_at", a.CreatedAt)
	r.Add("dismissed_at", a.DismissedAt)
	r.Add("fixed_at", a.FixedAt)
	r.Add("html_url", a.HTMLURL)
	addRepository(r, a.Repository)
	return r
}

type DependabotPackage struct {
	Ecosystem string `json:"ecosystem"`
	Name      string `json:"name"`
}

type DependabotDependency struct {
	Package      DependabotPackage `json:"package"`
	ManifestPath string            `json:"manifest_path"`
	Scope        string            `json:"scope"`
}

type SecurityAdvisory struct {
	GHSAID   string `json:"ghsa_id"`
	CVEID    string `json:"cve_id"`
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
}

type FirstPatchedVersion struct {
	Identifier string `json:"identifier"`
}

type SecurityVulnerability struct {
	Severity               string               `json:"severity"`
	VulnerableVersionRange string               `json:"vulnerable_version_range"`
	FirstPatchedVersion    *FirstPatchedVersion `json:"first_patched_version"`
}

type DependabotAlert struct {
	Number        int                   `json:"number"`
	State         string                `json:"state"`
	CreatedAt     string                `json:"created_at"`
	FixedAt       string                `json:"fixed_at"`
	DismissedAt   string                `json:"dismissed_at"`
	Dependency    DependabotDependency  `json:"dependency"`
	Advisory      SecurityAdvisory      `json:"security_advisory"`
	Vulnerability SecurityVulnerability `json:"security_vulnerability"`
	HTMLURL       string                `json:"html_url"`
	Repository    *Repository           `json:"repository,omitempty"`
}

func (a *DependabotAlert) Flatten() *report.Record {
	r := &report.Record{}
	r.Add("number", strconv.Itoa(a.Number))
	r.Add("state", a.State)
	r.Add("package_ecosystem", a.Dependency.Package.Ecosystem)
	r.Add("package_name", a.Dependency.Package.Name)
	r.Add("manifest_path", a.Dependency.ManifestPath)
	r.Add("ghsa_id", a.Advisory.GHSAID)
	r.Add("cve_id", a.Advisory.CVEID)
	r.Add("severity", a.Advisory.Severity)
	r.Add("summary", a.Advisory.Summary)
	r.Add("vulnerable_version_range", a.Vulnerability.VulnerableVersionRange)
	first := ""
	if a.Vulnerability.FirstPatchedVersion != nil {
		first = a.Vulnerability.FirstPatchedVersion.Identifier
	}
	r.Add("first_patched_version", first)
	r.Add("created_at", a.CreatedAt)
	r.Add("fixed_at", a.FixedAt)
	r.Add("dismissed_at", a.DismissedAt)
	r.Add("html_url", a.HTMLURL)
	addRepository(r, a.Repository)
	return r
}

// addRepository appends the repository column only when the listing carried
// one. Repo-scope records have no repository field; the CSV writer falls
// back to the scope name for those rows.
func addRepository(r *report.Record, repo *Repository) {
	if repo == nil || repo.FullName == "" {
		return
	}
	r.Add(report.RepositoryField, repo.FullName)
}

// WithRepository stamps a repository full name onto every record that does
// not already carry one. The enterprise per-repository code-scanning loop
// uses this, since repo-level responses omit the repository object.
func WithRepository(records []*report.Record, fullName string) []*report.Record {
	for _, r := range records {
		if r.Repository() == "" && fullName != "" {
			r.Add(report.RepositoryField, fullName)
		}
	}
	return records
}
