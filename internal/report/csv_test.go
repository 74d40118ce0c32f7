package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func makeRecord(pairs ...string) *Record {
	r := &Record{}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Add(pairs[i], pairs[i+1])
	}
	return r
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteCSV_HeaderIsFirstRecordKeysPlusAdmins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repository_secretscanning.csv")
	records := []*Record{
		makeRecord("number", "1", "state", "open", "secret_type", "github_pat"),
		makeRecord("number", "2", "state", "resolved", "secret_type", "slack_token"),
	}

	n, err := WriteCSV(path, records, func(string) []string { return []string{"octocat"} })
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows written = %d, want 2", n)
	}

	rows := readCSV(t, path)
	wantHeader := []string{"number", "state", "secret_type", "Admins"}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Fatalf("header = %v, want %v", rows[0], wantHeader)
	}
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want header + 2 records", len(rows))
	}
}

func TestWriteCSV_AdminsAttributedPerRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "organization_dependabot.csv")
	records := []*Record{
		makeRecord("number", "1", RepositoryField, "acme/widgets"),
		makeRecord("number", "2", RepositoryField, "acme/gadgets"),
	}

	byRepo := map[string][]string{
		"acme/widgets": {"alice", "bob"},
		"acme/gadgets": {"carol"},
	}
	_, err := WriteCSV(path, records, func(repo string) []string { return byRepo[repo] })
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows := readCSV(t, path)
	if got := rows[1][2]; got != "alice, bob" {
		t.Fatalf("row 1 Admins = %q, want %q", got, "alice, bob")
	}
	if got := rows[2][2]; got != "carol" {
		t.Fatalf("row 2 Admins = %q, want %q", got, "carol")
	}
}

func TestWriteCSV_FallbackWhenNoRepositoryField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repository_codescanning.csv")
	records := []*Record{makeRecord("number", "7", "severity", "high")}

	var lookedUp []string
	_, err := WriteCSV(path, records, func(repo string) []string {
		lookedUp = append(lookedUp, repo)
		if repo == "" {
			return []string{"scope-admin"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	if !reflect.DeepEqual(lookedUp, []string{""}) {
		t.Fatalf("lookup calls = %v, want single empty-repo lookup", lookedUp)
	}
	rows := readCSV(t, path)
	if got := rows[1][2]; got != "scope-admin" {
		t.Fatalf("Admins = %q, want scope fallback", got)
	}
}

func TestWriteCSV_EmptyRecordsWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	n, err := WriteCSV(path, nil, nil)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if n != 0 {
		t.Fatalf("rows = %d, want 0", n)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected no file for empty record set, stat err = %v", statErr)
	}
}

func TestFileName(t *testing.T) {
	got := FileName("out", "enterprise", "dependabot")
	want := filepath.Join("out", "enterprise_dependabot.csv")
	if got != want {
		t.Fatalf("FileName = %q, want %q", got, want)
	}
}

func TestRecord_GetAndRepository(t *testing.T) {
	r := makeRecord("number", "3", RepositoryField, "acme/widgets")
	if v, ok := r.Get("number"); !ok || v != "3" {
		t.Fatalf("Get(number) = (%q, %v)", v, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("Get(missing) should not be found")
	}
	if r.Repository() != "acme/widgets" {
		t.Fatalf("Repository() = %q", r.Repository())
	}
}
