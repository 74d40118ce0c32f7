package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AdminLookup maps a repository full name to its administrator logins. It is
// called with the empty string for records that carry no repository field;
// implementations are expected to fall back to the run's scope-level admins
// in that case.
type AdminLookup func(repository string) []string

// WriteCSV writes one row per record plus a header. The header is the field
// names of the first record with an Admins column appended; the Admins value
// is the comma-joined login list for the row's repository.
//
// An empty record set writes no file at all: there is no meaningful header
// to derive, and an empty CSV would only confuse downstream consumers.
// The number of data rows written is returned.
func WriteCSV(path string, records []*Record, admins AdminLookup) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("write csv: path required")
	}
	if len(records) == 0 {
		return 0, nil
	}
	if admins == nil {
		admins = func(string) []string { return nil }
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("write csv: create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}

	w := csv.NewWriter(f)
	header := append(records[0].Names(), "Admins")
	if err := w.Write(header); err != nil {
		f.Close()
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	rows := 0
	for _, rec := range records {
		row := append(rec.Values(), strings.Join(admins(rec.Repository()), ", "))
		if err := w.Write(row); err != nil {
			f.Close()
			return rows, fmt.Errorf("write csv row: %w", err)
		}
		rows++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return rows, fmt.Errorf("flush csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return rows, fmt.Errorf("close csv: %w", err)
	}
	return rows, nil
}

// FileName returns the conventional per-feature CSV name, {scope}_{feature}.csv.
func FileName(dir, scope, feature string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", scope, feature))
}
